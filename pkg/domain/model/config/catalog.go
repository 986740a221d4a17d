package config

import "github.com/grclab/riskflow/pkg/domain/types"

// Category represents a risk category definition
type Category struct {
	ID          types.CategoryID
	Name        string
	Description string
}

// Organization represents a tenant organization
type Organization struct {
	ID   types.OrgID
	Name string
}

// Catalog holds the deployment-level reference data the workflow validates
// intake fields against
type Catalog struct {
	Categories    []Category
	Organizations []Organization
}

// HasCategory reports whether the category is defined in the catalog
func (c *Catalog) HasCategory(id types.CategoryID) bool {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// HasOrganization reports whether the organization is defined in the catalog
func (c *Catalog) HasOrganization(id types.OrgID) bool {
	for _, org := range c.Organizations {
		if org.ID == id {
			return true
		}
	}
	return false
}
