package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	domainConfig "github.com/grclab/riskflow/pkg/domain/model/config"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Categories    []Category     `toml:"category"`
	Organizations []Organization `toml:"organization"`
}

// Category represents a risk category configuration
type Category struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	id := types.CategoryID(c.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category ID")
	}
	if c.Name == "" {
		return goerr.New("category name is required", goerr.V("id", c.ID))
	}
	return nil
}

// Organization represents an organization configuration
type Organization struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the Organization is valid
func (o *Organization) Validate() error {
	id := types.OrgID(o.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid organization ID")
	}
	if o.Name == "" {
		return goerr.New("organization name is required", goerr.V("id", o.ID))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	// Check category duplicates
	categoryIDs := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		categoryIDs[cat.ID] = true
	}

	// Check organization duplicates
	orgIDs := make(map[string]bool)
	for _, org := range a.Organizations {
		if err := org.Validate(); err != nil {
			return goerr.Wrap(err, "invalid organization")
		}
		if orgIDs[org.ID] {
			return goerr.New("duplicate organization ID", goerr.V("id", org.ID))
		}
		orgIDs[org.ID] = true
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// ToCatalog converts AppConfig to the domain catalog
func (a *AppConfig) ToCatalog() *domainConfig.Catalog {
	categories := make([]domainConfig.Category, len(a.Categories))
	for i, cat := range a.Categories {
		categories[i] = domainConfig.Category{
			ID:          types.CategoryID(cat.ID),
			Name:        cat.Name,
			Description: cat.Description,
		}
	}

	orgs := make([]domainConfig.Organization, len(a.Organizations))
	for i, org := range a.Organizations {
		orgs[i] = domainConfig.Organization{
			ID:   types.OrgID(org.ID),
			Name: org.Name,
		}
	}

	return &domainConfig.Catalog{
		Categories:    categories,
		Organizations: orgs,
	}
}
