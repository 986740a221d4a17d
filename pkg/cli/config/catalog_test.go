package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/grclab/riskflow/pkg/cli/config"
	"github.com/grclab/riskflow/pkg/domain/types"
)

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid configuration",
			content: `
[[category]]
id = "data-breach"
name = "Data Breach"
description = "Risk of data leakage"

[[category]]
id = "system-failure"
name = "System Failure"

[[organization]]
id = "acme"
name = "Acme Corp"
`,
			wantErr: false,
		},
		{
			name:    "config file not found",
			content: "", // Won't create the file
			wantErr: true,
		},
		{
			name: "duplicate category ID",
			content: `
[[category]]
id = "data-breach"
name = "Data Breach"

[[category]]
id = "data-breach"
name = "Duplicate"
`,
			wantErr: true,
		},
		{
			name: "missing category name",
			content: `
[[category]]
id = "data-breach"
`,
			wantErr: true,
		},
		{
			name: "invalid category ID format",
			content: `
[[category]]
id = "Data Breach!"
name = "Data Breach"
`,
			wantErr: true,
		},
		{
			name: "duplicate organization ID",
			content: `
[[organization]]
id = "acme"
name = "Acme Corp"

[[organization]]
id = "acme"
name = "Duplicate"
`,
			wantErr: true,
		},
		{
			name: "missing organization name",
			content: `
[[organization]]
id = "acme"
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			// Only create file if content is not empty
			if tt.content != "" {
				err := os.WriteFile(configPath, []byte(tt.content), 0644)
				gt.NoError(t, err).Required()
			}

			cfg, err := config.LoadAppConfiguration(configPath)

			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}

			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestAppConfigToCatalog(t *testing.T) {
	content := `
[[category]]
id = "data-breach"
name = "Data Breach"
description = "Risk of data leakage"

[[organization]]
id = "acme"
name = "Acme Corp"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	gt.NoError(t, err).Required()

	cfg, err := config.LoadAppConfiguration(configPath)
	gt.NoError(t, err).Required()

	catalog := cfg.ToCatalog()
	gt.Value(t, catalog).NotNil().Required()

	gt.Array(t, catalog.Categories).Length(1).Required()
	gt.Value(t, catalog.Categories[0].ID).Equal(types.CategoryID("data-breach"))
	gt.Value(t, catalog.Categories[0].Name).Equal("Data Breach")

	gt.Array(t, catalog.Organizations).Length(1).Required()
	gt.Value(t, catalog.Organizations[0].ID).Equal(types.OrgID("acme"))

	gt.Bool(t, catalog.HasCategory(types.CategoryID("data-breach"))).True()
	gt.Bool(t, catalog.HasCategory(types.CategoryID("unknown"))).False()
	gt.Bool(t, catalog.HasOrganization(types.OrgID("acme"))).True()
	gt.Bool(t, catalog.HasOrganization(types.OrgID("other"))).False()
}
