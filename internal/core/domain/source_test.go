package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceConfig_WithDefaults(t *testing.T) {
	cfg := SourceConfig{ProjectID: "abc123", Dataset: "production"}.WithDefaults()
	assert.Equal(t, DefaultStore, cfg.Store)
	assert.Equal(t, DefaultTypePrefix, cfg.TypePrefix)

	cfg = SourceConfig{Store: "sqlite", TypePrefix: "Cms"}.WithDefaults()
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "Cms", cfg.TypePrefix)
}

func TestSourceConfig_Validate(t *testing.T) {
	valid := SourceConfig{ProjectID: "abc123", Dataset: "production"}.WithDefaults()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(c *SourceConfig)
		want   string
	}{
		{"missing project", func(c *SourceConfig) { c.ProjectID = "" }, "project_id is required"},
		{"project not alphanumeric", func(c *SourceConfig) { c.ProjectID = "abc-123" }, "project_id must be alphanumeric"},
		{"missing dataset", func(c *SourceConfig) { c.Dataset = "" }, "dataset is required"},
		{"bad api host", func(c *SourceConfig) { c.APIHost = "not a url" }, "api_host must be a URL"},
		{"unknown store", func(c *SourceConfig) { c.Store = "redis" }, "store must be one of: memory, sqlite"},
		{"empty type", func(c *SourceConfig) { c.Types = []string{"post", ""} }, "types[1] is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSourceConfig_Validate_ReportsAllFields(t *testing.T) {
	err := SourceConfig{}.WithDefaults().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_id is required")
	assert.Contains(t, err.Error(), "dataset is required")
}

func TestSyncRun_Success(t *testing.T) {
	assert.True(t, SyncRun{}.Success())
	assert.False(t, SyncRun{Error: "boom"}.Success())
}
