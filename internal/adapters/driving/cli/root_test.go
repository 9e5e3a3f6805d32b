package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "lakesync", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sync", "document", "status", "config", "mcp", "tui", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestBuildApp_MissingConfiguration(t *testing.T) {
	_, err := execute(t, "status", "--config-dir", t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "project_id is required")
	assert.Contains(t, err.Error(), "dataset is required")
}

func TestBuildApp_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "config", "set", "project_id", "fromfile", "--config-dir", dir)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "store", "memory", "--config-dir", dir)
	require.NoError(t, err)

	// status needs the sqlite store, so success proves --store won.
	out, err := execute(t, "status",
		"--config-dir", dir,
		"--dataset", "production",
		"--store", "sqlite",
		"--data-dir", t.TempDir(),
	)

	require.NoError(t, err)
	assert.Contains(t, out, "No sync runs recorded yet.")
}

func TestBuildApp_MemoryStoreHasNoHistory(t *testing.T) {
	_, err := execute(t, "status",
		"--config-dir", t.TempDir(),
		"--project-id", "abc123",
		"--dataset", "production",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "only kept by the sqlite store")
}

func TestBuildApp_InvalidStore(t *testing.T) {
	_, err := execute(t, "status",
		"--config-dir", t.TempDir(),
		"--project-id", "abc123",
		"--dataset", "production",
		"--store", "redis",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store must be one of: memory, sqlite")
}
