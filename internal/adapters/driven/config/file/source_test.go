package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func TestSourceConfig(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyProjectID, "abc123"))
	require.NoError(t, store.Set(KeyDataset, "production"))
	require.NoError(t, store.Set(KeyToken, "secret"))
	require.NoError(t, store.Set(KeyOverlayDrafts, true))
	require.NoError(t, store.Set(KeyTypes, []string{"post"}))
	require.NoError(t, store.Set(KeyStore, "sqlite"))

	cfg := SourceConfig(store)

	assert.Equal(t, domain.SourceConfig{
		ProjectID:     "abc123",
		Dataset:       "production",
		Token:         "secret",
		OverlayDrafts: true,
		Types:         []string{"post"},
		Store:         "sqlite",
	}, cfg)
	assert.NoError(t, cfg.WithDefaults().Validate())
}

func TestSourceConfig_Empty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := SourceConfig(store)
	assert.Equal(t, domain.SourceConfig{}, cfg)
	assert.ErrorIs(t, cfg.WithDefaults().Validate(), domain.ErrInvalidInput)
}

func TestIsKnownKey(t *testing.T) {
	for _, key := range Keys {
		assert.True(t, IsKnownKey(key), key)
	}
	assert.False(t, IsKnownKey("unknown"))
}
