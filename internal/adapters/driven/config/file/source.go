package file

import (
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
)

// Configuration keys of the dataset settings.
const (
	KeyProjectID     = "project_id"
	KeyDataset       = "dataset"
	KeyToken         = "token"
	KeyAPIHost       = "api_host"
	KeyTypePrefix    = "type_prefix"
	KeyOverlayDrafts = "overlay_drafts"
	KeyWatchMode     = "watch_mode"
	KeyTypes         = "types"
	KeyStore         = "store"
	KeyDataDir       = "data_dir"
)

// Keys lists every recognised configuration key.
var Keys = []string{
	KeyProjectID, KeyDataset, KeyToken, KeyAPIHost, KeyTypePrefix,
	KeyOverlayDrafts, KeyWatchMode, KeyTypes, KeyStore, KeyDataDir,
}

// SourceConfig reads the dataset settings from store. Defaults are not
// applied and nothing is validated; callers layer flag overrides on top first.
func SourceConfig(store driven.ConfigStore) domain.SourceConfig {
	return domain.SourceConfig{
		ProjectID:     store.GetString(KeyProjectID),
		Dataset:       store.GetString(KeyDataset),
		Token:         store.GetString(KeyToken),
		APIHost:       store.GetString(KeyAPIHost),
		TypePrefix:    store.GetString(KeyTypePrefix),
		OverlayDrafts: store.GetBool(KeyOverlayDrafts),
		WatchMode:     store.GetBool(KeyWatchMode),
		Types:         store.GetStringSlice(KeyTypes),
		Store:         store.GetString(KeyStore),
		DataDir:       store.GetString(KeyDataDir),
	}
}

// IsKnownKey reports whether key is a recognised configuration key.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
