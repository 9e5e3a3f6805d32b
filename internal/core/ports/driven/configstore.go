package driven

// ConfigStore persists the dataset settings.
type ConfigStore interface {
	// Get retrieves a setting by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString returns a string setting, or "" when unset or not a string.
	GetString(key string) string

	// GetBool returns a boolean setting, or false when unset or not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns a list setting. Returns nil when unset.
	GetStringSlice(key string) []string

	// Set stores one setting and persists immediately.
	Set(key string, value any) error

	// SetAll stores several settings in a single write.
	SetAll(values map[string]any) error

	// Unset removes a setting and persists immediately.
	Unset(key string) error

	// Load reads the settings from storage.
	Load() error

	// Path returns where the settings are stored.
	Path() string
}
