package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the settings file name inside the config directory.
const configFile = "config.toml"

// ConfigStore keeps the dataset settings in a flat TOML file. Only the
// keys in Keys are accepted, each with a fixed value type.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens the settings file in configDir, creating the
// directory when needed. If configDir is empty, defaults to ~/.lakesync.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".lakesync")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFile),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a setting by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString returns a string setting.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetBool returns a boolean setting.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice returns a list setting. A hand-written comma separated
// string is accepted as well as a TOML array.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case []string:
		return v
	case []any:
		// TOML arrays decode as []any
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		return splitList(v)
	default:
		return nil
	}
}

// Set stores one setting and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	return s.SetAll(map[string]any{key: value})
}

// SetAll checks every value and then stores them in a single write. On
// error nothing is changed.
func (s *ConfigStore) SetAll(values map[string]any) error {
	for key, value := range values {
		if err := checkValue(key, value); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]any, len(s.data)+len(values))
	for k, v := range s.data {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Unset removes a setting and persists immediately.
func (s *ConfigStore) Unset(key string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	next := make(map[string]any, len(s.data))
	for k, v := range s.data {
		if k != key {
			next[k] = v
		}
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// checkValue enforces the value type of each key.
func checkValue(key string, value any) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	switch key {
	case KeyOverlayDrafts, KeyWatchMode:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, key)
		}
	case KeyTypes:
		if _, ok := value.([]string); !ok {
			return fmt.Errorf("%w: %s must be a list of strings", domain.ErrInvalidInput, key)
		}
	default:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// save writes data next to the settings file and renames it into place,
// so a failed write never leaves a truncated file (caller must hold lock).
func (s *ConfigStore) save(data map[string]any) error {
	encoded, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), configFile+".*")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load reads the settings file. A missing file is an empty configuration.
// Unknown keys and tables are reported and ignored.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("reading config %s: %w", s.filePath, err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parsing config %s: %w", s.filePath, err)
	}

	data := make(map[string]any, len(loaded))
	var ignored []string
	for key, value := range loaded {
		if _, table := value.(map[string]any); table || !IsKnownKey(key) {
			ignored = append(ignored, key)
			continue
		}
		data[key] = value
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		logger.Warn("Ignoring unknown settings in %s: %s", s.filePath, strings.Join(ignored, ", "))
	}

	s.data = data
	return nil
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
