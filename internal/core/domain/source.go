package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SourceConfig is the configuration of one content dataset to synchronise.
type SourceConfig struct {
	// ProjectID identifies the project on the content platform.
	ProjectID string `toml:"project_id" validate:"required,alphanum"`

	// Dataset is the dataset name within the project.
	Dataset string `toml:"dataset" validate:"required,max=64"`

	// Token is an optional API token. Required to see drafts.
	Token string `toml:"token"`

	// APIHost overrides the platform API host. Empty uses the default.
	APIHost string `toml:"api_host" validate:"omitempty,url"`

	// TypePrefix is prepended to every collection name.
	TypePrefix string `toml:"type_prefix"`

	// OverlayDrafts makes drafts visible in place of their published version.
	OverlayDrafts bool `toml:"overlay_drafts"`

	// WatchMode keeps a live listener running after the bulk load.
	WatchMode bool `toml:"watch_mode"`

	// Types is an optional allow-list of document types.
	// Empty accepts every type.
	Types []string `toml:"types" validate:"dive,required"`

	// Store selects the node store backend.
	Store string `toml:"store" validate:"oneof=memory sqlite"`

	// DataDir is where persistent stores keep their files.
	DataDir string `toml:"data_dir"`
}

// Default store backend and collection prefix.
const (
	DefaultStore      = "memory"
	DefaultTypePrefix = "Sanity"
)

// sourceValidate reports field errors under their config key names.
var sourceValidate *validator.Validate

func init() {
	sourceValidate = validator.New(validator.WithRequiredStructEnabled())
	sourceValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// WithDefaults returns a copy with unset optional fields filled in.
func (c SourceConfig) WithDefaults() SourceConfig {
	if c.Store == "" {
		c.Store = DefaultStore
	}
	if c.TypePrefix == "" {
		c.TypePrefix = DefaultTypePrefix
	}
	return c
}

// Validate checks the configuration, naming offending keys in the error.
// The returned error matches ErrInvalidInput.
func (c SourceConfig) Validate() error {
	err := sourceValidate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "alphanum":
		return fmt.Sprintf("%s must be alphanumeric", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
