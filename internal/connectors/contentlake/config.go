package contentlake

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// APIVersion is the data API version requested.
const APIVersion = "v1"

// Config holds what the client needs to address one dataset.
type Config struct {
	ProjectID string
	Dataset   string

	// Token is optional. Without it only published documents are visible.
	Token string

	// APIHost overrides https://<project>.api.sanity.io.
	APIHost string

	// UserAgent is sent with every request.
	UserAgent string
}

// ConfigFromSource builds a client config from the sync source settings.
func ConfigFromSource(src domain.SourceConfig, version string) Config {
	return Config{
		ProjectID: src.ProjectID,
		Dataset:   src.Dataset,
		Token:     src.Token,
		APIHost:   src.APIHost,
		UserAgent: "lakesync/" + version,
	}
}

// baseURL returns the versioned API root without a trailing slash.
func (c Config) baseURL() string {
	host := strings.TrimRight(c.APIHost, "/")
	if host == "" {
		host = fmt.Sprintf("https://%s.api.sanity.io", c.ProjectID)
	}
	return host + "/" + APIVersion
}

// ExportURL returns the dataset export endpoint.
func (c Config) ExportURL() string {
	return fmt.Sprintf("%s/data/export/%s", c.baseURL(), c.Dataset)
}

// ListenURL returns the dataset listen endpoint without query parameters.
func (c Config) ListenURL() string {
	return fmt.Sprintf("%s/data/listen/%s", c.baseURL(), c.Dataset)
}
