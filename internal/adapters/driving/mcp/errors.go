// Package mcp provides an MCP (Model Context Protocol) server adapter for lakesync.
// It lets AI assistants read the synchronised documents, with references
// resolved on request.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
