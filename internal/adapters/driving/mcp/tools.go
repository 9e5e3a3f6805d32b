package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID           string `json:"id" jsonschema:"the document id, with or without the drafts. prefix"`
	ResolveDepth int    `json:"resolve_depth,omitempty" jsonschema:"how many levels of references to expand (default 0)"`
}

// DocumentOutput is a materialized document.
type DocumentOutput struct {
	ID       string         `json:"id"`
	UID      string         `json:"uid"`
	TypeName string         `json:"type_name"`
	Document map[string]any `json:"document"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
// One of Type or Collection is required.
type ListDocumentsInput struct {
	Type       string `json:"type,omitempty" jsonschema:"the document type, as found in the _type field"`
	Collection string `json:"collection,omitempty" jsonschema:"a collection name, as returned by list_types"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// ListTypesOutput is the output schema for the list_types tool.
type ListTypesOutput struct {
	Types []string `json:"types"`
}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	SessionID          string `json:"session_id"`
	Running            bool   `json:"running"`
	Watching           bool   `json:"watching"`
	DocumentsProcessed int    `json:"documents_processed"`
	DraftsOverlaid     int    `json:"drafts_overlaid"`
	EventsApplied      int    `json:"events_applied"`
	ErrorCount         int    `json:"error_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get the current version of a document, optionally with references expanded",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all documents of one type or collection",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_types",
		Description: "List the collections that hold documents",
	}, s.handleListTypes)

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync_status",
			Description: "Report progress of the running sync",
		}, s.handleSyncStatus)
	}
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	node, err := s.ports.Document.Get(ctx, input.ID, input.ResolveDepth)
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("getting document %s: %w", input.ID, err)
	}
	return nil, toDocumentOutput(node), nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	var nodes []domain.Node
	var err error
	switch {
	case input.Collection != "":
		nodes, err = s.ports.Document.ListCollection(ctx, input.Collection)
	case input.Type != "":
		nodes, err = s.ports.Document.List(ctx, input.Type)
	default:
		return nil, ListDocumentsOutput{}, fmt.Errorf("%w: type or collection is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(nodes)),
		Count:     len(nodes),
	}
	for i := range nodes {
		output.Documents[i] = toDocumentOutput(&nodes[i])
	}
	return nil, output, nil
}

// handleListTypes handles the list_types tool invocation.
func (s *Server) handleListTypes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListTypesOutput, error) {
	types, err := s.ports.Document.Types(ctx)
	if err != nil {
		return nil, ListTypesOutput{}, fmt.Errorf("listing types: %w", err)
	}
	return nil, ListTypesOutput{Types: types}, nil
}

// handleSyncStatus handles the sync_status tool invocation.
func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("getting sync status: %w", err)
	}
	return nil, SyncStatusOutput{
		SessionID:          status.SessionID,
		Running:            status.Running,
		Watching:           status.Watching,
		DocumentsProcessed: status.DocumentsProcessed,
		DraftsOverlaid:     status.DraftsOverlaid,
		EventsApplied:      status.EventsApplied,
		ErrorCount:         status.ErrorCount,
	}, nil
}

func toDocumentOutput(node *domain.Node) DocumentOutput {
	return DocumentOutput{
		ID:       node.ID,
		UID:      node.UID,
		TypeName: node.TypeName,
		Document: node.Document,
	}
}
