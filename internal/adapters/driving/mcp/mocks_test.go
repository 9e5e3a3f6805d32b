package mcp

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	node  *domain.Node
	nodes []domain.Node
	types []string
	err   error

	gotID    string
	gotDepth int
	gotType  string

	gotCollection string
}

func (m *mockDocumentService) Get(_ context.Context, id string, resolveDepth int) (*domain.Node, error) {
	m.gotID, m.gotDepth = id, resolveDepth
	return m.node, m.err
}

func (m *mockDocumentService) List(_ context.Context, typeTag string) ([]domain.Node, error) {
	m.gotType = typeTag
	return m.nodes, m.err
}

func (m *mockDocumentService) ListCollection(_ context.Context, typeName string) ([]domain.Node, error) {
	m.gotCollection = typeName
	return m.nodes, m.err
}

func (m *mockDocumentService) Types(_ context.Context) ([]string, error) {
	return m.types, m.err
}

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	status *driving.SyncStatus
	err    error
}

func (m *mockSyncService) Sync(_ context.Context) error {
	return m.err
}

func (m *mockSyncService) Status(_ context.Context) (*driving.SyncStatus, error) {
	return m.status, m.err
}
