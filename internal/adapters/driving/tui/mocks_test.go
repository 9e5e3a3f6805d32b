package tui

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

type mockDocumentService struct {
	types      []string
	nodes      []domain.Node
	node       *domain.Node
	err        error
	typesCalls int
}

func (m *mockDocumentService) Get(context.Context, string, int) (*domain.Node, error) {
	if m.node == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.node, m.err
}

func (m *mockDocumentService) List(context.Context, string) ([]domain.Node, error) {
	return m.nodes, m.err
}

func (m *mockDocumentService) ListCollection(context.Context, string) ([]domain.Node, error) {
	return m.nodes, m.err
}

func (m *mockDocumentService) Types(context.Context) ([]string, error) {
	m.typesCalls++
	return m.types, m.err
}

type mockSyncService struct {
	status driving.SyncStatus
}

func (m *mockSyncService) Sync(context.Context) error {
	return nil
}

func (m *mockSyncService) Status(context.Context) (*driving.SyncStatus, error) {
	status := m.status
	return &status, nil
}
