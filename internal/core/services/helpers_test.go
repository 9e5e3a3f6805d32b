package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/overlay"
)

func testTypeName(typeTag string) string { return "Test_" + typeTag }

func testUID(id string) string { return "uid-" + id }

// newTestStore returns an in-memory store. Passing types restricts the
// store to those declared types.
func newTestStore(types ...string) *memory.NodeStore {
	return memory.NewNodeStore(testTypeName, types)
}

func newTestSession(overlayDrafts bool) *overlay.Session {
	return overlay.NewSession("test-session", overlayDrafts)
}

func doc(id, typ string, fields ...any) domain.Document {
	d := domain.Document{domain.FieldID: id, domain.FieldType: typ}
	for i := 0; i+1 < len(fields); i += 2 {
		d[fields[i].(string)] = fields[i+1]
	}
	return d
}

func requireNode(t *testing.T, store *memory.NodeStore, id string) *domain.Node {
	t.Helper()
	node, err := store.GetNodeByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func requireNoNode(t *testing.T, store *memory.NodeStore, id string) {
	t.Helper()
	_, err := store.GetNodeByID(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
