package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func seedDocuments(t *testing.T, overlayDrafts bool, docs ...domain.Document) *memory.NodeStore {
	t.Helper()
	store := newTestStore()
	m := NewMaterializer(store, testUID, overlayDrafts)
	for _, d := range docs {
		require.NoError(t, m.Upsert(context.Background(), d))
	}
	return store
}

func ref(id string) map[string]any {
	return map[string]any{"_ref": id, "_type": "reference"}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()
	store := seedDocuments(t, true,
		doc("a1", "author", "name", "Ada"),
		doc("p1", "post", "title", "Hello", "author", ref("a1")),
	)
	svc := NewDocumentService(store, true)

	t.Run("raw at depth zero", func(t *testing.T) {
		node, err := svc.Get(ctx, "p1", 0)
		require.NoError(t, err)
		assert.Equal(t, ref("a1"), node.Document["author"])
	})

	t.Run("resolved at depth one", func(t *testing.T) {
		node, err := svc.Get(ctx, "p1", 1)
		require.NoError(t, err)
		author, ok := node.Document["author"].(domain.Document)
		require.True(t, ok, "author should be resolved, got %T", node.Document["author"])
		assert.Equal(t, "Ada", author["name"])
	})

	t.Run("resolution does not mutate the stored node", func(t *testing.T) {
		_, err := svc.Get(ctx, "p1", 2)
		require.NoError(t, err)
		stored := requireNode(t, store, "p1")
		assert.Equal(t, ref("a1"), stored.Document["author"])
	})

	t.Run("draft id finds the logical document", func(t *testing.T) {
		node, err := svc.Get(ctx, "drafts.p1", 0)
		require.NoError(t, err)
		assert.Equal(t, "p1", node.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing", 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.Get(ctx, "", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Get(ctx, "p1", MaxResolveDepth+1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

// A reference to a document that is not materialized stays a marker.
func TestDocumentService_Get_MissingReferenceTarget(t *testing.T) {
	store := seedDocuments(t, false, doc("p1", "post", "author", ref("ghost")))
	svc := NewDocumentService(store, false)

	node, err := svc.Get(context.Background(), "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, ref("ghost"), node.Document["author"])
}

func TestDocumentService_Get_DraftReferenceInOverlay(t *testing.T) {
	store := seedDocuments(t, true,
		doc("drafts.a1", "author", "name", "Draft Ada"),
		doc("p1", "post", "author", ref("drafts.a1")),
	)
	svc := NewDocumentService(store, true)

	node, err := svc.Get(context.Background(), "p1", 1)
	require.NoError(t, err)
	author, ok := node.Document["author"].(domain.Document)
	require.True(t, ok)
	assert.Equal(t, "Draft Ada", author["name"])
}

func TestDocumentService_ListAndTypes(t *testing.T) {
	ctx := context.Background()
	store := seedDocuments(t, false,
		doc("p2", "post"),
		doc("p1", "post"),
		doc("a1", "author"),
	)
	svc := NewDocumentService(store, false)

	nodes, err := svc.List(ctx, "post")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "p1", nodes[0].ID)
	assert.Equal(t, "p2", nodes[1].ID)

	types, err := svc.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test_author", "Test_post"}, types)

	byName, err := svc.ListCollection(ctx, "Test_post")
	require.NoError(t, err)
	assert.Equal(t, nodes, byName)

	_, err = svc.ListCollection(ctx, "Test_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ListCollection(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
