package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/drafts"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// Materializer writes documents into the node store, one node per logical id.
type Materializer struct {
	store         driven.NodeStore
	uid           func(id string) string
	overlayDrafts bool
}

// NewMaterializer creates a materializer. uid derives the store-wide UID of
// a node from its id. In overlay mode nodes are keyed by logical id, so a
// draft replaces its published counterpart.
func NewMaterializer(store driven.NodeStore, uid func(id string) string, overlayDrafts bool) *Materializer {
	return &Materializer{
		store:         store,
		uid:           uid,
		overlayDrafts: overlayDrafts,
	}
}

// NodeID returns the id a document with the given raw id is stored under.
func (m *Materializer) NodeID(rawID string) string {
	if m.overlayDrafts {
		return drafts.UnprefixID(rawID)
	}
	return rawID
}

// Upsert stores doc as the current node for its id, updating the node if
// one exists and adding it otherwise. Documents of undeclared types are
// reported with a warning and an error matching domain.ErrUnsupportedType.
func (m *Materializer) Upsert(ctx context.Context, doc domain.Document) error {
	rawID := doc.ID()
	if rawID == "" {
		return fmt.Errorf("%w: document has no id", domain.ErrInvalidInput)
	}

	coll, err := m.store.CollectionForType(ctx, doc.Type())
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Warn("Document with ID %q has type %q, which is not declared as a document type. "+
				"Skipping document.", rawID, doc.Type())
		}
		return fmt.Errorf("collection for %s: %w", rawID, err)
	}

	id := m.NodeID(rawID)
	node := domain.Node{
		ID:       id,
		UID:      m.uid(id),
		TypeName: coll.TypeName(),
		Document: doc,
	}

	_, err = coll.GetNodeByID(ctx, id)
	switch {
	case err == nil:
		if err := coll.UpdateNode(ctx, node); err != nil {
			return fmt.Errorf("update node %s: %w", id, err)
		}
	case errors.Is(err, domain.ErrNotFound):
		if err := coll.AddNode(ctx, node); err != nil {
			return fmt.Errorf("add node %s: %w", id, err)
		}
	default:
		return fmt.Errorf("get node %s: %w", id, err)
	}

	return nil
}

// Remove deletes node from its collection.
func (m *Materializer) Remove(ctx context.Context, node *domain.Node) error {
	if node == nil {
		return nil
	}
	coll, err := m.store.CollectionForType(ctx, node.Document.Type())
	if err != nil {
		return fmt.Errorf("collection for %s: %w", node.ID, err)
	}
	if err := coll.RemoveNode(ctx, node.ID); err != nil {
		return fmt.Errorf("remove node %s: %w", node.ID, err)
	}
	return nil
}

// Sweep removes every node whose id is not in keep and returns how many
// were removed.
func (m *Materializer) Sweep(ctx context.Context, keep map[string]struct{}) (int, error) {
	names, err := m.store.TypeNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list collections: %w", err)
	}

	removed := 0
	for _, name := range names {
		coll, err := m.store.Collection(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("collection %s: %w", name, err)
		}
		nodes, err := coll.Nodes(ctx)
		if err != nil {
			return removed, fmt.Errorf("nodes of %s: %w", name, err)
		}
		for _, node := range nodes {
			if _, ok := keep[node.ID]; ok {
				continue
			}
			if err := coll.RemoveNode(ctx, node.ID); err != nil {
				return removed, fmt.Errorf("remove node %s: %w", node.ID, err)
			}
			logger.Debug("Removed stale node %s from %s", node.ID, name)
			removed++
		}
	}
	return removed, nil
}
