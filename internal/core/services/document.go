package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/drafts"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
	"github.com/custodia-labs/lakesync/internal/core/references"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// MaxResolveDepth caps the reference depth a caller may request.
const MaxResolveDepth = 10

// DocumentService reads materialized documents.
type DocumentService struct {
	store         driven.NodeStore
	overlayDrafts bool
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.NodeStore, overlayDrafts bool) *DocumentService {
	return &DocumentService{
		store:         store,
		overlayDrafts: overlayDrafts,
	}
}

// Get returns the current version of a logical document, with references
// expanded up to resolveDepth levels when resolveDepth is positive.
func (s *DocumentService) Get(ctx context.Context, id string, resolveDepth int) (*domain.Node, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if resolveDepth > MaxResolveDepth {
		return nil, fmt.Errorf("%w: resolve depth %d exceeds %d", domain.ErrInvalidInput, resolveDepth, MaxResolveDepth)
	}

	lookupID := id
	if s.overlayDrafts {
		lookupID = drafts.UnprefixID(id)
	}
	node, err := s.store.GetNodeByID(ctx, lookupID)
	if err != nil {
		return nil, err
	}
	if resolveDepth <= 0 {
		return node, nil
	}

	resolved := references.Resolve(node.Document, 0, resolveDepth, LookupFromStore(ctx, s.store, s.overlayDrafts))
	out := *node
	if doc, ok := resolved.(domain.Document); ok {
		out.Document = doc
	}
	return &out, nil
}

// List returns the nodes of one document type.
func (s *DocumentService) List(ctx context.Context, typeTag string) ([]domain.Node, error) {
	coll, err := s.store.CollectionForType(ctx, typeTag)
	if err != nil {
		return nil, err
	}
	return coll.Nodes(ctx)
}

// ListCollection returns the nodes of the named collection.
func (s *DocumentService) ListCollection(ctx context.Context, typeName string) ([]domain.Node, error) {
	if typeName == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}
	coll, err := s.store.Collection(ctx, typeName)
	if err != nil {
		return nil, err
	}
	return coll.Nodes(ctx)
}

// Types lists the collection names that hold documents.
func (s *DocumentService) Types(ctx context.Context) ([]string, error) {
	return s.store.TypeNames(ctx)
}

// LookupFromStore returns a reference lookup backed by store. In overlay
// mode the draft prefix is stripped so a reference finds whichever version
// is currently materialized.
func LookupFromStore(ctx context.Context, store driven.NodeStore, overlayDrafts bool) references.Lookup {
	return func(ref string) (domain.Document, bool) {
		id := ref
		if overlayDrafts {
			id = drafts.UnprefixID(ref)
		}
		node, err := store.GetNodeByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Resolving reference %s: %v", ref, err)
			}
			return nil, false
		}
		return node.Document, true
	}
}
