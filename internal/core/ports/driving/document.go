package driving

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// DocumentService reads materialized documents.
type DocumentService interface {
	// Get returns the current version of a logical document. When
	// resolveDepth is positive, references are expanded up to that depth.
	Get(ctx context.Context, id string, resolveDepth int) (*domain.Node, error)

	// List returns the nodes of one document type.
	List(ctx context.Context, typeTag string) ([]domain.Node, error)

	// ListCollection returns the nodes of the named collection, as
	// reported by Types.
	ListCollection(ctx context.Context, typeName string) ([]domain.Node, error)

	// Types lists the collection names that hold documents.
	Types(ctx context.Context) ([]string, error)
}
