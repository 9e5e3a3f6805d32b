package driven

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// NodeStore is the host storage synchronised documents are materialized into.
// The core only issues create, update and remove intents against it.
type NodeStore interface {
	// GetNodeByID returns the node with the given logical id in any collection.
	// Returns domain.ErrNotFound when there is none.
	GetNodeByID(ctx context.Context, id string) (*domain.Node, error)

	// CollectionForType returns the collection holding documents of a type tag.
	// Returns domain.ErrUnsupportedType when the type is not declared.
	CollectionForType(ctx context.Context, typeTag string) (Collection, error)

	// Collection returns the collection with the given name.
	// Returns domain.ErrNotFound when it holds no nodes.
	Collection(ctx context.Context, typeName string) (Collection, error)

	// TypeNames lists the collections that currently hold nodes.
	TypeNames(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// Collection holds the nodes of a single document type.
type Collection interface {
	// TypeName returns the collection name.
	TypeName() string

	// GetNodeByID returns the node with the given logical id.
	// Returns domain.ErrNotFound when there is none.
	GetNodeByID(ctx context.Context, id string) (*domain.Node, error)

	// AddNode inserts a new node.
	// Returns domain.ErrInvalidInput if a node with the same id exists.
	AddNode(ctx context.Context, node domain.Node) error

	// UpdateNode replaces an existing node.
	// Returns domain.ErrNotFound if it does not exist.
	UpdateNode(ctx context.Context, node domain.Node) error

	// RemoveNode deletes the node with the given logical id.
	// Removing a missing node is not an error.
	RemoveNode(ctx context.Context, id string) error

	// Nodes returns every node in the collection ordered by id.
	Nodes(ctx context.Context) ([]domain.Node, error)
}
