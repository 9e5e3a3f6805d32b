// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewCollections lists the collections holding documents.
	ViewCollections ViewType = iota
	// ViewDocuments lists the documents of one collection.
	ViewDocuments
	// ViewDocument shows one document.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewCollections:
		return "collections"
	case ViewDocuments:
		return "documents"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// CollectionsLoaded carries the collection names from the store.
type CollectionsLoaded struct {
	Names []string
	Err   error
}

// CollectionSelected signals a collection was opened.
type CollectionSelected struct {
	Name string
}

// DocumentsLoaded carries the nodes of one collection.
type DocumentsLoaded struct {
	Collection string
	Nodes      []domain.Node
	Err        error
}

// DocumentSelected signals a document was opened.
type DocumentSelected struct {
	ID string
}

// DocumentLoaded carries one document resolved to Depth.
type DocumentLoaded struct {
	ID    string
	Depth int
	Node  *domain.Node
	Err   error
}

// StatusTick asks for a fresh sync status.
type StatusTick struct{}

// StatusUpdated carries the sync status.
type StatusUpdated struct {
	Status *driving.SyncStatus
	Err    error
}

// SyncFinished is sent when the background sync returns.
type SyncFinished struct {
	Err error
}
