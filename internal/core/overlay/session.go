// Package overlay holds the per-sync state behind the draft overlay.
package overlay

import (
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/drafts"
)

// Ensure Session can collect the draft partition.
var _ drafts.Sink = (*Session)(nil)

// Session owns the drafts collected during a bulk load and the last known
// published body of every logical document. One Session lives for one sync,
// shared by the bulk pipeline and the live listener. It is not safe for
// concurrent use; the bulk load and the listener run one after the other
// on the sync goroutine.
type Session struct {
	id            string
	overlayDrafts bool
	drafts        []domain.Document
	published     map[string]domain.Document
}

// NewSession creates an empty session.
func NewSession(id string, overlayDrafts bool) *Session {
	return &Session{
		id:            id,
		overlayDrafts: overlayDrafts,
		published:     make(map[string]domain.Document),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// OverlayDrafts reports whether drafts take precedence over published documents.
func (s *Session) OverlayDrafts() bool {
	return s.overlayDrafts
}

// AddDraft appends a draft to the pending overlay.
func (s *Session) AddDraft(doc domain.Document) {
	s.drafts = append(s.drafts, doc)
}

// Drafts returns the pending drafts in the order they were collected.
func (s *Session) Drafts() []domain.Document {
	out := make([]domain.Document, len(s.drafts))
	copy(out, s.drafts)
	return out
}

// SetPublished caches the published body for a logical id.
// Ignored when overlay mode is off.
func (s *Session) SetPublished(id string, doc domain.Document) {
	if !s.overlayDrafts {
		return
	}
	s.published[drafts.UnprefixID(id)] = doc
}

// Published returns the cached published body for a logical id.
func (s *Session) Published(id string) (domain.Document, bool) {
	doc, ok := s.published[drafts.UnprefixID(id)]
	return doc, ok
}

// EvictPublished forgets the published body for a logical id.
func (s *Session) EvictPublished(id string) {
	delete(s.published, drafts.UnprefixID(id))
}

// PublishedCount returns the number of cached published bodies.
func (s *Session) PublishedCount() int {
	return len(s.published)
}
