package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func TestNewSession(t *testing.T) {
	s := NewSession("session-1", true)

	assert.Equal(t, "session-1", s.ID())
	assert.True(t, s.OverlayDrafts())
	assert.Empty(t, s.Drafts())
	assert.Zero(t, s.PublishedCount())
}

func TestSession_Drafts(t *testing.T) {
	s := NewSession("s", true)
	s.AddDraft(domain.Document{"_id": "drafts.a"})
	s.AddDraft(domain.Document{"_id": "drafts.b"})

	got := s.Drafts()
	require.Len(t, got, 2)
	assert.Equal(t, "drafts.a", got[0].ID())
	assert.Equal(t, "drafts.b", got[1].ID())

	got[0] = nil
	assert.Equal(t, "drafts.a", s.Drafts()[0].ID(), "Drafts must return a copy")
}

func TestSession_Published(t *testing.T) {
	s := NewSession("s", true)
	s.SetPublished("a", domain.Document{"_id": "a", "rev": 1})

	doc, ok := s.Published("a")
	require.True(t, ok)
	assert.Equal(t, 1, doc["rev"])

	// Lookups by draft id resolve to the same logical entry.
	_, ok = s.Published("drafts.a")
	assert.True(t, ok)

	s.SetPublished("a", domain.Document{"_id": "a", "rev": 2})
	doc, _ = s.Published("a")
	assert.Equal(t, 2, doc["rev"])
	assert.Equal(t, 1, s.PublishedCount())

	s.EvictPublished("a")
	_, ok = s.Published("a")
	assert.False(t, ok)

	s.EvictPublished("missing")
	assert.Zero(t, s.PublishedCount())
}

func TestSession_PublishedIgnoredWithoutOverlay(t *testing.T) {
	s := NewSession("s", false)
	s.SetPublished("a", domain.Document{"_id": "a"})

	_, ok := s.Published("a")
	assert.False(t, ok)
	assert.Zero(t, s.PublishedCount())
}
