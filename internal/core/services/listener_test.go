package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		state EventState
		want  Action
	}{
		// overlay off
		{"off: draft update ignored", EventState{TouchedDraft: true}, ActionNone},
		{"off: draft delete ignored", EventState{Disappear: true, TouchedDraft: true, HasCurrent: true}, ActionNone},
		{"off: published update", EventState{}, ActionUpsert},
		{"off: published delete", EventState{Disappear: true, HasCurrent: true}, ActionRemove},
		{"off: delete of unknown", EventState{Disappear: true}, ActionNone},

		// overlay on, disappear
		{"on: draft delete with published", EventState{OverlayDrafts: true, Disappear: true, TouchedDraft: true,
			HasCurrent: true, CurrentDraft: true, HasPublished: true}, ActionRestorePublished},
		{"on: draft delete without published", EventState{OverlayDrafts: true, Disappear: true, TouchedDraft: true,
			HasCurrent: true, CurrentDraft: true}, ActionRemove},
		{"on: draft delete of unknown", EventState{OverlayDrafts: true, Disappear: true, TouchedDraft: true}, ActionNone},
		{"on: published delete under draft", EventState{OverlayDrafts: true, Disappear: true,
			HasCurrent: true, CurrentDraft: true, HasPublished: true}, ActionEvictPublished},
		{"on: published delete under draft without cache", EventState{OverlayDrafts: true, Disappear: true,
			HasCurrent: true, CurrentDraft: true}, ActionNone},
		{"on: published delete", EventState{OverlayDrafts: true, Disappear: true, HasCurrent: true}, ActionRemoveAndEvict},
		{"on: published delete of unknown", EventState{OverlayDrafts: true, Disappear: true}, ActionNone},

		// overlay on, create/update
		{"on: draft update", EventState{OverlayDrafts: true, TouchedDraft: true}, ActionUpsertDraft},
		{"on: draft update over published", EventState{OverlayDrafts: true, TouchedDraft: true, HasCurrent: true},
			ActionUpsertDraft},
		{"on: published update under draft", EventState{OverlayDrafts: true, HasCurrent: true, CurrentDraft: true},
			ActionCachePublished},
		{"on: published update", EventState{OverlayDrafts: true, HasCurrent: true}, ActionUpsert},
		{"on: published create", EventState{OverlayDrafts: true}, ActionUpsert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state))
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "restore_published", ActionRestorePublished.String())
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "action(99)", Action(99).String())
}

// listenerTestStore wraps a memory store with assertion helpers.
type listenerTestStore struct {
	*memory.NodeStore
	t *testing.T
}

func (s *listenerTestStore) node(id string) *domain.Node {
	return requireNode(s.t, s.NodeStore, id)
}

func (s *listenerTestStore) absent(id string) {
	requireNoNode(s.t, s.NodeStore, id)
}

func (s *listenerTestStore) title(id string) any {
	return s.node(id).Document["title"]
}

func newListenerEnv(t *testing.T, overlayDrafts bool, initial ...domain.Document) (*Listener, *listenerTestStore) {
	t.Helper()
	store := newTestStore()
	session := newTestSession(overlayDrafts)
	m := NewMaterializer(store, testUID, overlayDrafts)
	for _, d := range initial {
		require.NoError(t, m.Upsert(context.Background(), d))
	}
	return NewListener(store, m, session), &listenerTestStore{NodeStore: store, t: t}
}

func event(id string, transition domain.Transition, result domain.Document) domain.ListenerEvent {
	return domain.ListenerEvent{DocumentID: id, Transition: transition, Result: result}
}

// Scenario: a draft edit shadows the published version, and publishing
// replaces it.
func TestListener_DraftThenPublish(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, true, doc("p1", "post", "title", "v1"))

	action, err := listener.Handle(ctx, event("drafts.p1", domain.TransitionAppear, doc("drafts.p1", "post", "title", "v2")))
	require.NoError(t, err)
	assert.Equal(t, ActionUpsertDraft, action)
	assert.Equal(t, "v2", store.title("p1"))

	published, ok := listener.session.Published("p1")
	require.True(t, ok)
	assert.Equal(t, "v1", published["title"])

	// Publishing deletes the draft and updates the published document.
	action, err = listener.Handle(ctx, event("p1", domain.TransitionUpdate, doc("p1", "post", "title", "v2")))
	require.NoError(t, err)
	assert.Equal(t, ActionCachePublished, action)
	assert.Equal(t, "v2", store.title("p1"))

	action, err = listener.Handle(ctx, event("drafts.p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRestorePublished, action)
	node := store.node("p1")
	assert.Equal(t, "p1", node.DocumentID())
	assert.Equal(t, "v2", node.Document["title"])

	_, ok = listener.session.Published("p1")
	assert.False(t, ok)
}

// Scenario: discarding a draft restores the published body.
func TestListener_DiscardDraftRestoresPublished(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, true, doc("p1", "post", "title", "v1"))

	_, err := listener.Handle(ctx, event("drafts.p1", domain.TransitionAppear, doc("drafts.p1", "post", "title", "edit")))
	require.NoError(t, err)

	action, err := listener.Handle(ctx, event("drafts.p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRestorePublished, action)
	assert.Equal(t, "v1", store.title("p1"))
}

// Scenario: deleting a draft that was never published removes the node.
func TestListener_DeleteUnpublishedDraft(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, true)

	action, err := listener.Handle(ctx, event("drafts.n1", domain.TransitionAppear, doc("drafts.n1", "post")))
	require.NoError(t, err)
	assert.Equal(t, ActionUpsertDraft, action)
	store.node("n1")

	action, err = listener.Handle(ctx, event("drafts.n1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRemove, action)
	store.absent("n1")
}

// Scenario: deleting a published document while a draft exists keeps the
// draft and forgets the published body.
func TestListener_DeletePublishedUnderDraft(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, true, doc("p1", "post", "title", "v1"))

	_, err := listener.Handle(ctx, event("drafts.p1", domain.TransitionUpdate, doc("drafts.p1", "post", "title", "draft")))
	require.NoError(t, err)

	action, err := listener.Handle(ctx, event("p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionEvictPublished, action)
	assert.Equal(t, "draft", store.title("p1"))

	_, ok := listener.session.Published("p1")
	assert.False(t, ok)

	// With nothing cached, discarding the draft removes the node.
	action, err = listener.Handle(ctx, event("drafts.p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRemove, action)
	store.absent("p1")
}

func TestListener_DeletePublished(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, true, doc("p1", "post"))

	action, err := listener.Handle(ctx, event("p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRemoveAndEvict, action)
	store.absent("p1")
}

func TestListener_OverlayOff(t *testing.T) {
	ctx := context.Background()
	listener, store := newListenerEnv(t, false, doc("p1", "post", "title", "v1"))

	action, err := listener.Handle(ctx, event("drafts.p1", domain.TransitionAppear, doc("drafts.p1", "post", "title", "draft")))
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, "v1", store.title("p1"))

	action, err = listener.Handle(ctx, event("p1", domain.TransitionUpdate, doc("p1", "post", "title", "v2")))
	require.NoError(t, err)
	assert.Equal(t, ActionUpsert, action)
	assert.Equal(t, "v2", store.title("p1"))

	action, err = listener.Handle(ctx, event("p1", domain.TransitionDisappear, nil))
	require.NoError(t, err)
	assert.Equal(t, ActionRemove, action)
	store.absent("p1")
}

func TestListener_InvalidEvents(t *testing.T) {
	ctx := context.Background()
	listener, _ := newListenerEnv(t, true)

	_, err := listener.Handle(ctx, event("", domain.TransitionUpdate, doc("p1", "post")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = listener.Handle(ctx, event("p1", domain.TransitionUpdate, nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListener_UnsupportedTypeIsError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore("post")
	m := NewMaterializer(store, testUID, true)
	listener := NewListener(store, m, newTestSession(true))

	action, err := listener.Handle(ctx, event("x1", domain.TransitionAppear, doc("x1", "mystery")))
	assert.Equal(t, ActionUpsert, action)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, 0, store.Len())
}
