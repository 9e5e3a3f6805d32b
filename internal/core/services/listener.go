package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/drafts"
	"github.com/custodia-labs/lakesync/internal/core/overlay"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/logger"
	"github.com/custodia-labs/lakesync/internal/metrics"
)

// Action is the change a listener event makes to the materialized view.
type Action int

const (
	// ActionNone leaves everything untouched.
	ActionNone Action = iota

	// ActionUpsert materializes the event result.
	ActionUpsert

	// ActionUpsertDraft materializes a draft result, first caching the
	// current node's body when it is a published version.
	ActionUpsertDraft

	// ActionRemove deletes the current node.
	ActionRemove

	// ActionRemoveAndEvict deletes the current node and its published cache entry.
	ActionRemoveAndEvict

	// ActionRestorePublished materializes the cached published body and
	// clears the cache entry.
	ActionRestorePublished

	// ActionEvictPublished clears the published cache entry only.
	ActionEvictPublished

	// ActionCachePublished stores the event result in the published cache
	// only; the materialized draft stays visible.
	ActionCachePublished
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionUpsert:           "upsert",
	ActionUpsertDraft:      "upsert_draft",
	ActionRemove:           "remove",
	ActionRemoveAndEvict:   "remove_and_evict",
	ActionRestorePublished: "restore_published",
	ActionEvictPublished:   "evict_published",
	ActionCachePublished:   "cache_published",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// EventState is everything the listener decision depends on.
type EventState struct {
	OverlayDrafts bool
	Disappear     bool
	TouchedDraft  bool
	HasCurrent    bool
	CurrentDraft  bool
	HasPublished  bool
}

// Decide maps an event state to an action. Cases are checked in order and
// more than one may hold at once; anything unmatched is ActionNone.
func Decide(s EventState) Action {
	if !s.OverlayDrafts {
		switch {
		case s.TouchedDraft:
			return ActionNone
		case !s.Disappear:
			return ActionUpsert
		case s.HasCurrent:
			return ActionRemove
		default:
			return ActionNone
		}
	}

	if s.Disappear {
		switch {
		case s.TouchedDraft && s.HasPublished:
			return ActionRestorePublished
		case s.TouchedDraft && s.HasCurrent:
			return ActionRemove
		case !s.TouchedDraft && s.CurrentDraft && s.HasPublished:
			return ActionEvictPublished
		case !s.TouchedDraft && !s.CurrentDraft && s.HasCurrent:
			return ActionRemoveAndEvict
		default:
			return ActionNone
		}
	}

	switch {
	case s.TouchedDraft:
		return ActionUpsertDraft
	case s.CurrentDraft:
		return ActionCachePublished
	default:
		return ActionUpsert
	}
}

// Listener applies live change events to the node store.
type Listener struct {
	store        driven.NodeStore
	materializer *Materializer
	session      *overlay.Session
}

// NewListener creates a listener sharing session with the bulk load that
// preceded it.
func NewListener(store driven.NodeStore, materializer *Materializer, session *overlay.Session) *Listener {
	return &Listener{
		store:        store,
		materializer: materializer,
		session:      session,
	}
}

// Handle applies one event and returns the action taken.
func (l *Listener) Handle(ctx context.Context, event domain.ListenerEvent) (Action, error) {
	if event.DocumentID == "" {
		return ActionNone, fmt.Errorf("%w: event without document id", domain.ErrInvalidInput)
	}

	id := drafts.UnprefixID(event.DocumentID)
	current, err := l.store.GetNodeByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return ActionNone, fmt.Errorf("get current node %s: %w", id, err)
	}
	published, hasPublished := l.session.Published(id)

	state := EventState{
		OverlayDrafts: l.session.OverlayDrafts(),
		Disappear:     event.IsDisappear(),
		TouchedDraft:  drafts.IsDraftID(event.DocumentID),
		HasCurrent:    current != nil,
		CurrentDraft:  current != nil && drafts.IsDraftID(current.DocumentID()),
		HasPublished:  hasPublished,
	}
	action := Decide(state)
	metrics.ListenerActions.WithLabelValues(action.String()).Inc()
	logger.Debug("Event %s on %s: %s", event.Transition, event.DocumentID, action)

	if (action == ActionUpsert || action == ActionUpsertDraft || action == ActionCachePublished) &&
		event.Result == nil {
		return ActionNone, fmt.Errorf("%w: %s event for %s has no result",
			domain.ErrInvalidInput, event.Transition, event.DocumentID)
	}

	switch action {
	case ActionNone:

	case ActionUpsert:
		err = l.upsert(ctx, event.Result)

	case ActionUpsertDraft:
		if current != nil && !state.CurrentDraft {
			l.session.SetPublished(id, current.Document)
		}
		err = l.upsert(ctx, event.Result)

	case ActionRemove:
		err = l.materializer.Remove(ctx, current)

	case ActionRemoveAndEvict:
		err = l.materializer.Remove(ctx, current)
		l.session.EvictPublished(id)

	case ActionRestorePublished:
		err = l.upsert(ctx, published)
		if err == nil {
			l.session.EvictPublished(id)
		}

	case ActionEvictPublished:
		l.session.EvictPublished(id)

	case ActionCachePublished:
		l.session.SetPublished(id, event.Result)
	}

	if err != nil {
		return action, fmt.Errorf("%s %s: %w", action, event.DocumentID, err)
	}
	return action, nil
}

func (l *Listener) upsert(ctx context.Context, doc domain.Document) error {
	if err := l.materializer.Upsert(ctx, doc); err != nil {
		return err
	}
	metrics.DocumentsMaterialized.WithLabelValues(metrics.PhaseLive).Inc()
	return nil
}
