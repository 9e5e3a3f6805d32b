package domain

// Transition describes what happened to a document in a listener event.
type Transition string

const (
	// TransitionAppear indicates a document started matching the listen query.
	TransitionAppear Transition = "appear"

	// TransitionUpdate indicates a matching document changed.
	TransitionUpdate Transition = "update"

	// TransitionDisappear indicates a document was deleted or stopped matching.
	TransitionDisappear Transition = "disappear"
)

// ListenerEvent is a single live change delivered by the listen feed.
type ListenerEvent struct {
	// DocumentID is the raw id of the touched document, draft prefix included.
	DocumentID string `json:"documentId"`

	// Transition is the kind of change. Anything other than disappear is
	// treated as a create or update.
	Transition Transition `json:"transition"`

	// Result is the document body after the change. Absent for disappear.
	Result Document `json:"result,omitempty"`

	// EventID is the upstream event identifier, used for diagnostics only.
	EventID string `json:"eventId,omitempty"`
}

// IsDisappear reports whether the event removes its document.
func (e ListenerEvent) IsDisappear() bool {
	return e.Transition == TransitionDisappear
}
