// Package documents provides the document list view for one collection.
package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// View lists the documents of one collection.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	documents driving.DocumentService

	collection string
	list       *list.List
	nodes      []domain.Node
	err        error
	loading    bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documents driving.DocumentService) *View {
	return &View{
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		documents: documents,
		list:      list.New(s, km, "No documents"),
	}
}

// SetContext sets the context service calls run under.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetCollection switches to a collection and loads its documents.
func (v *View) SetCollection(name string) tea.Cmd {
	v.collection = name
	v.nodes = nil
	v.err = nil
	v.list.Reset()
	return v.Load()
}

// Load returns a command that reads the current collection.
func (v *View) Load() tea.Cmd {
	if v.collection == "" {
		return nil
	}
	v.loading = true
	ctx, documents, name := v.ctx, v.documents, v.collection
	return func() tea.Msg {
		nodes, err := documents.ListCollection(ctx, name)
		return messages.DocumentsLoaded{Collection: name, Nodes: nodes, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.DocumentsLoaded:
		if msg.Collection != v.collection {
			// Stale load for a collection no longer shown.
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setNodes(msg.Nodes)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewCollections} }
		case key.Matches(msg, v.keymap.Select):
			item := v.list.SelectedItem()
			if item == nil {
				return v, nil
			}
			id := item.Title
			return v, func() tea.Msg { return messages.DocumentSelected{ID: id} }
		case key.Matches(msg, v.keymap.Refresh):
			return v, v.Load()
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *View) setNodes(nodes []domain.Node) {
	v.nodes = nodes
	items := make([]list.Item, len(nodes))
	for i := range nodes {
		items[i] = list.Item{
			Title:  nodes[i].ID,
			Detail: label(nodes[i].Document),
			Draft:  nodes[i].DocumentID() != nodes[i].ID,
		}
	}
	v.list.SetItems(items)
}

// label picks a human readable field of doc.
func label(doc domain.Document) string {
	for _, field := range []string{"title", "name"} {
		if s, ok := doc[field].(string); ok {
			return s
		}
	}
	return ""
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.collection))
	if len(v.nodes) > 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" (%d)", len(v.nodes))))
	}
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	case v.loading && len(v.nodes) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}
	return b.String()
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.list.SetDimensions(width, height-2)
}

// Collection returns the collection shown.
func (v *View) Collection() string {
	return v.collection
}

// Nodes returns the loaded documents.
func (v *View) Nodes() []domain.Node {
	return v.nodes
}
