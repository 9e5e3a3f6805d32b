// Package collections provides the collection list view for the TUI.
package collections

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
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// View lists the collections holding documents.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	documents driving.DocumentService

	list    *list.List
	names   []string
	err     error
	loading bool
}

// NewView creates a new collections view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documents driving.DocumentService) *View {
	return &View{
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		documents: documents,
		list:      list.New(s, km, "No documents synchronised yet"),
	}
}

// SetContext sets the context service calls run under.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Load returns a command that reads the collection names.
func (v *View) Load() tea.Cmd {
	v.loading = true
	ctx, documents := v.ctx, v.documents
	return func() tea.Msg {
		names, err := documents.Types(ctx)
		return messages.CollectionsLoaded{Names: names, Err: err}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.CollectionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.names = msg.Names
			items := make([]list.Item, len(msg.Names))
			for i, name := range msg.Names {
				items[i] = list.Item{Title: name}
			}
			v.list.SetItems(items)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Select):
			item := v.list.SelectedItem()
			if item == nil {
				return v, nil
			}
			name := item.Title
			return v, func() tea.Msg { return messages.CollectionSelected{Name: name} }
		case key.Matches(msg, v.keymap.Refresh):
			return v, v.Load()
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the collections view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collections"))
	if len(v.names) > 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" (%d)", len(v.names))))
	}
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	case v.loading && len(v.names) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}
	return b.String()
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	// Title and blank line.
	v.list.SetDimensions(width, height-2)
}

// Names returns the loaded collection names.
func (v *View) Names() []string {
	return v.names
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
