// Package document provides the single document view for the TUI.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// maxDepth is the deepest reference resolution offered.
const maxDepth = 10

// View shows one document as JSON with references resolved to a
// chosen depth.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	documents driving.DocumentService

	viewport viewport.Model
	id       string
	depth    int
	node     *domain.Node
	err      error
}

// NewView creates a new document view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documents driving.DocumentService) *View {
	return &View{
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		documents: documents,
		viewport:  viewport.New(80, 20),
	}
}

// SetContext sets the context service calls run under.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetDocument switches to a document and loads it unresolved.
func (v *View) SetDocument(id string) tea.Cmd {
	v.id = id
	v.depth = 0
	v.node = nil
	v.err = nil
	v.viewport.SetContent("")
	return v.Load()
}

// Load returns a command that reads the document at the current depth.
func (v *View) Load() tea.Cmd {
	if v.id == "" {
		return nil
	}
	ctx, documents, id, depth := v.ctx, v.documents, v.id, v.depth
	return func() tea.Msg {
		node, err := documents.Get(ctx, id, depth)
		return messages.DocumentLoaded{ID: id, Depth: depth, Node: node, Err: err}
	}
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.DocumentLoaded:
		if msg.ID != v.id || msg.Depth != v.depth {
			return v, nil
		}
		v.err = msg.Err
		if msg.Err == nil {
			v.node = msg.Node
			v.viewport.SetContent(render(msg.Node))
			v.viewport.GotoTop()
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
		case key.Matches(msg, v.keymap.Deeper):
			if v.depth < maxDepth {
				v.depth++
				return v, v.Load()
			}
			return v, nil
		case key.Matches(msg, v.keymap.Shallower):
			if v.depth > 0 {
				v.depth--
				return v, v.Load()
			}
			return v, nil
		case key.Matches(msg, v.keymap.Refresh):
			return v, v.Load()
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func render(node *domain.Node) string {
	if node == nil {
		return ""
	}
	data, err := json.MarshalIndent(node.Document, "", "  ")
	if err != nil {
		return fmt.Sprintf("cannot display document: %v", err)
	}
	return string(data)
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.id))
	if v.node != nil && v.node.DocumentID() != v.id {
		b.WriteString(" " + v.styles.Draft.Render(v.node.DocumentID()))
	}
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  resolve depth %d", v.depth)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		return b.String()
	}
	b.WriteString(v.viewport.View())
	return b.String()
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height - 2
}

// Depth returns the current resolve depth.
func (v *View) Depth() int {
	return v.depth
}

// Node returns the loaded document.
func (v *View) Node() *domain.Node {
	return v.node
}
