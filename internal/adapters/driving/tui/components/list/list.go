// Package list provides list display components for the TUI.
package list

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/styles"
)

// Item is one row of a List.
type Item struct {
	Title  string
	Detail string

	// Draft marks a row showing an unpublished version.
	Draft bool
}

// List displays items in a navigable, scrolling list.
type List struct {
	items    []Item
	selected int
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	empty    string
	width    int
	height   int
}

// New creates a list that shows empty when it has no items.
func New(s *styles.Styles, km *keymap.KeyMap, empty string) *List {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &List{
		styles: s,
		keymap: km,
		empty:  empty,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation keys.
func (l *List) Update(msg tea.Msg) (*List, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, l.keymap.Up):
			l.MoveUp()
		case key.Matches(msg, l.keymap.Down):
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of items.
func (l *List) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render(l.empty)
	}

	visible := l.height
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i))
	}
	return strings.Join(lines, "\n")
}

func (l *List) renderItem(index int) string {
	item := l.items[index]

	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := truncate(item.Title, l.width/2)
	if index == l.selected {
		title = l.styles.Selected.Render(indicator + title)
	} else {
		title = l.styles.Normal.Render(indicator + title)
	}

	line := title
	if item.Draft {
		line += " " + l.styles.Draft.Render("draft")
	}
	if item.Detail != "" {
		line += "  " + l.styles.Muted.Render(truncate(item.Detail, l.width/2-8))
	}
	return line
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems replaces the items, keeping the cursor in range.
func (l *List) SetItems(items []Item) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = len(items) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Reset clears the items and moves the cursor to the top.
func (l *List) Reset() {
	l.items = nil
	l.selected = 0
}

// Selected returns the cursor index.
func (l *List) Selected() int {
	return l.selected
}

// SelectedItem returns the item under the cursor, or nil if empty.
func (l *List) SelectedItem() *Item {
	if len(l.items) == 0 {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves the cursor up.
func (l *List) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *List) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the width and the number of visible rows.
func (l *List) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *List) Count() int {
	return len(l.items)
}
