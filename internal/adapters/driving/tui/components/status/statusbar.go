// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// State is the sync phase shown in the bar.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateWatching State = "watching"
	StateSynced   State = "synced"
	StateError    State = "error"
)

// Bar displays sync progress and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	help    help.Model
	spinner spinner.Model
	hints   []key.Binding
	status  driving.SyncStatus
	state   State
	err     error
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Bar{
		styles:  s,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		state:   StateIdle,
		width:   80,
	}
}

// Init starts the spinner.
func (b *Bar) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update advances the spinner.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.help.ShortHelpView(b.hints)

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	counts := fmt.Sprintf("%d documents, %d drafts, %d events",
		b.status.DocumentsProcessed, b.status.DraftsOverlaid, b.status.EventsApplied)

	switch b.state {
	case StateLoading:
		return b.spinner.View() + " " + b.styles.Normal.Render("Loading... "+counts)
	case StateWatching:
		return b.styles.Success.Render("● Watching") + " " + b.styles.Muted.Render(counts)
	case StateSynced:
		return b.styles.Normal.Render("Synced " + counts)
	case StateError:
		if b.err != nil {
			return b.styles.Error.Render(fmt.Sprintf("Sync failed: %v", b.err))
		}
		return b.styles.Error.Render("Sync failed")
	default:
		return b.styles.Muted.Render("Not syncing")
	}
}

// SetStatus updates the counters and derives the state from them.
func (b *Bar) SetStatus(status *driving.SyncStatus) {
	if status == nil || b.state == StateError {
		return
	}
	b.status = *status
	switch {
	case status.Watching:
		b.state = StateWatching
	case status.Running:
		b.state = StateLoading
	case status.SessionID != "":
		b.state = StateSynced
	}
}

// Finish records the end of the sync.
func (b *Bar) Finish(err error) {
	if err != nil {
		b.state = StateError
		b.err = err
		return
	}
	b.state = StateSynced
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetHints sets the keybindings shown on the right.
func (b *Bar) SetHints(hints []key.Binding) {
	b.hints = hints
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
	b.help.Width = width / 2
}
