package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/views/collections"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// statusInterval is how often the sync status is polled.
const statusInterval = 500 * time.Millisecond

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	collectionsView *collections.View
	documentsView   *documents.View
	documentView    *document.View
	statusBar       *status.Bar
	help            help.Model

	// currentView tracks which view is active.
	currentView messages.ViewType

	// lastStatus is the last polled sync status.
	lastStatus driving.SyncStatus

	showHelp bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first window size has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keymap:          km,
		collectionsView: collections.NewView(s, km, ports.Document),
		documentsView:   documents.NewView(s, km, ports.Document),
		documentView:    document.NewView(s, km, ports.Document),
		statusBar:       status.NewBar(s),
		help:            help.New(),
		currentView:     messages.ViewCollections,
	}
	a.statusBar.SetHints(km.ListHelp())
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.collectionsView.SetContext(ctx)
	a.documentsView.SetContext(ctx)
	a.documentView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("lakesync"),
		a.collectionsView.Load(),
		a.statusBar.Init(),
	}
	if a.ports.Sync != nil {
		cmds = append(cmds, a.pollStatus())
	}
	return tea.Batch(cmds...)
}

// pollStatus reads the sync status immediately.
func (a *App) pollStatus() tea.Cmd {
	ctx, sync := a.ctx, a.ports.Sync
	return func() tea.Msg {
		s, err := sync.Status(ctx)
		return messages.StatusUpdated{Status: s, Err: err}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return messages.StatusTick{}
	})
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return a, tea.Quit
		case key.Matches(msg, a.keymap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keymap.Help):
			a.showHelp = !a.showHelp
			return a, nil
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.setView(msg.View)
		return a, nil

	case messages.CollectionsLoaded:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
		return a, cmd

	case messages.CollectionSelected:
		a.setView(messages.ViewDocuments)
		return a, a.documentsView.SetCollection(msg.Name)

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.setView(messages.ViewDocument)
		return a, a.documentView.SetDocument(msg.ID)

	case messages.DocumentLoaded:
		a.documentView, cmd = a.documentView.Update(msg)
		return a, cmd

	case messages.StatusTick:
		if a.ports.Sync == nil {
			return a, nil
		}
		return a, a.pollStatus()

	case messages.StatusUpdated:
		return a, tea.Batch(a.applyStatus(msg), scheduleTick())

	case messages.SyncFinished:
		a.statusBar.Finish(msg.Err)
		return a, a.reloadCurrent()
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	if cmd != nil {
		return a, cmd
	}
	return a, a.updateCurrent(msg)
}

// applyStatus records a polled status and reloads the visible list when
// the dataset has changed since the last poll.
func (a *App) applyStatus(msg messages.StatusUpdated) tea.Cmd {
	if msg.Err != nil || msg.Status == nil {
		return nil
	}
	a.statusBar.SetStatus(msg.Status)

	prev := a.lastStatus
	a.lastStatus = *msg.Status
	if prev.DocumentsProcessed == msg.Status.DocumentsProcessed &&
		prev.DraftsOverlaid == msg.Status.DraftsOverlaid &&
		prev.EventsApplied == msg.Status.EventsApplied {
		return nil
	}
	return a.reloadCurrent()
}

// reloadCurrent reloads whichever list is visible. The document view is
// left alone so scrolling is not reset under the reader.
func (a *App) reloadCurrent() tea.Cmd {
	switch a.currentView {
	case messages.ViewCollections:
		return a.collectionsView.Load()
	case messages.ViewDocuments:
		return a.documentsView.Load()
	default:
		return nil
	}
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	}
	return cmd
}

func (a *App) setView(view messages.ViewType) {
	a.currentView = view
	if view == messages.ViewDocument {
		a.statusBar.SetHints(a.keymap.DocumentHelp())
		return
	}
	a.statusBar.SetHints(a.keymap.ListHelp())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewDocument:
		body = a.documentView.View()
	default:
		body = a.collectionsView.View()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	if a.showHelp {
		b.WriteString(a.styles.Help.Render(a.help.FullHelpView(a.keymap.FullHelp())))
		b.WriteString("\n")
	}
	b.WriteString(a.statusBar.View())
	return b.String()
}

// SetDimensions sizes the app and all views. The bottom rows are kept for
// the status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width

	body := height - 3
	a.collectionsView.SetDimensions(width, body)
	a.documentsView.SetDimensions(width, body)
	a.documentView.SetDimensions(width, body)
	a.statusBar.SetWidth(width)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready reports whether the first window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// ShowingHelp reports whether the full key help is shown.
func (a *App) ShowingHelp() bool {
	return a.showHelp
}
