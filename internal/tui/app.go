package tui

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/listing"
	"github.com/mmcdole/rfcpaths/internal/source"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
	"github.com/mmcdole/rfcpaths/internal/tui/styles"
	"github.com/mmcdole/rfcpaths/internal/watcher"
)

const (
	DefaultScrollDebounce = 50 * time.Millisecond

	// Lines scrolled per mouse wheel notch
	wheelStep = 3

	statusTimeout = 3 * time.Second
)

// Resolver resolves paths and builds their full URL
type Resolver interface {
	domain.PathResolver
	URL(path string) (string, error)
}

// Options wires the model to the rest of the application
type Options struct {
	Listing  *listing.Listing
	Watcher  *watcher.Watcher
	Index    *source.Index
	Resolver Resolver
	// Prefix is prepended to a path for test resolutions and copied URLs
	Prefix         string
	ScrollDebounce time.Duration
	// Reloads delivers the new path list whenever the source changes
	Reloads <-chan []string
	Logger  *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready bool

	// Services
	listing  *listing.Listing
	watcher  *watcher.Watcher
	index    *source.Index
	resolver Resolver
	prefix   string
	logger   *slog.Logger

	// Resolution badges arrive on results from the watcher worker
	results     chan ResolutionMsg
	reloads     <-chan []string
	done        chan struct{}
	closeOnce   *sync.Once
	placeholder *ChannelPlaceholder

	// Data
	badges map[string]components.Badge
	window listing.Window

	// Dimensions
	Width      int
	Height     int
	listWidth  int
	listHeight int

	// UI components
	filter        components.FilterBar
	inspector     components.Inspector
	help          help.Model
	ShowInspector bool
	ShowHelp      bool

	// Scroll debounce
	scrollSeq      int
	scrollDebounce time.Duration

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.ScrollDebounce
	if debounce <= 0 {
		debounce = DefaultScrollDebounce
	}

	results := make(chan ResolutionMsg)
	done := make(chan struct{})

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return Model{
		listing:        opts.Listing,
		watcher:        opts.Watcher,
		index:          opts.Index,
		resolver:       opts.Resolver,
		prefix:         opts.Prefix,
		logger:         logger,
		results:        results,
		reloads:        opts.Reloads,
		done:           done,
		closeOnce:      &sync.Once{},
		placeholder:    NewChannelPlaceholder(results, done),
		badges:         make(map[string]components.Badge),
		filter:         components.NewFilterBar(),
		inspector:      components.NewInspector(),
		help:           h,
		scrollDebounce: debounce,
	}
}

// Close releases a resolution worker blocked on the model. Call it after
// the program has exited and before closing the watcher.
func (m Model) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		RefreshWindowCmd(m.listing),
		ListenResolutionsCmd(m.results),
		ListenReloadsCmd(m.reloads),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, RefreshWindowCmd(m.listing)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case WindowRefreshedMsg:
		if msg.Err != nil {
			m.logger.Warn("window refresh incomplete", "error", msg.Err)
		}
		m.applyWindow(msg.Window)
		return m, nil

	case ToggledMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, domain.ErrStale) {
				m.logger.Debug("discarded stale expand", "id", msg.ID)
				return m, nil
			}
			m.logger.Error("failed to toggle item", "id", msg.ID, "error", msg.Err)
			cmd := m.setStatus("Failed to expand "+msg.ID, true)
			return m, cmd
		}
		m.applyWindow(msg.Window)
		return m, nil

	case scrollSettledMsg:
		if msg.seq != m.scrollSeq {
			return m, nil
		}
		return m, RefreshWindowCmd(m.listing)

	case ResolutionMsg:
		m.badges[msg.Key] = msg.Badge
		return m, ListenResolutionsCmd(m.results)

	case InspectMsg:
		if msg.Err != nil {
			m.logger.Warn("test resolution failed", "path", msg.Path, "error", msg.Err)
		}
		m.inspector.SetResult(msg.Path, msg.Outcome, msg.Err)
		return m, nil

	case PathsReloadedMsg:
		tree := source.NewTree(msg.Paths)
		m.index.Store(tree)
		m.logger.Info("path source reloaded", "paths", tree.Len())

		reload := ReloadItemsCmd(m.listing, tree)
		if q := m.filter.Query(); m.filter.Active() && q != "" {
			reload = ApplyFilterCmd(m.listing, m.index, q)
		}
		status := m.setStatus("Reloaded paths", false)
		return m, tea.Batch(reload, ListenReloadsCmd(m.reloads), status)

	case StatusMsg:
		cmd := m.setStatus(msg.Message, msg.IsError)
		return m, cmd

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// applyWindow stores a materialized window and hands its rows to the watcher
func (m *Model) applyWindow(win listing.Window) {
	m.window = win
	m.ensureSelection()
	m.observe()
}

// ensureSelection moves the cursor to the first visible row when the
// selected item is no longer in the listing
func (m *Model) ensureSelection() {
	if m.listing.Index(m.listing.Selected()) >= 0 {
		return
	}
	offset, _ := m.listing.Viewport()
	for _, row := range m.window.Rows {
		if row.Top >= offset {
			m.listing.Select(row.ID)
			return
		}
	}
	if id, ok := m.listing.At(0); ok {
		m.listing.Select(id)
	}
}

// observe replaces the watched elements with the path rows of the current
// window and checks them against the viewport. Directory rows are not
// resolvable and are never watched.
func (m *Model) observe() {
	tree := m.index.Tree()
	ih := m.listing.ItemHeight()

	elements := make([]watcher.Element, 0, len(m.window.Rows))
	for _, row := range m.window.Rows {
		if !tree.IsPath(row.ID) {
			continue
		}
		elements = append(elements, watcher.Element{
			Key:         row.ID,
			Top:         row.Top,
			Height:      ih,
			Placeholder: m.placeholder,
		})
	}
	m.watcher.Watch(elements)
	m.watcher.Check(m.viewport())
}

func (m Model) viewport() watcher.Viewport {
	offset, height := m.listing.Viewport()
	return watcher.Viewport{Offset: offset, Height: height}
}

// scrollBy moves the viewport without moving the cursor
func (m *Model) scrollBy(delta int) tea.Cmd {
	offset, height := m.listing.Viewport()
	m.listing.SetViewport(offset+delta, height)
	return m.scrolled(offset)
}

// scrolled schedules a debounced window refresh if the offset moved away
// from before
func (m *Model) scrolled(before int) tea.Cmd {
	if offset, _ := m.listing.Viewport(); offset == before {
		return nil
	}
	m.scrollSeq++
	return ScrollSettledCmd(m.scrollSeq, m.scrollDebounce)
}

// handleMouseMsg scrolls on the wheel and selects and toggles on click
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		cmd := m.scrollBy(-wheelStep)
		return m, cmd
	case tea.MouseButtonWheelDown:
		cmd := m.scrollBy(wheelStep)
		return m, cmd
	case tea.MouseButtonLeft:
		if msg.X >= m.listWidth || msg.Y >= m.listHeight {
			return m, nil
		}
		offset, _ := m.listing.Viewport()
		id, ok := m.listing.At((offset + msg.Y) / m.listing.ItemHeight())
		if !ok {
			return m, nil
		}
		m.listing.Select(id)
		return m, ToggleCmd(m.listing, id)
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}
