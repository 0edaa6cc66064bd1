// Package listing keeps a long, optionally hierarchical sequence of item IDs
// and materializes only the window of rows around the viewport.
package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

const (
	DefaultItemHeight = 1
	DefaultMargin     = 10
)

// ItemState is the expand state of one item
type ItemState int

const (
	Collapsed ItemState = iota
	Expanding
	Expanded
)

func (s ItemState) String() string {
	switch s {
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	default:
		return "collapsed"
	}
}

// Options configures a Listing
type Options struct {
	ItemHeight   int
	MarginBefore int
	MarginAfter  int
	// Selected is the initially selected item; the viewport starts on it
	Selected domain.ItemID
	Provider Provider

	// OnSelect is called for the selected row whenever it is materialized
	OnSelect func(Row)
	// OnWindowChange is called after every window refresh
	OnWindowChange func(Window)

	Logger *slog.Logger
}

// Listing holds the item sequence, the expanded set and the current window.
// All methods are safe for concurrent use; providers are called without the
// lock held.
type Listing struct {
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	items     []domain.ItemID
	expanded  map[domain.ItemID]bool
	// pending maps an item being expanded to its expand token
	pending   map[domain.ItemID]uint64
	nextToken uint64
	epoch     uint64
	selected  domain.ItemID
	offset    int
	height    int

	refreshSeq uint64
	windowSeq  uint64
	window     Window
}

// New creates a listing showing initial. Ancestors of nested IDs are
// inserted and expanded. Call Refresh to materialize the first window.
func New(initial []domain.ItemID, opts Options) *Listing {
	if opts.ItemHeight <= 0 {
		opts.ItemHeight = DefaultItemHeight
	}
	opts.MarginBefore = max(opts.MarginBefore, 0)
	opts.MarginAfter = max(opts.MarginAfter, 0)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &Listing{
		opts:     opts,
		logger:   logger,
		expanded: make(map[domain.ItemID]bool),
		pending:  make(map[domain.ItemID]uint64),
		selected: opts.Selected,
		window:   Window{Last: -1},
	}
	l.items = l.normalize(initial)

	if opts.Selected != "" {
		if idx := indexOf(l.items, opts.Selected); idx >= 0 {
			l.offset = idx * opts.ItemHeight
		}
	}

	return l
}

// SetItems replaces the sequence with updater applied to a copy of the
// current one. With resetExpanded the expanded set starts empty. Expands
// still in flight are abandoned.
func (l *Listing) SetItems(ctx context.Context, updater func([]domain.ItemID) []domain.ItemID, resetExpanded bool) (Window, error) {
	l.mu.Lock()
	candidate := updater(append([]domain.ItemID(nil), l.items...))
	if resetExpanded {
		l.expanded = make(map[domain.ItemID]bool)
	}
	l.epoch++
	clear(l.pending)
	l.items = l.normalize(candidate)
	l.offset = l.clampOffset(l.offset)
	count := len(l.items)
	l.mu.Unlock()

	l.logger.Debug("listing items updated", "count", count, "reset_expanded", resetExpanded)

	return l.Refresh(ctx)
}

// normalize deduplicates candidate and, when the listing is hierarchical,
// inserts every missing ancestor right before its first descendant and marks
// it expanded. Must be called with l.mu held (or before l is shared).
func (l *Listing) normalize(candidate []domain.ItemID) []domain.ItemID {
	seen := make(map[domain.ItemID]struct{}, len(candidate))
	deduped := make([]domain.ItemID, 0, len(candidate))
	for _, id := range candidate {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	if !l.opts.Provider.hierarchical() {
		return deduped
	}

	out := make([]domain.ItemID, 0, len(deduped))
	for _, id := range deduped {
		for _, anc := range domain.Ancestors(id) {
			l.expanded[anc] = true
			if _, ok := seen[anc]; !ok {
				seen[anc] = struct{}{}
				out = append(out, anc)
			}
		}
		out = append(out, id)
	}
	return out
}

// State returns the expand state of id
func (l *Listing) State(id domain.ItemID) ItemState {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.pending[id] != 0:
		return Expanding
	case l.expanded[id]:
		return Expanded
	default:
		return Collapsed
	}
}

// IsExpanded reports whether id is in the expanded set
func (l *Listing) IsExpanded(id domain.ItemID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expanded[id]
}

// ItemIDs returns a copy of the current sequence
func (l *Listing) ItemIDs() []domain.ItemID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ItemID(nil), l.items...)
}

// Len returns the number of items in the sequence
func (l *Listing) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// At returns the item at index i
func (l *Listing) At(i int) (domain.ItemID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return "", false
	}
	return l.items[i], true
}

// Index returns the position of id, or -1
func (l *Listing) Index(id domain.ItemID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return indexOf(l.items, id)
}

// Extent is the height of the whole sequence
func (l *Listing) Extent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) * l.opts.ItemHeight
}

// ItemHeight returns the uniform row height
func (l *Listing) ItemHeight() int {
	return l.opts.ItemHeight
}

func indexOf(items []domain.ItemID, id domain.ItemID) int {
	for i, item := range items {
		if item == id {
			return i
		}
	}
	return -1
}
