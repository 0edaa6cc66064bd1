package listing

import (
	"context"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// Row is one materialized item
type Row struct {
	ID         domain.ItemID
	Index      int
	Top        int
	Depth      int
	Expanded   bool
	Expandable bool
	Label      string
	Selected   bool
}

// Window is the materialized slice of the sequence, rows First..Last
// inclusive. Top is the offset of the first row.
type Window struct {
	First  int
	Last   int
	Top    int
	Extent int
	Rows   []Row
}

// Len returns the number of rows in the window
func (w Window) Len() int {
	return len(w.Rows)
}

// VisibleRange returns the inclusive index range to materialize for a
// viewport. The range is empty (last < first) when count is zero or the
// offset lies past the end.
func VisibleRange(offset, height, itemHeight, count, before, after int) (first, last int) {
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	first = max(0, offset/itemHeight-before)
	last = first + (height+itemHeight-1)/itemHeight + 1 + after
	if last >= count {
		last = count - 1
	}
	return first, last
}

// SetViewport records the scroll offset and visible height. The offset is
// clamped to the extent of the sequence.
func (l *Listing) SetViewport(offset, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.height = max(height, 0)
	l.offset = l.clampOffset(offset)
}

// Viewport returns the current offset and height
func (l *Listing) Viewport() (offset, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset, l.height
}

// ScrollTo moves the viewport the least amount needed to show id
func (l *Listing) ScrollTo(id domain.ItemID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.items, id)
	if idx < 0 {
		return false
	}
	top := idx * l.opts.ItemHeight
	bottom := top + l.opts.ItemHeight
	switch {
	case top < l.offset:
		l.offset = top
	case bottom > l.offset+l.height:
		l.offset = l.clampOffset(bottom - l.height)
	}
	return true
}

// Select marks id as the selected item
func (l *Listing) Select(id domain.ItemID) {
	l.mu.Lock()
	l.selected = id
	l.mu.Unlock()
}

// Selected returns the selected item, if any
func (l *Listing) Selected() domain.ItemID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected
}

// Window returns the last materialized window
func (l *Listing) Window() Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.window
}

// Refresh materializes the rows around the viewport and reports them to the
// callbacks. When refreshes overlap, the one started last wins.
func (l *Listing) Refresh(ctx context.Context) (Window, error) {
	l.mu.Lock()
	l.refreshSeq++
	seq := l.refreshSeq
	ih := l.opts.ItemHeight
	first, last := VisibleRange(l.offset, l.height, ih, len(l.items),
		l.opts.MarginBefore, l.opts.MarginAfter)

	win := Window{
		First:  first,
		Last:   last,
		Top:    first * ih,
		Extent: len(l.items) * ih,
	}
	for i := first; i <= last; i++ {
		id := l.items[i]
		win.Rows = append(win.Rows, Row{
			ID:       id,
			Index:    i,
			Top:      i * ih,
			Depth:    domain.Depth(id),
			Expanded: l.expanded[id],
			Label:    id,
			Selected: id == l.selected,
		})
	}
	l.mu.Unlock()

	if err := l.decorate(ctx, win.Rows); err != nil {
		return l.Window(), err
	}

	l.mu.Lock()
	if seq < l.windowSeq {
		newer := l.window
		l.mu.Unlock()
		return newer, nil
	}
	l.windowSeq = seq
	l.window = win
	l.mu.Unlock()

	if l.opts.OnSelect != nil {
		for _, row := range win.Rows {
			if row.Selected {
				l.opts.OnSelect(row)
			}
		}
	}
	if l.opts.OnWindowChange != nil {
		l.opts.OnWindowChange(win)
	}

	return win, nil
}

// decorate fills labels and expandability from the provider. Provider
// failures fall back to the raw ID and a leaf icon.
func (l *Listing) decorate(ctx context.Context, rows []Row) error {
	provider := l.opts.Provider
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := &rows[i]

		if provider.Label != nil {
			label, err := provider.Label(ctx, row.ID)
			if err != nil {
				l.logger.Warn("failed to get item label", "id", row.ID, "error", err)
			} else if label != "" {
				row.Label = label
			}
		}

		if provider.IsExpandable != nil {
			ok, err := provider.IsExpandable(ctx, row.ID)
			if err != nil {
				l.logger.Warn("failed to check expandability", "id", row.ID, "error", err)
			}
			row.Expandable = ok && err == nil
		}
	}
	return nil
}

// clampOffset keeps offset within the scrollable extent. Must be called
// with l.mu held.
func (l *Listing) clampOffset(offset int) int {
	limit := max(len(l.items)*l.opts.ItemHeight-l.height, 0)
	return min(max(offset, 0), limit)
}
