package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// Toggle collapses id if it is expanded, otherwise expands it when it is
// expandable. Toggling an item that is still expanding abandons the expand.
// The returned error is domain.ErrStale when the expand was superseded.
func (l *Listing) Toggle(ctx context.Context, id domain.ItemID) (Window, error) {
	l.mu.Lock()
	switch {
	case l.expanded[id]:
		l.collapse(id)
		l.offset = l.clampOffset(l.offset)
		l.mu.Unlock()
		return l.Refresh(ctx)

	case l.pending[id] != 0:
		delete(l.pending, id)
		l.mu.Unlock()
		l.logger.Debug("expand abandoned", "id", id)
		return l.Window(), nil
	}
	l.mu.Unlock()

	if !l.opts.Provider.hierarchical() {
		return l.Window(), nil
	}

	if err := l.expand(ctx, id); err != nil {
		return l.Window(), err
	}
	return l.Refresh(ctx)
}

// collapse drops id from the expanded set and removes its descendants from
// the sequence. Their own expanded flags are kept so a later expand restores
// them. Must be called with l.mu held.
func (l *Listing) collapse(id domain.ItemID) {
	delete(l.expanded, id)
	delete(l.pending, id)

	for pid := range l.pending {
		if domain.IsDescendant(pid, id) {
			delete(l.pending, pid)
		}
	}
	l.items = slices.DeleteFunc(l.items, func(item domain.ItemID) bool {
		return domain.IsDescendant(item, id)
	})
}

// expand fetches the children of id and splices them in after it. A single
// child is expanded in turn; with several, the ones already in the expanded
// set are re-expanded.
func (l *Listing) expand(ctx context.Context, id domain.ItemID) error {
	l.mu.Lock()
	l.nextToken++
	token := l.nextToken
	l.pending[id] = token
	l.mu.Unlock()

	children, err := l.fetchChildren(ctx, id)

	l.mu.Lock()
	if l.pending[id] != token {
		l.mu.Unlock()
		l.logger.Debug("discarding stale children", "id", id)
		return fmt.Errorf("expand %q: %w", id, domain.ErrStale)
	}
	delete(l.pending, id)

	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("expand %q: %w", id, err)
	}

	idx := indexOf(l.items, id)
	if idx < 0 {
		l.mu.Unlock()
		l.logger.Debug("expanded item left the sequence", "id", id)
		return fmt.Errorf("expand %q: %w", id, domain.ErrStale)
	}
	if children == nil {
		// Not expandable
		l.mu.Unlock()
		return nil
	}

	l.expanded[id] = true
	spliced := make([]domain.ItemID, 0, len(l.items)+len(children))
	spliced = append(spliced, l.items[:idx+1]...)
	spliced = append(spliced, children...)
	spliced = append(spliced, l.items[idx+1:]...)
	l.items = l.normalize(spliced)

	var again []domain.ItemID
	if len(children) == 1 {
		again = children
	} else {
		for _, child := range children {
			if l.expanded[child] {
				again = append(again, child)
			}
		}
	}
	l.mu.Unlock()

	var errs []error
	for _, child := range again {
		err := l.expand(ctx, child)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrStale):
			// Superseded by a later toggle of child; id itself is expanded
			l.logger.Debug("child expand superseded", "id", child)
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fetchChildren returns nil children when id cannot be expanded
func (l *Listing) fetchChildren(ctx context.Context, id domain.ItemID) ([]domain.ItemID, error) {
	provider := l.opts.Provider
	if provider.IsExpandable == nil || provider.Children == nil {
		return nil, nil
	}

	ok, err := provider.IsExpandable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	children, err := provider.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []domain.ItemID{}
	}
	return children, nil
}
