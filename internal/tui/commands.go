package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/listing"
	"github.com/mmcdole/rfcpaths/internal/source"
)

// Command factories for async operations

const (
	listingTimeout = 30 * time.Second
	filterLimit    = 2000
)

// RefreshWindowCmd materializes the rows around the viewport
func RefreshWindowCmd(l *listing.Listing) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listingTimeout)
		defer cancel()

		win, err := l.Refresh(ctx)
		return WindowRefreshedMsg{Window: win, Err: err}
	}
}

// ToggleCmd expands or collapses an item
func ToggleCmd(l *listing.Listing, id domain.ItemID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listingTimeout)
		defer cancel()

		win, err := l.Toggle(ctx, id)
		return ToggledMsg{ID: id, Window: win, Err: err}
	}
}

// SetItemsCmd replaces the listing sequence
func SetItemsCmd(l *listing.Listing, updater func([]domain.ItemID) []domain.ItemID, resetExpanded bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listingTimeout)
		defer cancel()

		win, err := l.SetItems(ctx, updater, resetExpanded)
		return WindowRefreshedMsg{Window: win, Err: err}
	}
}

// ApplyFilterCmd shows the paths matching query, or the top level when the
// query is empty. Ancestors of matches are pulled in by the listing.
func ApplyFilterCmd(l *listing.Listing, index *source.Index, query string) tea.Cmd {
	tree := index.Tree()
	if query == "" {
		return SetItemsCmd(l, func([]domain.ItemID) []domain.ItemID {
			return tree.Roots()
		}, true)
	}
	return SetItemsCmd(l, func([]domain.ItemID) []domain.ItemID {
		return tree.Search(query, filterLimit)
	}, true)
}

// ReloadItemsCmd drops items that vanished from the reloaded tree and keeps
// the expanded state of the rest.
func ReloadItemsCmd(l *listing.Listing, tree *source.Tree) tea.Cmd {
	return SetItemsCmd(l, func(items []domain.ItemID) []domain.ItemID {
		kept := make([]domain.ItemID, 0, len(items))
		for _, id := range items {
			if tree.Contains(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			return tree.Roots()
		}
		return kept
	}, false)
}

// ListenResolutionsCmd waits for the next badge update
func ListenResolutionsCmd(ch <-chan ResolutionMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// ListenReloadsCmd waits for the next path source reload
func ListenReloadsCmd(ch <-chan []string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		paths, ok := <-ch
		if !ok {
			return nil
		}
		return PathsReloadedMsg{Paths: paths}
	}
}

// ScrollSettledCmd reports when scrolling has been quiet for delay
func ScrollSettledCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return scrollSettledMsg{seq: seq}
	})
}

// InspectCmd test-resolves a path with the method chain and comparison
func InspectCmd(r Resolver, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listingTimeout)
		defer cancel()

		outcome, err := r.Resolve(ctx, path, domain.ResolveOptions{Detailed: true, Compare: true})
		return InspectMsg{Path: path, Outcome: outcome, Err: err}
	}
}

// CopyURLCmd copies the full resolution URL of a path to the clipboard
func CopyURLCmd(r Resolver, path string) tea.Cmd {
	return func() tea.Msg {
		url, err := r.URL(path)
		if err != nil {
			return ErrMsg{Err: err, Context: "building URL"}
		}
		if err := clipboard.WriteAll(url); err != nil {
			return ErrMsg{Err: err, Context: "copying URL"}
		}
		return StatusMsg{Message: fmt.Sprintf("Copied %s", url)}
	}
}

// ClearStatusCmd clears the status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
