package tui

import (
	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/listing"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// WindowRefreshedMsg carries a freshly materialized listing window
type WindowRefreshedMsg struct {
	Window listing.Window
	Err    error
}

// ToggledMsg signals that an item was expanded or collapsed
type ToggledMsg struct {
	ID     domain.ItemID
	Window listing.Window
	Err    error
}

// ResolutionMsg updates the badge of one path
type ResolutionMsg struct {
	Key   string
	Badge components.Badge
}

// InspectMsg carries the result of a test resolution
type InspectMsg struct {
	Path    string
	Outcome *domain.ResolutionOutcome
	Err     error
}

// PathsReloadedMsg signals that the path source changed on disk
type PathsReloadedMsg struct {
	Paths []string
}

// scrollSettledMsg fires once scrolling has been quiet for the debounce delay
type scrollSettledMsg struct {
	seq int
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
