package components

import (
	"errors"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/tui/styles"
)

// BadgeState is the resolution state shown next to a path
type BadgeState int

const (
	BadgeNone BadgeState = iota
	BadgePending
	BadgeSuccess
	BadgeWarning
	BadgeError
)

// Badge is the rendered resolution state of one path
type Badge struct {
	State     BadgeState
	Label     string
	FromCache bool
}

// OutcomeBadge classifies a resolution outcome
func OutcomeBadge(o *domain.ResolutionOutcome, fromCache bool) Badge {
	if o == nil {
		return Badge{State: BadgeError, Label: "N/A"}
	}
	b := Badge{Label: o.Label(), FromCache: fromCache}
	switch o.Status() {
	case domain.ResolutionSuccess:
		b.State = BadgeSuccess
	case domain.ResolutionWarning:
		b.State = BadgeWarning
	default:
		b.State = BadgeError
	}
	return b
}

// ErrorBadge describes a failed resolution
func ErrorBadge(err error) Badge {
	label := "error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		label = "not found"
	case errors.Is(err, domain.ErrServerOffline):
		label = "offline"
	}
	return Badge{State: BadgeError, Label: label}
}

// PendingBadge is shown while a request is in flight
func PendingBadge() Badge {
	return Badge{State: BadgePending, Label: "…"}
}

// View renders the badge. BadgeNone renders as blank space of the same width.
func (b Badge) View() string {
	label := styles.Truncate(b.Label, styles.BadgeWidth-2)
	switch b.State {
	case BadgePending:
		return styles.PendingBadgeStyle.Render(label)
	case BadgeSuccess:
		return styles.SuccessBadgeStyle.Render(label)
	case BadgeWarning:
		return styles.WarningBadgeStyle.Render(label)
	case BadgeError:
		return styles.ErrorBadgeStyle.Render(label)
	default:
		return styles.Pad("", styles.BadgeWidth)
	}
}
