package tui

import (
	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
)

// ChannelPlaceholder adapts watcher.Placeholder to a channel for Bubble Tea.
// Sends block until the model reads them or done is closed.
type ChannelPlaceholder struct {
	ch   chan<- ResolutionMsg
	done <-chan struct{}
}

// NewChannelPlaceholder creates a new channel-based placeholder
func NewChannelPlaceholder(ch chan<- ResolutionMsg, done <-chan struct{}) *ChannelPlaceholder {
	return &ChannelPlaceholder{ch: ch, done: done}
}

func (p *ChannelPlaceholder) ShowPending(key string) {
	p.send(ResolutionMsg{Key: key, Badge: components.PendingBadge()})
}

func (p *ChannelPlaceholder) ShowOutcome(key string, outcome *domain.ResolutionOutcome, fromCache bool) {
	p.send(ResolutionMsg{Key: key, Badge: components.OutcomeBadge(outcome, fromCache)})
}

func (p *ChannelPlaceholder) ShowError(key string, err error) {
	p.send(ResolutionMsg{Key: key, Badge: components.ErrorBadge(err)})
}

func (p *ChannelPlaceholder) send(msg ResolutionMsg) {
	select {
	case p.ch <- msg:
	case <-p.done:
	}
}
