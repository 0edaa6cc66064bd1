package listing

import (
	"context"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// Provider bundles the collaborators a listing calls out to. Any field may be
// nil: without Label the raw ID is shown, and without IsExpandable the
// listing is flat.
type Provider struct {
	Label        func(ctx context.Context, id domain.ItemID) (string, error)
	Children     func(ctx context.Context, id domain.ItemID) ([]domain.ItemID, error)
	IsExpandable func(ctx context.Context, id domain.ItemID) (bool, error)
}

// FromItemProvider adapts a domain.ItemProvider
func FromItemProvider(p domain.ItemProvider) Provider {
	if p == nil {
		return Provider{}
	}
	return Provider{
		Label:        p.Label,
		Children:     p.Children,
		IsExpandable: p.IsExpandable,
	}
}

func (p Provider) hierarchical() bool {
	return p.IsExpandable != nil
}
