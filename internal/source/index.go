package source

import (
	"context"
	"sync/atomic"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// Index holds the current Tree and lets a reload swap it while listings keep
// using the Index as their provider.
type Index struct {
	tree atomic.Pointer[Tree]
}

// NewIndex creates an index serving t
func NewIndex(t *Tree) *Index {
	idx := &Index{}
	idx.tree.Store(t)
	return idx
}

// Tree returns the tree currently served
func (i *Index) Tree() *Tree {
	return i.tree.Load()
}

// Store replaces the served tree
func (i *Index) Store(t *Tree) {
	i.tree.Store(t)
}

func (i *Index) Label(ctx context.Context, id domain.ItemID) (string, error) {
	return i.Tree().Label(ctx, id)
}

func (i *Index) Children(ctx context.Context, id domain.ItemID) ([]domain.ItemID, error) {
	return i.Tree().Children(ctx, id)
}

func (i *Index) IsExpandable(ctx context.Context, id domain.ItemID) (bool, error) {
	return i.Tree().IsExpandable(ctx, id)
}

var _ domain.ItemProvider = (*Index)(nil)
