package source

import (
	"context"
	"slices"
	"strings"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// Tree indexes a flat path list by directory. Every ancestor of a path is a
// node; nodes with children are expandable. A Tree is immutable and safe for
// concurrent use.
type Tree struct {
	paths    []string
	roots    []domain.ItemID
	children map[domain.ItemID][]domain.ItemID
	leaves   map[domain.ItemID]bool
	nodes    map[domain.ItemID]struct{}
}

// NewTree builds a tree from paths
func NewTree(paths []string) *Tree {
	t := &Tree{
		paths:    slices.Clone(paths),
		children: make(map[domain.ItemID][]domain.ItemID),
		leaves:   make(map[domain.ItemID]bool, len(paths)),
		nodes:    make(map[domain.ItemID]struct{}, len(paths)),
	}

	add := func(id domain.ItemID) {
		if _, ok := t.nodes[id]; ok {
			return
		}
		t.nodes[id] = struct{}{}
		parent := domain.Parent(id)
		if parent == "" {
			t.roots = append(t.roots, id)
		} else {
			t.children[parent] = append(t.children[parent], id)
		}
	}

	for _, p := range paths {
		for _, anc := range domain.Ancestors(p) {
			add(anc)
		}
		add(p)
		t.leaves[p] = true
	}

	slices.Sort(t.roots)
	for _, kids := range t.children {
		slices.Sort(kids)
	}
	return t
}

// Paths returns the indexed paths in load order
func (t *Tree) Paths() []string {
	return slices.Clone(t.paths)
}

// Len returns the number of indexed paths
func (t *Tree) Len() int {
	return len(t.paths)
}

// Roots returns the top-level nodes, sorted
func (t *Tree) Roots() []domain.ItemID {
	return slices.Clone(t.roots)
}

// Contains reports whether id is a node of the tree
func (t *Tree) Contains(id domain.ItemID) bool {
	_, ok := t.nodes[id]
	return ok
}

// IsPath reports whether id is an indexed path rather than only a directory
func (t *Tree) IsPath(id domain.ItemID) bool {
	return t.leaves[id]
}

// Label returns the last segment of id. Directories get a trailing slash.
func (t *Tree) Label(_ context.Context, id domain.ItemID) (string, error) {
	label := domain.Base(id)
	if len(t.children[id]) > 0 {
		label += domain.Separator
	}
	return label, nil
}

// Children returns the direct children of id, sorted
func (t *Tree) Children(_ context.Context, id domain.ItemID) ([]domain.ItemID, error) {
	kids, ok := t.children[id]
	if !ok {
		return nil, nil
	}
	return slices.Clone(kids), nil
}

// IsExpandable reports whether id has children
func (t *Tree) IsExpandable(_ context.Context, id domain.ItemID) (bool, error) {
	return len(t.children[id]) > 0, nil
}

// CountUnder returns the number of indexed paths below id
func (t *Tree) CountUnder(id domain.ItemID) int {
	prefix := id + domain.Separator
	n := 0
	for _, p := range t.paths {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

// Reveal returns the top level with every ancestor of id opened, so that id
// is part of the sequence. An unknown id yields the plain top level.
func (t *Tree) Reveal(id domain.ItemID) []domain.ItemID {
	open := make(map[domain.ItemID]bool)
	if t.Contains(id) {
		for _, anc := range domain.Ancestors(id) {
			open[anc] = true
		}
	}

	var items []domain.ItemID
	var walk func(ids []domain.ItemID)
	walk = func(ids []domain.ItemID) {
		for _, node := range ids {
			items = append(items, node)
			if open[node] {
				walk(t.children[node])
			}
		}
	}
	walk(t.roots)
	return items
}

var _ domain.ItemProvider = (*Tree)(nil)
