package domain

import "strings"

// Separator splits a hierarchical item ID into its segments.
const Separator = "/"

// ItemID identifies one entry of a listing. Hierarchy is encoded in the ID
// itself: everything before the last separator is the parent ID.
type ItemID = string

// IsHierarchical returns true if the ID has at least one parent
func IsHierarchical(id ItemID) bool {
	return strings.Contains(id, Separator)
}

// Parent returns the parent ID, or "" for a top-level ID
func Parent(id ItemID) ItemID {
	idx := strings.LastIndex(id, Separator)
	if idx < 0 {
		return ""
	}
	return id[:idx]
}

// Ancestors returns every ancestor of id, closest to the root first.
// "a/b/c" yields ["a", "a/b"]. Empty segments never form an ancestor, so
// "/a" has none and "a//b" yields ["a"].
func Ancestors(id ItemID) []ItemID {
	parts := strings.Split(id, Separator)
	if len(parts) < 2 {
		return nil
	}
	var ancestors []ItemID
	for i, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		ancestors = append(ancestors, strings.Join(parts[:i+1], Separator))
	}
	return ancestors
}

// Depth returns the number of segments in id (1 for a top-level ID)
func Depth(id ItemID) int {
	return strings.Count(id, Separator) + 1
}

// IsDescendant reports whether id sits strictly below ancestor
func IsDescendant(id, ancestor ItemID) bool {
	return strings.HasPrefix(id, ancestor+Separator)
}

// Base returns the last segment of id
func Base(id ItemID) string {
	idx := strings.LastIndex(id, Separator)
	if idx < 0 {
		return id
	}
	return id[idx+1:]
}
