package source

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search ranks the indexed paths against query, closest first. An empty
// query returns nil. limit <= 0 returns every match.
func (t *Tree) Search(query string, limit int) []string {
	if query == "" {
		return nil
	}

	ranks := fuzzy.RankFindFold(query, t.paths)
	sort.Stable(ranks)

	n := len(ranks)
	if limit > 0 && n > limit {
		n = limit
	}
	results := make([]string, n)
	for i := range n {
		results[i] = ranks[i].Target
	}
	return results
}
