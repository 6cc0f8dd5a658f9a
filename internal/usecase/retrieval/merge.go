package retrieval

import (
	"sort"

	"github.com/finbud-cloud/retriever/internal/domain"
)

// mergeHits concatenates per-query hit lists, sorts descending by score,
// and truncates to k. The sort is stable, so equal-score hits keep their
// arrival order; since lists arrive in completion order, global tie order
// across concurrent searches is an accepted nondeterminism.
func mergeHits(hitLists [][]domain.SearchHit, k int) []domain.SearchHit {
	if k < 0 {
		k = 0
	}

	var total int
	for _, l := range hitLists {
		total += len(l)
	}

	merged := make([]domain.SearchHit, 0, total)
	for _, l := range hitLists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}
