package retrieval

import (
	"reflect"
	"testing"

	"github.com/finbud-cloud/retriever/internal/domain"
)

func TestMergeHits_SortsDescending(t *testing.T) {
	merged := mergeHits([][]domain.SearchHit{
		{hit(0.2, "low"), hit(0.9, "high")},
		{hit(0.5, "mid")},
	}, 10)

	if len(merged) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Score > merged[i-1].Score {
			t.Errorf("hits not sorted descending at %d: %v", i, merged)
		}
	}
	if merged[0].Payload.Content != "high" {
		t.Errorf("expected highest hit first, got %q", merged[0].Payload.Content)
	}
}

func TestMergeHits_IdempotentOnSortedInput(t *testing.T) {
	sorted := []domain.SearchHit{hit(0.9, "a"), hit(0.5, "b"), hit(0.1, "c")}

	merged := mergeHits([][]domain.SearchHit{sorted}, 3)
	if len(merged) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(merged))
	}
	for i := range sorted {
		if !reflect.DeepEqual(merged[i], sorted[i]) {
			t.Errorf("already-sorted input must come back unchanged at %d", i)
		}
	}
}

func TestMergeHits_Truncation(t *testing.T) {
	lists := [][]domain.SearchHit{
		{hit(0.9, "a"), hit(0.8, "b")},
		{hit(0.7, "c")},
	}

	for _, k := range []int{0, 1, 2, 3, 10} {
		got := len(mergeHits(lists, k))
		want := min(k, 3)
		if got != want {
			t.Errorf("k=%d: expected %d hits, got %d", k, want, got)
		}
	}
}

func TestMergeHits_StableTies(t *testing.T) {
	// Equal scores keep arrival order within and across lists.
	merged := mergeHits([][]domain.SearchHit{
		{hit(0.5, "first"), hit(0.5, "second")},
		{hit(0.5, "third")},
	}, 3)

	want := []string{"first", "second", "third"}
	for i, w := range want {
		if merged[i].Payload.Content != w {
			t.Errorf("position %d: expected %q, got %q", i, w, merged[i].Payload.Content)
		}
	}
}

func TestMergeHits_Empty(t *testing.T) {
	if got := mergeHits(nil, 5); len(got) != 0 {
		t.Errorf("expected no hits, got %v", got)
	}
	if got := mergeHits([][]domain.SearchHit{nil, {}}, 5); len(got) != 0 {
		t.Errorf("expected no hits, got %v", got)
	}
}
