// Package search is the store-facing repository for vector similarity
// search over the per-type document collections.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/finbud-cloud/retriever/internal/db"
	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
)

// store is the consumer interface for search operations.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the search repository over a single store.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN runs a filtered vector similarity search against one
// collection and returns its hits, unsorted.
func (r *Repo) SearchKNN(
	ctx context.Context, collection domain.CollectionType,
	vector []float32, filters filter.Expression, limit int,
) ([]domain.SearchHit, error) {
	indexName := fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection.CollectionName())

	q := &db.KNNQuery{
		IndexName:    indexName,
		Filters:      filters,
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{"__content", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collection.CollectionName(), err)
	}

	return parseHits(sr), nil
}

// parseHits converts db.SearchResult entries into domain hits. The raw
// content field becomes the payload content; everything else is metadata.
func parseHits(sr *db.SearchResult) []domain.SearchHit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	hits := make([]domain.SearchHit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, domain.SearchHit{
			Score:   entry.Score,
			Payload: parsePayload(entry.Fields),
		})
	}
	return hits
}

func parsePayload(fields map[string]string) domain.Payload {
	p := domain.Payload{}
	for k, v := range fields {
		if k == "__content" {
			p.Content = v
			continue
		}
		if strings.HasPrefix(k, "__") {
			continue // internal index fields
		}
		if p.Metadata == nil {
			p.Metadata = make(map[string]string)
		}
		p.Metadata[k] = v
	}
	return p
}
