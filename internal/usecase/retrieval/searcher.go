package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
	"github.com/finbud-cloud/retriever/internal/logger"
	"github.com/finbud-cloud/retriever/internal/metrics"
)

// searchSingleQuery embeds one query variant and sweeps every collection
// type sequentially. A failing collection is logged and skipped so one
// unavailable collection does not abort the others; the returned hits are
// unsorted. Any failure before the sweep (embedding, filter construction)
// absorbs the whole variant into an empty result.
func (o *Orchestrator) searchSingleQuery(
	ctx context.Context, embedder domain.Embedder, query string,
	collectionType *domain.CollectionType, filters map[string]string, k int,
) []domain.SearchHit {
	log := logger.FromContext(ctx)

	embResult, err := embedder.Embed(ctx, query)
	if err != nil {
		log.Error("Failed to embed query variant",
			zap.String("query", query), zap.Error(err))
		return nil
	}

	expr, err := buildFilterExpression(collectionType, filters)
	if err != nil {
		log.Error("Failed to build search filter", zap.Error(err))
		return nil
	}

	types := domain.CollectionTypes()
	// Divide the budget across collections: caps total result volume and
	// network cost at O(k) regardless of collection count, at the price of
	// under-fetching when relevance is skewed toward one collection.
	perCollection := k / len(types)

	var all []domain.SearchHit
	for _, ct := range types {
		hits, err := o.repo.SearchKNN(ctx, ct, embResult.Embedding, expr, perCollection)
		if err != nil {
			metrics.CollectionSearchesTotal.WithLabelValues(string(ct), "error").Inc()
			log.Error("Error searching collection",
				zap.String("collection", ct.CollectionName()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		metrics.CollectionSearchesTotal.WithLabelValues(string(ct), "success").Inc()
		all = append(all, hits...)
	}
	return all
}

// buildFilterExpression combines the optional collection-type condition
// with one equality condition per filter entry, all ANDed. Filter keys are
// visited in sorted order so the expression is reproducible.
func buildFilterExpression(
	collectionType *domain.CollectionType, filters map[string]string,
) (filter.Expression, error) {
	var conds []filter.Condition

	if collectionType != nil {
		c, err := filter.NewMatch("type", string(*collectionType))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("type condition: %w", err)
		}
		conds = append(conds, c)
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c, err := filter.NewMatch(k, filters[k])
		if err != nil {
			return filter.Expression{}, fmt.Errorf("filter condition %q: %w", k, err)
		}
		conds = append(conds, c)
	}

	return filter.NewExpression(conds)
}
