// Package retrieval owns the end-to-end retrieval pipeline: metadata
// extraction, query expansion, concurrent multi-collection search,
// score-based merge, and model-driven reranking.
package retrieval

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/metrics"
)

// Deps are the orchestrator's collaborators.
type Deps struct {
	Repo        SearchRepository
	Extractor   MetadataExtractor
	Expander    Expander
	Reranker    Reranker
	NewEmbedder EmbedderFactory
	Workers     int // bounded worker-pool size for search fan-out
	Logger      *zap.Logger
}

// Orchestrator drives one query through the retrieval pipeline. It holds
// exactly one active query at a time; SetQuery replaces it and invalidates
// the lazily-held embedder handle. All pipeline entry points serialize on
// the internal mutex, so an orchestrator moves Idle → busy → Idle and two
// calls never interleave.
type Orchestrator struct {
	mu       sync.Mutex
	query    string
	embedder domain.Embedder // lazily acquired, shared read-only by searches

	repo        SearchRepository
	extractor   MetadataExtractor
	expander    Expander
	reranker    Reranker
	newEmbedder EmbedderFactory
	workers     int
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator for one query.
func NewOrchestrator(query string, deps Deps) *Orchestrator {
	workers := deps.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		query:       query,
		repo:        deps.Repo,
		extractor:   deps.Extractor,
		expander:    deps.Expander,
		reranker:    deps.Reranker,
		newEmbedder: deps.NewEmbedder,
		workers:     workers,
		logger:      deps.Logger,
	}
}

// TopKParams are the knobs of one RetrieveTopK call.
type TopKParams struct {
	K              int
	ExpandToN      int
	CollectionType *domain.CollectionType
	Filters        map[string]string
}

// Query returns the current (possibly rewritten) query.
func (o *Orchestrator) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

// SetQuery replaces the active query and invalidates per-query state,
// releasing the embedder handle to bound peak memory.
func (o *Orchestrator) SetQuery(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.query = query
	o.releaseEmbedder()
}

func (o *Orchestrator) releaseEmbedder() {
	if c, ok := o.embedder.(io.Closer); ok {
		if err := c.Close(); err != nil {
			o.logger.Warn("Failed to close embedder", zap.Error(err))
		}
	}
	o.embedder = nil
}

// ensureEmbedder lazily acquires the embedding handle. Caller holds o.mu.
func (o *Orchestrator) ensureEmbedder() domain.Embedder {
	if o.embedder == nil {
		o.embedder = o.newEmbedder()
	}
	return o.embedder
}

// RetrieveTopK runs the retrieval pipeline: rewrite the stored query with
// extracted metadata, expand it into variants, fan the variants out over a
// bounded worker pool, and merge everything into the top k hits.
//
// Retrieval is best-effort augmentation: any failure inside, including a
// panic, is logged and degrades to an empty result rather than failing the
// request.
func (o *Orchestrator) RetrieveTopK(ctx context.Context, p TopKParams) (hits []domain.SearchHit) {
	o.mu.Lock()
	defer o.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic in retrieval pipeline",
				zap.Any("panic", r), zap.String("query", o.query))
			metrics.RetrievalRequestsTotal.WithLabelValues("retrieve", "error").Inc()
			hits = nil
		}
	}()

	if p.K <= 0 || p.ExpandToN <= 0 {
		o.logger.Error("Invalid retrieval parameters",
			zap.Int("k", p.K), zap.Int("expand_to_n", p.ExpandToN))
		metrics.RetrievalRequestsTotal.WithLabelValues("retrieve", "error").Inc()
		return nil
	}

	ext := o.extractor.Extract(o.query)
	o.query = ext.ModifiedQuery

	o.logger.Info("Starting query expansion", zap.String("query", o.query))

	variants, err := o.expander.Generate(ctx, o.query, p.ExpandToN)
	if err != nil || len(variants) == 0 {
		// The original query stands in as the sole variant.
		o.logger.Warn("Query expansion failed, using original query",
			zap.Error(err))
		variants = []string{o.query}
	}
	o.logger.Info("Generated queries for search",
		zap.Int("num_queries", len(variants)),
		zap.Strings("queries", variants))

	embedder := o.ensureEmbedder()

	hitLists := o.fanOutSearches(ctx, embedder, variants, p)

	hits = mergeHits(hitLists, p.K)
	o.logger.Info("Retrieved documents", zap.Int("num_documents", len(hits)))
	metrics.RetrievalRequestsTotal.WithLabelValues("retrieve", "success").Inc()
	return hits
}

// fanOutSearches runs one searchSingleQuery per variant over a bounded
// worker pool. Results are collected in completion order; mergeHits
// restores a reproducible ordering by score.
func (o *Orchestrator) fanOutSearches(
	ctx context.Context, embedder domain.Embedder, variants []string, p TopKParams,
) [][]domain.SearchHit {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.workers)

	var mu sync.Mutex
	hitLists := make([][]domain.SearchHit, 0, len(variants))

	for _, variant := range variants {
		variant := variant
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			hits := o.searchSingleQuery(gctx, embedder, variant, p.CollectionType, p.Filters, p.K)

			mu.Lock()
			hitLists = append(hitLists, hits)
			mu.Unlock()
			return nil
		})
	}

	// Per-variant failures are absorbed inside searchSingleQuery; Wait only
	// reports context cancellation.
	if err := g.Wait(); err != nil {
		o.logger.Warn("Search fan-out interrupted", zap.Error(err))
	}
	return hitLists
}

// Rerank reorders the passages of previously retrieved hits through the
// reranking oracle and returns the keepTopK most relevant contents. A hit
// without payload content is an upstream contract violation and surfaces
// as an error; an oracle failure degrades to an empty result, with the
// input hits left untouched.
func (o *Orchestrator) Rerank(
	ctx context.Context, hits []domain.SearchHit, keepTopK int,
) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	contents := make([]string, 0, len(hits))
	for i, h := range hits {
		if h.Payload.Content == "" {
			metrics.RetrievalRequestsTotal.WithLabelValues("rerank", "error").Inc()
			return nil, fmt.Errorf("hit %d: %w", i, domain.ErrMissingContent)
		}
		contents = append(contents, h.Payload.Content)
	}

	ranked, err := o.reranker.Rerank(ctx, o.query, contents, keepTopK)
	if err != nil {
		o.logger.Error("Reranking failed", zap.Error(err))
		metrics.RetrievalRequestsTotal.WithLabelValues("rerank", "error").Inc()
		return []string{}, nil
	}

	o.logger.Info("Reranked documents", zap.Int("num_documents", len(ranked)))
	metrics.RetrievalRequestsTotal.WithLabelValues("rerank", "success").Inc()
	return ranked, nil
}
