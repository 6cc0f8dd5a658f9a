package retrieval

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
	"github.com/finbud-cloud/retriever/internal/usecase/metadata"
)

// --- Fakes ---

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	err    error
	closed bool
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func (f *fakeEmbedder) Close() error {
	f.closed = true
	return nil
}

type searchCall struct {
	collection domain.CollectionType
	filters    filter.Expression
	limit      int
}

type fakeRepo struct {
	mu    sync.Mutex
	calls []searchCall
	// hitsFor returns the hits (or error) for one collection search.
	hitsFor func(collection domain.CollectionType, limit int) ([]domain.SearchHit, error)
}

func (f *fakeRepo) SearchKNN(
	_ context.Context, collection domain.CollectionType,
	_ []float32, filters filter.Expression, limit int,
) ([]domain.SearchHit, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{collection: collection, filters: filters, limit: limit})
	f.mu.Unlock()
	if f.hitsFor != nil {
		return f.hitsFor(collection, limit)
	}
	return nil, nil
}

type fakeExtractor struct {
	result metadata.Result
}

func (f *fakeExtractor) Extract(query string) metadata.Result {
	if f.result.ModifiedQuery == "" {
		return metadata.Result{ModifiedQuery: query}
	}
	return f.result
}

type fakeExpander struct {
	variants []string
	err      error
}

func (f *fakeExpander) Generate(_ context.Context, _ string, _ int) ([]string, error) {
	return f.variants, f.err
}

type fakeReranker struct {
	ranked    []string
	err       error
	lastQuery string
}

func (f *fakeReranker) Rerank(_ context.Context, query string, _ []string, _ int) ([]string, error) {
	f.lastQuery = query
	return f.ranked, f.err
}

// --- Builders ---

func hit(score float64, content string) domain.SearchHit {
	return domain.SearchHit{Score: score, Payload: domain.Payload{Content: content}}
}

type testDeps struct {
	repo      *fakeRepo
	extractor MetadataExtractor
	expander  *fakeExpander
	reranker  *fakeReranker
	embedder  *fakeEmbedder
}

func newTestOrchestrator(query string, d testDeps) (*Orchestrator, testDeps) {
	if d.repo == nil {
		d.repo = &fakeRepo{}
	}
	if d.extractor == nil {
		d.extractor = &fakeExtractor{}
	}
	if d.expander == nil {
		d.expander = &fakeExpander{variants: []string{query}}
	}
	if d.reranker == nil {
		d.reranker = &fakeReranker{}
	}
	if d.embedder == nil {
		d.embedder = &fakeEmbedder{}
	}

	o := NewOrchestrator(query, Deps{
		Repo:        d.repo,
		Extractor:   d.extractor,
		Expander:    d.expander,
		Reranker:    d.reranker,
		NewEmbedder: func() domain.Embedder { return d.embedder },
		Workers:     2,
		Logger:      zap.NewNop(),
	})
	return o, d
}
