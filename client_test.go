package retriever

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
	healthuc "github.com/finbud-cloud/retriever/internal/usecase/health"
	"github.com/finbud-cloud/retriever/internal/usecase/metadata"
	"github.com/finbud-cloud/retriever/internal/usecase/retrieval"
)

// --- Fakes wired under a Client without a live store ---

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

type fakeRepo struct {
	hits  []domain.SearchHit
	calls []filter.Expression
}

func (f *fakeRepo) SearchKNN(
	_ context.Context, _ domain.CollectionType,
	_ []float32, filters filter.Expression, _ int,
) ([]domain.SearchHit, error) {
	f.calls = append(f.calls, filters)
	return f.hits, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(query string) metadata.Result {
	return metadata.Result{ModifiedQuery: query}
}

type fakeExpander struct{}

func (fakeExpander) Generate(_ context.Context, query string, _ int) ([]string, error) {
	return []string{query}, nil
}

type fakeReranker struct {
	ranked []string
	err    error
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, _ []string, _ int) ([]string, error) {
	return f.ranked, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func newTestClient(repo *fakeRepo, reranker *fakeReranker) *Client {
	if repo == nil {
		repo = &fakeRepo{}
	}
	if reranker == nil {
		reranker = &fakeReranker{}
	}

	factory := func(query string) *retrieval.Orchestrator {
		return retrieval.NewOrchestrator(query, retrieval.Deps{
			Repo:        repo,
			Extractor:   fakeExtractor{},
			Expander:    fakeExpander{},
			Reranker:    reranker,
			NewEmbedder: func() domain.Embedder { return fakeEmbedder{} },
			Workers:     2,
			Logger:      zap.NewNop(),
		})
	}

	return &Client{
		newOrchestrator: factory,
		healthSvc:       healthuc.New(&fakePinger{}, nil, nil),
		k:               5,
		expandToN:       1,
		keepTopK:        3,
	}
}

// --- New validation ---

func TestNew_MissingAddr(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error without a database address")
	}
}

func TestNew_MissingEmbedder(t *testing.T) {
	_, err := New(context.Background(), WithRedis("localhost:6379", ""))
	if err == nil {
		t.Fatal("expected error without an embedding provider")
	}
}

func TestNew_MissingChatModel(t *testing.T) {
	_, err := New(context.Background(),
		WithRedis("localhost:6379", ""),
		WithOpenAIEmbedding("key", "", "text-embedding-3-small", 1536),
	)
	if err == nil {
		t.Fatal("expected error without a chat provider")
	}
}

// --- Retrieve ---

func TestRetrieve_ConvertsHits(t *testing.T) {
	repo := &fakeRepo{hits: []domain.SearchHit{
		{Score: 0.9, Payload: domain.Payload{
			Content:  "doc",
			Metadata: map[string]string{"source": "reuters"},
		}},
	}}
	c := newTestClient(repo, nil)

	hits := c.Retrieve(context.Background(), "market news", RetrieveOptions{})
	if len(hits) == 0 {
		t.Fatal("expected hits")
	}
	if hits[0].Content != "doc" || hits[0].Score != 0.9 {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if hits[0].Metadata["source"] != "reuters" {
		t.Errorf("metadata lost: %+v", hits[0].Metadata)
	}
}

func TestRetrieve_CollectionTypeFilter(t *testing.T) {
	repo := &fakeRepo{}
	c := newTestClient(repo, nil)

	c.Retrieve(context.Background(), "q", RetrieveOptions{CollectionType: "investopedia"})

	if len(repo.calls) == 0 {
		t.Fatal("expected searches")
	}
	for _, f := range repo.calls {
		must := f.Must()
		if len(must) != 1 || must[0].Match() != "investopedia" {
			t.Errorf("expected type condition, got %v", must)
		}
	}
}

func TestRetrieve_UnknownCollectionTypeUnfiltered(t *testing.T) {
	repo := &fakeRepo{}
	c := newTestClient(repo, nil)

	c.Retrieve(context.Background(), "q", RetrieveOptions{CollectionType: "bogus"})

	for _, f := range repo.calls {
		if !f.IsEmpty() {
			t.Errorf("unknown collection type must search unfiltered, got %v", f.Must())
		}
	}
}

// --- Rerank ---

func TestRerank_ConvertsAndRanks(t *testing.T) {
	c := newTestClient(nil, &fakeReranker{ranked: []string{"b", "a"}})

	ranked, err := c.Rerank(context.Background(), "q",
		[]Hit{{Score: 0.9, Content: "a"}, {Score: 0.8, Content: "b"}}, 2)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if len(ranked) != 2 || ranked[0] != "b" {
		t.Errorf("unexpected ranking: %v", ranked)
	}
}

func TestRerank_MissingContent(t *testing.T) {
	c := newTestClient(nil, nil)

	_, err := c.Rerank(context.Background(), "q", []Hit{{Score: 0.9}}, 2)
	if !errors.Is(err, ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent, got %v", err)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	c := newTestClient(nil, nil)

	h := c.Health(context.Background())
	if h.Status != "ok" {
		t.Errorf("expected ok, got %q", h.Status)
	}
	if h.Checks["database"] != "ok" {
		t.Errorf("unexpected checks: %v", h.Checks)
	}
}

// --- Adapters ---

type staticEmbedder struct{}

func (staticEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 2}, nil
}

type staticChat struct{}

func (staticChat) Complete(_ context.Context, _, user string) (string, error) {
	return "echo: " + user, nil
}

func TestEmbedderAdapter(t *testing.T) {
	a := &embedderAdapter{inner: staticEmbedder{}}
	res, err := a.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("unexpected embedding: %v", res.Embedding)
	}
}

func TestChatAdapter(t *testing.T) {
	a := &chatAdapter{inner: staticChat{}}
	res, err := a.Complete(context.Background(), domain.ChatPrompt{System: "s", User: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Content != "echo: hi" {
		t.Errorf("unexpected content: %q", res.Content)
	}
}
