// Package retriever provides an embedded Go client for the retrieval
// pipeline: query expansion, multi-collection vector search over a Redis
// store with the search module, and model-driven reranking. It wires the
// pipeline directly over the store, without the HTTP server.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/db"
	dbRedis "github.com/finbud-cloud/retriever/internal/db/redis"
	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/repository/embcache"
	searchrepo "github.com/finbud-cloud/retriever/internal/repository/search"
	openaiTransport "github.com/finbud-cloud/retriever/internal/transport/openai"
	"github.com/finbud-cloud/retriever/internal/usecase/expansion"
	healthuc "github.com/finbud-cloud/retriever/internal/usecase/health"
	"github.com/finbud-cloud/retriever/internal/usecase/metadata"
	"github.com/finbud-cloud/retriever/internal/usecase/rerank"
	"github.com/finbud-cloud/retriever/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrChatProviderError      = domain.ErrChatProviderError
	ErrEmptyModelResponse     = domain.ErrEmptyModelResponse
	ErrMissingContent         = domain.ErrMissingContent
)

// Hit is a retrieved passage with its similarity score.
type Hit struct {
	Score    float64
	Content  string
	Metadata map[string]string
}

// RetrieveOptions configures one Retrieve call. Zero values fall back to
// the client defaults.
type RetrieveOptions struct {
	K              int
	ExpandToN      int
	CollectionType string // empty or unknown searches every collection
	Filters        map[string]string
}

// Client is the retriever SDK entry point.
type Client struct {
	store           db.Store
	newOrchestrator func(query string) *retrieval.Orchestrator
	healthSvc       *healthuc.Service

	k         int
	expandToN int
	keepTopK  int
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		workers:   4,
		k:         3,
		expandToN: 3,
		keepTopK:  3,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("retriever: database address required (use WithRedis)")
	}

	embedder, err := resolveEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	chat, err := resolveChat(cfg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("retriever: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("retriever: database not ready: %w", err)
	}

	return wireClient(store, cfg, embedder, chat), nil
}

func resolveEmbedder(cfg *clientConfig) (domain.Embedder, error) {
	if cfg.embedder != nil {
		return &embedderAdapter{inner: cfg.embedder}, nil
	}
	if cfg.openaiEmbedding != nil {
		p := cfg.openaiEmbedding
		return openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     p.apiKey,
			BaseURL:    p.baseURL,
			Model:      p.model,
			Dimensions: p.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		}), nil
	}
	return nil, errors.New("retriever: embedding provider required (use WithEmbedder or WithOpenAIEmbedding)")
}

func resolveChat(cfg *clientConfig) (domain.ChatCompleter, error) {
	if cfg.chat != nil {
		return &chatAdapter{inner: cfg.chat}, nil
	}
	if cfg.openaiChat != nil {
		p := cfg.openaiChat
		return openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:   p.apiKey,
			BaseURL:  p.baseURL,
			Model:    p.model,
			Provider: "openai",
			Logger:   cfg.logger,
		}), nil
	}
	return nil, errors.New("retriever: chat provider required (use WithChatModel or WithOpenAIChat)")
}

func wireClient(store db.Store, cfg *clientConfig, embedder domain.Embedder, chat domain.ChatCompleter) *Client {
	repo := searchrepo.New(store)
	extractor := metadata.New(cfg.logger)
	expander := expansion.New(chat, cfg.logger)
	reranker := rerank.New(chat, cfg.logger)

	newEmbedder := func() domain.Embedder {
		return embcache.New(embedder, store, 0, nil, cfg.logger)
	}

	factory := func(query string) *retrieval.Orchestrator {
		return retrieval.NewOrchestrator(query, retrieval.Deps{
			Repo:        repo,
			Extractor:   extractor,
			Expander:    expander,
			Reranker:    reranker,
			NewEmbedder: newEmbedder,
			Workers:     cfg.workers,
			Logger:      cfg.logger,
		})
	}

	return &Client{
		store:           store,
		newOrchestrator: factory,
		healthSvc:       healthuc.New(store, asChecker(embedder), asChecker(chat)),
		k:               cfg.k,
		expandToN:       cfg.expandToN,
		keepTopK:        cfg.keepTopK,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Retrieve runs the full pipeline for one query and returns the top hits.
// Failures inside the pipeline degrade to an empty result.
func (c *Client) Retrieve(ctx context.Context, query string, opts RetrieveOptions) []Hit {
	k := opts.K
	if k <= 0 {
		k = c.k
	}
	expandToN := opts.ExpandToN
	if expandToN <= 0 {
		expandToN = c.expandToN
	}

	params := retrieval.TopKParams{
		K:         k,
		ExpandToN: expandToN,
		Filters:   opts.Filters,
	}
	if opts.CollectionType != "" {
		if ct, ok := domain.ParseCollectionType(opts.CollectionType); ok {
			params.CollectionType = &ct
		}
	}

	o := c.newOrchestrator(query)
	hits := o.RetrieveTopK(ctx, params)

	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{
			Score:    h.Score,
			Content:  h.Payload.Content,
			Metadata: h.Payload.Metadata,
		}
	}
	return out
}

// Rerank reorders previously retrieved hits and returns the keepTopK most
// relevant contents. keepTopK <= 0 falls back to the client default. A hit
// without content returns ErrMissingContent; a model failure degrades to
// an empty slice.
func (c *Client) Rerank(ctx context.Context, query string, hits []Hit, keepTopK int) ([]string, error) {
	if keepTopK <= 0 {
		keepTopK = c.keepTopK
	}

	domHits := make([]domain.SearchHit, len(hits))
	for i, h := range hits {
		domHits[i] = domain.SearchHit{
			Score: h.Score,
			Payload: domain.Payload{
				Content:  h.Content,
				Metadata: h.Metadata,
			},
		}
	}

	o := c.newOrchestrator(query)
	return o.Rerank(ctx, domHits, keepTopK)
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component -> "ok"/"error"
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// --- Adapters ---

type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

type chatAdapter struct {
	inner ChatModel
}

func (a *chatAdapter) Complete(ctx context.Context, prompt domain.ChatPrompt) (domain.ChatResult, error) {
	content, err := a.inner.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		return domain.ChatResult{}, err
	}
	return domain.ChatResult{Content: content}, nil
}

// asChecker exposes a provider's health check if it has one.
func asChecker(v any) healthuc.ProviderChecker {
	if hc, ok := v.(healthuc.ProviderChecker); ok {
		return hc
	}
	return nil
}
