package retrieval

import (
	"context"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
	"github.com/finbud-cloud/retriever/internal/usecase/metadata"
)

// SearchRepository runs a filtered similarity search against one collection.
type SearchRepository interface {
	SearchKNN(
		ctx context.Context, collection domain.CollectionType,
		vector []float32, filters filter.Expression, limit int,
	) ([]domain.SearchHit, error)
}

// MetadataExtractor rewrites queries with explicit date windows.
type MetadataExtractor interface {
	Extract(query string) metadata.Result
}

// Expander produces query variants from one source query.
type Expander interface {
	Generate(ctx context.Context, query string, n int) ([]string, error)
}

// Reranker selects and reorders the top passages for a query.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []string, keepTopK int) ([]string, error)
}

// EmbedderFactory creates the embedding-model handle. The orchestrator
// calls it lazily on first use and again after SetQuery invalidates the
// previous handle.
type EmbedderFactory func() domain.Embedder
