package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be safe for concurrent calls: one embedder handle is
// shared read-only across all concurrent searches of a retrieval request.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
