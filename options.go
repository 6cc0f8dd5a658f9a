package retriever

import (
	"context"

	"go.uber.org/zap"
)

// Embedder converts text to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatModel produces a completion for a system + user prompt pair. Used
// for query expansion and reranking.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder
	chat     ChatModel

	openaiEmbedding *openaiProviderConfig
	openaiChat      *openaiProviderConfig

	workers   int
	k         int
	expandToN int
	keepTopK  int

	logger *zap.Logger
}

type openaiProviderConfig struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithEmbedder supplies a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithChatModel supplies a custom language-model provider.
func WithChatModel(m ChatModel) Option {
	return func(c *clientConfig) {
		c.chat = m
	}
}

// WithOpenAIEmbedding configures an OpenAI-compatible embedding provider.
// baseURL may be empty for the default endpoint.
func WithOpenAIEmbedding(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.openaiEmbedding = &openaiProviderConfig{
			apiKey:     apiKey,
			baseURL:    baseURL,
			model:      model,
			dimensions: dimensions,
		}
	}
}

// WithOpenAIChat configures an OpenAI-compatible chat completion provider.
func WithOpenAIChat(apiKey, baseURL, model string) Option {
	return func(c *clientConfig) {
		c.openaiChat = &openaiProviderConfig{
			apiKey:  apiKey,
			baseURL: baseURL,
			model:   model,
		}
	}
}

// WithWorkers sets the bounded worker-pool size for the search fan-out.
func WithWorkers(n int) Option {
	return func(c *clientConfig) {
		c.workers = n
	}
}

// WithDefaults sets the default k, expand_to_n and keep_top_k applied
// when a call leaves them zero.
func WithDefaults(k, expandToN, keepTopK int) Option {
	return func(c *clientConfig) {
		c.k = k
		c.expandToN = expandToN
		c.keepTopK = keepTopK
	}
}

// WithLogger supplies a zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
