package domain

import "errors"

var (
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a language-model provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrEmptyModelResponse signals a model reply with no usable content.
	ErrEmptyModelResponse = errors.New("empty model response")
	// ErrMissingContent signals a hit without the required payload content
	// field. This is an upstream contract violation, not a transient
	// condition, and is never absorbed.
	ErrMissingContent = errors.New("hit payload missing content")
)
