package domain

import "context"

// ChatPrompt is a single-turn instruction for the language-model oracle.
type ChatPrompt struct {
	System string
	User   string
}

// ChatResult carries the model reply and token usage.
type ChatResult struct {
	Content     string
	TotalTokens int
}

// ChatCompleter is the language-model oracle contract used for query
// expansion and reranking. Implementations must be safe for concurrent
// calls.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt ChatPrompt) (ChatResult, error)
}
