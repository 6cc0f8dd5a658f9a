// Package rerank reorders candidate passages by relevance through the
// language-model oracle.
package rerank

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
)

// Separator is the out-of-band token between passages, both in the prompt
// and in the model reply.
const Separator = "#next-document#"

const systemPrompt = "You are an AI language model assistant. Your task is " +
	"to rerank passages related to a query so that the most relevant come " +
	"first. Return only the selected passages, in relevance order, separated " +
	"by '" + Separator + "'. Do not rewrite the passages and do not add any " +
	"other text."

// Reranker selects and reorders the top passages for a query.
type Reranker struct {
	chat   domain.ChatCompleter
	logger *zap.Logger
}

// New creates a Reranker.
func New(chat domain.ChatCompleter, logger *zap.Logger) *Reranker {
	return &Reranker{chat: chat, logger: logger}
}

// Rerank asks the model for the keepTopK most relevant passages, in
// relevance order. The result may be shorter than keepTopK. Model or
// network failure propagates to the caller; the orchestrator degrades it
// to an empty result.
func (r *Reranker) Rerank(
	ctx context.Context, query string, passages []string, keepTopK int,
) ([]string, error) {
	if keepTopK <= 0 {
		return nil, fmt.Errorf("keepTopK must be positive, got %d", keepTopK)
	}

	trimmed := make([]string, 0, len(passages))
	for _, p := range passages {
		if t := strings.TrimSpace(p); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	if len(trimmed) == 0 {
		return nil, nil
	}

	prompt := domain.ChatPrompt{
		System: systemPrompt,
		User: fmt.Sprintf(
			"Query: %s\n\nSelect the top %d passages:\n%s",
			query, keepTopK, strings.Join(trimmed, Separator),
		),
	}

	result, err := r.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("rerank passages: %w", err)
	}

	ranked := splitPassages(result.Content, keepTopK)
	r.logger.Info("Reranked passages",
		zap.Int("candidates", len(trimmed)),
		zap.Int("kept", len(ranked)),
	)
	return ranked, nil
}

func splitPassages(content string, keepTopK int) []string {
	parts := strings.Split(content, Separator)
	ranked := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			ranked = append(ranked, t)
		}
	}
	if len(ranked) > keepTopK {
		ranked = ranked[:keepTopK]
	}
	return ranked
}
