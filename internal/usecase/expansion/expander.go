// Package expansion generates semantically related query variants through
// the language-model oracle.
package expansion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
)

// Separator is the out-of-band token the model is instructed to place
// between variants.
const Separator = "#next-question#"

const systemPrompt = "You are an AI language model assistant. Your task is " +
	"to generate alternative versions of the given user question to retrieve " +
	"relevant documents from a vector database. Provide these alternative " +
	"questions separated by '" + Separator + "'. Do not number the questions " +
	"and do not add any other text."

// Expander produces query variants from one source query.
type Expander struct {
	chat   domain.ChatCompleter
	logger *zap.Logger
}

// New creates an Expander.
func New(chat domain.ChatCompleter, logger *zap.Logger) *Expander {
	return &Expander{chat: chat, logger: logger}
}

// Generate asks the model for up to n variants of query. The result may be
// shorter than n when the model returns fewer distinguishable variants;
// every returned variant is non-empty after trimming. Model or network
// failure propagates to the caller.
func (e *Expander) Generate(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}

	prompt := domain.ChatPrompt{
		System: systemPrompt,
		User:   fmt.Sprintf("Generate %d alternative versions of this question: %s", n, query),
	}

	result, err := e.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}

	variants := splitVariants(result.Content, n)
	e.logger.Info("Generated query variants",
		zap.Int("requested", n),
		zap.Int("returned", len(variants)),
	)
	return variants, nil
}

// splitVariants splits the model reply on the separator, trims whitespace,
// drops empties, and caps the result at n.
func splitVariants(content string, n int) []string {
	parts := strings.Split(content, Separator)
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			variants = append(variants, v)
		}
	}
	if len(variants) > n {
		variants = variants[:n]
	}
	return variants
}
