package expansion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
)

type mockCompleter struct {
	content string
	err     error
	lastReq domain.ChatPrompt
}

func (m *mockCompleter) Complete(_ context.Context, p domain.ChatPrompt) (domain.ChatResult, error) {
	m.lastReq = p
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: m.content}, nil
}

func TestGenerate_SplitsOnSeparator(t *testing.T) {
	chat := &mockCompleter{
		content: "What moved markets recently?\n" + Separator + "\nRecent market-moving events?\n" + Separator + "\nKey financial headlines?",
	}
	e := New(chat, zap.NewNop())

	variants, err := e.Generate(context.Background(), "market events", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d: %v", len(variants), variants)
	}
	for _, v := range variants {
		if v != strings.TrimSpace(v) || v == "" {
			t.Errorf("variant not trimmed: %q", v)
		}
	}
}

func TestGenerate_DropsEmptyVariants(t *testing.T) {
	chat := &mockCompleter{content: "one" + Separator + "   \n " + Separator + "two"}
	e := New(chat, zap.NewNop())

	variants, err := e.Generate(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(variants) != 2 || variants[0] != "one" || variants[1] != "two" {
		t.Errorf("unexpected variants: %v", variants)
	}
}

func TestGenerate_CapsAtN(t *testing.T) {
	chat := &mockCompleter{content: "a" + Separator + "b" + Separator + "c" + Separator + "d"}
	e := New(chat, zap.NewNop())

	variants, err := e.Generate(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(variants) != 2 {
		t.Errorf("expected 2 variants, got %d", len(variants))
	}
}

func TestGenerate_ErrorPropagates(t *testing.T) {
	chat := &mockCompleter{err: domain.ErrChatProviderError}
	e := New(chat, zap.NewNop())

	_, err := e.Generate(context.Background(), "q", 3)
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestGenerate_InvalidN(t *testing.T) {
	e := New(&mockCompleter{content: "a"}, zap.NewNop())

	if _, err := e.Generate(context.Background(), "q", 0); err == nil {
		t.Error("expected error for n=0")
	}
}

func TestGenerate_PromptMentionsN(t *testing.T) {
	chat := &mockCompleter{content: "a"}
	e := New(chat, zap.NewNop())

	if _, err := e.Generate(context.Background(), "what moved SPY?", 5); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(chat.lastReq.User, "5") || !strings.Contains(chat.lastReq.User, "what moved SPY?") {
		t.Errorf("prompt must carry n and the query: %q", chat.lastReq.User)
	}
	if !strings.Contains(chat.lastReq.System, Separator) {
		t.Errorf("system prompt must name the separator: %q", chat.lastReq.System)
	}
}
