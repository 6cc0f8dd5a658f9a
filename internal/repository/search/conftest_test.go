package search

import (
	"testing"

	"github.com/finbud-cloud/retriever/internal/domain/search/filter"
)

func mustFilter(t *testing.T, conds []filter.Condition) filter.Expression {
	t.Helper()
	e, err := filter.NewExpression(conds)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}
