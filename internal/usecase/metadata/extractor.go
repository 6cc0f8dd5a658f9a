// Package metadata implements deterministic, rule-based metadata
// extraction: recognized time phrases in a query are rewritten into an
// explicit calendar date window.
package metadata

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
)

// anchor identifies the period whose start bounds the window.
type anchor int

const (
	anchorNone anchor = iota
	anchorWeek
	anchorMonth
	anchorQuarter
	anchorYear
)

// Rule maps a query phrase onto a lookback window: either a fixed number
// of days, or the start of the current calendar period.
type Rule struct {
	phrase string
	days   int
	anchor anchor
}

// dateRangeRules is consulted in order and the first matching phrase wins.
// Ordering is load-bearing: longer and more specific phrases come before
// any phrase they contain as a substring, so "last 6 months" is never
// shadowed by a generic entry.
var dateRangeRules = []Rule{
	// Explicit numeric periods
	{phrase: "last 6 months", days: 180},
	{phrase: "last 3 months", days: 90},
	{phrase: "last 2 years", days: 730},
	{phrase: "last 5 years", days: 1825},

	// Weekly periods
	{phrase: "last week", days: 7},
	{phrase: "this week", anchor: anchorWeek},
	{phrase: "past week", days: 7},

	// Monthly periods
	{phrase: "last month", days: 30},
	{phrase: "this month", anchor: anchorMonth},
	{phrase: "past month", days: 30},
	{phrase: "month to date", anchor: anchorMonth},

	// Quarterly periods
	{phrase: "last quarter", days: 90},
	{phrase: "this quarter", anchor: anchorQuarter},
	{phrase: "past quarter", days: 90},
	{phrase: "quarter to date", anchor: anchorQuarter},

	// Yearly periods
	{phrase: "last year", days: 365},
	{phrase: "this year", anchor: anchorYear},
	{phrase: "past year", days: 365},
	{phrase: "year to date", anchor: anchorYear},

	// Single words last: any of these may appear inside a longer phrase
	{phrase: "yesterday", days: 1},
	{phrase: "today", days: 1},
	{phrase: "recent", days: 7},
	{phrase: "latest", days: 7},
	{phrase: "current", days: 7},
	{phrase: "ytd", anchor: anchorYear},
}

// Result is the outcome of one extraction.
type Result struct {
	ModifiedQuery string
	DateRange     *domain.DateRange
}

// Extractor rewrites queries containing recognized time phrases.
type Extractor struct {
	rules  []Rule
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNow injects the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithRules replaces the phrase table, for deterministic tests.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) { e.rules = rules }
}

// NewRule builds a table entry for tests and custom tables. days and
// periodStart are mutually exclusive; periodStart is one of "week",
// "month", "quarter", "year".
func NewRule(phrase string, days int, periodStart string) Rule {
	r := Rule{phrase: phrase, days: days}
	switch periodStart {
	case "week":
		r.anchor = anchorWeek
	case "month":
		r.anchor = anchorMonth
	case "quarter":
		r.anchor = anchorQuarter
	case "year":
		r.anchor = anchorYear
	}
	return r
}

// New creates an Extractor with the built-in phrase table.
func New(logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		rules:  dateRangeRules,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans the query for the first matching time phrase and, on a
// match, appends a human-readable date clause. It never fails: an
// unrecognized query comes back unchanged with a nil range.
func (e *Extractor) Extract(query string) Result {
	dr := e.extractDateRange(query)
	if dr == nil {
		return Result{ModifiedQuery: query}
	}

	modified := query + fmt.Sprintf(" between %s and %s", dr.StartDate, dr.EndDate)
	e.logger.Info("Added date range to query",
		zap.String("query", modified),
		zap.String("start_date", dr.StartDate),
		zap.String("end_date", dr.EndDate),
	)
	return Result{ModifiedQuery: modified, DateRange: dr}
}

func (e *Extractor) extractDateRange(query string) *domain.DateRange {
	lower := strings.ToLower(query)
	today := e.now()

	for _, r := range e.rules {
		if !strings.Contains(lower, r.phrase) {
			continue
		}
		if r.anchor != anchorNone {
			return &domain.DateRange{
				StartDate: periodStart(today, r.anchor).Format(domain.DateLayout),
				EndDate:   today.Format(domain.DateLayout),
			}
		}
		return &domain.DateRange{
			StartDate: today.AddDate(0, 0, -r.days).Format(domain.DateLayout),
			EndDate:   today.Format(domain.DateLayout),
		}
	}
	return nil
}

// periodStart returns the first day of the current week (Monday), month,
// quarter, or year containing t.
func periodStart(t time.Time, a anchor) time.Time {
	switch a {
	case anchorWeek:
		offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
		return t.AddDate(0, 0, -offset)
	case anchorMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case anchorQuarter:
		qm := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), qm, 1, 0, 0, 0, 0, t.Location())
	case anchorYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return t
}
