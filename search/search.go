// Package search defines the web search abstraction used by the researcher
// stage, plus a scripted implementation for tests.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MaxResults is the largest result count a stage ever requests.
const MaxResults = 5

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher runs a web search and returns at most max results.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// Format renders results as a numbered plain-text block suitable for prompts.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No search results."
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s\n%s", i+1, r.Title, r.URL, strings.TrimSpace(r.Content))
	}
	return b.String()
}

// MockSearcher returns canned results and records queries.
type MockSearcher struct {
	Results []Result
	Err     error

	mu      sync.Mutex
	queries []string
}

// NewMockSearcher creates a MockSearcher returning results.
func NewMockSearcher(results ...Result) *MockSearcher {
	return &MockSearcher{Results: results}
}

// Search implements Searcher.
func (m *MockSearcher) Search(ctx context.Context, query string, max int) ([]Result, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := m.Results
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// Queries returns every query received so far.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
