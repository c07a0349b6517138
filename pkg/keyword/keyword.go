// Package keyword provides clients for the lexical search index consumed by
// the retriever. Implementations include an HTTP JSON client, a circuit
// breaker wrapper, and a mock for testing.
package keyword

import "context"

// Hit is a single result from the lexical index, in the index's native shape.
type Hit struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// Searcher performs lexical search over an index. Implementations must be
// safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
}
