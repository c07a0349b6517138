package reranker

import (
	"context"
	"hash/fnv"
	"sync"
)

// MockClient is a deterministic reranker for testing. By default it derives
// a stable pseudo-score from each document's content; tests can pin exact
// scores or force an error.
type MockClient struct {
	mu     sync.Mutex
	config Config
	scores []float64
	err    error
	calls  int
}

// NewMockClient creates a new mock reranker client
func NewMockClient(config Config) *MockClient {
	return &MockClient{config: config}
}

// SetScores pins the score slice returned by the next Rank calls.
func (c *MockClient) SetScores(scores []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores = scores
}

// SetError forces Rank to fail.
func (c *MockClient) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls reports how many times Rank has been invoked.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Rank implements Client
func (c *MockClient) Rank(ctx context.Context, query string, documents []string) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if c.err != nil {
		return nil, c.err
	}
	if c.scores != nil {
		out := make([]float64, len(c.scores))
		copy(out, c.scores)
		return out, nil
	}

	scores := make([]float64, len(documents))
	for i, doc := range documents {
		h := fnv.New32a()
		h.Write([]byte(doc))
		scores[i] = float64(h.Sum32()%1000) / 1000.0
	}
	return scores, nil
}

// Close implements Client
func (c *MockClient) Close() error {
	return nil
}
