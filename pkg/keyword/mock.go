package keyword

import (
	"context"
	"sync"
)

// MockSearcher is an in-memory Searcher for testing.
type MockSearcher struct {
	mu    sync.Mutex
	hits  []Hit
	err   error
	topKs []int // topK of each Search call
}

// NewMockSearcher creates an empty mock searcher.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

// SetHits sets the hits returned by Search.
func (m *MockSearcher) SetHits(hits []Hit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = hits
}

// SetError forces Search to fail.
func (m *MockSearcher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// TopKs reports the topK argument of each Search call.
func (m *MockSearcher) TopKs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.topKs))
	copy(out, m.topKs)
	return out
}

// Search implements Searcher
func (m *MockSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topKs = append(m.topKs, topK)
	if m.err != nil {
		return nil, m.err
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}
