// Package graph provides access to the knowledge graph backend. The Store
// interface covers the two read paths the retriever needs (text search over
// nodes, neighbor expansion) plus lifecycle. Neo4j is the production
// implementation; MockStore serves tests.
package graph

import (
	"context"
	"sync"

	"github.com/soundprediction/retrievo/pkg/types"
)

// Store is a read-only view of the knowledge graph.
type Store interface {
	// SearchNodes performs text search over node names and content,
	// returning at most limit nodes.
	SearchNodes(ctx context.Context, query string, limit int) ([]types.GraphNode, error)

	// GetNeighbors returns the relationships reachable from nodeID within
	// maxDepth hops.
	GetNeighbors(ctx context.Context, nodeID string, maxDepth int) ([]types.Neighbor, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu        sync.Mutex
	nodes     []types.GraphNode
	neighbors map[string][]types.Neighbor

	searchErr    error
	neighborErr  map[string]error
	searchCalls  []int // limits passed to SearchNodes
	closedCalled bool
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		neighbors:   make(map[string][]types.Neighbor),
		neighborErr: make(map[string]error),
	}
}

// SetNodes sets the nodes returned by SearchNodes.
func (m *MockStore) SetNodes(nodes []types.GraphNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = nodes
}

// SetNeighbors sets the neighbors returned for a node ID.
func (m *MockStore) SetNeighbors(nodeID string, neighbors []types.Neighbor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neighbors[nodeID] = neighbors
}

// SetSearchError forces SearchNodes to fail.
func (m *MockStore) SetSearchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchErr = err
}

// SetNeighborError forces GetNeighbors to fail for one node ID.
func (m *MockStore) SetNeighborError(nodeID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neighborErr[nodeID] = err
}

// SearchLimits reports the limit argument of each SearchNodes call.
func (m *MockStore) SearchLimits() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.searchCalls))
	copy(out, m.searchCalls)
	return out
}

// Closed reports whether Close has been called.
func (m *MockStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closedCalled
}

// SearchNodes implements Store
func (m *MockStore) SearchNodes(ctx context.Context, query string, limit int) ([]types.GraphNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, limit)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit < len(m.nodes) {
		return m.nodes[:limit], nil
	}
	return m.nodes, nil
}

// GetNeighbors implements Store
func (m *MockStore) GetNeighbors(ctx context.Context, nodeID string, maxDepth int) ([]types.Neighbor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.neighborErr[nodeID]; ok {
		return nil, err
	}
	return m.neighbors[nodeID], nil
}

// Close implements Store
func (m *MockStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closedCalled = true
	return nil
}
