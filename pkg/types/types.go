package types

// Source identifies which retrieval backend produced a record.
type Source string

const (
	SourceKeyword        Source = "keyword"
	SourceKnowledgeGraph Source = "knowledge_graph"
)

// AllSources returns the sources queried when a caller does not narrow the
// search, in merge order.
func AllSources() []Source {
	return []Source{SourceKeyword, SourceKnowledgeGraph}
}

// ValidSource reports whether s names a known retrieval backend.
func ValidSource(s Source) bool {
	return s == SourceKeyword || s == SourceKnowledgeGraph
}

// Record is the canonical retrieval result. Every backend hit is normalized
// into this shape before filtering and reranking. Score is the only field
// mutated after construction (by the fusion ranker); records live only for
// the duration of one Retrieve call.
type Record struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
	Source   Source         `json:"source"`
}

// Options carries the optional knobs of a retrieve call. The zero value
// means: query all sources, no metadata filters, default top-k.
type Options struct {
	// SearchTypes selects which backends to query. Empty means all.
	SearchTypes []Source `json:"search_types,omitempty"`
	// Filters maps a metadata field to its allowed values. A record is kept
	// only if it matches every filtered field.
	Filters map[string][]string `json:"filters,omitempty"`
	// TopK bounds the result length. Zero means the configured default;
	// negative values are rejected.
	TopK int `json:"top_k,omitempty"`
}

// GraphNode is a knowledge-graph entity as returned by the graph store.
type GraphNode struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Neighbor is a single relationship reachable from a graph node.
type Neighbor struct {
	Relation string    `json:"relation"`
	Node     GraphNode `json:"node"`
}

// ContextKey is the type for values stashed in a request context.
type ContextKey string

const (
	ContextKeyRequestID     ContextKey = "request_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
