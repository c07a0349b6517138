// Package types defines the shared data model of the retrievo library:
// the canonical retrieval record, query options, and the node/neighbor
// shapes exchanged with the knowledge-graph store.
package types
