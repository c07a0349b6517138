package retrieval

import (
	"errors"
	"fmt"

	"github.com/soundprediction/retrievo/pkg/types"
)

// ErrInvalidTopK is returned when a caller passes a negative top-k.
var ErrInvalidTopK = errors.New("top_k must not be negative")

// ErrUnknownSearchType is returned when a caller names a source that does
// not exist.
var ErrUnknownSearchType = errors.New("unknown search type")

// SourceError records the failure of one retrieval backend. It is a soft
// failure: the retriever logs it and treats the source as contributing zero
// records. It never escapes Retrieve.
type SourceError struct {
	Source types.Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// RerankError records a reranker failure, including a reranker that breaks
// the index-alignment contract. It is a soft failure: the retriever logs it
// and keeps the pre-rerank ordering and scores.
type RerankError struct {
	Err error
}

func (e *RerankError) Error() string {
	return fmt.Sprintf("rerank failed: %v", e.Err)
}

func (e *RerankError) Unwrap() error {
	return e.Err
}
