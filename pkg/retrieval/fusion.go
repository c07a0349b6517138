package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/soundprediction/retrievo/pkg/types"
)

// fuseAndRank reranks the merged records with the cross-encoder. The
// reranker must return one score per document in input index order; the
// scores are assigned back by index and the records stable-sorted
// descending, so ties keep their merge order.
//
// Rerank is best-effort: on any failure, including a score slice of the
// wrong length, the input is returned untouched with its original scores.
func (r *Retriever) fuseAndRank(ctx context.Context, query string, records []types.Record) []types.Record {
	documents := make([]string, len(records))
	for i, record := range records {
		documents[i] = record.Content
	}

	scores, err := r.reranker.Rank(ctx, query, documents)
	if err == nil && len(scores) != len(records) {
		err = fmt.Errorf("got %d scores for %d documents", len(scores), len(records))
	}
	if err != nil {
		rerr := &RerankError{Err: err}
		r.logger.Error("rerank failed, keeping pre-rerank order",
			"error", rerr.Err.Error())
		return records
	}

	ranked := make([]types.Record, len(records))
	copy(ranked, records)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
