package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/retrievo/pkg/graph"
	"github.com/soundprediction/retrievo/pkg/keyword"
	"github.com/soundprediction/retrievo/pkg/reranker"
	"github.com/soundprediction/retrievo/pkg/types"
)

func newTestRetriever(searcher keyword.Searcher, store graph.Store, rr reranker.Client) *Retriever {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(searcher, store, rr, logger, Config{})
}

func contents(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Content
	}
	return out
}

func TestRetrieveAllSourcesFail(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetError(errors.New("index down"))
	store := graph.NewMockStore()
	store.SetSearchError(errors.New("graph down"))

	r := newTestRetriever(searcher, store, reranker.NewMockClient(reranker.Config{}))

	records, err := r.Retrieve(context.Background(), "anything", types.Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestRetrieveMergesKeywordBeforeGraph(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "kw one", Score: 0.7},
		{Content: "kw two", Score: 0.3},
	})
	store := graph.NewMockStore()
	store.SetNodes([]types.GraphNode{
		{ID: "n1", Name: "node one"},
		{ID: "n2", Name: "node two"},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetError(errors.New("reranker down"))

	r := newTestRetriever(searcher, store, rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{})
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Keyword records in native order, then graph records, original scores.
	assert.Equal(t, []string{"kw one", "kw two", "node one", "node two"}, contents(records))
	assert.Equal(t, 0.7, records[0].Score)
	assert.Equal(t, 0.3, records[1].Score)
	assert.Equal(t, 1.0, records[2].Score)
	assert.Equal(t, 1.0, records[3].Score)
	assert.Equal(t, types.SourceKeyword, records[0].Source)
	assert.Equal(t, types.SourceKnowledgeGraph, records[3].Source)
}

func TestRetrieveRerankOrdersByScore(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "first", Score: 0.1},
		{Content: "second", Score: 0.2},
		{Content: "third", Score: 0.3},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetScores([]float64{0.9, 0.1, 0.5})

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"first", "third", "second"}, contents(records))
	assert.Equal(t, []float64{0.9, 0.5, 0.1}, []float64{records[0].Score, records[1].Score, records[2].Score})
}

func TestRetrieveRerankTiesKeepMergeOrder(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "a", Score: 0.1},
		{Content: "b", Score: 0.2},
		{Content: "c", Score: 0.3},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetScores([]float64{0.5, 0.5, 0.5})

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, contents(records))
}

func TestRetrieveTopKBound(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "a", Score: 0.1},
		{Content: "b", Score: 0.2},
		{Content: "c", Score: 0.3},
		{Content: "d", Score: 0.4},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetScores([]float64{0.4, 0.8, 0.6, 0.2})

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
		TopK:        2,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The two highest by final score, in score order.
	assert.Equal(t, []string{"b", "c"}, contents(records))
}

func TestRetrieveNegativeTopK(t *testing.T) {
	r := newTestRetriever(keyword.NewMockSearcher(), graph.NewMockStore(), reranker.NewMockClient(reranker.Config{}))

	_, err := r.Retrieve(context.Background(), "q", types.Options{TopK: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRetrieveUnknownSearchType(t *testing.T) {
	r := newTestRetriever(keyword.NewMockSearcher(), graph.NewMockStore(), reranker.NewMockClient(reranker.Config{}))

	_, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{"vector"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSearchType)
}

func TestRetrieveNilAndEmptyFiltersAgree(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "a", Metadata: map[string]any{"category": "x"}, Score: 0.5},
		{Content: "b", Score: 0.4},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetError(errors.New("down"))

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)
	opts := types.Options{SearchTypes: []types.Source{types.SourceKeyword}}

	withNil, err := r.Retrieve(context.Background(), "q", opts)
	require.NoError(t, err)

	opts.Filters = map[string][]string{}
	withEmpty, err := r.Retrieve(context.Background(), "q", opts)
	require.NoError(t, err)

	assert.Equal(t, withNil, withEmpty)
}

func TestRetrieveCategoryFilterScenario(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "四季养生的基本原则", Metadata: map[string]any{"category": "theory"}, Score: 0.9},
		{Content: "春季食疗推荐", Metadata: map[string]any{"category": "recipe"}, Score: 0.8},
		{Content: "艾灸操作指南", Metadata: map[string]any{"category": "practice"}, Score: 0.7},
	})

	r := newTestRetriever(searcher, graph.NewMockStore(), reranker.NewMockClient(reranker.Config{}))

	records, err := r.Retrieve(context.Background(), "中医养生", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
		Filters:     map[string][]string{"category": {"theory"}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "四季养生的基本原则", records[0].Content)
}

func TestRetrieveGraphSearchFails(t *testing.T) {
	store := graph.NewMockStore()
	store.SetSearchError(errors.New("neo4j unreachable"))

	r := newTestRetriever(keyword.NewMockSearcher(), store, reranker.NewMockClient(reranker.Config{}))

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKnowledgeGraph},
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRetrieveRerankFailureKeepsScores(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "a", Score: 0.3},
		{Content: "b", Score: 0.9},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetError(errors.New("model overloaded"))

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Original order and scores survive the failure.
	assert.Equal(t, []string{"a", "b"}, contents(records))
	assert.Equal(t, 0.3, records[0].Score)
	assert.Equal(t, 0.9, records[1].Score)
}

func TestRetrieveScoreLengthMismatchIsSoft(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{
		{Content: "a", Score: 0.3},
		{Content: "b", Score: 0.9},
		{Content: "c", Score: 0.5},
	})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetScores([]float64{0.42})

	r := newTestRetriever(searcher, graph.NewMockStore(), rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b", "c"}, contents(records))
	assert.Equal(t, 0.3, records[0].Score)
}

func TestRetrieveOverFetchesSources(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	store := graph.NewMockStore()

	r := newTestRetriever(searcher, store, reranker.NewMockClient(reranker.Config{}))

	_, err := r.Retrieve(context.Background(), "q", types.Options{TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, []int{10}, searcher.TopKs())
	assert.Equal(t, []int{10}, store.SearchLimits())
}

func TestRetrieveSearchTypeOrderDoesNotMatter(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{{Content: "kw", Score: 0.5}})
	store := graph.NewMockStore()
	store.SetNodes([]types.GraphNode{{ID: "n1", Name: "graph"}})
	rr := reranker.NewMockClient(reranker.Config{})
	rr.SetError(errors.New("down"))

	r := newTestRetriever(searcher, store, rr)

	records, err := r.Retrieve(context.Background(), "q", types.Options{
		SearchTypes: []types.Source{types.SourceKnowledgeGraph, types.SourceKeyword},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kw", "graph"}, contents(records))
}

func TestRetrieveBatch(t *testing.T) {
	searcher := keyword.NewMockSearcher()
	searcher.SetHits([]keyword.Hit{{Content: "hit", Score: 0.5}})

	r := newTestRetriever(searcher, graph.NewMockStore(), reranker.NewMockClient(reranker.Config{}))

	results, err := r.RetrieveBatch(context.Background(), []string{"q1", "q2"}, types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0], 1)
	assert.Len(t, results[1], 1)
}

func TestRetrieveBatchValidatesOnce(t *testing.T) {
	r := newTestRetriever(keyword.NewMockSearcher(), graph.NewMockStore(), reranker.NewMockClient(reranker.Config{}))

	_, err := r.RetrieveBatch(context.Background(), []string{"q"}, types.Options{TopK: -3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestCloseDelegatesToGraphOnly(t *testing.T) {
	store := graph.NewMockStore()
	r := newTestRetriever(keyword.NewMockSearcher(), store, reranker.NewMockClient(reranker.Config{}))

	require.NoError(t, r.Close(context.Background()))
	assert.True(t, store.Closed())
}
