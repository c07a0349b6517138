/*
Package retrieval implements the hybrid retrieval-and-rerank orchestrator.

A Retriever fans a query out concurrently to the keyword index and the
knowledge graph, normalizes every hit into types.Record, applies metadata
filters, reranks the survivors with a cross-encoder, and truncates to the
requested top-k. Any backend may fail without failing the call: a failed
source contributes zero records and a failed rerank keeps the pre-rerank
ordering. Retrieve returns an error only for contract violations by the
caller.
*/
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprediction/retrievo/pkg/graph"
	"github.com/soundprediction/retrievo/pkg/keyword"
	"github.com/soundprediction/retrievo/pkg/reranker"
	"github.com/soundprediction/retrievo/pkg/types"
)

// Config holds orchestrator tuning knobs.
type Config struct {
	// DefaultTopK is used when a caller leaves Options.TopK at zero.
	DefaultTopK int

	// SourceTimeout bounds each backend call. A timeout is treated like any
	// other source failure: the source contributes zero records.
	SourceTimeout time.Duration

	// OverallTimeout bounds the whole Retrieve call.
	OverallTimeout time.Duration

	// GraphMaxNodes caps how many matched graph nodes are expanded into
	// records per call.
	GraphMaxNodes int

	// GraphMaxConcurrency bounds concurrent neighbor expansions.
	GraphMaxConcurrency int
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTopK:         10,
		SourceTimeout:       10 * time.Second,
		OverallTimeout:      30 * time.Second,
		GraphMaxNodes:       16,
		GraphMaxConcurrency: 4,
	}
}

// Retriever orchestrates hybrid retrieval across the keyword index and the
// knowledge graph. It owns its collaborators by constructor injection and is
// safe for concurrent use; no state is shared between in-flight calls.
type Retriever struct {
	searcher keyword.Searcher
	store    graph.Store
	reranker reranker.Client
	logger   *slog.Logger
	cfg      Config
}

// New creates a Retriever. Zero fields of cfg fall back to DefaultConfig
// values; a nil logger falls back to slog.Default.
func New(searcher keyword.Searcher, store graph.Store, rr reranker.Client, logger *slog.Logger, cfg Config) *Retriever {
	def := DefaultConfig()
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = def.DefaultTopK
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = def.SourceTimeout
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = def.OverallTimeout
	}
	if cfg.GraphMaxNodes <= 0 {
		cfg.GraphMaxNodes = def.GraphMaxNodes
	}
	if cfg.GraphMaxConcurrency <= 0 {
		cfg.GraphMaxConcurrency = def.GraphMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		searcher: searcher,
		store:    store,
		reranker: rr,
		logger:   logger,
		cfg:      cfg,
	}
}

// Retrieve runs the full pipeline: concurrent fan-out to the selected
// sources, merge in fixed keyword-before-graph order, metadata filtering,
// rerank, truncation to top-k.
//
// Source and rerank failures are logged and degraded, never returned. The
// returned error is non-nil only when the caller breaks the contract
// (negative top-k, unknown search type).
func (r *Retriever) Retrieve(ctx context.Context, query string, opts types.Options) ([]types.Record, error) {
	topK, sources, err := r.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	if r.cfg.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.OverallTimeout)
		defer cancel()
	}

	// One fixed slot per source. Slots are awaited all-to-completion and
	// merged by position, so the output order never depends on which
	// source finished first and one failing source cannot cancel another.
	slots := make([][]types.Record, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(slot int, src types.Source) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
			defer cancel()

			records, err := r.fetchSource(sctx, src, query, topK)
			if err != nil {
				serr := &SourceError{Source: src, Err: err}
				r.logger.Error("retrieval source failed",
					"source", string(src),
					"error", serr.Err.Error())
				return
			}
			slots[slot] = records
		}(i, src)
	}
	wg.Wait()

	var merged []types.Record
	for _, records := range slots {
		merged = append(merged, records...)
	}

	if len(opts.Filters) > 0 {
		merged = ApplyFilters(merged, opts.Filters)
	}

	if len(merged) > 0 {
		merged = r.fuseAndRank(ctx, query, merged)
	}

	if len(merged) > topK {
		merged = merged[:topK]
	}
	if merged == nil {
		merged = []types.Record{}
	}
	return merged, nil
}

// RetrieveBatch runs Retrieve for each query concurrently. A failing query
// contributes an empty record list; the batch itself only fails on a
// contract violation, which is checked once up front.
func (r *Retriever) RetrieveBatch(ctx context.Context, queries []string, opts types.Options) ([][]types.Record, error) {
	if _, _, err := r.resolveOptions(opts); err != nil {
		return nil, err
	}

	results := make([][]types.Record, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(slot int, q string) {
			defer wg.Done()

			records, err := r.Retrieve(ctx, q, opts)
			if err != nil {
				r.logger.Error("batch retrieve failed for query",
					"query", q,
					"error", err.Error())
				records = []types.Record{}
			}
			results[slot] = records
		}(i, q)
	}
	wg.Wait()

	return results, nil
}

// Close releases the knowledge graph connection. The keyword searcher and
// reranker are externally pooled and stay untouched.
func (r *Retriever) Close(ctx context.Context) error {
	return r.store.Close(ctx)
}

// resolveOptions validates the caller-supplied options and resolves
// defaults: zero top-k becomes the configured default, an empty search type
// list selects every source. The returned source list is always in merge
// order, keyword before graph, regardless of the order the caller named
// them in.
func (r *Retriever) resolveOptions(opts types.Options) (int, []types.Source, error) {
	if opts.TopK < 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidTopK, opts.TopK)
	}
	topK := opts.TopK
	if topK == 0 {
		topK = r.cfg.DefaultTopK
	}

	for _, s := range opts.SearchTypes {
		if !types.ValidSource(s) {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, string(s))
		}
	}

	selected := make(map[types.Source]bool, len(opts.SearchTypes))
	for _, s := range opts.SearchTypes {
		selected[s] = true
	}

	var sources []types.Source
	for _, s := range types.AllSources() {
		if len(opts.SearchTypes) == 0 || selected[s] {
			sources = append(sources, s)
		}
	}

	return topK, sources, nil
}

// fetchSource dispatches to the adapter for one source.
func (r *Retriever) fetchSource(ctx context.Context, src types.Source, query string, topK int) ([]types.Record, error) {
	switch src {
	case types.SourceKeyword:
		return r.searchKeyword(ctx, query, topK)
	case types.SourceKnowledgeGraph:
		return r.searchGraph(ctx, query, topK)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, string(src))
	}
}
