package retrievo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/retrievo/pkg/alert"
	"github.com/soundprediction/retrievo/pkg/cache"
	"github.com/soundprediction/retrievo/pkg/config"
	"github.com/soundprediction/retrievo/pkg/graph"
	"github.com/soundprediction/retrievo/pkg/keyword"
	"github.com/soundprediction/retrievo/pkg/reranker"
	"github.com/soundprediction/retrievo/pkg/retrieval"
	"github.com/soundprediction/retrievo/pkg/types"
)

// Retrievo is the main interface for hybrid retrieval. The server and CLI
// depend on it rather than on the concrete client.
type Retrievo interface {
	// Retrieve runs the full pipeline for one query and returns at most
	// top-k records, best first.
	Retrieve(ctx context.Context, query string, opts types.Options) ([]types.Record, error)

	// RetrieveBatch runs Retrieve for several queries concurrently. A
	// failing query yields an empty record list, never a batch failure.
	RetrieveBatch(ctx context.Context, queries []string, opts types.Options) ([][]types.Record, error)

	// Close releases backend connections.
	Close(ctx context.Context) error
}

// Client is the main implementation of the Retrievo interface. It wraps the
// retrieval orchestrator with an optional response cache.
type Client struct {
	retriever *retrieval.Retriever
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewClient creates a client around an orchestrator. cache may be nil to
// disable response caching; a nil logger falls back to slog.Default.
func NewClient(retriever *retrieval.Retriever, responseCache *cache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		retriever: retriever,
		cache:     responseCache,
		logger:    logger,
	}
}

// NewFromConfig wires a full client from configuration: keyword searcher
// (optionally behind a circuit breaker with email alerting), graph store,
// reranker provider, orchestrator, and optional response cache.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var searcher keyword.Searcher = keyword.NewHTTPSearcher(keyword.HTTPConfig{
		BaseURL: cfg.Keyword.BaseURL,
		Index:   cfg.Keyword.Index,
		Timeout: time.Duration(cfg.Keyword.Timeout) * time.Second,
	})
	if cfg.CircuitBreaker.Enabled {
		var alerter alert.Alerter = &alert.NoOpAlerter{}
		if cfg.Alert.Enabled {
			alerter = alert.NewEmailAlerter(cfg.Alert)
		}
		searcher = keyword.NewBreakerSearcher(searcher, cfg.CircuitBreaker, alerter, "keyword-search")
	}

	store, err := graph.NewNeo4jStore(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph store: %w", err)
	}

	rr, err := reranker.NewClient(reranker.Provider(cfg.Reranker.Provider), reranker.Config{
		Model:       cfg.Reranker.Model,
		APIKey:      cfg.Reranker.APIKey,
		BaseURL:     cfg.Reranker.BaseURL,
		Temperature: cfg.Reranker.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reranker: %w", err)
	}

	retriever := retrieval.New(searcher, store, rr, logger, retrieval.Config{
		DefaultTopK:         cfg.Retrieval.DefaultTopK,
		SourceTimeout:       time.Duration(cfg.Retrieval.SourceTimeout) * time.Second,
		OverallTimeout:      time.Duration(cfg.Retrieval.OverallTimeout) * time.Second,
		GraphMaxNodes:       cfg.Graph.MaxNodes,
		GraphMaxConcurrency: cfg.Graph.MaxConcurrency,
	})

	var responseCache *cache.Cache
	if cfg.Cache.Enabled {
		responseCache, err = cache.New(cache.Config{
			Path: cfg.Cache.Path,
			TTL:  time.Duration(cfg.Cache.TTL) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open response cache: %w", err)
		}
	}

	return NewClient(retriever, responseCache, logger), nil
}

// Retrieve implements Retrievo. With caching enabled, a fresh cached
// response bypasses the source fan-out.
func (c *Client) Retrieve(ctx context.Context, query string, opts types.Options) ([]types.Record, error) {
	var key string
	if c.cache != nil {
		key = cache.Key(query, opts)
		if records, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit", "query", query)
			return records, nil
		}
	}

	records, err := c.retriever.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, records)
	}
	return records, nil
}

// RetrieveBatch implements Retrievo.
func (c *Client) RetrieveBatch(ctx context.Context, queries []string, opts types.Options) ([][]types.Record, error) {
	return c.retriever.RetrieveBatch(ctx, queries, opts)
}

// Close implements Retrievo.
func (c *Client) Close(ctx context.Context) error {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			c.logger.Warn("failed to close response cache", "error", err.Error())
		}
	}
	return c.retriever.Close(ctx)
}
