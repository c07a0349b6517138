// Package cache provides a TTL cache of retrieval responses backed by
// Badger. A cache hit lets the client skip the source fan-out entirely.
// Cache failures are soft: a broken read is a miss, a broken write is
// logged and dropped.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/retrievo/pkg/types"
)

// Cache stores retrieval responses keyed by the full query shape.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Config holds cache settings.
type Config struct {
	// Path is the on-disk location. Empty means a purely in-memory store.
	Path string
	// TTL is how long an entry stays valid. Zero means 5 minutes.
	TTL time.Duration
}

// New opens the cache store.
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	return &Cache{
		db:     db,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// Key derives a deterministic cache key from the query and its options.
// Filter map iteration order does not influence the key.
func Key(query string, opts types.Options) string {
	var sb strings.Builder
	sb.WriteString(query)
	sb.WriteString("|k=")
	fmt.Fprintf(&sb, "%d", opts.TopK)

	sources := make([]string, 0, len(opts.SearchTypes))
	for _, s := range opts.SearchTypes {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	sb.WriteString("|s=")
	sb.WriteString(strings.Join(sources, ","))

	fields := make([]string, 0, len(opts.Filters))
	for field := range opts.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		values := append([]string(nil), opts.Filters[field]...)
		sort.Strings(values)
		fmt.Fprintf(&sb, "|f:%s=%s", field, strings.Join(values, ","))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached records for key, or false on a miss. A corrupt
// entry counts as a miss.
func (c *Cache) Get(key string) ([]types.Record, bool) {
	var payload []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var records []types.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		c.logger.Warn("dropping corrupt cache entry", "key", key, "error", err.Error())
		return nil, false
	}
	return records, true
}

// Set stores records under key with the configured TTL.
func (c *Cache) Set(key string, records []types.Record) {
	payload, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key, "error", err.Error())
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), payload).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("failed to write cache entry", "key", key, "error", err.Error())
	}
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}
