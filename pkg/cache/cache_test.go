package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/retrievo/pkg/types"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(Config{TTL: time.Minute}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestKeyIgnoresFilterMapOrder(t *testing.T) {
	a := Key("q", types.Options{Filters: map[string][]string{
		"category": {"theory"},
		"season":   {"spring", "summer"},
	}})
	b := Key("q", types.Options{Filters: map[string][]string{
		"season":   {"summer", "spring"},
		"category": {"theory"},
	}})
	assert.Equal(t, a, b)
}

func TestKeyDistinguishesOptions(t *testing.T) {
	base := Key("q", types.Options{})
	assert.NotEqual(t, base, Key("other", types.Options{}))
	assert.NotEqual(t, base, Key("q", types.Options{TopK: 3}))
	assert.NotEqual(t, base, Key("q", types.Options{
		SearchTypes: []types.Source{types.SourceKeyword},
	}))
	assert.NotEqual(t, base, Key("q", types.Options{
		Filters: map[string][]string{"category": {"theory"}},
	}))
}

func TestGetSetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	records := []types.Record{
		{Content: "hit", Score: 0.8, Source: types.SourceKeyword},
	}
	key := Key("q", types.Options{})

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, records)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}
