package keyword

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/retrievo/pkg/config"
)

func TestHTTPSearcher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "中医养生", req.Query)
		assert.Equal(t, 10, req.TopK)

		json.NewEncoder(w).Encode(searchResponse{Hits: []Hit{
			{Content: "doc one", Score: 0.9, Metadata: map[string]any{"category": "theory"}},
			{Content: "doc two", Score: 0.4},
		}})
	}))
	defer ts.Close()

	s := NewHTTPSearcher(HTTPConfig{BaseURL: ts.URL})

	hits, err := s.Search(context.Background(), "中医养生", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc one", hits[0].Content)
	assert.Equal(t, 0.9, hits[0].Score)
	assert.Equal(t, "theory", hits[0].Metadata["category"])
}

func TestHTTPSearcherServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	s := NewHTTPSearcher(HTTPConfig{BaseURL: ts.URL})

	_, err := s.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

// recordingAlerter captures alert subjects for assertions.
type recordingAlerter struct {
	mu       sync.Mutex
	subjects []string
}

func (a *recordingAlerter) Alert(subject, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subjects = append(a.subjects, subject)
	return nil
}

func TestBreakerOpensAndSkipsBackend(t *testing.T) {
	inner := NewMockSearcher()
	inner.SetError(errors.New("index down"))
	alerter := &recordingAlerter{}

	cfg := config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}
	b := NewBreakerSearcher(inner, cfg, alerter, "keyword-search")

	for i := 0; i < 3; i++ {
		_, err := b.Search(context.Background(), "q", 5)
		require.Error(t, err)
	}

	// Breaker is open now; the backend must not be called again.
	callsBefore := len(inner.TopKs())
	_, err := b.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Equal(t, callsBefore, len(inner.TopKs()))

	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	require.NotEmpty(t, alerter.subjects)
	assert.Contains(t, alerter.subjects[0], "Circuit Breaker Tripped")
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := NewMockSearcher()
	inner.SetHits([]Hit{{Content: "ok", Score: 1}})

	cfg := config.CircuitBreakerConfig{MaxRequests: 1, Interval: 60, Timeout: 60, ReadyToTripRatio: 0.5}
	b := NewBreakerSearcher(inner, cfg, &recordingAlerter{}, "keyword-search")

	hits, err := b.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ok", hits[0].Content)
}
