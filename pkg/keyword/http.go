package keyword

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSearcher queries a lexical index over a JSON HTTP API
// (POST {base_url}/search with {"query": ..., "top_k": ...}).
type HTTPSearcher struct {
	baseURL    string
	index      string
	httpClient *http.Client
}

// HTTPConfig holds configuration for the HTTP searcher.
type HTTPConfig struct {
	BaseURL string
	// Index optionally names the index to search; sent when non-empty.
	Index string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// NewHTTPSearcher creates a searcher against a JSON search API.
func NewHTTPSearcher(cfg HTTPConfig) *HTTPSearcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSearcher{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		index:      cfg.Index,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	Index string `json:"index,omitempty"`
}

type searchResponse struct {
	Hits []Hit `json:"hits"`
}

// Search implements Searcher.
func (s *HTTPSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK, Index: s.index})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("keyword index returned status %d: %s", resp.StatusCode, string(msg))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return parsed.Hits, nil
}
