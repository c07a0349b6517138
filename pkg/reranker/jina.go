package reranker

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

// JinaClient scores documents with a Jina-compatible rerank API
// (POST {base_url}/rerank). Works with Jina AI, vLLM, LocalAI and other
// services exposing the same endpoint.
type JinaClient struct {
	config     Config
	httpClient *http.Client
}

// NewJinaClient creates a new Jina-compatible reranker client
func NewJinaClient(config Config) *JinaClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.jina.ai/v1"
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	return &JinaClient{
		config:     config,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type jinaRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type jinaResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rank implements Client
func (c *JinaClient) Rank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(jinaRequest{
		Model:     c.config.Model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rerank API returned status %d: %s", resp.StatusCode, string(msg))
	}

	var parsed jinaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	// The API returns results sorted by score; realign by index.
	scores := make([]float64, len(documents))
	seen := make([]bool, len(documents))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank API returned out-of-range index %d", r.Index)
		}
		scores[r.Index] = r.RelevanceScore
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank API returned no score for document %d", i)
		}
	}

	return scores, nil
}

// Close implements Client
func (c *JinaClient) Close() error {
	return nil
}
