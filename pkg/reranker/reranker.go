/*
Package reranker scores candidate documents against a query.

A reranker returns one relevance score per input document, aligned by index
with the input slice. The fusion ranker assigns those scores back onto the
records it is ordering, so implementations must never reorder, drop, or pad
the score slice.

Implementations:
  - OpenAI API-based scoring using a batch JSON prompt
  - Jina-compatible rerank APIs (Jina AI, vLLM, LocalAI, etc.)
  - Local term-frequency cosine similarity
  - Mock implementation for testing with deterministic results
*/
package reranker

import "context"

// Client scores documents against a query.
type Client interface {
	// Rank returns one relevance score per document, index-aligned with
	// documents. Higher means more relevant.
	Rank(ctx context.Context, query string, documents []string) ([]float64, error)

	// Close cleans up any resources used by the client.
	Close() error
}

// Provider represents the type of reranker provider
type Provider string

const (
	// ProviderOpenAI uses an OpenAI-compatible chat API for scoring
	ProviderOpenAI Provider = "openai"

	// ProviderJina uses Jina-compatible reranking APIs (Jina, vLLM, LocalAI, etc.)
	ProviderJina Provider = "jina"

	// ProviderLocal uses local text similarity algorithms
	ProviderLocal Provider = "local"

	// ProviderMock uses a mock implementation for testing
	ProviderMock Provider = "mock"
)

// Config holds configuration shared by reranker clients
type Config struct {
	Model          string  `json:"model,omitempty"`
	APIKey         string  `json:"api_key,omitempty"`
	BaseURL        string  `json:"base_url,omitempty"`
	Temperature    float32 `json:"temperature,omitempty"`
	BatchSize      int     `json:"batch_size,omitempty"`
	MaxConcurrency int     `json:"max_concurrency,omitempty"`
}

// NewClient creates a reranker client for the given provider
func NewClient(provider Provider, config Config) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderJina:
		return NewJinaClient(config), nil
	case ProviderLocal:
		return NewLocalClient(config), nil
	case ProviderMock:
		return NewMockClient(config), nil
	default:
		return nil, &UnknownProviderError{Provider: provider}
	}
}

// UnknownProviderError is returned by NewClient for an unrecognized provider.
type UnknownProviderError struct {
	Provider Provider
}

func (e *UnknownProviderError) Error() string {
	return "unsupported reranker provider: " + string(e.Provider)
}
