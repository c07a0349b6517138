package reranker

import (
	"context"
	"math"
	"strings"
)

// LocalClient scores documents without any external service, using cosine
// similarity of term-frequency vectors. Useful as a default when no API
// credentials are configured, and as a cheap baseline.
type LocalClient struct {
	config Config
}

// NewLocalClient creates a new local similarity reranker client
func NewLocalClient(config Config) *LocalClient {
	return &LocalClient{config: config}
}

// Rank implements Client
func (c *LocalClient) Rank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	queryVec := termFrequency(query)
	scores := make([]float64, len(documents))
	for i, doc := range documents {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		scores[i] = cosineSimilarity(queryVec, termFrequency(doc))
	}

	return scores, nil
}

// Close implements Client
func (c *LocalClient) Close() error {
	return nil
}

// termFrequency builds a normalized term-frequency vector for text.
func termFrequency(text string) map[string]float64 {
	words := strings.Fields(strings.ToLower(text))
	vec := make(map[string]float64, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if w == "" {
			continue
		}
		vec[w]++
	}
	return vec
}

// cosineSimilarity computes the cosine of the angle between two sparse
// term-frequency vectors. Returns 0 when either vector is empty.
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, av := range a {
		normA += av * av
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
