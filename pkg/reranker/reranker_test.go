package reranker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScores(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []float64
		wantErr bool
	}{
		{
			name:    "plain array",
			content: "[0.9, 0.1, 0.5]",
			want:    []float64{0.9, 0.1, 0.5},
		},
		{
			name:    "fenced array",
			content: "```json\n[0.2, 0.8]\n```",
			want:    []float64{0.2, 0.8},
		},
		{
			name:    "prose around array",
			content: "Here are the scores: [1, 0] as requested.",
			want:    []float64{1, 0},
		},
		{
			name:    "trailing comma repaired",
			content: "[0.3, 0.7,]",
			want:    []float64{0.3, 0.7},
		},
		{
			name:    "no array",
			content: "I cannot score these passages.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScores(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalClientScoresByOverlap(t *testing.T) {
	c := NewLocalClient(Config{})

	scores, err := c.Rank(context.Background(), "spring health tips", []string{
		"spring health tips for everyone",
		"completely unrelated text about engines",
	})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
	assert.Equal(t, 0.0, scores[1])
}

func TestLocalClientEmptyInput(t *testing.T) {
	c := NewLocalClient(Config{})

	scores, err := c.Rank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestMockClientPinnedScores(t *testing.T) {
	c := NewMockClient(Config{})
	c.SetScores([]float64{0.9, 0.1})

	scores, err := c.Rank(context.Background(), "q", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1}, scores)
	assert.Equal(t, 1, c.Calls())
}

func TestMockClientError(t *testing.T) {
	c := NewMockClient(Config{})
	c.SetError(errors.New("boom"))

	_, err := c.Rank(context.Background(), "q", []string{"a"})
	require.Error(t, err)
}

func TestMockClientDeterministic(t *testing.T) {
	c := NewMockClient(Config{})

	first, err := c.Rank(context.Background(), "q", []string{"a", "b"})
	require.NoError(t, err)
	second, err := c.Rank(context.Background(), "q", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJinaClientRealignsByIndex(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req jinaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Documents, 3)

		// Results sorted by score, not input order.
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.9},
				{"index": 0, "relevance_score": 0.5},
				{"index": 1, "relevance_score": 0.1},
			},
		})
	}))
	defer ts.Close()

	c := NewJinaClient(Config{BaseURL: ts.URL})

	scores, err := c.Rank(context.Background(), "q", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.1, 0.9}, scores)
}

func TestJinaClientMissingScore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 0, "relevance_score": 0.5},
			},
		})
	}))
	defer ts.Close()

	c := NewJinaClient(Config{BaseURL: ts.URL})

	_, err := c.Rank(context.Background(), "q", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score for document 1")
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		provider Provider
		wantErr  bool
	}{
		{ProviderOpenAI, false},
		{ProviderJina, false},
		{ProviderLocal, false},
		{ProviderMock, false},
		{Provider("cohere"), true},
	}

	for _, tt := range tests {
		c, err := NewClient(tt.provider, Config{})
		if tt.wantErr {
			assert.Error(t, err, string(tt.provider))
			continue
		}
		require.NoError(t, err, string(tt.provider))
		assert.NotNil(t, c)
	}
}
