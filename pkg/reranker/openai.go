package reranker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient scores documents with an OpenAI-compatible chat API. Documents
// are split into batches; each batch is scored by a single prompt that asks
// the model for a JSON array of floats, one per document. Batches run
// concurrently under a semaphore.
type OpenAIClient struct {
	client    *openai.Client
	config    Config
	semaphore chan struct{} // Controls concurrency
}

// NewOpenAIClient creates a new OpenAI-based reranker client
func NewOpenAIClient(config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}

	var client *openai.Client
	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(config.APIKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(config.APIKey)
	}

	return &OpenAIClient{
		client:    client,
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrency),
	}
}

const scoringSystemPrompt = "You are an expert relevance judge. " +
	"Score how relevant each passage is to the query on a 0.0 to 1.0 scale. " +
	"Respond with ONLY a JSON array of numbers, one per passage, in the same order."

// Rank implements Client
func (c *OpenAIClient) Rank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	scores := make([]float64, len(documents))
	errs := make([]error, (len(documents)+c.config.BatchSize-1)/c.config.BatchSize)

	var wg sync.WaitGroup
	batch := 0
	for start := 0; start < len(documents); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(documents) {
			end = len(documents)
		}

		wg.Add(1)
		go func(batchIdx, start, end int) {
			defer wg.Done()

			c.semaphore <- struct{}{}
			defer func() { <-c.semaphore }()

			batchScores, err := c.scoreBatch(ctx, query, documents[start:end])
			if err != nil {
				errs[batchIdx] = fmt.Errorf("error scoring batch %d: %w", batchIdx, err)
				return
			}
			copy(scores[start:end], batchScores)
		}(batch, start, end)
		batch++
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}

// scoreBatch asks the model for one score per passage in the batch.
func (c *OpenAIClient) scoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<QUERY>\n%s\n</QUERY>\n", query)
	for i, p := range passages {
		fmt.Fprintf(&sb, "<PASSAGE %d>\n%s\n</PASSAGE %d>\n", i+1, p, i+1)
	}
	fmt.Fprintf(&sb, "Return a JSON array of %d relevance scores.", len(passages))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	scores, err := parseScores(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(passages) {
		return nil, fmt.Errorf("model returned %d scores for %d passages", len(scores), len(passages))
	}
	return scores, nil
}

// parseScores extracts a JSON float array from model output. Model output is
// frequently wrapped in code fences or mildly malformed, so it is passed
// through jsonrepair before unmarshalling.
func parseScores(content string) ([]float64, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "["); start >= 0 {
		content = content[start:]
	}
	if end := strings.LastIndex(content, "]"); end >= 0 {
		content = content[:end+1]
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		repaired = content
	}

	var scores []float64
	if err := json.Unmarshal([]byte(repaired), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse scores from %q: %w", content, err)
	}
	return scores, nil
}

// Close implements Client
func (c *OpenAIClient) Close() error {
	return nil
}
