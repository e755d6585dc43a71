// Package embedding wraps the external embedding collaborator. The engine
// treats it as a black box that turns a query into a vector; similarity
// lookup against the corpus happens in the corpus repository. Failure or
// absence of this collaborator degrades scoring to semantic-off mode, it
// never fails a request.
package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const defaultModel = "gemini-embedding-001"

// Client produces a query embedding for semantic similarity lookups.
type Client interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// GenAIClient is the Gemini-backed Client.
type GenAIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ Client = (*GenAIClient)(nil)

// NewGenAIClient creates the Gemini embedding client. model falls back to the
// default embedding model when empty.
func NewGenAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GenAIClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GenAIClient{client: client, model: model, logger: logger}, nil
}

// EmbedQuery returns the embedding vector for a query string.
func (c *GenAIClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response for model %s was empty", c.model)
	}
	return resp.Embeddings[0].Values, nil
}
