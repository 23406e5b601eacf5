package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/doeshing/vino-go/internal/ports"
)

const defaultGeminiEmbedModel = "text-embedding-004"

// GeminiEmbedder embeds text with the Gemini embedding API.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiEmbedder wraps client. A positive dimension requests that output
// size and is checked on every response.
func NewGeminiEmbedder(client *genai.Client, model string, dimension int) *GeminiEmbedder {
	if model == "" {
		model = defaultGeminiEmbedModel
	}
	return &GeminiEmbedder{client: client, model: model, dimension: dimension}
}

func (e *GeminiEmbedder) Name() string {
	return "gemini/" + e.model
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var config *genai.EmbedContentConfig
	if e.dimension > 0 {
		outputDim := int32(e.dimension)
		config = &genai.EmbedContentConfig{OutputDimensionality: &outputDim}
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 && result.Embeddings[0] != nil {
		embedding = result.Embeddings[0].Values
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if e.dimension > 0 && len(embedding) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(embedding))
	}
	return embedding, nil
}

var _ ports.Embedder = (*GeminiEmbedder)(nil)
