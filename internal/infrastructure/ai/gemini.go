package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiProvider struct {
	model  domain.ModelDefinition
	client *genai.Client
}

func newGeminiProvider(ctx context.Context, model domain.ModelDefinition, httpClient *http.Client) (ports.Provider, error) {
	client, err := NewGeminiClient(ctx, model.AuthEnvVar, model.Endpoint, httpClient)
	if err != nil {
		return nil, err
	}
	return &geminiProvider{model: model, client: client}, nil
}

// NewGeminiClient creates a Gemini API client. The key is read from authEnvVar,
// falling back to GEMINI_API_KEY then GOOGLE_API_KEY.
func NewGeminiClient(ctx context.Context, authEnvVar, endpoint string, httpClient *http.Client) (*genai.Client, error) {
	apiKey := resolveAuth(authEnvVar, "GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = resolveAuth("", "GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s or GEMINI_API_KEY", valueOrDefault(authEnvVar, "auth_env_var"))
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := sdkBaseURL(endpoint, "googleapis.com"); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}
	return client, nil
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *geminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(valueOrDefaultInt(p.model.MaxTokens, domain.DefaultMaxTokens)),
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.modelID(), genai.Text(prompt), config)
	if err != nil {
		return "", err
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	return strings.TrimSpace(response.String()), nil
}

func (p *geminiProvider) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := p.client.Models.CountTokens(ctx, p.modelID(), genai.Text(text), nil)
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, errors.New("empty count tokens response")
	}
	return int(resp.TotalTokens), nil
}

func (p *geminiProvider) modelID() string {
	return valueOrDefault(p.model.ModelID, defaultGeminiModel)
}
