package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const defaultClaudeModel = "claude-3-5-haiku-latest"

type anthropicProvider struct {
	model  domain.ModelDefinition
	client anthropic.Client
}

func newAnthropicProvider(model domain.ModelDefinition, httpClient *http.Client) (ports.Provider, error) {
	apiKey := resolveAuth(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", valueOrDefault(model.AuthEnvVar, "auth_env_var"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}
	if base := sdkBaseURL(model.Endpoint, "api.anthropic.com"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &anthropicProvider{
		model:  model,
		client: anthropic.NewClient(opts...),
	}, nil
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(valueOrDefault(p.model.ModelID, defaultClaudeModel)),
		MaxTokens: int64(valueOrDefaultInt(p.model.MaxTokens, domain.DefaultMaxTokens)),
		Messages:  userMessage(prompt),
	})
	if err != nil {
		return "", err
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(response.String()), nil
}

func (p *anthropicProvider) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := p.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model:    anthropic.Model(valueOrDefault(p.model.ModelID, defaultClaudeModel)),
		Messages: userMessage(text),
	})
	if err != nil {
		return 0, err
	}
	return int(resp.InputTokens), nil
}

func userMessage(text string) []anthropic.MessageParam {
	return []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
	}
}

// sdkBaseURL returns endpoint when it points somewhere other than the public
// API host, so the SDK default is used for the public API.
func sdkBaseURL(endpoint, publicHost string) string {
	if endpoint == "" || strings.Contains(endpoint, publicHost) {
		return ""
	}
	return endpoint
}
