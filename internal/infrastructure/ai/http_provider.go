package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOllamaEndpoint = "http://localhost:11434/v1/chat/completions"
)

// httpProvider talks to any chat-completions compatible endpoint. These
// backends expose no tokenizer, so CountTokens always reports unsupported.
type httpProvider struct {
	name       string
	model      domain.ModelDefinition
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	defaultEndpoint string
	defaultModel    string
	setHeaders      func(*http.Request, domain.ModelDefinition) error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c chatCompletionResponse) FirstMessage() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Choices[0].Message.Content)
}

func newHTTPProvider(name string, model domain.ModelDefinition, client *http.Client, adapter providerAdapter) ports.Provider {
	return &httpProvider{
		name:       name,
		model:      model,
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *httpProvider) Complete(ctx context.Context, prompt string) (string, error) {
	payload := chatCompletionRequest{
		Model:     valueOrDefault(p.model.ModelID, p.adapter.defaultModel),
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: valueOrDefaultInt(p.model.MaxTokens, domain.DefaultMaxTokens),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := valueOrDefault(p.model.Endpoint, p.adapter.defaultEndpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.model); err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var decoded chatCompletionResponse
	decodeErr := json.Unmarshal(raw, &decoded)
	if resp.StatusCode >= 400 {
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("%s: %s: %s", p.name, resp.Status, decoded.Error.Message)
		}
		return "", fmt.Errorf("%s: %s", p.name, resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.name, decodeErr)
	}
	return decoded.FirstMessage(), nil
}

func (p *httpProvider) CountTokens(context.Context, string) (int, error) {
	return 0, fmt.Errorf("%w: %s", domain.ErrTokenCountUnsupported, p.name)
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		defaultEndpoint: defaultOpenAIEndpoint,
		defaultModel:    "gpt-4o-mini",
		setHeaders:      setOpenAIHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		defaultEndpoint: defaultOllamaEndpoint,
		defaultModel:    "llama3.1",
		setHeaders:      setOllamaHeaders,
	}
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := resolveAuth(model.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", valueOrDefault(model.AuthEnvVar, "auth_env_var"))
	}
	req.Header.Set("authorization", "Bearer "+apiKey)

	if org := resolveAuth(model.OrgEnvVar, "OPENAI_ORG_ID"); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}
	return nil
}

func setOllamaHeaders(req *http.Request, model domain.ModelDefinition) error {
	if model.AuthEnvVar == "" {
		return nil
	}
	if key := resolveAuth(model.AuthEnvVar, ""); key != "" {
		req.Header.Set("authorization", "Bearer "+key)
	}
	return nil
}
