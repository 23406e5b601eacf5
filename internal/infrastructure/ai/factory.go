package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// Factory builds a provider for each configured model. Anthropic and Gemini
// models go through their SDKs; OpenAI-compatible and Ollama models use the
// plain chat-completions HTTP adapter.
type Factory struct {
	httpClient *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// NewFactoryWithClient is used by tests to point providers at local servers.
func NewFactoryWithClient(client *http.Client) *Factory {
	return &Factory{httpClient: client}
}

func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	providerKind := model.Kind()

	switch providerKind {
	case domain.ProviderKindAnthropic:
		return newAnthropicProvider(model, f.httpClient)
	case domain.ProviderKindGemini:
		return newGeminiProvider(context.Background(), model, f.httpClient)
	case domain.ProviderKindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	default:
		return nil, fmt.Errorf("%w: cannot infer provider for %q", domain.ErrUnsupportedModel, model.Name)
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
