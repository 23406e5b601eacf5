package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/ai"
	"github.com/doeshing/vino-go/internal/ports"
)

// New builds the embedder named by settings.
func New(ctx context.Context, settings domain.EmbeddingSettings, client *http.Client, logger ports.Logger) (ports.Embedder, error) {
	switch settings.Provider {
	case "", domain.ProviderKindOllama:
		return NewOllamaEmbedder(settings.Endpoint, settings.Model, client, logger), nil
	case domain.ProviderKindGemini:
		genaiClient, err := ai.NewGeminiClient(ctx, settings.AuthEnvVar, settings.Endpoint, client)
		if err != nil {
			return nil, err
		}
		return NewGeminiEmbedder(genaiClient, settings.Model, settings.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", settings.Provider)
	}
}
