// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The question-answering core depends only on these abstractions. Concrete
// adapters for embedding models, corpus stores, completion backends and
// tokenizers live in the infrastructure layer.
package ports

import (
	"context"

	"github.com/doeshing/vino-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.vino/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Embedder turns text into a fixed-dimension vector. The corpus and the
// questions must be embedded by the same model.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CorpusStore holds the embedded domain records.
type CorpusStore interface {
	// SimilaritySearch returns up to limit records scored by cosine similarity
	// against the query embedding, best first.
	SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.ContextRecord, error)
	// Upsert stores records, replacing any with the same identifier.
	Upsert(ctx context.Context, records []domain.CorpusRecord) error
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Retriever converts a question into ranked context records.
type Retriever interface {
	Retrieve(ctx context.Context, question domain.Question, limit int) ([]domain.ContextRecord, error)
}

// Completer generates text for a prompt. One request, one response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Tokenizer counts tokens under a model's tokenizer.
type Tokenizer interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Provider is a text-generation backend bound to one configured model.
type Provider interface {
	Completer
	Tokenizer
	Name() string
	Model() domain.ModelDefinition
}

// ProviderFactory builds provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
