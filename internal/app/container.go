package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	configapp "github.com/doeshing/vino-go/internal/application/config"
	"github.com/doeshing/vino-go/internal/application/doctor"
	"github.com/doeshing/vino-go/internal/application/ingest"
	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/application/retrieval"
	"github.com/doeshing/vino-go/internal/application/tokens"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/ai"
	"github.com/doeshing/vino-go/internal/infrastructure/config"
	"github.com/doeshing/vino-go/internal/infrastructure/corpus"
	"github.com/doeshing/vino-go/internal/infrastructure/embedding"
	"github.com/doeshing/vino-go/internal/pkg/logger"
	"github.com/doeshing/vino-go/internal/ports"
)

// Options shapes the container.
type Options struct {
	// ConfigPath overrides VINO_CONFIG and ~/.vino/config.yaml.
	ConfigPath string
	Verbose    bool
	// LogWriter defaults to stderr.
	LogWriter io.Writer
}

// Container wires up application services with infrastructure adapters.
// The corpus store and embedder are opened on first use, so plain-mode
// questions and config commands never touch the database.
type Container struct {
	Config          domain.Config
	ConfigProvider  ports.ConfigProvider
	ConfigLoader    *config.FileLoader
	Logger          ports.Logger
	HTTPClient      *http.Client
	ProviderFactory ports.ProviderFactory
	QueryService    *query.Service
	DoctorService   *doctor.Service

	// OpenCorpus and NewEmbedder default to the configured backends.
	OpenCorpus  func(context.Context, domain.Config) (ports.CorpusStore, error)
	NewEmbedder func(context.Context, domain.Config) (ports.Embedder, error)

	mu       sync.Mutex
	store    ports.CorpusStore
	embedder ports.Embedder
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := configapp.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgLoader.Path(), err)
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log := logger.NewWithWriter(w, opts.Verbose)

	// Deadlines come from request contexts.
	httpClient := &http.Client{}

	c := &Container{
		Config:          cfg,
		ConfigProvider:  cfgLoader,
		ConfigLoader:    cfgLoader,
		Logger:          log,
		HTTPClient:      httpClient,
		ProviderFactory: ai.NewFactoryWithClient(httpClient),
		OpenCorpus:      corpus.Open,
	}
	c.NewEmbedder = func(ctx context.Context, cfg domain.Config) (ports.Embedder, error) {
		return embedding.New(ctx, cfg.Embedding, httpClient, log)
	}

	c.QueryService = &query.Service{
		ConfigProvider:  cfgLoader,
		Retriever:       lazyRetriever{c: c},
		ProviderFactory: c.ProviderFactory,
		Tokens:          tokens.Counter{Logger: log},
		Logger:          log,
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		OpenCorpus:     c.OpenCorpus,
		NewEmbedder:    c.NewEmbedder,
	}

	return c, nil
}

// CorpusStore opens the configured store once and reuses it.
func (c *Container) CorpusStore(ctx context.Context) (ports.CorpusStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return c.store, nil
	}
	if c.OpenCorpus == nil {
		return nil, errors.New("corpus store unavailable")
	}
	store, err := c.OpenCorpus(ctx, c.Config)
	if err != nil {
		return nil, fmt.Errorf("open corpus store: %w", err)
	}
	c.store = store
	return store, nil
}

// Embedder builds the configured embedder once and reuses it.
func (c *Container) Embedder(ctx context.Context) (ports.Embedder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.embedder != nil {
		return c.embedder, nil
	}
	if c.NewEmbedder == nil {
		return nil, errors.New("embedder unavailable")
	}
	embedder, err := c.NewEmbedder(ctx, c.Config)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}
	c.embedder = embedder
	return embedder, nil
}

// Retriever returns a retrieval service over the shared store and embedder.
func (c *Container) Retriever(ctx context.Context) (*retrieval.Service, error) {
	embedder, err := c.Embedder(ctx)
	if err != nil {
		return nil, err
	}
	store, err := c.CorpusStore(ctx)
	if err != nil {
		return nil, err
	}
	return &retrieval.Service{Embedder: embedder, Store: store, Logger: c.Logger}, nil
}

// IngestService returns an ingest service bound to the configured store and
// embedder, with the configured worker and rate limits.
func (c *Container) IngestService(ctx context.Context) (*ingest.Service, error) {
	embedder, err := c.Embedder(ctx)
	if err != nil {
		return nil, err
	}
	store, err := c.CorpusStore(ctx)
	if err != nil {
		return nil, err
	}
	return &ingest.Service{
		Embedder:          embedder,
		Store:             store,
		Logger:            c.Logger,
		Workers:           c.Config.GetIngestWorkers(),
		RequestsPerSecond: c.Config.Ingest.RequestsPerSecond,
	}, nil
}

// Close releases the corpus store if it was opened.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// lazyRetriever defers opening the corpus until a RAG question arrives.
type lazyRetriever struct {
	c *Container
}

func (r lazyRetriever) Retrieve(ctx context.Context, question domain.Question, limit int) ([]domain.ContextRecord, error) {
	svc, err := r.c.Retriever(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return svc.Retrieve(ctx, question, limit)
}

var _ ports.Retriever = lazyRetriever{}
