// Package query runs one question through retrieval, prompt composition,
// completion, token counting and timing.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/vino-go/internal/application/prompt"
	"github.com/doeshing/vino-go/internal/application/tokens"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// Request is a single question plus the selection it should run under.
type Request struct {
	Question  domain.Question
	Selection domain.ModelSelection
	// Timeout overrides preferences.timeout when positive.
	Timeout time.Duration
}

// Service orchestrates the query lifecycle end-to-end.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	Retriever       ports.Retriever
	ProviderFactory ports.ProviderFactory
	Tokens          tokens.Counter
	Logger          ports.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Process answers one question. Retrieval runs only when the selection has RAG
// enabled. Retrieval and generation failures abort the question; token count
// failures only make the count unknown.
func (s *Service) Process(ctx context.Context, req Request) (domain.Answer, error) {
	if s.ConfigProvider == nil || s.ProviderFactory == nil || s.Logger == nil {
		return domain.Answer{}, errors.New("query.Service dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	question := req.Question.Normalize()
	if question.IsEmpty() {
		return domain.Answer{}, domain.ErrEmptyQuestion
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load config: %w", err)
	}
	if err := req.Selection.Validate(cfg); err != nil {
		return domain.Answer{}, err
	}
	modelDef, _ := cfg.FindModelByName(req.Selection.ModelName)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = cfg.GetTimeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	provider, err := s.ProviderFactory.ForModel(modelDef)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: provider init: %w", domain.ErrGeneration, err)
	}

	var records []domain.ContextRecord
	if req.Selection.UseRAG {
		if s.Retriever == nil {
			return domain.Answer{}, fmt.Errorf("%w: no retriever configured", domain.ErrRetrieval)
		}
		records, err = s.Retriever.Retrieve(ctx, question, req.Selection.ChunkLimit)
		if err != nil {
			if !errors.Is(err, domain.ErrRetrieval) {
				err = fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
			}
			return domain.Answer{}, err
		}
	}

	composed := prompt.Compose(domain.PromptRequest{
		Question: question,
		Mode:     domain.ModeFor(req.Selection.UseRAG),
		Context:  records,
	})
	counter := s.counter()
	promptTokens := counter.Count(ctx, provider, composed.Text)

	s.Logger.Info("calling provider", map[string]interface{}{
		"provider": provider.Name(),
		"model":    modelDef.ModelID,
		"mode":     composed.Mode.String(),
		"records":  len(composed.UsedIdentifiers),
	})

	start := s.now()
	response, err := provider.Complete(ctx, composed.Text)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %s: %w", domain.ErrGeneration, provider.Name(), err)
	}
	first := s.now()
	end := s.now()

	metrics := domain.Timings{
		Start:       start,
		FirstResult: first,
		End:         end,
		Tokens:      promptTokens,
	}.Metrics()

	total := promptTokens
	if response != "" {
		total = promptTokens.Add(counter.Count(ctx, provider, response))
	}

	return domain.Answer{
		Question:     question,
		Model:        modelDef.Name,
		Response:     response,
		ContextIDs:   composed.UsedIdentifiers,
		PromptTokens: promptTokens,
		TotalTokens:  total,
		Metrics:      metrics,
	}, nil
}

// ValidateSelection checks sel against the current configuration.
func (s *Service) ValidateSelection(ctx context.Context, sel domain.ModelSelection) error {
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return sel.Validate(cfg)
}

// DefaultSelection returns the selection configured in preferences.
func (s *Service) DefaultSelection(ctx context.Context) (domain.ModelSelection, error) {
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.ModelSelection{}, fmt.Errorf("load config: %w", err)
	}
	return cfg.DefaultSelection(), nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) counter() tokens.Counter {
	c := s.Tokens
	if c.Logger == nil {
		c.Logger = s.Logger
	}
	return c
}
