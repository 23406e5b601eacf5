package doctor

import (
	"context"
	"fmt"
	"os"

	configapp "github.com/doeshing/vino-go/internal/application/config"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const probeText = "Napa Valley"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	OpenCorpus     func(context.Context, domain.Config) (ports.CorpusStore, error)
	NewEmbedder    func(context.Context, domain.Config) (ports.Embedder, error)
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("version %s, %d models", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	ctx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()

	if s.OpenCorpus != nil {
		checks = append(checks, corpusCheck(ctx, s.OpenCorpus, cfg))
	}
	if s.NewEmbedder != nil {
		checks = append(checks, embedderCheck(ctx, s.NewEmbedder, cfg))
	}
	checks = append(checks, apiCheck(cfg.Models))

	return domain.HealthReport{Checks: checks}, nil
}

func corpusCheck(ctx context.Context, open func(context.Context, domain.Config) (ports.CorpusStore, error), cfg domain.Config) domain.HealthCheck {
	store, err := open(ctx, cfg)
	if err != nil {
		return fail("Corpus store", err.Error())
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return fail("Corpus store", err.Error())
	}
	if n == 0 {
		return warn("Corpus store", fmt.Sprintf("%s is empty, run `vino ingest <file.csv>`", cfg.GetCorpusTable()))
	}
	return ok("Corpus store", fmt.Sprintf("%d records in %s", n, cfg.GetCorpusTable()))
}

func embedderCheck(ctx context.Context, build func(context.Context, domain.Config) (ports.Embedder, error), cfg domain.Config) domain.HealthCheck {
	embedder, err := build(ctx, cfg)
	if err != nil {
		return fail("Embedding model", err.Error())
	}
	vec, err := embedder.Embed(ctx, probeText)
	if err != nil {
		return fail("Embedding model", fmt.Sprintf("%s: %v", embedder.Name(), err))
	}
	if cfg.Embedding.Dimension > 0 && len(vec) != cfg.Embedding.Dimension {
		return warn("Embedding model", fmt.Sprintf("%s returned %d dimensions, config says %d", embedder.Name(), len(vec), cfg.Embedding.Dimension))
	}
	return ok("Embedding model", fmt.Sprintf("%s (%d dimensions)", embedder.Name(), len(vec)))
}

func apiCheck(models []domain.ModelDefinition) domain.HealthCheck {
	for _, model := range models {
		switch model.Kind() {
		case domain.ProviderKindAnthropic:
			if envMissing(model.AuthEnvVar, "ANTHROPIC_API_KEY") {
				return warn("API keys", fmt.Sprintf("%s: ANTHROPIC_API_KEY missing", model.Name))
			}
		case domain.ProviderKindOpenAI:
			if envMissing(model.AuthEnvVar, "OPENAI_API_KEY") {
				return warn("API keys", fmt.Sprintf("%s: OPENAI_API_KEY missing", model.Name))
			}
		case domain.ProviderKindGemini:
			if envMissing(model.AuthEnvVar, "GEMINI_API_KEY") && envMissing("", "GOOGLE_API_KEY") {
				return warn("API keys", fmt.Sprintf("%s: GEMINI_API_KEY missing", model.Name))
			}
		}
	}
	return ok("API keys", "detected for configured providers")
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
