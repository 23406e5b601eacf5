// Package domain defines core business entities and value objects for vino.
//
// This file contains the language model definitions and the per-request model
// selection. The domain layer is independent of infrastructure concerns.
package domain

import (
	"fmt"
	"strings"
)

// ProviderKind identifies the backend family serving a model.
type ProviderKind string

const (
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindGemini    ProviderKind = "gemini"
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindUnknown   ProviderKind = "unknown"
)

// ModelDefinition describes a text-generation model declared in the config file.
// The configured list is the enumerated set of models a user may select.
type ModelDefinition struct {
	Name       string       `yaml:"name" json:"name" validate:"required"`
	Provider   ProviderKind `yaml:"provider" json:"provider" validate:"omitempty,oneof=anthropic gemini openai ollama"`
	Endpoint   string       `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	AuthEnvVar string       `yaml:"auth_env_var,omitempty" json:"-"`
	OrgEnvVar  string       `yaml:"org_env_var,omitempty" json:"-"`
	ModelID    string       `yaml:"model_id" json:"model_id"`
	MaxTokens  int          `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" validate:"gte=0"`
}

// Kind resolves the provider family, inferring it from the endpoint and name
// when the config leaves it blank.
func (m ModelDefinition) Kind() ProviderKind {
	if m.Provider != "" {
		return m.Provider
	}
	name := strings.ToLower(m.Name)
	switch {
	case strings.Contains(m.Endpoint, "anthropic.com"), strings.HasPrefix(name, "claude"):
		return ProviderKindAnthropic
	case strings.Contains(m.Endpoint, "googleapis.com"), strings.HasPrefix(name, "gemini"):
		return ProviderKindGemini
	case strings.Contains(m.Endpoint, "openai.com"), strings.HasPrefix(name, "gpt"):
		return ProviderKindOpenAI
	case strings.Contains(name, "ollama"), strings.Contains(m.Endpoint, "11434"), strings.Contains(m.Endpoint, "localhost"):
		return ProviderKindOllama
	default:
		return ProviderKindUnknown
	}
}

// ChunkLimits enumerates the context chunk counts a user may request. One chunk
// is roughly 200-400 tokens, so the ceiling keeps prompts inside model limits.
var ChunkLimits = []int{4, 6, 8, 10, 12, 14, 16}

// DefaultChunkLimit is the preselected chunk count.
const DefaultChunkLimit = 6

// IsAllowedChunkLimit reports whether n is one of ChunkLimits.
func IsAllowedChunkLimit(n int) bool {
	for _, allowed := range ChunkLimits {
		if n == allowed {
			return true
		}
	}
	return false
}

// ModelSelection is the user's choice for the next question. It persists across
// questions until the user changes it.
type ModelSelection struct {
	ModelName  string `json:"model"`
	ChunkLimit int    `json:"chunk_limit"`
	UseRAG     bool   `json:"use_rag"`
}

// Validate checks the selection against the configured model set.
func (s ModelSelection) Validate(cfg Config) error {
	if !cfg.HasModel(s.ModelName) {
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, s.ModelName)
	}
	if !IsAllowedChunkLimit(s.ChunkLimit) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidChunkLimit, s.ChunkLimit, ChunkLimits)
	}
	return nil
}
