package domain

import (
	"fmt"
	"time"
)

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Models {
		if model.Name == c.Preferences.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// ModelNames returns the configured model names in declaration order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for _, model := range c.Models {
		names = append(names, model.Name)
	}
	return names
}

// DefaultSelection builds the selection a new session starts with.
func (c *Config) DefaultSelection() ModelSelection {
	name := c.Preferences.DefaultModel
	if name == "" && len(c.Models) > 0 {
		name = c.Models[0].Name
	}
	return ModelSelection{
		ModelName:  name,
		ChunkLimit: c.GetChunkLimit(),
		UseRAG:     c.Preferences.UseRAG,
	}
}

// GetChunkLimit returns the preferred chunk count, or DefaultChunkLimit when unset.
func (c *Config) GetChunkLimit() int {
	if c.Preferences.ChunkLimit <= 0 {
		return DefaultChunkLimit
	}
	return c.Preferences.ChunkLimit
}

// GetTimeout returns the per-question deadline.
func (c *Config) GetTimeout() time.Duration {
	if c.Preferences.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.Preferences.TimeoutSeconds) * time.Second
}

// GetIngestWorkers returns the embedding worker count for ingestion.
func (c *Config) GetIngestWorkers() int {
	if c.Ingest.Workers <= 0 {
		return DefaultIngestWorkers
	}
	return c.Ingest.Workers
}

// GetCorpusTable returns the corpus table or collection name.
func (c *Config) GetCorpusTable() string {
	if c.Corpus.Table != "" {
		return c.Corpus.Table
	}
	return DefaultCorpusTable
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}
	if c.Preferences.ChunkLimit != 0 && !IsAllowedChunkLimit(c.Preferences.ChunkLimit) {
		return fmt.Errorf("preferences.chunk_limit must be one of %v, got %d", ChunkLimits, c.Preferences.ChunkLimit)
	}
	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if seen[model.Name] {
			return fmt.Errorf("model %s declared more than once", model.Name)
		}
		seen[model.Name] = true
	}
	if c.Corpus.Backend == CorpusBackendMilvus && c.Corpus.Milvus.Address == "" {
		return fmt.Errorf("corpus.milvus.address is required for the milvus backend")
	}
	return nil
}
