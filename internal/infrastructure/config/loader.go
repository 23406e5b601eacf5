package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/vino-go/assets"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/filesystem"
	"github.com/doeshing/vino-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "VINO_CONFIG"

// FileLoader loads YAML configuration from ~/.vino/config.yaml (overridable via VINO_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded default.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
		if err := os.WriteFile(path, data, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, err
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config file the loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".vino", "config.yaml")
}

// Parse decodes YAML config and fills unset fields with defaults. Unknown keys
// are rejected so typos surface early.
func Parse(data []byte) (domain.Config, error) {
	var cfg domain.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Default returns the embedded default configuration.
func Default() domain.Config {
	cfg, err := Parse(assets.DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.ChunkLimit == 0 {
		cfg.Preferences.ChunkLimit = domain.DefaultChunkLimit
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = int(domain.DefaultRequestTimeout.Seconds())
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = domain.ProviderKindOllama
	}
	if cfg.Corpus.Backend == "" {
		cfg.Corpus.Backend = domain.CorpusBackendSQLite
	}
	if cfg.Corpus.Table == "" {
		cfg.Corpus.Table = domain.DefaultCorpusTable
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = domain.DefaultIngestWorkers
	}
	if cfg.Ingest.RequestsPerSecond == 0 {
		cfg.Ingest.RequestsPerSecond = domain.DefaultIngestRatePerSec
	}
	if cfg.Ingest.NameColumn == "" {
		cfg.Ingest.NameColumn = domain.DefaultNameColumn
	}
	if cfg.Ingest.TextColumn == "" {
		cfg.Ingest.TextColumn = domain.DefaultTextColumn
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = domain.DefaultServerAddress
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
