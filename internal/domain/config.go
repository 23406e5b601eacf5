package domain

// Config mirrors ~/.vino/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models" validate:"required,min=1,dive"`
	Embedding           EmbeddingSettings `yaml:"embedding"`
	Corpus              CorpusSettings    `yaml:"corpus"`
	Ingest              IngestSettings    `yaml:"ingest"`
	Server              ServerSettings    `yaml:"server"`
}

// Preferences captures the initial model selection and request limits.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	UseRAG         bool   `yaml:"use_rag"`
	ChunkLimit     int    `yaml:"chunk_limit" validate:"omitempty,oneof=4 6 8 10 12 14 16"`
	TimeoutSeconds int    `yaml:"timeout" validate:"gte=0"`
}

// EmbeddingSettings configures the model that embeds both the corpus and questions.
type EmbeddingSettings struct {
	Provider   ProviderKind `yaml:"provider" validate:"omitempty,oneof=ollama gemini"`
	Endpoint   string       `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Model      string       `yaml:"model"`
	Dimension  int          `yaml:"dimension" validate:"gte=0"`
	AuthEnvVar string       `yaml:"auth_env_var,omitempty"`
}

// Corpus backends.
const (
	CorpusBackendSQLite = "sqlite"
	CorpusBackendMilvus = "milvus"
	CorpusBackendMemory = "memory"
)

// CorpusSettings selects and configures the domain corpus store.
type CorpusSettings struct {
	Backend string         `yaml:"backend" validate:"omitempty,oneof=sqlite milvus memory"`
	Path    string         `yaml:"path,omitempty"`
	Table   string         `yaml:"table,omitempty" validate:"omitempty,identifier"`
	Milvus  MilvusSettings `yaml:"milvus,omitempty"`
}

// MilvusSettings configures the Milvus backend.
type MilvusSettings struct {
	Address    string `yaml:"address,omitempty"`
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty" validate:"omitempty,identifier"`
}

// IngestSettings bounds corpus ingestion load on the embedding backend.
type IngestSettings struct {
	Workers           int     `yaml:"workers" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	NameColumn        string  `yaml:"name_column,omitempty"`
	TextColumn        string  `yaml:"text_column,omitempty"`
}

// ServerSettings configures `vino serve`.
type ServerSettings struct {
	Address string `yaml:"address,omitempty"`
}
