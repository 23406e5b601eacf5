package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultRequestTimeout bounds a single question end-to-end
	DefaultRequestTimeout = 120 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultProbeTimeout is used by doctor checks
	DefaultProbeTimeout = 10 * time.Second
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of generated tokens
	DefaultMaxTokens = 1024
	// DefaultEmbeddingDimension matches e5-base-v2 / nomic-embed-text output
	DefaultEmbeddingDimension = 768
)

// Corpus and ingest constants
const (
	DefaultCorpusTable      = "vineyard_data_vectors"
	DefaultNameColumn       = "WINERY_OR_VINEYARD"
	DefaultTextColumn       = "WINERY_INFORMATION"
	DefaultIngestWorkers    = 4
	DefaultIngestRatePerSec = 8.0
	DefaultServerAddress    = "127.0.0.1:8080"
)
