package corpus

import (
	"context"
	"fmt"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/filesystem"
	"github.com/doeshing/vino-go/internal/ports"
)

// Open returns the corpus store configured in cfg.
func Open(ctx context.Context, cfg domain.Config) (ports.CorpusStore, error) {
	switch cfg.Corpus.Backend {
	case "", domain.CorpusBackendSQLite:
		return NewSQLiteStore(filesystem.ExpandPath(cfg.Corpus.Path), cfg.GetCorpusTable())
	case domain.CorpusBackendMilvus:
		collection := cfg.Corpus.Milvus.Collection
		if collection == "" {
			collection = cfg.GetCorpusTable()
		}
		return NewMilvusStore(ctx, cfg.Corpus.Milvus, collection, cfg.Embedding.Dimension)
	case domain.CorpusBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported corpus backend %q", cfg.Corpus.Backend)
	}
}
