package corpus

import (
	"context"
	"sync"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// MemoryStore keeps the corpus in process memory. Useful for tests and for
// trying a CSV without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.CorpusRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.CorpusRecord)}
}

func (s *MemoryStore) SimilaritySearch(_ context.Context, embedding []float32, limit int) ([]domain.ContextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.CorpusRecord, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id])
	}
	return topK(embedding, all, limit)
}

func (s *MemoryStore) Upsert(_ context.Context, records []domain.CorpusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if _, exists := s.records[record.Identifier]; !exists {
			s.order = append(s.order, record.Identifier)
		}
		s.records[record.Identifier] = record
	}
	return nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ ports.CorpusStore = (*MemoryStore)(nil)
