// Package retrieval turns a question into a similarity-ranked context window.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// Service embeds the question with the corpus embedding model and ranks corpus
// records by cosine similarity.
type Service struct {
	Embedder ports.Embedder
	Store    ports.CorpusStore
	Logger   ports.Logger
}

// Retrieve returns at most limit records with strictly positive similarity,
// best first. No match is an empty result, not an error.
func (s *Service) Retrieve(ctx context.Context, question domain.Question, limit int) ([]domain.ContextRecord, error) {
	if s.Embedder == nil || s.Store == nil {
		return nil, errors.New("retrieval.Service dependencies not satisfied")
	}
	if question.IsEmpty() {
		return nil, domain.ErrEmptyQuestion
	}
	if !domain.IsAllowedChunkLimit(limit) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidChunkLimit, limit)
	}

	embedding, err := s.Embedder.Embed(ctx, string(question.Normalize()))
	if err != nil {
		return nil, fmt.Errorf("%w: embed question with %s: %w", domain.ErrRetrieval, s.Embedder.Name(), err)
	}

	candidates, err := s.Store.SimilaritySearch(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %w", domain.ErrRetrieval, err)
	}

	records := Rank(candidates, limit)
	if s.Logger != nil {
		s.Logger.Debug("retrieved context", map[string]interface{}{
			"candidates": len(candidates),
			"kept":       len(records),
			"limit":      limit,
		})
	}
	return records, nil
}

// Rank drops records with similarity <= 0, orders the rest by descending
// similarity (ties keep their input order) and truncates to limit.
func Rank(candidates []domain.ContextRecord, limit int) []domain.ContextRecord {
	ranked := make([]domain.ContextRecord, 0, len(candidates))
	for _, record := range candidates {
		if record.Similarity > 0 {
			ranked = append(ranked, record)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

var _ ports.Retriever = (*Service)(nil)
