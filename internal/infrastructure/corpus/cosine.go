// Package corpus holds the embedded winery corpus stores.
package corpus

import (
	"fmt"
	"math"
	"sort"

	"github.com/doeshing/vino-go/internal/domain"
)

// CosineSimilarity returns the cosine of the angle between a and b. Vectors of
// different length or zero magnitude score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// topK scores records against query and keeps the best limit, ties in input order.
// A record embedded with a different dimension than query is an error.
func topK(query []float32, records []domain.CorpusRecord, limit int) ([]domain.ContextRecord, error) {
	scored := make([]domain.ContextRecord, 0, len(records))
	for _, record := range records {
		if len(record.Embedding) != len(query) {
			return nil, fmt.Errorf("embedding dimension %d does not match stored %d for %q", len(query), len(record.Embedding), record.Identifier)
		}
		scored = append(scored, domain.ContextRecord{
			Identifier: record.Identifier,
			Text:       record.Text,
			Similarity: CosineSimilarity(query, record.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
