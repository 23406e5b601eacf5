package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/corpus"
)

func TestRetrieveRanksFiltersAndTruncates(t *testing.T) {
	store := &stubStore{records: []domain.ContextRecord{
		{Identifier: "Low", Similarity: 0.1},
		{Identifier: "Negative", Similarity: -0.4},
		{Identifier: "High", Similarity: 0.9},
		{Identifier: "Zero", Similarity: 0},
		{Identifier: "Mid", Similarity: 0.5},
		{Identifier: "Mid2", Similarity: 0.5},
		{Identifier: "Tiny", Similarity: 0.01},
		{Identifier: "Small", Similarity: 0.05},
	}}
	svc := &Service{Embedder: stubEmbedder{vec: []float32{1, 0}}, Store: store}

	got, err := svc.Retrieve(context.Background(), "Tell me about wineries in Napa", 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	want := []string{"High", "Mid", "Mid2", "Low"}
	if diff := cmp.Diff(want, identifiers(got)); diff != "" {
		t.Fatalf("Retrieve() mismatch (-want +got):\n%s", diff)
	}
	if store.limit != 4 {
		t.Errorf("store asked for limit %d, want 4", store.limit)
	}
}

func TestRetrieveNoMatchesIsEmptyNotError(t *testing.T) {
	svc := &Service{
		Embedder: stubEmbedder{vec: []float32{1}},
		Store:    &stubStore{records: []domain.ContextRecord{{Identifier: "x", Similarity: -1}}},
	}
	got, err := svc.Retrieve(context.Background(), "anything", 6)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %v", got)
	}
}

func TestRetrieveErrors(t *testing.T) {
	boom := errors.New("backend unreachable")

	tests := []struct {
		name     string
		svc      *Service
		question domain.Question
		limit    int
		want     error
	}{
		{
			name:     "empty question",
			svc:      &Service{Embedder: stubEmbedder{}, Store: &stubStore{}},
			question: "  ",
			limit:    6,
			want:     domain.ErrEmptyQuestion,
		},
		{
			name:     "limit outside allowed set",
			svc:      &Service{Embedder: stubEmbedder{}, Store: &stubStore{}},
			question: "Napa",
			limit:    5,
			want:     domain.ErrInvalidChunkLimit,
		},
		{
			name:     "embedding failure",
			svc:      &Service{Embedder: stubEmbedder{err: boom}, Store: &stubStore{}},
			question: "Napa",
			limit:    6,
			want:     domain.ErrRetrieval,
		},
		{
			name:     "search failure",
			svc:      &Service{Embedder: stubEmbedder{}, Store: &stubStore{err: boom}},
			question: "Napa",
			limit:    6,
			want:     domain.ErrRetrieval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Retrieve(context.Background(), tt.question, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Retrieve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRetrieveEmbeddingDimensionChanged(t *testing.T) {
	store := corpus.NewMemoryStore()
	if err := store.Upsert(context.Background(), []domain.CorpusRecord{
		{Identifier: "Stag's Leap", Text: "Napa Cabernet", Embedding: []float32{1, 0, 0}},
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	svc := &Service{Embedder: stubEmbedder{vec: []float32{1, 0, 0, 0}}, Store: store}

	got, err := svc.Retrieve(context.Background(), "napa", 6)
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("Retrieve() = %v, %v; want ErrRetrieval", got, err)
	}
}

func TestRankProperties(t *testing.T) {
	input := []domain.ContextRecord{
		{Identifier: "a", Similarity: 0.3},
		{Identifier: "b", Similarity: 0.7},
		{Identifier: "c", Similarity: -0.2},
		{Identifier: "d", Similarity: 0.7},
		{Identifier: "e", Similarity: 0.0001},
	}
	for _, limit := range domain.ChunkLimits {
		got := Rank(input, limit)
		if len(got) > limit {
			t.Errorf("limit %d: got %d records", limit, len(got))
		}
		for i, record := range got {
			if record.Similarity <= 0 {
				t.Errorf("limit %d: record %s has similarity %v", limit, record.Identifier, record.Similarity)
			}
			if i > 0 && got[i-1].Similarity < record.Similarity {
				t.Errorf("limit %d: not non-increasing at %d", limit, i)
			}
		}
	}
}

func identifiers(records []domain.ContextRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.Identifier
	}
	return ids
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (stubEmbedder) Name() string { return "stub" }
func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vec, s.err
}

type stubStore struct {
	records []domain.ContextRecord
	err     error
	limit   int
}

func (s *stubStore) SimilaritySearch(_ context.Context, _ []float32, limit int) ([]domain.ContextRecord, error) {
	s.limit = limit
	return s.records, s.err
}
func (s *stubStore) Upsert(context.Context, []domain.CorpusRecord) error { return nil }
func (s *stubStore) Count(context.Context) (int64, error)                { return int64(len(s.records)), nil }
func (s *stubStore) Close() error                                        { return nil }
