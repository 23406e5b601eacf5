package corpus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const (
	milvusIDField     = "winery_or_vineyard"
	milvusTextField   = "winery_information"
	milvusVectorField = "winery_embedding"
)

// MilvusStore keeps the corpus in a Milvus collection with a COSINE index, so
// search scores are cosine similarities.
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dimension  int
}

// NewMilvusStore connects to Milvus and creates the collection if needed.
func NewMilvusStore(ctx context.Context, settings domain.MilvusSettings, collection string, dimension int) (*MilvusStore, error) {
	if dimension <= 0 {
		dimension = domain.DefaultEmbeddingDimension
	}

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  settings.Address,
		Username: settings.Username,
		Password: settings.Password,
		DBName:   settings.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	store := &MilvusStore{client: c, collection: collection, dimension: dimension}
	if err := store.ensureCollection(ctx); err != nil {
		c.Close(ctx)
		return nil, err
	}
	return store, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		schema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("California winery corpus").
			WithField(entity.NewField().
				WithName(milvusIDField).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(512).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(milvusTextField).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(65535)).
			WithField(entity.NewField().
				WithName(milvusVectorField).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(s.dimension)))

		if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx := index.NewAutoIndex(entity.COSINE)
		createIdxTask, err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, milvusVectorField, idx))
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := createIdxTask.Await(ctx); err != nil {
			return fmt.Errorf("failed to wait for index creation: %w", err)
		}
	}

	loadTask, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}
	return nil
}

func (s *MilvusStore) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.ContextRecord, error) {
	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(
		s.collection,
		limit,
		[]entity.Vector{entity.FloatVector(embedding)},
	).WithANNSField(milvusVectorField).
		WithOutputFields(milvusIDField, milvusTextField))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []domain.ContextRecord{}, nil
	}

	return recordsFromResult(results[0])
}

// recordsFromResult maps one search result set onto context records. Scores
// are cosine similarities because the index uses the COSINE metric.
func recordsFromResult(set milvusclient.ResultSet) ([]domain.ContextRecord, error) {
	if len(set.Scores) < set.ResultCount {
		return nil, fmt.Errorf("milvus returned %d scores for %d results", len(set.Scores), set.ResultCount)
	}
	ids := set.GetColumn(milvusIDField)
	texts := set.GetColumn(milvusTextField)
	if ids == nil || texts == nil {
		return nil, fmt.Errorf("milvus result is missing %s or %s", milvusIDField, milvusTextField)
	}

	records := make([]domain.ContextRecord, 0, set.ResultCount)
	for i := 0; i < set.ResultCount; i++ {
		id, err := ids.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("read %s at %d: %w", milvusIDField, i, err)
		}
		text, err := texts.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("read %s at %d: %w", milvusTextField, i, err)
		}
		records = append(records, domain.ContextRecord{
			Identifier: id,
			Text:       text,
			Similarity: float64(set.Scores[i]),
		})
	}
	return records, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, records []domain.CorpusRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	texts := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, record := range records {
		if len(record.Embedding) != s.dimension {
			return fmt.Errorf("record %q has dimension %d, collection expects %d", record.Identifier, len(record.Embedding), s.dimension)
		}
		ids[i] = record.Identifier
		texts[i] = record.Text
		vectors[i] = record.Embedding
	}

	_, err := s.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection,
		column.NewColumnVarChar(milvusIDField, ids),
		column.NewColumnVarChar(milvusTextField, texts),
		column.NewColumnFloatVector(milvusVectorField, s.dimension, vectors),
	))
	if err != nil {
		return fmt.Errorf("failed to upsert into milvus: %w", err)
	}

	flushTask, err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection))
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return flushTask.Await(ctx)
}

func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(s.collection))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}

func (s *MilvusStore) Close() error {
	return s.client.Close(context.Background())
}

var _ ports.CorpusStore = (*MilvusStore)(nil)
