package corpus

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/filesystem"
	"github.com/doeshing/vino-go/internal/ports"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name can be used as a corpus table.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// DefaultSQLitePath is ~/.vino/corpus.db.
func DefaultSQLitePath() string {
	return filepath.Join(filesystem.UserHomeDir(), ".vino", "corpus.db")
}

// SQLiteStore persists the corpus in a SQLite database. Embeddings are stored
// as little-endian float32 blobs and scored in process.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	table string
	mu    sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path and ensures the table exists.
func NewSQLiteStore(path, table string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if table == "" {
		table = domain.DefaultCorpusTable
	}
	if !ValidTableName(table) {
		return nil, fmt.Errorf("invalid corpus table name %q", table)
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, table: table}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize corpus table: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		winery_or_vineyard TEXT PRIMARY KEY,
		winery_information TEXT NOT NULL,
		winery_embedding BLOB NOT NULL
	);`, s.table))
	return err
}

// SimilaritySearch scores every stored record against embedding.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.ContextRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT winery_or_vineyard, winery_information, winery_embedding FROM %q ORDER BY rowid`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CorpusRecord
	for rows.Next() {
		var rec domain.CorpusRecord
		var blob []byte
		if err := rows.Scan(&rec.Identifier, &rec.Text, &blob); err != nil {
			return nil, err
		}
		rec.Embedding, err = decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.Identifier, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topK(embedding, records, limit)
}

// Upsert inserts records in one transaction, replacing existing identifiers.
func (s *SQLiteStore) Upsert(ctx context.Context, records []domain.CorpusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q
		(winery_or_vineyard, winery_information, winery_embedding) VALUES (?, ?, ?)
		ON CONFLICT(winery_or_vineyard) DO UPDATE SET
			winery_information = excluded.winery_information,
			winery_embedding = excluded.winery_embedding`, s.table))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, record.Identifier, record.Text, encodeVector(record.Embedding)); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %q: %w", record.Identifier, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, s.table)).Scan(&n)
	return n, err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}

var _ ports.CorpusStore = (*SQLiteStore)(nil)
