// Package ingest embeds a winery CSV into the corpus store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

const upsertBatchSize = 64

// Result summarises one ingest run.
type Result struct {
	Read    int `json:"read"`
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

// Options names the CSV columns to read.
type Options struct {
	NameColumn string
	TextColumn string
}

// Service embeds rows with the corpus embedder and upserts them into the store.
type Service struct {
	Embedder ports.Embedder
	Store    ports.CorpusStore
	Logger   ports.Logger
	// Workers bounds concurrent embedding calls.
	Workers int
	// RequestsPerSecond throttles embedding calls; zero disables throttling.
	RequestsPerSecond float64
}

// Ingest reads r as CSV and stores every complete row. The first embedding
// failure cancels outstanding work and nothing is written.
func (s *Service) Ingest(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	if s.Embedder == nil || s.Store == nil || s.Logger == nil {
		return Result{}, errors.New("ingest.Service dependencies not satisfied")
	}
	if opts.NameColumn == "" {
		opts.NameColumn = domain.DefaultNameColumn
	}
	if opts.TextColumn == "" {
		opts.TextColumn = domain.DefaultTextColumn
	}

	rows, skipped, err := ReadCSV(r, opts.NameColumn, opts.TextColumn)
	if err != nil {
		return Result{}, err
	}
	result := Result{Read: len(rows) + skipped, Skipped: skipped}
	if len(rows) == 0 {
		return result, nil
	}

	records, err := s.embedAll(ctx, rows)
	if err != nil {
		return result, err
	}

	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		if err := s.Store.Upsert(ctx, records[start:end]); err != nil {
			return result, fmt.Errorf("upsert records %d-%d: %w", start, end-1, err)
		}
		result.Stored = end
	}

	s.Logger.Info("corpus ingested", map[string]interface{}{
		"read":    result.Read,
		"stored":  result.Stored,
		"skipped": result.Skipped,
	})
	return result, nil
}

func (s *Service) embedAll(ctx context.Context, rows []Row) ([]domain.CorpusRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := s.Workers
	if workers <= 0 {
		workers = domain.DefaultIngestWorkers
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		s.Logger.Error("embedding worker panic", fmt.Errorf("%v", p), nil)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.RequestsPerSecond), max(1, int(s.RequestsPerSecond)))
	}

	records := make([]domain.CorpusRecord, len(rows))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, row := range rows {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := limiter.Wait(ctx); err != nil {
				fail(err)
				return
			}
			embedding, err := s.Embedder.Embed(ctx, row.Text)
			if err != nil {
				fail(fmt.Errorf("embed %q: %w", row.Identifier, err))
				return
			}
			records[i] = domain.CorpusRecord{Identifier: row.Identifier, Text: row.Text, Embedding: embedding}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submit %q: %w", row.Identifier, submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	for _, record := range records {
		if len(record.Embedding) == 0 {
			return nil, fmt.Errorf("embedder %s returned an empty vector for %q", s.Embedder.Name(), record.Identifier)
		}
	}
	return records, nil
}
