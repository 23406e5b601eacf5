package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one corpus entry read from the source file, before embedding.
type Row struct {
	Identifier string
	Text       string
}

// ReadCSV reads rows from a CSV file whose header names nameColumn and
// textColumn (matched case-insensitively). Rows missing either value are
// counted as skipped.
func ReadCSV(r io.Reader, nameColumn, textColumn string) (rows []Row, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errors.New("csv is empty")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	nameIdx, textIdx := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch {
		case strings.EqualFold(col, nameColumn):
			nameIdx = i
		case strings.EqualFold(col, textColumn):
			textIdx = i
		}
	}
	if nameIdx < 0 || textIdx < 0 {
		return nil, 0, fmt.Errorf("csv header must contain %q and %q, got %v", nameColumn, textColumn, header)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read row %d: %w", len(rows)+skipped+2, err)
		}
		name, text := field(record, nameIdx), field(record, textIdx)
		if name == "" || text == "" {
			skipped++
			continue
		}
		rows = append(rows, Row{Identifier: name, Text: text})
	}
	return rows, skipped, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
