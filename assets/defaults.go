package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// SampleCorpusCSV is a small winery corpus for trying ingestion.
//
//go:embed defaults/wineries.csv
var SampleCorpusCSV []byte
