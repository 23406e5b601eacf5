package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/assets"
	"github.com/doeshing/vino-go/internal/application/ingest"
)

// NewIngestCommand creates the ingest command
func NewIngestCommand(deps *Deps) *cobra.Command {
	var (
		nameColumn string
		textColumn string
		useSample  bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [file.csv]",
		Short: "Embed a winery CSV into the corpus store",
		Long: "Reads a CSV with a winery name column and a description column, embeds each " +
			"description with the configured embedding model and stores it in the corpus.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := openIngestSource(args, useSample)
			if err != nil {
				return err
			}
			defer src.Close()

			ctx := cmd.Context()
			container, err := deps.Container(ctx)
			if err != nil {
				return err
			}
			svc, err := container.IngestService(ctx)
			if err != nil {
				return err
			}

			opts := ingest.Options{
				NameColumn: valueOr(nameColumn, container.Config.Ingest.NameColumn),
				TextColumn: valueOr(textColumn, container.Config.Ingest.TextColumn),
			}
			result, err := svc.Ingest(ctx, src, opts)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", name, err)
			}
			displayIngestResult(cmd.OutOrStdout(), name, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nameColumn, "name-column", "", "CSV column holding the winery or vineyard name")
	cmd.Flags().StringVar(&textColumn, "text-column", "", "CSV column holding the winery description")
	cmd.Flags().BoolVar(&useSample, "sample", false, "Ingest the bundled sample corpus")

	return cmd
}

func openIngestSource(args []string, useSample bool) (io.ReadCloser, string, error) {
	switch {
	case useSample && len(args) > 0:
		return nil, "", errors.New(ErrIngestSourceConflict)
	case useSample:
		return io.NopCloser(bytes.NewReader(assets.SampleCorpusCSV)), "sample corpus", nil
	case len(args) == 0:
		return nil, "", errors.New(ErrIngestSourceRequired)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}

func displayIngestResult(out io.Writer, name string, result ingest.Result) {
	fmt.Fprintf(out, "Ingested %s: %d rows read, %d stored, %d skipped\n",
		name, result.Read, result.Stored, result.Skipped)
}

func valueOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
