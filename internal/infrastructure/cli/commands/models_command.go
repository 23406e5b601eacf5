package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/internal/domain"
)

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(deps *Deps) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Show the selectable models and chunk options",
	}

	modelsCmd.AddCommand(newModelsListCommand(deps))

	return modelsCmd
}

// newModelsListCommand creates the 'models list' subcommand
func newModelsListCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.ConfigLoader().Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			listModels(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

// listModels prints every configured model, marking the default, then the
// allowed chunk counts.
func listModels(out io.Writer, cfg domain.Config) {
	fmt.Fprintf(out, "NAME\tPROVIDER\tMODEL ID\tDEFAULT\n")

	for _, model := range cfg.Models {
		defaultMarker := ""
		if cfg.Preferences.DefaultModel == model.Name {
			defaultMarker = "*"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
			model.Name,
			model.Kind(),
			model.ModelID,
			defaultMarker)
	}

	fmt.Fprintf(out, "Chunk options: %s (default %d)\n", chunkOptions(), cfg.GetChunkLimit())
}

func chunkOptions() string {
	opts := make([]string, len(domain.ChunkLimits))
	for i, n := range domain.ChunkLimits {
		opts[i] = strconv.Itoa(n)
	}
	return strings.Join(opts, ", ")
}
