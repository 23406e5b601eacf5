package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/internal/app"
	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	return newRootCommand(commands.NewDeps(app.Options{
		ConfigPath: opts.ConfigPath,
		Verbose:    opts.Verbose,
	}))
}

func newRootCommand(deps *commands.Deps) *cobra.Command {
	askCmd := newAskCommand(deps)

	root := &cobra.Command{
		Use:   "vino [question]",
		Short: "vino - California wine country visit assistant",
		Long: "vino answers questions about visiting California wineries, optionally grounding " +
			"the answer in a local corpus of winery descriptions.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetContext(cmd.Context())
			return askCmd.RunE(askCmd, args)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return deps.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&deps.Options.ConfigPath, "config", deps.Options.ConfigPath, "Config file (default $VINO_CONFIG or ~/.vino/config.yaml)")
	root.PersistentFlags().BoolVar(&deps.Options.Verbose, "debug", deps.Options.Verbose, "Enable verbose logging")

	root.AddCommand(askCmd)
	root.AddCommand(newChatCommand(deps))
	root.AddCommand(commands.NewIngestCommand(deps))
	root.AddCommand(commands.NewModelsCommand(deps))
	root.AddCommand(commands.NewConfigCommand(deps))
	root.AddCommand(commands.NewDoctorCommand(deps))
	root.AddCommand(commands.NewServeCommand(deps))
	root.AddCommand(commands.NewVersionCommand())
	return root
}

// selectionFlags overrides the configured selection for one command.
type selectionFlags struct {
	model   string
	useRAG  bool
	chunks  int
	timeout time.Duration
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name (default from config)")
	cmd.Flags().BoolVar(&f.useRAG, "rag", false, "Ground answers in the winery corpus (default from config)")
	cmd.Flags().IntVar(&f.chunks, "chunks", 0, fmt.Sprintf("Context records to retrieve, one of %v", domain.ChunkLimits))
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-question timeout (default from config)")
}

func (f *selectionFlags) apply(cmd *cobra.Command, base domain.ModelSelection) domain.ModelSelection {
	if cmd.Flags().Changed("model") {
		base.ModelName = f.model
	}
	if cmd.Flags().Changed("rag") {
		base.UseRAG = f.useRAG
	}
	if cmd.Flags().Changed("chunks") {
		base.ChunkLimit = f.chunks
	}
	return base
}

func newAskCommand(deps *commands.Deps) *cobra.Command {
	var (
		flags  selectionFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := domain.Question(strings.Join(args, " "))
			if question.IsEmpty() {
				return nil
			}

			ctx := cmd.Context()
			container, err := deps.Container(ctx)
			if err != nil {
				return err
			}

			req := query.Request{
				Question:  question,
				Selection: flags.apply(cmd, container.Config.DefaultSelection()),
				Timeout:   flags.timeout,
			}

			var spinner *Spinner
			if !asJSON {
				spinner = NewSpinner(cmd.ErrOrStderr(), "Thinking...")
				spinner.Start()
			}
			answer, err := container.QueryService.Process(ctx, req)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				RenderWarning(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%w: %w", commands.ErrReported, err)
			}

			if asJSON {
				return RenderJSON(cmd.OutOrStdout(), answer)
			}
			RenderAnswer(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the answer as JSON")

	return cmd
}
