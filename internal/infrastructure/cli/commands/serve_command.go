package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/httpapi"
)

// NewServeCommand creates the serve command
func NewServeCommand(deps *Deps) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the question API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := deps.Container(ctx)
			if err != nil {
				return err
			}

			address := valueOr(addr, container.Config.Server.Address)
			if address == "" {
				address = domain.DefaultServerAddress
			}

			registry := query.NewRegistry(container.QueryService)
			handler := httpapi.NewHandler(registry, container.ConfigProvider, container.Logger)
			server := httpapi.NewServer(httpapi.NewRouter(handler), httpapi.DefaultConfig(address), container.Logger)

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", server.Addr())
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
