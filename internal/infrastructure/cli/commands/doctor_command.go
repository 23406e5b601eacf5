package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, corpus store, embedder and API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), deps)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, deps *Deps) error {
	ctx := cmd.Context()
	container, err := deps.Container(ctx)
	if err != nil {
		displayDoctorReport(out, domain.HealthReport{Checks: []domain.HealthCheck{{
			Name:    "Config file",
			Status:  domain.HealthError,
			Details: err.Error(),
		}}})
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(ctx)

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.HasFailures() {
		return fmt.Errorf("%w: diagnostics found failures", ErrReported)
	}

	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}
