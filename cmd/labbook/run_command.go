package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"labbook/internal/history"
	"labbook/internal/logging"
	"labbook/internal/orchestrator"
	"labbook/internal/registry"
	"labbook/internal/report"
	"labbook/internal/runner"
	"labbook/internal/sheet"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var noReport bool
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "run [module-id...]",
		Short: "Execute notebook modules and compile the report",
		Long: "Execute every enabled module in priority order, or only the named " +
			"modules when ids are given. Successful modules contribute their " +
			"artifacts to a single merged report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			descriptors, err := cmdCtx.loadRegistry()
			if err != nil {
				return err
			}

			sheetSvc := sheet.NewService(cfg)
			overrides, err := sheetSvc.Overrides(ctx)
			if err != nil {
				// The registry file stays authoritative when the sheet is down.
				logger.Warn("sheet overrides unavailable", logging.Error(err))
			}
			descriptors = registry.ApplyOverrides(descriptors, overrides)

			orch := orchestrator.New(cfg, runner.New(cfg, logger), logger)
			summary, err := orch.RunAll(ctx, descriptors, args)
			if err != nil {
				return err
			}

			reportPath := ""
			var reportErr error
			if !noReport {
				reportPath, reportErr = report.New(cfg, logger).Compile(ctx, summary, titleFlag)
				if reportErr != nil {
					logger.Warn("report compilation failed", logging.Error(reportErr))
				}
			}

			if store, storeErr := history.Open(cfg); storeErr != nil {
				logger.Warn("history unavailable", logging.Error(storeErr))
			} else {
				if saveErr := store.SaveSummary(ctx, summary, reportPath); saveErr != nil {
					logger.Warn("record run failed", logging.Error(saveErr))
				}
				_ = store.Close()
			}

			if statusErr := sheetSvc.PutStatus(ctx, summary); statusErr != nil {
				logger.Warn("sheet status update failed", logging.Error(statusErr))
			}

			renderSummary(cmd, summary, reportPath)

			if failed := summary.FailedIDs(); len(failed) > 0 {
				return fmt.Errorf("%d module(s) failed", len(failed))
			}
			return reportErr
		},
	}

	cmd.Flags().BoolVar(&noReport, "no-report", false, "Run modules without compiling the merged report")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Report title override")
	return cmd
}

func renderSummary(cmd *cobra.Command, summary *orchestrator.Summary, reportPath string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	// Failures lead so they are visible without scrolling.
	for _, result := range summary.Results {
		if result.Status != runner.StatusFailed {
			continue
		}
		fmt.Fprintf(out, "FAILED %s: %s\n", result.ModuleID, result.ErrorDetail)
	}

	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		rows = append(rows, []string{
			result.ModuleID,
			statusCell(result.Status, colorize),
			strconv.Itoa(len(result.ArtifactPaths)),
			formatDuration(result.Duration),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Module", "Status", "Artifacts", "Duration"},
		rows, 2, 3,
	))

	succeeded, failed, skipped := summary.Counts()
	fmt.Fprintf(out, "Run %s: %d succeeded, %d failed, %d skipped in %s\n",
		summary.RunID, succeeded, failed, skipped,
		formatDuration(summary.FinishedAt.Sub(summary.StartedAt)))
	if reportPath != "" {
		fmt.Fprintf(out, "Report: %s\n", reportPath)
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
