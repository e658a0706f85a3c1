package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"labbook/internal/history"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs, or the module results of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRunDetails(cmd, store, args[0], jsonOutput)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Skipped),
					run.ReportPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "OK", "Failed", "Skipped", "Report"},
				rows, 2, 3, 4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit history as JSON")
	return cmd
}

func showRunDetails(cmd *cobra.Command, store *history.Store, runID string, jsonOutput bool) error {
	results, err := store.ResultsForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No results recorded for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.ModuleID,
			result.Status,
			strconv.Itoa(len(result.ArtifactPaths)),
			formatDuration(result.Duration),
			result.ErrorDetail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Module", "Status", "Artifacts", "Duration", "Error"},
		rows, 2, 3,
	))
	return nil
}
