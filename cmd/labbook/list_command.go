package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"labbook/internal/logging"
	"labbook/internal/registry"
	"labbook/internal/sheet"
)

func newListCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered modules in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			descriptors, err := cmdCtx.loadRegistry()
			if err != nil {
				return err
			}

			overrides, err := sheet.NewService(cfg).Overrides(cmd.Context())
			if err != nil {
				if logger, logErr := cmdCtx.ensureLogger(); logErr == nil {
					logger.Warn("sheet overrides unavailable", logging.Error(err))
				}
			}
			descriptors = registry.ApplyOverrides(descriptors, overrides)

			if enabledOnly {
				filtered := descriptors[:0:0]
				for _, desc := range descriptors {
					if desc.Enabled {
						filtered = append(filtered, desc)
					}
				}
				descriptors = filtered
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), descriptors)
			}

			out := cmd.OutOrStdout()
			if len(descriptors) == 0 {
				fmt.Fprintln(out, "No modules registered")
				return nil
			}

			rows := make([][]string, 0, len(descriptors))
			for _, desc := range descriptors {
				rows = append(rows, []string{
					desc.ID,
					desc.Name,
					strconv.FormatFloat(desc.Priority, 'f', -1, 64),
					enabledCell(desc.Enabled),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Priority", "Enabled"},
				rows, 2,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit module list as JSON")
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Show only enabled modules")
	return cmd
}
