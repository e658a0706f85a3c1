package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"labbook/internal/registry"
)

func newRegistryCommand(cmdCtx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Module registry utilities",
	}

	registryCmd.AddCommand(newRegistryDiscoverCommand(cmdCtx))
	registryCmd.AddCommand(newRegistryValidateCommand(cmdCtx))

	return registryCmd
}

func newRegistryDiscoverCommand(cmdCtx *commandContext) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan the notebook tree for module directories",
		Long: "Walk the notebook directory for module folders named <id>_<name> " +
			"and print the registry that would describe them. With --write the " +
			"registry file is created; existing files are never overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			discovered, err := registry.Discover(cfg.Paths.NotebookDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(discovered) == 0 {
				fmt.Fprintf(out, "No module directories found under %s\n", cfg.Paths.NotebookDir)
				return nil
			}

			rows := make([][]string, 0, len(discovered))
			for _, desc := range discovered {
				rows = append(rows, []string{
					desc.ID,
					desc.Name,
					strconv.FormatFloat(desc.Priority, 'f', -1, 64),
					desc.EntryPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Priority", "Entry"},
				rows, 2,
			))

			if !write {
				fmt.Fprintln(out, "Dry run; pass --write to create the registry file")
				return nil
			}

			target := cfg.RegistryPath()
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("registry file already exists at %s; refusing to overwrite", target)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check registry path: %w", err)
			}
			if err := registry.Save(target, discovered); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote registry with %d modules to %s\n", len(discovered), target)
			fmt.Fprintln(out, "Discovered modules start enabled; adjust flags in the registry file or the sheet")
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the discovered registry file")
	return cmd
}

func newRegistryValidateCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			descriptors, err := cmdCtx.loadRegistry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry path: %s\n", cfg.RegistryPath())
			fmt.Fprintf(out, "Registry valid: %d modules, %d enabled\n",
				len(descriptors), len(registry.EnabledIDs(descriptors)))
			return nil
		},
	}
}
