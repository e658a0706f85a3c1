package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labbook/internal/assets"
	"labbook/internal/history"
	"labbook/internal/logging"
)

func newAssetsCommand(cmdCtx *commandContext) *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Shared drive asset utilities",
	}

	assetsCmd.AddCommand(newAssetsFetchCommand(cmdCtx))

	return assetsCmd
}

func newAssetsFetchCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <module-id> <reference>",
		Short: "Download a drive asset into the module's cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			var index assets.Index
			store, storeErr := history.Open(cfg)
			if storeErr != nil {
				logger.Warn("history unavailable, asset index disabled", logging.Error(storeErr))
			} else {
				defer store.Close()
				index = store
			}

			fetcher := assets.New(cfg, logger, index)
			localPath, err := fetcher.Fetch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), localPath)
			return nil
		},
	}
	return cmd
}
