package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/korjavin/quizbot/config"
	"github.com/korjavin/quizbot/ingest"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load question/answer files from a directory into the bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("path")
			if err != nil {
				return err
			}
			charset, err := cmd.Flags().GetString("encoding")
			if err != nil {
				return err
			}

			logger, err := loggerFromViper()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			bank, _, closer, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			_, err = ingest.LoadDir(ctx, bank, path, charset, logger)
			return err
		},
	}

	cmd.Flags().String("path", "", "Directory with question/answer text files.")
	cmd.Flags().String("encoding", "koi8-r", "Source file charset: koi8-r|windows-1251|utf-8.")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
