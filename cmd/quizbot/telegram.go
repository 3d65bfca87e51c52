package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/korjavin/quizbot/bot"
	"github.com/korjavin/quizbot/config"
	"github.com/korjavin/quizbot/quiz"
)

func newTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromViper()
			if err != nil {
				return err
			}

			cfg := config.Load()
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bank, sessions, closer, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			engine := quiz.NewEngine(bank, sessions, cfg.Rules, logger)
			adapter, err := bot.NewTelegram(cfg.TelegramToken, engine, logger)
			if err != nil {
				return err
			}

			if err := adapter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
