package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/korjavin/quizbot/config"
	"github.com/korjavin/quizbot/database"
	"github.com/korjavin/quizbot/quiz"
	"github.com/korjavin/quizbot/redisstore"
)

// openStores picks the storage backend: redis when storage.redis_url is
// set, the sqlite file otherwise.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (quiz.QuestionBank, quiz.SessionStore, io.Closer, error) {
	if cfg.RedisURL != "" {
		store, err := redisstore.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("storage_redis", "url", cfg.RedisURL)
		return store.Bank, store.Sessions, store, nil
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, err
		}
	}
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("storage_sqlite", "path", cfg.DatabasePath)
	return db.Bank, db.Sessions, db, nil
}
