package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"registration_backend/internal/app/di"
	"registration_backend/internal/platform/config"
	"registration_backend/internal/platform/logger"
	"registration_backend/internal/platform/mailqueue"
	infraredis "registration_backend/internal/platform/redis"
)

// mailer は Redis キューに積まれたアクティベーションメールを配送します。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("mailer exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	if !cfg.Redis.Enabled() {
		return errors.New("mailer requires redis (REDIS_HOST)")
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}()

	sender, err := di.NewDeliveryMailer(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	queue := mailqueue.NewQueue(rdb, cfg.Notifier.QueueKey)
	return mailqueue.NewWorker(queue, sender, cfg.Notifier.MaxAttempts, cfg.Notifier.RetryBackoff).Run(ctx)
}
