package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"registration_backend/internal/app/di"
	"registration_backend/internal/app/router"
	"registration_backend/internal/feature/registration/adapters"
	reghandler "registration_backend/internal/feature/registration/transport/handler"
	"registration_backend/internal/platform/clock"
	"registration_backend/internal/platform/config"
	infradb "registration_backend/internal/platform/db"
	"registration_backend/internal/platform/http/handler"
	jwtmw "registration_backend/internal/platform/jwt"
	"registration_backend/internal/platform/logger"
	"registration_backend/internal/platform/metrics"
	infraredis "registration_backend/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// db
	db, err := infradb.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	if cfg.Database.RunMigrations {
		if err := adapters.AutoMigrate(db); err != nil {
			return err
		}
		slog.Info("database migrated")
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if rdb, err = infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Usecase
	notifier, err := di.NewNotifier(ctx, cfg, rdb, os.Stdout)
	if err != nil {
		return err
	}
	registration, err := di.NewRegistration(cfg, db, notifier, m)
	if err != nil {
		return err
	}

	// ルータ生成
	r := router.NewRouter(router.Options{
		Health:       handler.NewHealthHandler(sqlDB, clock.System{}.Now),
		Registration: reghandler.NewRegistrationHandler(registration),
		RequireUser:  reghandler.RequireUser(registration, jwtmw.NewVerifier(cfg.JWT.Secret)),
		RequireBasic: reghandler.RequireBasic(registration),
		Metrics:      m,
		Gatherer:     reg,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr, "notifier", cfg.Notifier.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
