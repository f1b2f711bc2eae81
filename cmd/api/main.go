package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/lifeline-connect/lifeline_connect/internal/config"
	"github.com/lifeline-connect/lifeline_connect/internal/infra"
	"github.com/lifeline-connect/lifeline_connect/internal/logging"
	"github.com/lifeline-connect/lifeline_connect/internal/notification"
	"github.com/lifeline-connect/lifeline_connect/internal/routes"
	"github.com/lifeline-connect/lifeline_connect/internal/server"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppName)
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited cleanly")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, sessions and challenges are kept in memory")
	}

	var mailer notification.OTPMailer
	if cfg.EmailJS.Enabled() {
		mailer = notification.NewEmailJSMailer(notification.EmailJSConfig{
			BaseURL:    cfg.EmailJS.BaseURL,
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			PrivateKey: cfg.EmailJS.PrivateKey,
		}, logger)
	} else {
		logger.Warn("EmailJS not configured, one-time codes will be disclosed in responses")
	}

	srv, err := server.New(routes.Deps{Cfg: cfg, Store: st, Cache: cache, Mailer: mailer, Logger: logger})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pg, closePool, err := infra.OpenPostgresStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return pg, closePool, nil
	case config.BackendFirestore:
		client, err := infra.NewFirestoreClient(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID)
		if err != nil {
			return nil, nil, err
		}
		fs := store.NewFirestore(client)
		return fs, func() {
			if err := fs.Close(); err != nil {
				logger.Warn("close firestore", "error", err)
			}
		}, nil
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}
