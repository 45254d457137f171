package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/audit"
	"github.com/taka-pay/taka_pay/internal/config"
	"github.com/taka-pay/taka_pay/internal/infra"
	"github.com/taka-pay/taka_pay/internal/logging"
	"github.com/taka-pay/taka_pay/internal/server"
	"github.com/taka-pay/taka_pay/internal/session"
	"github.com/taka-pay/taka_pay/internal/snapshot"
	"github.com/taka-pay/taka_pay/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	snapshots := snapshot.NewStore(cfg.SnapshotPath)
	store := account.NewStore()
	store.Restore(snapshots.Load())
	logger.Info("accounts restored", "count", store.Len(), "path", cfg.SnapshotPath)

	trail := audit.NewFileTrail(cfg.AuditLogPath, logger)
	svc := wallet.NewService(store, snapshots, trail, logger)
	sessions := session.NewManager(cfg.SessionTTL)

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	srv, err := server.New(cfg, svc, sessions, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
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
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
