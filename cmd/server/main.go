package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/diewo77/postres-app/internal/catalog"
	"github.com/diewo77/postres-app/internal/config"
	"github.com/diewo77/postres-app/internal/logger"
	"github.com/diewo77/postres-app/internal/server"
	"github.com/diewo77/postres-app/internal/store"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Open the store, run migrations, and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer func() { _ = logger.L.Sync() }()

	kv, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.L.Fatal("store open failed", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.L.Info("migrations completed; exiting as requested")
		return
	}

	// Starter catalog for development only.
	if config.ParseBool("DB_SEED", false) {
		if err := catalog.NewService(kv).Seed(context.Background()); err != nil {
			logger.L.Warn("seed failed", zap.Error(err))
		}
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(kv)}
	go func() {
		logger.L.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L.Error("error during shutdown", zap.Error(err))
	}
	logger.L.Info("server gracefully stopped")
}
