package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/api"
	"github.com/baharkarakas/wallet-ops/internal/app"
	"github.com/baharkarakas/wallet-ops/internal/config"
	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup", "store", cfg.Store, "err", err)
		os.Exit(1)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:     cfg,
		Log:     log,
		Console: a.Console,
		Tokens:  a.Tokens,
		Admins:  a.Store,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.Store, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	a.Close(shutdownCtx)
}
