package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/d3code/home-assistant-coingecko/internal/bootstrap"
	"github.com/d3code/home-assistant-coingecko/internal/config"
	infraconfig "github.com/d3code/home-assistant-coingecko/internal/infrastructure/config"
	httpserver "github.com/d3code/home-assistant-coingecko/internal/infrastructure/http"
	"github.com/d3code/home-assistant-coingecko/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator, sensors, cleanup, err := bootstrap.BuildCoordinator(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap coordinator", zap.Error(err))
	}
	defer cleanup()

	// A failed first fetch must not block startup; Run logs and carries on.
	go coordinator.Run(ctx)

	srv := httpserver.NewServer(coordinator, sensors)
	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(srv),
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", addr),
			zap.Duration("scan_interval", cfg.ScanInterval),
			zap.Int("pairs", len(sensors)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	coordinator.Close()
	logger.Info("server stopped")
}
