// cmd/tenderec-web/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenderec/internal/common/config"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/observability"
	"tenderec/internal/proxy"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console", "stderr").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("tenderec-web")
	defer obs.Shutdown()

	srv, err := proxy.New(cfg.Backend, cfg.Server, obs, log)
	if err != nil {
		zapLog.Fatal("proxy setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Proxy listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("backend", cfg.Backend.BaseURL),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("proxy server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping proxy...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping proxy", zap.Error(err))
	}
	zapLog.Info("Proxy stopped gracefully")
}
