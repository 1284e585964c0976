package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldmarshal/career-league/internal/app"
	"github.com/fieldmarshal/career-league/internal/config"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(bootCtx, cfg, logger)
	bootCancel()
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	a.StartBackground()

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("http server stopped")
}

func slogLevel(level logging.Level) slog.Level {
	switch {
	case level <= logging.LevelDebug:
		return slog.LevelDebug
	case level == logging.LevelInfo:
		return slog.LevelInfo
	case level == logging.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
