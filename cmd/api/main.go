package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gradecalc/internal/assistant"
	"gradecalc/internal/calculator"
	"gradecalc/internal/chat"
	"gradecalc/internal/config"
	"gradecalc/internal/observability"
	"gradecalc/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Telemetry
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := telemetryShutdown(flushCtx); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	logger := observability.Logger

	// Grading schemes
	registry, watcher, err := newRegistry(cfg.Scheme, logger)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	// Sessions
	sessions, closeSessions, err := newSessionStore(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logger.Warn("closing session store", zap.Error(err))
		}
	}()

	// Assistant
	provider, err := newProvider(ctx, cfg.Assistant)
	if err != nil {
		return err
	}
	counter := assistant.NewTokenCounter(cfg.Assistant.Model, logger)

	// Router
	router := server.NewRouter(server.Deps{
		Metrics:    observability.NewHTTPMetrics(),
		Calculator: calculator.NewHandler(registry, sessions),
		Assistant: chat.NewHandler(provider, sessions, counter, chat.Options{
			HistoryTokens: cfg.Assistant.HistoryTokens,
			Timeout:       cfg.Assistant.Timeout,
			Greeting:      cfg.Assistant.Greeting,
		}),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("env", cfg.Env),
			zap.String("scheme", registry.Active().Name),
			zap.String("assistant", provider.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, cfg.ShutdownTimeout)
	})

	return g.Wait()
}

func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	observability.Logger.Info("shutting down")
	return srv.Shutdown(ctx)
}
