package main

import (
	"context"
	"errors"

	"gradecalc/internal/calculator"
	"gradecalc/internal/chat"
	"gradecalc/internal/config"
	"gradecalc/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP exporters the configuration asks for and
// returns one function that flushes and stops all of them.
func initTelemetry(ctx context.Context, cfg config.Telemetry) (shutdownFunc, error) {
	var shutdowns []shutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Enabled {
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, traceShutdown)

		metricShutdown, err := observability.InitMetrics(ctx)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, metricShutdown)
	}

	if cfg.LogsEnabled {
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	return shutdown, initMetrics()
}

// initMetrics creates the application-specific metric instruments. Add new
// domain InitMetrics calls here as the project grows.
func initMetrics() error {
	if err := calculator.InitMetrics(); err != nil {
		return err
	}
	return chat.InitMetrics()
}
