package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gradecalc/internal/apperr"
	"gradecalc/internal/handlers"
)

// RecordError is the single exit for failed requests in every domain package.
// It observes the error and writes the JSON error body with the status carried
// by the typed error.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName string, err error, w http.ResponseWriter) {
	handlers.WriteAppError(w, ObserveError(ctx, span, logger, counter, opName, err))
}

// ObserveError marks the span, bumps the domain error counter and logs, without
// touching the response. Streaming handlers use it once headers are already
// sent. Client errors log at warn, server errors at error.
func ObserveError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName string, err error) *apperr.Error {
	appErr := apperr.FromError(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, appErr.Message)

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.String("code", appErr.Code),
	))

	fields := []zap.Field{
		zap.String("operation", opName),
		zap.String("code", appErr.Code),
		zap.Int("status", appErr.Status),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}
	return appErr
}
