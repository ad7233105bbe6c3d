package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gradecalc/internal/apperr"
	"gradecalc/internal/handlers"
)

func requestContext() (trace.Span, context.Context) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	return trace.SpanFromContext(ctx), ctx
}

func TestRecordErrorWritesTypedErrorResponse(t *testing.T) {
	span, ctx := requestContext()
	core, logs := observer.New(zap.DebugLevel)

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	w := httptest.NewRecorder()
	RecordError(ctx, span, zap.New(core), counter, "predict", apperr.Validation("num_questions must be at least 1"), w)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body handlers.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if body.Error != "num_questions must be at least 1" || body.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected body %+v", body)
	}

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Fatalf("expected request_id req-1, got %#v", got)
	}
}

func TestRecordErrorTreatsUntypedErrorsAsInternal(t *testing.T) {
	span, ctx := requestContext()
	core, logs := observer.New(zap.DebugLevel)

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	w := httptest.NewRecorder()
	RecordError(ctx, span, zap.New(core), counter, "overall", errors.New("disk on fire"), w)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if entries := logs.All(); len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error entry, got %+v", entries)
	}
}

func TestObserveErrorLeavesResponseAlone(t *testing.T) {
	span, ctx := requestContext()
	core, logs := observer.New(zap.DebugLevel)

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	appErr := ObserveError(ctx, span, zap.New(core), counter, "ask", apperr.Clone(apperr.ErrRateLimited, "slow down"))
	if appErr.Status != http.StatusTooManyRequests || appErr.Code != "RATE_LIMITED" {
		t.Fatalf("unexpected error %+v", appErr)
	}

	entries := logs.FilterMessage("slow down").All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}
