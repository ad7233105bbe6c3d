// Package chat serves the companion assistant over HTTP. Answers stream back
// as server-sent events while the conversation is kept in the caller's session.
package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gradecalc/internal/apperr"
	"gradecalc/internal/assistant"
	"gradecalc/internal/handlers"
	"gradecalc/internal/observability"
	"gradecalc/internal/session"
)

var tracer = otel.Tracer("assistant")

type Options struct {
	// HistoryTokens bounds how much of the conversation is sent upstream.
	HistoryTokens int
	// Timeout bounds one answer, from opening the stream to its last token.
	Timeout  time.Duration
	Greeting string
}

type Handler struct {
	provider assistant.Provider
	sessions session.Store
	counter  assistant.TokenCounter
	opts     Options
}

func NewHandler(provider assistant.Provider, sessions session.Store, counter assistant.TokenCounter, opts Options) *Handler {
	if counter == nil {
		counter = assistant.RuneCounter{}
	}
	if opts.HistoryTokens <= 0 {
		opts.HistoryTokens = 2000
	}
	return &Handler{provider: provider, sessions: sessions, counter: counter, opts: opts}
}

func (h *Handler) begin(r *http.Request, op string) (context.Context, trace.Span, *zap.Logger, string) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "assistant."+op,
		trace.WithAttributes(
			attribute.String("assistant.operation", op),
			attribute.String("assistant.provider", h.provider.Name()),
			attribute.String("request.id", requestID),
		),
	)
	return ctx, span, logger, requestID
}

func fail(ctx context.Context, span trace.Span, logger *zap.Logger, op string, err error, w http.ResponseWriter) {
	observability.RecordError(ctx, span, logger, errorCounter, op, err, w)
}

// Ask handles POST /assistant/ask.
//
// Failures before the first byte (bad input, rate limiting, an upstream that
// refuses the request) are ordinary JSON errors. Once streaming has begun the
// answer is recorded in the session even when it is cut short, and the failure
// is reported as an error event followed by done.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	const op = "ask"
	ctx, span, logger, requestID := h.begin(r, op)
	defer span.End()

	var req AskRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		fail(ctx, span, logger, op, apperr.Validation("question must not be blank"), w)
		return
	}

	id := session.IDFromContext(ctx)
	st, err := h.sessions.Load(ctx, id)
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	history := st.History.Trim(h.counter, h.opts.HistoryTokens)
	prompt := assistant.BuildPrompt(req.Mode, req.Context, question, history)

	span.SetAttributes(
		attribute.String("assistant.mode", req.Mode),
		attribute.Int("assistant.history.sent", history.Len()),
		attribute.Int("assistant.history.dropped", st.History.Len()-history.Len()),
	)

	streamCtx := ctx
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	stream, err := h.provider.Stream(streamCtx, prompt)
	if err != nil {
		askCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", h.provider.Name()),
			attribute.String("outcome", "rejected"),
		))
		fail(ctx, span, logger, op, err, w)
		return
	}

	events := startEvents(w)
	tokens := 0
	answer, streamErr := assistant.Collect(streamCtx, stream, func(t assistant.Token) error {
		tokens++
		return events.send(EventToken, tokenEvent{Text: t.Text, Index: t.Index})
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	// The client may already be gone; the exchange is still saved.
	asked := assistant.Message{Role: assistant.RoleUser, Content: question, At: start.UTC()}
	_, saveErr := h.sessions.Update(context.WithoutCancel(ctx), id, func(s *session.State) error {
		s.History = s.History.Append(asked).Append(answer)
		return nil
	})

	clientGone := errors.Is(streamErr, apperr.ErrClientClosed)
	outcome := "ok"
	switch {
	case clientGone:
		outcome = "client_closed"
	case streamErr != nil:
		outcome = "truncated"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", h.provider.Name()),
		attribute.String("outcome", outcome),
	)
	askCounter.Add(ctx, 1, attrs)
	tokenCounter.Add(ctx, int64(tokens), attrs)
	askDuration.Record(ctx, elapsed, attrs)

	span.SetAttributes(
		attribute.Int("assistant.tokens", tokens),
		attribute.Float64("assistant.duration_ms", elapsed),
	)

	if streamErr != nil {
		truncatedCount.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", h.provider.Name())))
		if clientGone {
			span.AddEvent("client closed the stream")
			logger.Info("client closed the stream", zap.String("session_id", id), zap.Error(streamErr))
		} else {
			appErr := observability.ObserveError(ctx, span, logger, errorCounter, op, streamErr)
			_ = events.send(EventError, errorEvent{Error: appErr.Message, Code: appErr.Code})
		}
	}
	if saveErr != nil {
		span.RecordError(saveErr)
		logger.Error("saving conversation", zap.Error(saveErr), zap.String("session_id", id))
	}
	if streamErr == nil && saveErr == nil {
		span.SetStatus(codes.Ok, "")
	}

	logger.Info("assistant answered",
		zap.String("provider", h.provider.Name()),
		zap.String("mode", req.Mode),
		zap.Int("tokens", tokens),
		zap.Bool("truncated", answer.Truncated),
		zap.Float64("duration_ms", elapsed),
		zap.String("session_id", id),
		zap.String("request_id", requestID),
	)

	_ = events.send(EventDone, doneEvent{Message: answer, Provider: h.provider.Name(), Tokens: tokens})
}

// History handles GET /assistant/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	const op = "history.get"
	ctx, span, logger, _ := h.begin(r, op)
	defer span.End()

	st, err := h.sessions.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, newHistoryResponse(st.History, h.counter))
}

// ClearHistory handles DELETE /assistant/history. The conversation goes back
// to the greeting when one is configured.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	const op = "history.clear"
	ctx, span, logger, requestID := h.begin(r, op)
	defer span.End()

	id := session.IDFromContext(ctx)
	var dropped int
	st, err := h.sessions.Update(ctx, id, func(s *session.State) error {
		dropped = s.History.Len()
		s.History = assistant.Cleared(h.opts.Greeting)
		return nil
	})
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	span.SetStatus(codes.Ok, "")

	logger.Info("conversation cleared",
		zap.Int("dropped", dropped),
		zap.String("session_id", id),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newHistoryResponse(st.History, h.counter))
}
