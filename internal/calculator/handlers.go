package calculator

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gradecalc/internal/apperr"
	"gradecalc/internal/grading"
	"gradecalc/internal/handlers"
	"gradecalc/internal/observability"
	"gradecalc/internal/schemes"
	"gradecalc/internal/session"
)

var tracer = otel.Tracer("calculator")

// Handler serves the grade calculators. Stateless calculators only need the
// scheme registry; the class standing wizard also reads and writes sessions.
type Handler struct {
	schemes  *schemes.Registry
	sessions session.Store
}

func NewHandler(registry *schemes.Registry, sessions session.Store) *Handler {
	return &Handler{schemes: registry, sessions: sessions}
}

// begin opens the child span for one calculator operation.
func begin(r *http.Request, op string) (context.Context, trace.Span, *zap.Logger, string) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+op,
		trace.WithAttributes(
			attribute.String("calculator.operation", op),
			attribute.String("request.id", requestID),
		),
	)
	return ctx, span, logger, requestID
}

// complete records the operation metrics and closes the span successfully.
// It returns the elapsed time in milliseconds.
func complete(ctx context.Context, span trace.Span, op string, start time.Time) float64 {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("operation", op))
	calcCounter.Add(ctx, 1, attrs)
	calcHistogram.Record(ctx, elapsed, attrs)

	span.SetAttributes(attribute.Float64("calculator.duration_ms", elapsed))
	span.SetStatus(codes.Ok, "")
	return elapsed
}

func fail(ctx context.Context, span trace.Span, logger *zap.Logger, op string, err error, w http.ResponseWriter) {
	observability.RecordError(ctx, span, logger, errorCounter, op, err, w)
}

func parsePeriod(s string) (grading.Period, error) {
	p, err := grading.ParsePeriod(s)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.ErrValidation, err.Error())
	}
	return p, nil
}

// Predict handles POST /calculator/predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	const op = "predict"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	var req PredictRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	span.SetAttributes(
		attribute.String("grading.period", period.String()),
		attribute.Float64("grading.desired_grade", req.DesiredGrade),
		attribute.Int("grading.num_questions", req.NumQuestions),
	)

	start := time.Now()
	pred, err := grading.Predict(grading.PredictInput{
		Period:        period,
		DesiredGrade:  req.DesiredGrade,
		ClassStanding: req.ClassStanding,
		PriorGrade:    req.PriorGrade,
		NumQuestions:  req.NumQuestions,
	})
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	elapsed := complete(ctx, span, op, start)

	if !pred.Feasible {
		infeasibleCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("period", period.String())))
		span.AddEvent("prediction.infeasible", trace.WithAttributes(
			attribute.Float64("required_score", pred.RequiredScore),
			attribute.String("primary", pred.Primary),
		))
	}
	span.SetAttributes(
		attribute.Float64("grading.required_score", pred.RequiredScore),
		attribute.Bool("grading.feasible", pred.Feasible),
	)

	logger.Info("exam score predicted",
		zap.String("period", period.String()),
		zap.Float64("desired_grade", req.DesiredGrade),
		zap.Float64("required_score", pred.RequiredScore),
		zap.Int("num_questions", pred.NumQuestions),
		zap.Bool("feasible", pred.Feasible),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, pred)
}

// Overall handles POST /calculator/overall.
func (h *Handler) Overall(w http.ResponseWriter, r *http.Request) {
	const op = "overall"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	var req OverallRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	scheme, err := h.schemes.Resolve(req.Scheme)
	if err != nil {
		fail(ctx, span, logger, op, apperr.Wrap(err, apperr.ErrValidation, err.Error()), w)
		return
	}

	start := time.Now()
	overall, err := grading.ComputeOverall(grading.OverallInput{
		Period:        period,
		ClassStanding: req.ClassStanding,
		ExamScore:     req.ExamScore,
		PriorGrade:    req.PriorGrade,
	}, scheme)
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	elapsed := complete(ctx, span, op, start)

	gradeGauge.Record(ctx, overall.Grade, metric.WithAttributes(attribute.String("period", period.String())))
	span.AddEvent("grade.computed", trace.WithAttributes(
		attribute.Float64("grade", overall.Grade),
		attribute.Float64("point", overall.Point),
		attribute.String("scheme", overall.Scheme),
	))

	logger.Info("overall grade computed",
		zap.String("period", period.String()),
		zap.Float64("grade", overall.Grade),
		zap.Float64("point", overall.Point),
		zap.String("label", overall.Label),
		zap.String("scheme", overall.Scheme),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, overall)
}

// Scheme handles GET /calculator/scheme.
func (h *Handler) Scheme(w http.ResponseWriter, r *http.Request) {
	const op = "scheme"
	ctx, span, logger, _ := begin(r, op)
	defer span.End()

	name := r.URL.Query().Get("name")
	scheme, err := h.schemes.Resolve(name)
	if err != nil {
		fail(ctx, span, logger, op, apperr.Wrap(err, apperr.ErrNotFound, err.Error()), w)
		return
	}
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, SchemeResponse{
		Active:    h.schemes.Active().Name,
		Available: h.schemes.Names(),
		Scheme:    scheme,
	})
}

// Lookup handles GET /calculator/scheme/lookup?percent=.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	const op = "lookup"
	ctx, span, logger, _ := begin(r, op)
	defer span.End()

	raw := r.URL.Query().Get("percent")
	percent, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(percent) || math.IsInf(percent, 0) {
		fail(ctx, span, logger, op, apperr.Validation("percent must be a number, got %q", raw), w)
		return
	}
	scheme, err := h.schemes.Resolve(r.URL.Query().Get("scheme"))
	if err != nil {
		fail(ctx, span, logger, op, apperr.Wrap(err, apperr.ErrValidation, err.Error()), w)
		return
	}

	start := time.Now()
	band := scheme.Lookup(percent)
	complete(ctx, span, op, start)

	handlers.WriteJSON(w, http.StatusOK, LookupResponse{
		Percent:  percent,
		Reported: scheme.Report(percent),
		Point:    band.Point,
		Label:    band.Label,
		Scheme:   scheme.Name,
	})
}

// Standing handles POST /calculator/standing.
func (h *Handler) Standing(w http.ResponseWriter, r *http.Request) {
	const op = "standing"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	st, ok := h.accumulate(ctx, span, logger, op, w, r)
	if !ok {
		return
	}

	logger.Info("class standing computed",
		zap.Float64("total", st.Total),
		zap.Int("categories", len(st.Breakdown)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, st)
}

// accumulate decodes a batch submission and computes it, writing the error
// response itself when that fails.
func (h *Handler) accumulate(ctx context.Context, span trace.Span, logger *zap.Logger, op string, w http.ResponseWriter, r *http.Request) (grading.Standing, bool) {
	var req StandingRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		fail(ctx, span, logger, op, err, w)
		return grading.Standing{}, false
	}
	span.SetAttributes(attribute.Int("standing.categories", len(req.Categories)))

	start := time.Now()
	st, err := grading.Accumulate(req.submissions())
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return grading.Standing{}, false
	}
	complete(ctx, span, op, start)
	span.SetAttributes(attribute.Float64("standing.total", st.Total))
	return st, true
}
