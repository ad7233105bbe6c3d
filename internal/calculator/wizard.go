package calculator

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gradecalc/internal/grading"
	"gradecalc/internal/handlers"
	"gradecalc/internal/session"
)

// Wizard handles GET /calculator/standing/wizard.
func (h *Handler) Wizard(w http.ResponseWriter, r *http.Request) {
	const op = "wizard.get"
	ctx, span, logger, _ := begin(r, op)
	defer span.End()

	st, err := h.sessions.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, newWizardResponse(st.Wizard))
}

// WizardSubmit handles POST /calculator/standing/wizard/submit.
func (h *Handler) WizardSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "wizard.submit"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	var req WizardStepRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	var last grading.CategoryResult
	resp, ok := h.transition(ctx, span, logger, requestID, w, op, func(wz grading.Wizard) (grading.Wizard, error) {
		next, res, err := wz.Submit(req.Entries, req.Weight)
		last = res
		return next, err
	})
	if !ok {
		return
	}
	resp.Last = &last
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// WizardSkip handles POST /calculator/standing/wizard/skip.
func (h *Handler) WizardSkip(w http.ResponseWriter, r *http.Request) {
	const op = "wizard.skip"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	if resp, ok := h.transition(ctx, span, logger, requestID, w, op, grading.Wizard.Skip); ok {
		handlers.WriteJSON(w, http.StatusOK, resp)
	}
}

// WizardReset handles POST /calculator/standing/wizard/reset.
func (h *Handler) WizardReset(w http.ResponseWriter, r *http.Request) {
	const op = "wizard.reset"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	reset := func(wz grading.Wizard) (grading.Wizard, error) { return wz.Reset(), nil }
	if resp, ok := h.transition(ctx, span, logger, requestID, w, op, reset); ok {
		handlers.WriteJSON(w, http.StatusOK, resp)
	}
}

// transition applies one wizard step to the caller's session. The session is
// saved only when apply succeeds; otherwise the error response is written and
// ok is false.
func (h *Handler) transition(
	ctx context.Context,
	span trace.Span,
	logger *zap.Logger,
	requestID string,
	w http.ResponseWriter,
	op string,
	apply func(grading.Wizard) (grading.Wizard, error),
) (WizardResponse, bool) {
	id := session.IDFromContext(ctx)
	var category grading.Category

	st, err := h.sessions.Update(ctx, id, func(s *session.State) error {
		category, _ = s.Wizard.Current()
		next, err := apply(s.Wizard)
		if err != nil {
			return err
		}
		s.Wizard = next
		return nil
	})
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return WizardResponse{}, false
	}

	wizardSteps.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	span.SetAttributes(
		attribute.String("wizard.category", string(category)),
		attribute.Int("wizard.cursor", st.Wizard.Cursor),
		attribute.Float64("wizard.total", st.Wizard.Total),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("class standing wizard step",
		zap.String("operation", op),
		zap.String("category", string(category)),
		zap.Int("cursor", st.Wizard.Cursor),
		zap.Float64("total", st.Wizard.Total),
		zap.String("session_id", id),
		zap.String("request_id", requestID),
	)

	return newWizardResponse(st.Wizard), true
}
