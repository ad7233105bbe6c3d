package calculator

import (
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"gradecalc/internal/export"
	"gradecalc/internal/grading"
	"gradecalc/internal/session"
)

// StandingReport handles POST /calculator/standing/report?format=csv|pdf.
func (h *Handler) StandingReport(w http.ResponseWriter, r *http.Request) {
	const op = "standing.report"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	st, ok := h.accumulate(ctx, span, logger, op, w, r)
	if !ok {
		return
	}

	out, err := export.Render(format, export.FromStanding(st), "Class standing")
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	logger.Info("class standing report rendered",
		zap.String("format", string(format)),
		zap.Int("bytes", len(out)),
		zap.String("request_id", requestID),
	)
	writeReport(w, format, "class-standing", out)
}

// WizardReport handles GET /calculator/standing/wizard/report?format=csv|pdf.
func (h *Handler) WizardReport(w http.ResponseWriter, r *http.Request) {
	const op = "wizard.report"
	ctx, span, logger, requestID := begin(r, op)
	defer span.End()

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	st, err := h.sessions.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}

	standing := st.Wizard.Standing()
	out, err := export.Render(format, export.FromStanding(standing), reportTitle(st.Wizard))
	if err != nil {
		fail(ctx, span, logger, op, err, w)
		return
	}
	span.SetAttributes(attribute.String("report.format", string(format)))
	span.SetStatus(codes.Ok, "")

	logger.Info("wizard report rendered",
		zap.String("format", string(format)),
		zap.Int("bytes", len(out)),
		zap.String("request_id", requestID),
	)
	writeReport(w, format, "class-standing", out)
}

func reportTitle(wz grading.Wizard) string {
	if wz.Done() {
		return "Class standing"
	}
	return fmt.Sprintf("Class standing (%d of %d categories)", wz.Cursor, len(grading.Categories))
}

func writeReport(w http.ResponseWriter, format export.Format, base string, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(base)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
