package calculator

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/codes"

	"gradecalc/internal/apperr"
	"gradecalc/internal/grading"
	"gradecalc/internal/handlers"
)

// requestSchemas lists the bodies whose JSON Schema is published.
var requestSchemas = map[string]any{
	"predict":     &PredictRequest{},
	"overall":     &OverallRequest{},
	"standing":    &StandingRequest{},
	"wizard-step": &WizardStepRequest{},
	"scheme":      &grading.Scheme{},
}

func SchemaNames() []string {
	names := make([]string, 0, len(requestSchemas))
	for name := range requestSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema handles GET /calculator/schema/{name}.
func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	const op = "schema"
	ctx, span, logger, _ := begin(r, op)
	defer span.End()

	name := chi.URLParam(r, "name")
	v, ok := requestSchemas[name]
	if !ok {
		err := apperr.Clone(apperr.ErrNotFound, "no schema named "+name).WithDetails(SchemaNames()...)
		fail(ctx, span, logger, op, err, w)
		return
	}

	reflector := &jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(v)
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, schema)
}
