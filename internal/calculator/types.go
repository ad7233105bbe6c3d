package calculator

import "gradecalc/internal/grading"

// PredictRequest is the JSON body for POST /calculator/predict.
type PredictRequest struct {
	Period        string   `json:"period" validate:"required" jsonschema:"enum=prelim,enum=midterm,enum=final,description=Grading period. Aliases such as Prelims or Mid-Term are accepted."`
	DesiredGrade  float64  `json:"desired_grade" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100"`
	ClassStanding float64  `json:"class_standing" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100"`
	PriorGrade    *float64 `json:"prior_grade,omitempty" validate:"omitempty,gte=0,lte=100" jsonschema:"minimum=0,maximum=100,description=Required for midterm and final."`
	NumQuestions  int      `json:"num_questions" validate:"gte=1" jsonschema:"minimum=1"`
}

// OverallRequest is the JSON body for POST /calculator/overall.
type OverallRequest struct {
	Period        string   `json:"period" validate:"required" jsonschema:"enum=prelim,enum=midterm,enum=final"`
	ClassStanding float64  `json:"class_standing" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100"`
	ExamScore     float64  `json:"exam_score" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100"`
	PriorGrade    *float64 `json:"prior_grade,omitempty" validate:"omitempty,gte=0,lte=100" jsonschema:"minimum=0,maximum=100"`
	Scheme        string   `json:"scheme,omitempty" jsonschema:"description=Grading scheme name. Defaults to the active scheme."`
}

// CategoryRequest is one category of a batch class standing submission.
type CategoryRequest struct {
	Category string          `json:"category" validate:"required"`
	Include  bool            `json:"include"`
	Entries  []grading.Entry `json:"entries" validate:"dive"`
	Weight   float64         `json:"weight" jsonschema:"minimum=0,maximum=100"`
}

// StandingRequest is the JSON body for POST /calculator/standing.
type StandingRequest struct {
	Categories []CategoryRequest `json:"categories" validate:"required,min=1,dive"`
}

func (r StandingRequest) submissions() []grading.Submission {
	subs := make([]grading.Submission, 0, len(r.Categories))
	for _, c := range r.Categories {
		subs = append(subs, grading.Submission{
			Category: grading.Category(c.Category),
			Include:  c.Include,
			Entries:  c.Entries,
			Weight:   c.Weight,
		})
	}
	return subs
}

// WizardStepRequest is the JSON body for POST /calculator/standing/wizard/submit.
type WizardStepRequest struct {
	Entries []grading.Entry `json:"entries" validate:"dive"`
	Weight  float64         `json:"weight" jsonschema:"minimum=0,maximum=100"`
}

// LookupResponse is the JSON response for GET /calculator/scheme/lookup.
type LookupResponse struct {
	Percent  float64 `json:"percent"`
	Reported float64 `json:"reported"`
	Point    float64 `json:"point"`
	Label    string  `json:"label"`
	Scheme   string  `json:"scheme"`
}

// SchemeResponse is the JSON response for GET /calculator/scheme.
type SchemeResponse struct {
	Active    string         `json:"active"`
	Available []string       `json:"available"`
	Scheme    grading.Scheme `json:"scheme"`
}

// WizardResponse describes the stepwise class standing form.
type WizardResponse struct {
	Current   grading.Category         `json:"current,omitempty"`
	Step      int                      `json:"step"`
	Steps     int                      `json:"steps"`
	Done      bool                     `json:"done"`
	Total     float64                  `json:"total"`
	Remaining []grading.Category       `json:"remaining"`
	Results   []grading.CategoryResult `json:"results"`
	Last      *grading.CategoryResult  `json:"last,omitempty"`
}

func newWizardResponse(w grading.Wizard) WizardResponse {
	current, _ := w.Current()
	results := w.Results
	if results == nil {
		results = []grading.CategoryResult{}
	}
	remaining := w.Remaining()
	if remaining == nil {
		remaining = []grading.Category{}
	}
	return WizardResponse{
		Current:   current,
		Step:      w.Cursor,
		Steps:     len(grading.Categories),
		Done:      w.Done(),
		Total:     w.Total,
		Remaining: remaining,
		Results:   results,
	}
}
