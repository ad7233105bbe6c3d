package grading

import (
	"fmt"
	"math"
	"sort"

	"gradecalc/internal/apperr"
)

// Names used when attributing an unattainable target to an input.
const (
	InputClassStanding = "class_standing"
	InputPriorGrade    = "prior_grade"
)

type PredictInput struct {
	Period        Period
	DesiredGrade  float64
	ClassStanding float64
	PriorGrade    *float64
	NumQuestions  int
}

// Shortfall is how many weighted grade points an input gave up against a
// perfect 100.
type Shortfall struct {
	Input  string  `json:"input"`
	Points float64 `json:"points"`
}

// Prediction is the exam score needed to reach a desired grade.
//
// RequiredScore is reported even when it cannot be reached; Feasible says
// whether it fits in NumQuestions. A negative RequiredScore means the target
// is already met without the exam.
type Prediction struct {
	Period          Period      `json:"period"`
	DesiredGrade    float64     `json:"desired_grade"`
	RequiredAverage float64     `json:"required_average"`
	RequiredScore   float64     `json:"required_score"`
	NumQuestions    int         `json:"num_questions"`
	Feasible        bool        `json:"feasible"`
	AlreadyMet      bool        `json:"already_met"`
	Shortfalls      []Shortfall `json:"shortfalls,omitempty"`
	Primary         string      `json:"primary,omitempty"`
	Message         string      `json:"message"`
}

// periodWeights returns the class standing, prior grade and exam weights.
func periodWeights(p Period) (cs, prior, exam float64) {
	if p == Prelim {
		return 0.5, 0, 0.5
	}
	return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
}

// Predict solves the period formula for the exam score required to reach
// in.DesiredGrade.
func Predict(in PredictInput) (Prediction, error) {
	if in.NumQuestions < 1 {
		return Prediction{}, apperr.Validation("number of questions must be at least 1, got %d", in.NumQuestions)
	}
	if in.Period.RequiresPrior() && in.PriorGrade == nil {
		return Prediction{}, apperr.Validation("a prior grade is required for the %s period", in.Period)
	}
	if math.IsNaN(in.DesiredGrade) || math.IsNaN(in.ClassStanding) {
		return Prediction{}, apperr.Validation("grades must be numbers")
	}

	desired := ClampPercent(in.DesiredGrade)
	cs := ClampPercent(in.ClassStanding)
	var prior float64
	if in.Period.RequiresPrior() {
		prior = ClampPercent(*in.PriorGrade)
		if math.IsNaN(prior) {
			return Prediction{}, apperr.Validation("prior grade must be a number")
		}
	}

	csWeight, priorWeight, examWeight := periodWeights(in.Period)
	fixed := cs*csWeight + prior*priorWeight
	requiredAverage := desired - fixed
	requiredScore := (requiredAverage / examWeight) * (float64(in.NumQuestions) / 100)

	p := Prediction{
		Period:          in.Period,
		DesiredGrade:    desired,
		RequiredAverage: requiredAverage,
		RequiredScore:   requiredScore,
		NumQuestions:    in.NumQuestions,
		Feasible:        requiredScore <= float64(in.NumQuestions),
		AlreadyMet:      requiredScore <= 0,
	}

	if !p.Feasible {
		p.Shortfalls = shortfalls(in.Period, cs, prior)
		p.Primary = primaryShortfall(p.Shortfalls)
	}
	p.Message = predictionMessage(p)
	return p, nil
}

func shortfalls(period Period, cs, prior float64) []Shortfall {
	csWeight, priorWeight, _ := periodWeights(period)

	var out []Shortfall
	if lost := (100 - cs) * csWeight; lost > 0 {
		out = append(out, Shortfall{Input: InputClassStanding, Points: lost})
	}
	if period.RequiresPrior() {
		if lost := (100 - prior) * priorWeight; lost > 0 {
			out = append(out, Shortfall{Input: InputPriorGrade, Points: lost})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// primaryShortfall names the single largest contributor, or nothing on a tie.
func primaryShortfall(s []Shortfall) string {
	switch {
	case len(s) == 0:
		return ""
	case len(s) == 1:
		return s[0].Input
	case s[0].Points > s[1].Points:
		return s[0].Input
	default:
		return ""
	}
}

func predictionMessage(p Prediction) string {
	switch {
	case p.AlreadyMet:
		return fmt.Sprintf("A grade of %g is already reached; any exam score will do.", Round2(p.DesiredGrade))
	case !p.Feasible:
		return fmt.Sprintf("A grade of %g is not attainable: it would take about %g out of %d questions.",
			Round2(p.DesiredGrade), Round2(p.RequiredScore), p.NumQuestions)
	default:
		return fmt.Sprintf("You need about %g out of %d questions to reach grade %g.",
			Round2(p.RequiredScore), p.NumQuestions, Round2(p.DesiredGrade))
	}
}
