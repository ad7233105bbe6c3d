package grading

import "gradecalc/internal/apperr"

type OverallInput struct {
	Period        Period
	ClassStanding float64
	ExamScore     float64
	PriorGrade    *float64
}

// Overall is a computed period grade and its place on a scheme.
type Overall struct {
	Period   Period  `json:"period"`
	Grade    float64 `json:"grade"`
	Reported float64 `json:"reported"`
	Point    float64 `json:"point"`
	Label    string  `json:"label"`
	Scheme   string  `json:"scheme"`
}

// PeriodGrade combines the inputs for a period without touching a scheme.
// Prelim is an even split of class standing and exam; later periods weigh that
// split at two thirds and the prior period's grade at one third.
func PeriodGrade(in OverallInput) (float64, error) {
	if in.Period.RequiresPrior() && in.PriorGrade == nil {
		return 0, apperr.Validation("a prior grade is required for the %s period", in.Period)
	}

	partial := ClampPercent(in.ClassStanding)*0.5 + ClampPercent(in.ExamScore)*0.5
	if !in.Period.RequiresPrior() {
		return partial, nil
	}
	return partial*(2.0/3.0) + ClampPercent(*in.PriorGrade)*(1.0/3.0), nil
}

// ComputeOverall computes the period grade and maps it onto scheme.
func ComputeOverall(in OverallInput, scheme Scheme) (Overall, error) {
	grade, err := PeriodGrade(in)
	if err != nil {
		return Overall{}, err
	}

	band := scheme.Lookup(grade)
	return Overall{
		Period:   in.Period,
		Grade:    grade,
		Reported: scheme.Report(grade),
		Point:    band.Point,
		Label:    band.Label,
		Scheme:   scheme.Name,
	}, nil
}
