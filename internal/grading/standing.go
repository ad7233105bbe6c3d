package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gradecalc/internal/apperr"
)

// Category is one of the fixed groups of non-exam coursework.
type Category string

const (
	Quiz       Category = "quiz"
	Assignment Category = "assignment"
	Seatwork   Category = "seatwork"
	Activity   Category = "activity"
	Laboratory Category = "laboratory"
	Homework   Category = "homework"
	Recitation Category = "recitation"
)

// Categories lists every category in the order they are processed.
var Categories = []Category{Quiz, Assignment, Seatwork, Activity, Laboratory, Homework, Recitation}

func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "lab" {
		return Laboratory, nil
	}
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Entry is one graded item.
type Entry struct {
	Score float64 `json:"score" yaml:"score" validate:"gte=0"`
	Total float64 `json:"total" yaml:"total" validate:"gt=0"`
}

func (e Entry) Percent() float64 {
	return e.Score / e.Total * 100
}

func (e Entry) validate() error {
	switch {
	case math.IsNaN(e.Score) || math.IsInf(e.Score, 0) || math.IsNaN(e.Total) || math.IsInf(e.Total, 0):
		return errors.New("score and total must be finite numbers")
	case e.Total <= 0:
		return fmt.Errorf("total must be positive, got %g", e.Total)
	case e.Score < 0:
		return fmt.Errorf("score must not be negative, got %g", e.Score)
	case e.Score > e.Total:
		return fmt.Errorf("score %g exceeds total %g", e.Score, e.Total)
	}
	return nil
}

// CategoryResult is a category's average and its weighted contribution to
// class standing.
type CategoryResult struct {
	Category Category `json:"category"`
	Entries  int      `json:"entries"`
	Average  float64  `json:"average"`
	Weight   float64  `json:"weight"`
	Weighted float64  `json:"weighted"`
	Skipped  bool     `json:"skipped,omitempty"`
}

// ComputeCategory averages the per-entry percentages and applies weight.
func ComputeCategory(c Category, entries []Entry, weight float64) (CategoryResult, error) {
	if len(entries) == 0 {
		return CategoryResult{}, apperr.Validation("%s: at least one entry is required", c)
	}
	if math.IsNaN(weight) || weight < 0 || weight > 100 {
		return CategoryResult{}, apperr.Validation("%s: weight must be between 0 and 100, got %g", c, weight)
	}

	var sum float64
	for i, e := range entries {
		if err := e.validate(); err != nil {
			return CategoryResult{}, apperr.Validation("%s: entry %d: %v", c, i+1, err)
		}
		sum += e.Percent()
	}

	avg := sum / float64(len(entries))
	return CategoryResult{
		Category: c,
		Entries:  len(entries),
		Average:  avg,
		Weight:   weight,
		Weighted: avg * weight / 100,
	}, nil
}

// Submission is one category of an all-at-once class standing form.
type Submission struct {
	Category Category `json:"category"`
	Include  bool     `json:"include"`
	Entries  []Entry  `json:"entries"`
	Weight   float64  `json:"weight"`
}

// Standing is the class standing total with a per-category breakdown in the
// fixed category order. Excluded categories appear as skipped.
type Standing struct {
	Total     float64          `json:"total"`
	Breakdown []CategoryResult `json:"breakdown"`
}

// Accumulate computes class standing from a batch of submissions. Every
// invalid included category is reported; a rejected batch produces no total.
func Accumulate(subs []Submission) (Standing, error) {
	byCategory := make(map[Category]Submission, len(subs))
	var problems []string

	for _, s := range subs {
		c, err := ParseCategory(string(s.Category))
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if _, dup := byCategory[c]; dup {
			problems = append(problems, fmt.Sprintf("%s: submitted more than once", c))
			continue
		}
		s.Category = c
		byCategory[c] = s
	}

	var st Standing
	for _, c := range Categories {
		s, ok := byCategory[c]
		if !ok || !s.Include {
			st.Breakdown = append(st.Breakdown, CategoryResult{Category: c, Skipped: true})
			continue
		}
		res, err := ComputeCategory(c, s.Entries, s.Weight)
		if err != nil {
			problems = append(problems, apperr.FromError(err).Message)
			continue
		}
		st.Breakdown = append(st.Breakdown, res)
		st.Total += res.Weighted
	}

	if len(problems) > 0 {
		return Standing{}, apperr.Clone(apperr.ErrValidation, "class standing submission rejected").WithDetails(problems...)
	}
	return st, nil
}
