package grading

import (
	"slices"

	"gradecalc/internal/apperr"
)

// Wizard is the stepwise form of class standing: one category at a time,
// in Categories order, each either submitted or skipped.
//
// Methods never mutate the receiver; they return the next state. A rejected
// step returns the receiver unchanged along with the error.
type Wizard struct {
	Cursor  int              `json:"cursor"`
	Total   float64          `json:"total"`
	Results []CategoryResult `json:"results"`
}

func NewWizard() Wizard {
	return Wizard{}
}

// Done reports whether every category has been submitted or skipped.
func (w Wizard) Done() bool {
	return w.Cursor >= len(Categories)
}

// Current returns the category awaiting input.
func (w Wizard) Current() (Category, bool) {
	if w.Done() || w.Cursor < 0 {
		return "", false
	}
	return Categories[w.Cursor], true
}

// Remaining lists the categories not yet processed.
func (w Wizard) Remaining() []Category {
	if w.Done() {
		return nil
	}
	return slices.Clone(Categories[max(w.Cursor, 0):])
}

// Submit computes the current category and folds it into the running total.
func (w Wizard) Submit(entries []Entry, weight float64) (Wizard, CategoryResult, error) {
	c, ok := w.Current()
	if !ok {
		return w, CategoryResult{}, apperr.ErrWizardComplete
	}

	res, err := ComputeCategory(c, entries, weight)
	if err != nil {
		return w, CategoryResult{}, err
	}

	return w.advance(res, res.Weighted), res, nil
}

// Skip moves past the current category without contributing to the total.
func (w Wizard) Skip() (Wizard, error) {
	c, ok := w.Current()
	if !ok {
		return w, apperr.ErrWizardComplete
	}
	return w.advance(CategoryResult{Category: c, Skipped: true}, 0), nil
}

// Reset starts over from the first category with a zero total.
func (w Wizard) Reset() Wizard {
	return NewWizard()
}

// Standing summarises the wizard's progress in the batch result shape.
func (w Wizard) Standing() Standing {
	return Standing{Total: w.Total, Breakdown: slices.Clone(w.Results)}
}

func (w Wizard) advance(res CategoryResult, contribution float64) Wizard {
	next := Wizard{
		Cursor:  w.Cursor + 1,
		Total:   w.Total + contribution,
		Results: make([]CategoryResult, 0, len(w.Results)+1),
	}
	next.Results = append(next.Results, w.Results...)
	next.Results = append(next.Results, res)
	return next
}
