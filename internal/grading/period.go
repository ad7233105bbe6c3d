package grading

import (
	"fmt"
	"math"
	"strings"
)

// Period is an academic grading checkpoint.
type Period int

const (
	Prelim Period = iota
	Midterm
	Final
)

var periodNames = map[Period]string{
	Prelim:  "prelim",
	Midterm: "midterm",
	Final:   "final",
}

// periodAliases covers the labels the calculator has shown over time.
var periodAliases = map[string]Period{
	"prelim":      Prelim,
	"prelims":     Prelim,
	"preliminary": Prelim,
	"midterm":     Midterm,
	"midterms":    Midterm,
	"mid-term":    Midterm,
	"final":       Final,
	"finals":      Final,
}

func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// RequiresPrior reports whether the period folds in the previous period's grade.
func (p Period) RequiresPrior() bool {
	return p != Prelim
}

func ParsePeriod(s string) (Period, error) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown grading period %q", s)
	}
	return p, nil
}

func (p Period) MarshalText() ([]byte, error) {
	name, ok := periodNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown grading period %d", int(p))
	}
	return []byte(name), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ClampPercent pins v to [0,100]. NaN is passed through so that it can surface
// as an incomplete grade instead of silently becoming a number.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(0, math.Min(100, v))
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
