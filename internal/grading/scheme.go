package grading

import (
	"errors"
	"fmt"
	"math"
)

// Band is one row of a grading scheme. Lower is inclusive; Upper is exclusive
// unless UpperInclusive is set, which only the top band should do.
type Band struct {
	Lower          float64 `json:"lower" yaml:"lower"`
	Upper          float64 `json:"upper" yaml:"upper"`
	UpperInclusive bool    `json:"upper_inclusive,omitempty" yaml:"upper_inclusive"`
	Point          float64 `json:"point" yaml:"point"`
	Label          string  `json:"label" yaml:"label"`
}

func (b Band) Contains(v float64) bool {
	if v < b.Lower {
		return false
	}
	if b.UpperInclusive {
		return v <= b.Upper
	}
	return v < b.Upper
}

// Incomplete is returned for values no band covers: NaN, or anything outside
// [0,100] that slipped past input clamping.
var Incomplete = Band{Point: 0, Label: "Incomplete"}

// Scheme maps a percentage onto a point grade. Bands are ordered by descending
// lower bound and scanned first-match-wins.
//
// A transmuting scheme reports grades on a 50-based scale (raw/2 + 50) while
// still looking bands up on the raw percentage.
type Scheme struct {
	Name      string `json:"name" yaml:"name"`
	Transmute bool   `json:"transmute,omitempty" yaml:"transmute"`
	Bands     []Band `json:"bands" yaml:"bands"`
}

// Lookup returns the first band containing percent, or Incomplete.
func (s Scheme) Lookup(percent float64) Band {
	if math.IsNaN(percent) {
		return Incomplete
	}
	for _, b := range s.Bands {
		if b.Contains(percent) {
			return b
		}
	}
	return Incomplete
}

// Report converts a raw grade into the number shown to the student.
func (s Scheme) Report(raw float64) float64 {
	if s.Transmute {
		return raw/2 + 50
	}
	return raw
}

// Validate checks that the bands partition [0,100] with no gaps or overlaps.
func (s Scheme) Validate() error {
	if s.Name == "" {
		return errors.New("scheme name is required")
	}
	if len(s.Bands) == 0 {
		return fmt.Errorf("scheme %q has no bands", s.Name)
	}

	top := s.Bands[0]
	if top.Upper != 100 || !top.UpperInclusive {
		return fmt.Errorf("scheme %q: top band must end at 100 inclusive", s.Name)
	}

	for i, b := range s.Bands {
		if b.Label == "" {
			return fmt.Errorf("scheme %q: band %d has no label", s.Name, i)
		}
		if b.Lower >= b.Upper {
			return fmt.Errorf("scheme %q: band %q has lower %g >= upper %g", s.Name, b.Label, b.Lower, b.Upper)
		}
		if i == 0 {
			continue
		}
		if b.UpperInclusive {
			return fmt.Errorf("scheme %q: band %q overlaps the band above it", s.Name, b.Label)
		}
		prev := s.Bands[i-1]
		if b.Upper != prev.Lower {
			return fmt.Errorf("scheme %q: band %q ends at %g but next band starts at %g", s.Name, b.Label, b.Upper, prev.Lower)
		}
	}

	if last := s.Bands[len(s.Bands)-1]; last.Lower != 0 {
		return fmt.Errorf("scheme %q: lowest band starts at %g, not 0", s.Name, last.Lower)
	}
	return nil
}

// StandardScheme is the institutional 1.00–5.00 scale.
var StandardScheme = Scheme{
	Name: "standard",
	Bands: []Band{
		{Lower: 99, Upper: 100, UpperInclusive: true, Point: 1.00, Label: "Excellent"},
		{Lower: 96, Upper: 99, Point: 1.25, Label: "Superior"},
		{Lower: 93, Upper: 96, Point: 1.50, Label: "Meritorious"},
		{Lower: 90, Upper: 93, Point: 1.75, Label: "Very Good"},
		{Lower: 87, Upper: 90, Point: 2.00, Label: "Good"},
		{Lower: 84, Upper: 87, Point: 2.25, Label: "Very Satisfactory"},
		{Lower: 81, Upper: 84, Point: 2.50, Label: "Satisfactory"},
		{Lower: 78, Upper: 81, Point: 2.75, Label: "Fair"},
		{Lower: 75, Upper: 78, Point: 3.00, Label: "Passing"},
		{Lower: 0, Upper: 75, Point: 5.00, Label: "Failed"},
	},
}

// Base50Scheme is the earlier transmuted scale, where a raw 0 reports as 50.
var Base50Scheme = Scheme{
	Name:      "base50",
	Transmute: true,
	Bands: []Band{
		{Lower: 94, Upper: 100, UpperInclusive: true, Point: 1.00, Label: "Excellent"},
		{Lower: 88.5, Upper: 94, Point: 1.25, Label: "Superior"},
		{Lower: 83, Upper: 88.5, Point: 1.50, Label: "Meritorious"},
		{Lower: 77.5, Upper: 83, Point: 1.75, Label: "Very Good"},
		{Lower: 72, Upper: 77.5, Point: 2.00, Label: "Good"},
		{Lower: 65.5, Upper: 72, Point: 2.25, Label: "Very Satisfactory"},
		{Lower: 61, Upper: 65.5, Point: 2.50, Label: "Satisfactory"},
		{Lower: 55.5, Upper: 61, Point: 2.75, Label: "Fair"},
		{Lower: 50, Upper: 55.5, Point: 3.00, Label: "Passing"},
		{Lower: 0, Upper: 50, Point: 5.00, Label: "Failed"},
	},
}

// GradingScheme looks percent up in the standard scheme.
func GradingScheme(percent float64) (float64, string) {
	b := StandardScheme.Lookup(percent)
	return b.Point, b.Label
}
