package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gradecalc/internal/grading"
)

func (a *app) jsonOutput() bool { return a.v.GetString("output") == "json" }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePrediction(w io.Writer, p grading.Prediction) error {
	fmt.Fprintf(w, "Period:          %s\n", p.Period)
	fmt.Fprintf(w, "Desired grade:   %.2f\n", p.DesiredGrade)
	fmt.Fprintf(w, "Required score:  %.2f / %d\n", p.RequiredScore, p.NumQuestions)
	fmt.Fprintf(w, "Exam points:     %.2f\n", p.RequiredAverage)
	_, err := fmt.Fprintln(w, p.Message)
	return err
}

func writeOverall(w io.Writer, o grading.Overall) error {
	fmt.Fprintf(w, "Period:  %s\n", o.Period)
	fmt.Fprintf(w, "Grade:   %.2f\n", o.Grade)
	if o.Reported != o.Grade {
		fmt.Fprintf(w, "Reported: %.2f\n", o.Reported)
	}
	_, err := fmt.Fprintf(w, "Point:   %.2f (%s, %s scheme)\n", o.Point, o.Label, o.Scheme)
	return err
}

func writeScheme(w io.Writer, s grading.Scheme) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RANGE\tPOINT\tLABEL\n")
	for _, b := range s.Bands {
		closing := ")"
		if b.UpperInclusive {
			closing = "]"
		}
		fmt.Fprintf(tw, "[%g, %g%s\t%.2f\t%s\n", b.Lower, b.Upper, closing, b.Point, b.Label)
	}
	return tw.Flush()
}

func writeStanding(w io.Writer, st grading.Standing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CATEGORY\tAVERAGE\tWEIGHT\tWEIGHTED\n")
	for _, r := range st.Breakdown {
		if r.Skipped {
			fmt.Fprintf(tw, "%s\t-\t-\t0.00\n", r.Category)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", r.Category, r.Average, r.Weight, r.Weighted)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%.2f\n", st.Total)
	return tw.Flush()
}
