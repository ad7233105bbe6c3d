// Package export renders class standing breakdowns as downloadable reports.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"gradecalc/internal/apperr"
	"gradecalc/internal/grading"
)

type Format string

const (
	CSV Format = "csv"
	PDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", CSV:
		return CSV, nil
	case PDF:
		return PDF, nil
	default:
		return "", apperr.Validation("unsupported report format %q, use csv or pdf", s)
	}
}

func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Dataset is a table of already formatted cells.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

var standingHeaders = []string{"Category", "Included", "Entries", "Average %", "Weight %", "Weighted"}

// FromStanding lays a breakdown out as one row per category plus a total row.
func FromStanding(st grading.Standing) Dataset {
	ds := Dataset{Headers: standingHeaders}
	for _, r := range st.Breakdown {
		if r.Skipped {
			ds.Rows = append(ds.Rows, []string{string(r.Category), "no", "0", "", "", "0"})
			continue
		}
		ds.Rows = append(ds.Rows, []string{
			string(r.Category),
			"yes",
			strconv.Itoa(r.Entries),
			num(r.Average),
			num(r.Weight),
			num(r.Weighted),
		})
	}
	ds.Rows = append(ds.Rows, []string{"Total", "", "", "", "", num(st.Total)})
	return ds
}

func num(v float64) string {
	return strconv.FormatFloat(grading.Round2(v), 'f', 2, 64)
}

// Render encodes ds in the given format.
func Render(f Format, ds Dataset, title string) ([]byte, error) {
	switch f {
	case CSV:
		return renderCSV(ds)
	case PDF:
		return renderPDF(ds, title)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}
