package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gradecalc/internal/apperr"
)

func (a *app) newSchemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheme",
		Short: "Show the bands of the active grading scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.registry.Active()
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheme: %s (available: %v)\n", s.Name, a.registry.Names())
			return writeScheme(cmd.OutOrStdout(), s)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup PERCENT",
		Short: "Grade point and label for a percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percent, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return apperr.Validation("percent must be a number, got %q", args[0])
			}
			s := a.registry.Active()
			band := s.Lookup(percent)
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"percent":  percent,
					"reported": s.Report(percent),
					"point":    band.Point,
					"label":    band.Label,
					"scheme":   s.Name,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f (%s)\n", band.Point, band.Label)
			return err
		},
	})
	return cmd
}
