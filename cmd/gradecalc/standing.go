package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gradecalc/internal/export"
	"gradecalc/internal/grading"
)

// standingFile is the YAML document read by the standing command. Include
// defaults to true for listed categories.
type standingFile struct {
	Categories []struct {
		Category string          `yaml:"category"`
		Include  *bool           `yaml:"include"`
		Weight   float64         `yaml:"weight"`
		Entries  []grading.Entry `yaml:"entries"`
	} `yaml:"categories"`
}

func readStandingFile(path string) ([]grading.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f standingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	subs := make([]grading.Submission, 0, len(f.Categories))
	for _, c := range f.Categories {
		include := c.Include == nil || *c.Include
		subs = append(subs, grading.Submission{
			Category: grading.Category(c.Category),
			Include:  include,
			Entries:  c.Entries,
			Weight:   c.Weight,
		})
	}
	return subs, nil
}

func (a *app) newStandingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standing FILE",
		Short: "Class standing from a YAML file of category scores",
		Example: `  gradecalc standing scores.yaml
  gradecalc standing scores.yaml --export pdf --out standing.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := readStandingFile(args[0])
			if err != nil {
				return err
			}
			st, err := grading.Accumulate(subs)
			if err != nil {
				return err
			}
			a.logger.Debug("class standing computed", zap.Float64("total", st.Total), zap.Int("categories", len(subs)))

			if format := a.v.GetString("export"); format != "" {
				return a.exportStanding(cmd, st, format)
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return writeStanding(cmd.OutOrStdout(), st)
		},
	}

	cmd.Flags().String("export", "", "write the breakdown as csv or pdf instead of printing it")
	cmd.Flags().String("out", "", "export destination (default: stdout for csv, class-standing.pdf for pdf)")
	return cmd
}

func (a *app) exportStanding(cmd *cobra.Command, st grading.Standing, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	body, err := export.Render(f, export.FromStanding(st), "Class Standing")
	if err != nil {
		return err
	}

	out := a.v.GetString("out")
	if out == "" && f == export.CSV {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if out == "" {
		out = f.Filename("class-standing")
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return err
	}
	a.logger.Debug("exported class standing", zap.String("path", out), zap.Int("bytes", len(body)))
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	return nil
}
