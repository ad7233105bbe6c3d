package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gradecalc/internal/grading"
)

func (a *app) newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Exam score needed to reach a desired period grade",
		Example: `  gradecalc predict --period prelim --desired 75 --standing 80 --questions 50
  gradecalc predict --period final --desired 90 --standing 85 --prior 88 --questions 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := a.period()
			if err != nil {
				return err
			}
			in := grading.PredictInput{
				Period:        period,
				DesiredGrade:  a.v.GetFloat64("desired"),
				ClassStanding: a.v.GetFloat64("standing"),
				PriorGrade:    a.prior(),
				NumQuestions:  a.v.GetInt("questions"),
			}
			a.logger.Debug("predicting exam score",
				zap.Stringer("period", period),
				zap.Float64("desired", in.DesiredGrade),
				zap.Float64("standing", in.ClassStanding),
				zap.Int("questions", in.NumQuestions),
			)

			p, err := grading.Predict(in)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			return writePrediction(cmd.OutOrStdout(), p)
		},
	}

	f := cmd.Flags()
	f.String("period", "", "grading period: prelim, midterm or final")
	f.Float64("desired", 75, "desired period grade (0-100)")
	f.Float64("standing", 0, "class standing (0-100)")
	f.Float64("prior", 0, "previous period grade, required for midterm and final")
	f.Int("questions", 0, "number of exam questions")
	return cmd
}

func (a *app) newOverallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overall",
		Short:   "Period grade from class standing and exam score",
		Example: `  gradecalc overall --period midterm --standing 80 --exam 90 --prior 85`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := a.period()
			if err != nil {
				return err
			}
			in := grading.OverallInput{
				Period:        period,
				ClassStanding: a.v.GetFloat64("standing"),
				ExamScore:     a.v.GetFloat64("exam"),
				PriorGrade:    a.prior(),
			}

			o, err := grading.ComputeOverall(in, a.registry.Active())
			if err != nil {
				return err
			}
			a.logger.Debug("computed period grade", zap.Float64("grade", o.Grade), zap.String("scheme", o.Scheme))

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), o)
			}
			return writeOverall(cmd.OutOrStdout(), o)
		},
	}

	f := cmd.Flags()
	f.String("period", "", "grading period: prelim, midterm or final")
	f.Float64("standing", 0, "class standing (0-100)")
	f.Float64("exam", 0, "exam score percentage (0-100)")
	f.Float64("prior", 0, "previous period grade, required for midterm and final")
	return cmd
}
