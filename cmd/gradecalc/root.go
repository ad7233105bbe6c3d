package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gradecalc/internal/apperr"
	"gradecalc/internal/grading"
	"gradecalc/internal/schemes"
)

// app is the state shared by every subcommand. Settings resolve through viper
// in order: flag, GRADECALC_* environment variable, config file, default.
type app struct {
	v        *viper.Viper
	logger   *zap.Logger
	registry *schemes.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "gradecalc",
		Short:         "Predict exam scores and compute period grades",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (yaml)")
	pf.BoolP("verbose", "v", false, "log debug output to stderr")
	pf.StringP("output", "o", "text", "output format: text or json")
	pf.String("scheme", "", "grading scheme name (default: standard)")
	pf.String("scheme-file", "", "load an extra grading scheme from a YAML file")

	root.AddCommand(
		a.newPredictCmd(),
		a.newOverallCmd(),
		a.newSchemeCmd(),
		a.newStandingCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("gradecalc")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger, err := newLogger(a.v.GetBool("verbose"))
	if err != nil {
		return err
	}
	a.logger = logger

	a.registry = schemes.NewRegistry()
	if path := a.v.GetString("scheme-file"); path != "" {
		s, err := a.registry.LoadFile(path)
		if err != nil {
			return err
		}
		a.logger.Debug("loaded grading scheme", zap.String("path", path), zap.String("scheme", s.Name))
	}
	if name := a.v.GetString("scheme"); name != "" {
		if err := a.registry.SetActive(name); err != nil {
			return err
		}
	}

	switch a.v.GetString("output") {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.v.GetString("output"))
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return cfg.Build()
}

func (a *app) period() (grading.Period, error) {
	p, err := grading.ParsePeriod(a.v.GetString("period"))
	if err != nil {
		return 0, apperr.Wrap(err, apperr.ErrValidation, err.Error())
	}
	return p, nil
}

// prior returns the prior period grade, or nil when it was not given.
func (a *app) prior() *float64 {
	if !a.v.IsSet("prior") {
		return nil
	}
	p := a.v.GetFloat64("prior")
	return &p
}

// describe flattens an error and any validation details into one line.
func describe(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		return appErr.Message + ": " + strings.Join(appErr.Details, "; ")
	}
	return err.Error()
}
