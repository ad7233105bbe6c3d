package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	calcCounter       metric.Int64Counter
	calcHistogram     metric.Float64Histogram
	errorCounter      metric.Int64Counter
	gradeGauge        metric.Float64Gauge
	infeasibleCounter metric.Int64Counter
	wizardSteps       metric.Int64Counter
)

// InitMetrics registers the grade calculator's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	calcCounter, err = meter.Int64Counter("gradecalc.calculations.total",
		metric.WithDescription("Total number of grade calculations performed"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating calculations counter: %w", err)
	}

	calcHistogram, err = meter.Float64Histogram("gradecalc.calculation.duration",
		metric.WithDescription("Duration of grade calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating calculation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("gradecalc.errors.total",
		metric.WithDescription("Total number of rejected grade calculations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	gradeGauge, err = meter.Float64Gauge("gradecalc.last_grade",
		metric.WithDescription("The most recently computed grade percentage"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return fmt.Errorf("creating grade gauge: %w", err)
	}

	infeasibleCounter, err = meter.Int64Counter("gradecalc.predictions.infeasible",
		metric.WithDescription("Predictions whose target needs more than a perfect exam"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return fmt.Errorf("creating infeasible counter: %w", err)
	}

	wizardSteps, err = meter.Int64Counter("gradecalc.wizard.steps",
		metric.WithDescription("Class standing wizard steps by action"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return fmt.Errorf("creating wizard step counter: %w", err)
	}

	return nil
}
