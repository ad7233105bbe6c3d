package chat

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	askCounter     metric.Int64Counter
	tokenCounter   metric.Int64Counter
	askDuration    metric.Float64Histogram
	errorCounter   metric.Int64Counter
	truncatedCount metric.Int64Counter
)

// InitMetrics registers the assistant's OTel instruments.
func InitMetrics() error {
	meter := otel.Meter("assistant")

	var err error

	askCounter, err = meter.Int64Counter("assistant.requests.total",
		metric.WithDescription("Questions sent to the assistant"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	tokenCounter, err = meter.Int64Counter("assistant.tokens.streamed",
		metric.WithDescription("Tokens streamed back to clients"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating token counter: %w", err)
	}

	askDuration, err = meter.Float64Histogram("assistant.response.duration",
		metric.WithDescription("Time from question to last token in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	)
	if err != nil {
		return fmt.Errorf("creating response histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("assistant.errors.total",
		metric.WithDescription("Failed assistant requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	truncatedCount, err = meter.Int64Counter("assistant.responses.truncated",
		metric.WithDescription("Answers cut short by a stream error"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return fmt.Errorf("creating truncation counter: %w", err)
	}

	return nil
}
