package runner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce   sync.Once
	stageDuration metric.Float64Histogram
	stageFailures metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter(instrumentationName)
	var err error
	stageDuration, err = meter.Float64Histogram("blogmesh.stage.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Stage execution time."))
	if err != nil {
		otel.Handle(err)
	}
	stageFailures, err = meter.Int64Counter("blogmesh.stage.failures",
		metric.WithDescription("Stage executions that returned an error."))
	if err != nil {
		otel.Handle(err)
	}
}

func recordStage(ctx context.Context, stage string, dur time.Duration, err error) {
	metricsOnce.Do(initMetrics)

	attrs := metric.WithAttributes(attribute.String("stage", stage))
	if stageDuration != nil {
		stageDuration.Record(ctx, dur.Seconds(), attrs)
	}
	if err != nil && stageFailures != nil {
		stageFailures.Add(ctx, 1, attrs)
	}
}
