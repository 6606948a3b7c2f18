// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Observability holds the otel instruments exported through the prometheus
// registry served on /metrics. A zero value records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	scoredCounter otelmetric.Int64Counter
	classifyCount otelmetric.Int64Counter
}

func New(serviceName string, log ...*zap.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		if len(log) > 0 && log[0] != nil {
			log[0].Warn("otel prometheus exporter unavailable", zap.Error(err))
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Jobs handled per task type"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job handling duration"),
		otelmetric.WithUnit("ms"),
	)
	scoredCounter, _ := meter.Int64Counter(
		"recommendations.scored",
		otelmetric.WithDescription("Colleges scored across generation runs"),
	)
	classifyCount, _ := meter.Int64Counter(
		"recommendations.classified",
		otelmetric.WithDescription("Generated recommendations per classification"),
	)

	return &Observability{
		meterProvider: provider,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		scoredCounter: scoredCounter,
		classifyCount: classifyCount,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("task_type", taskType)))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, taskType string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

// RecordRecommendations counts colleges scored in one run, labelled by cache backend.
func (o *Observability) RecordRecommendations(ctx context.Context, count int, backend string) {
	if o.scoredCounter != nil {
		o.scoredCounter.Add(ctx, int64(count), otelmetric.WithAttributes(
			attribute.String("cache_backend", backend),
		))
	}
}

// RecordClassifications adds one run's per-classification counts.
func (o *Observability) RecordClassifications(ctx context.Context, counts map[string]int) {
	if o.classifyCount == nil {
		return
	}
	for classification, n := range counts {
		if n == 0 {
			continue
		}
		o.classifyCount.Add(ctx, int64(n), otelmetric.WithAttributes(
			attribute.String("classification", classification),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
