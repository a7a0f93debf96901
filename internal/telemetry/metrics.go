package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/extbuild"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	BuildsTotal       metric.Int64Counter
	BuildErrorsTotal  metric.Int64Counter
	BuildDuration     metric.Float64Histogram
	CopiesTotal       metric.Int64Counter
	PackagesTotal     metric.Int64Counter
	PackageBytesTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"extbuild.builds.total",
		metric.WithDescription("Total number of target builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"extbuild.builds.errors.total",
		metric.WithDescription("Total number of failed target builds"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"extbuild.build.duration",
		metric.WithDescription("Duration of a target build"),
		metric.WithUnit("ms"),
	)

	m.CopiesTotal, _ = meter.Int64Counter(
		"extbuild.copies.total",
		metric.WithDescription("Total number of files copied into build outputs"),
		metric.WithUnit("{file}"),
	)

	m.PackagesTotal, _ = meter.Int64Counter(
		"extbuild.packages.total",
		metric.WithDescription("Total number of extension archives written"),
		metric.WithUnit("{package}"),
	)

	m.PackageBytesTotal, _ = meter.Int64Counter(
		"extbuild.packages.bytes.total",
		metric.WithDescription("Total size of extension archives written"),
		metric.WithUnit("By"),
	)

	return m
}

// RecordBuild records the outcome and duration of one target build.
func (m *Metrics) RecordBuild(ctx context.Context, target string, started time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("target", target))
	m.BuildsTotal.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
	if err != nil {
		m.BuildErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordCopies counts files copied for a target.
func (m *Metrics) RecordCopies(target string, n int) {
	if n == 0 {
		return
	}
	m.CopiesTotal.Add(context.Background(), int64(n), metric.WithAttributes(attribute.String("target", target)))
}

// RecordPackage counts an archive and its size.
func (m *Metrics) RecordPackage(ctx context.Context, target string, size int64) {
	attrs := metric.WithAttributes(attribute.String("target", target))
	m.PackagesTotal.Add(ctx, 1, attrs)
	m.PackageBytesTotal.Add(ctx, size, attrs)
}
