package binder

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("osa.recycler.binder")
	meter  = otel.Meter("osa.recycler.binder")
)

const (
	modeSync  = "sync"
	modeAsync = "async"
)

var (
	layoutsTotal   metric.Int64Counter
	layoutDuration metric.Float64Histogram
	discardedTotal metric.Int64Counter
	releasedTotal  metric.Int64Counter
	rangePasses    metric.Int64Counter
	rangeAborts    metric.Int64Counter
	asyncFallbacks metric.Int64Counter
	measureSkipped metric.Int64Counter
	layoutFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics registers the instruments once. Metric errors never reach
// callers; recording is skipped instead.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		if layoutsTotal, err = meter.Int64Counter(
			"binder_layouts_total",
			metric.WithDescription("Item layouts committed, by mode"),
		); err != nil {
			metricsErr = err
			return
		}
		if layoutDuration, err = meter.Float64Histogram(
			"binder_layout_duration_seconds",
			metric.WithDescription("Builder time per item layout"),
			metric.WithUnit("s"),
		); err != nil {
			metricsErr = err
			return
		}
		if discardedTotal, err = meter.Int64Counter(
			"binder_layouts_discarded_total",
			metric.WithDescription("Layouts thrown away because the slot changed while they ran"),
		); err != nil {
			metricsErr = err
			return
		}
		if releasedTotal, err = meter.Int64Counter(
			"binder_releases_total",
			metric.WithDescription("Slots whose layout was released on leaving the computed range"),
		); err != nil {
			metricsErr = err
			return
		}
		if rangePasses, err = meter.Int64Counter(
			"binder_range_passes_total",
			metric.WithDescription("Completed range passes"),
		); err != nil {
			metricsErr = err
			return
		}
		if rangeAborts, err = meter.Int64Counter(
			"binder_range_aborts_total",
			metric.WithDescription("Range passes abandoned because the list changed underneath"),
		); err != nil {
			metricsErr = err
			return
		}
		if asyncFallbacks, err = meter.Int64Counter(
			"binder_async_fallbacks_total",
			metric.WithDescription("Async layouts run synchronously because the handler refused them"),
		); err != nil {
			metricsErr = err
			return
		}
		if measureSkipped, err = meter.Int64Counter(
			"binder_measure_cached_total",
			metric.WithDescription("Measure calls answered from the cached size"),
		); err != nil {
			metricsErr = err
			return
		}
		if layoutFailures, err = meter.Int64Counter(
			"binder_layout_failures_total",
			metric.WithDescription("Builder errors"),
		); err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordLayout(ctx context.Context, mode string, elapsed time.Duration) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	layoutsTotal.Add(ctx, 1, attrs)
	layoutDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func recordDiscard(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	discardedTotal.Add(ctx, 1)
}

func recordRelease(ctx context.Context, n int) {
	if n == 0 || initMetrics() != nil {
		return
	}
	releasedTotal.Add(ctx, int64(n))
}

func recordRangePass(ctx context.Context, aborted bool) {
	if initMetrics() != nil {
		return
	}
	if aborted {
		rangeAborts.Add(ctx, 1)
		return
	}
	rangePasses.Add(ctx, 1)
}

func recordAsyncFallback(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	asyncFallbacks.Add(ctx, 1)
}

func recordMeasureCached(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	measureSkipped.Add(ctx, 1)
}

func recordLayoutFailure(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	layoutFailures.Add(ctx, 1)
}
