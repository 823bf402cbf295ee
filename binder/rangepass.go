package binder

import (
	"context"
	"errors"
	"math"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/miosa/osa-recycler/layout"
	"github.com/miosa/osa-recycler/telemetry"
)

// maxRangeAttempts bounds how often a range pass restarts after the list
// changed underneath it.
const maxRangeAttempts = 4

// OnViewportChanged records the visible window and recomputes the range:
// items in the window are laid out synchronously, the rest of the range is
// scheduled asynchronously, and everything outside it is released.
func (b *Binder) OnViewportChanged(first, last int) {
	b.control.check("OnViewportChanged")
	b.strategy.SetVisible(first, last)
	b.mu.Lock()
	b.firstVisible = first
	b.lastVisible = last
	b.mu.Unlock()
	b.computeRange(b.ctx)
}

// rangeBounds returns the inclusive computed range around first for a
// list of n items, clamped to the list and widened to cover last.
func rangeBounds(first, last, count int, ratio float64, n int) (start, end int) {
	if n == 0 {
		return 0, -1
	}
	extra := int(math.Floor(float64(count) * ratio))
	start = max(first-extra, 0)
	end = min(first+count+extra, n-1)
	end = max(end, min(last, n-1))
	return start, end
}

// visibleWindowLocked clamps the reported visible window to n items. An
// unreported or inverted last index is replaced by one viewport's worth.
func (b *Binder) visibleWindowLocked(n int) (first, last int) {
	if n == 0 {
		return 0, -1
	}
	first = min(max(b.firstVisible, 0), n-1)
	last = b.lastVisible
	if last < first {
		last = first + max(b.estimate.Count, 1) - 1
	}
	return first, min(last, n-1)
}

func (b *Binder) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mutations
}

// computeRange establishes the estimate if needed and runs range passes
// until one completes against an unchanged list.
func (b *Binder) computeRange(ctx context.Context) {
	b.ensureEstimate(ctx)
	for attempt := 1; attempt <= maxRangeAttempts; attempt++ {
		if b.rangePass(ctx) {
			return
		}
		recordRangePass(ctx, true)
		b.logger.Debug("range pass abandoned, list changed", "attempt", attempt)
	}
	b.logger.Warn("range pass gave up after repeated list changes", "attempts", maxRangeAttempts)
}

// rangePass walks a snapshot of the list. It reports false, having stopped
// early, when a structural mutation landed while it ran.
func (b *Binder) rangePass(ctx context.Context) bool {
	b.mu.Lock()
	if !b.hasMeasured || !b.estimate.Known() {
		b.mu.Unlock()
		return true
	}
	gen := b.mutations
	slots := slices.Clone(b.slots)
	first, last := b.visibleWindowLocked(len(slots))
	start, end := rangeBounds(first, last, b.estimate.Count, b.rangeRatio, len(slots))
	size := b.measured
	prefetch := !b.paused
	b.mu.Unlock()

	ctx, span := tracer.Start(ctx, "binder.rangePass", trace.WithAttributes(
		attribute.Int("items", len(slots)),
		attribute.Int("first_visible", first),
		attribute.Int("range_start", start),
		attribute.Int("range_end", end),
	))
	defer span.End()

	released := 0
	for i, s := range slots {
		if b.generation() != gen {
			span.SetAttributes(attribute.Bool("aborted", true))
			return false
		}
		switch {
		case i >= first && i <= last:
			b.layoutSync(ctx, s, size)
		case i >= start && i <= end:
			if prefetch {
				b.layoutAsync(ctx, s, size)
			}
		default:
			if s.releaseKeepingState() {
				released++
			}
		}
	}
	recordRelease(ctx, released)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mutations != gen {
		span.SetAttributes(attribute.Bool("aborted", true))
		return false
	}
	b.rangeStart, b.rangeEnd = start, end
	recordRangePass(ctx, false)
	return true
}

func (b *Binder) layoutSync(ctx context.Context, s *Slot, container layout.Size) {
	w, h := b.childSpecs(container, s.Info())
	if _, err := s.computeSync(ctx, b.builder, w, h); err != nil {
		if errors.Is(err, ErrStaleLayout) {
			recordDiscard(ctx)
			b.logger.Debug("discarded stale layout", "slot", s.ID())
			return
		}
		recordLayoutFailure(ctx)
		telemetry.LoggerWithTrace(ctx, b.logger).Error("layout failed", "slot", s.ID(), "error", err)
	}
}

// layoutAsync schedules s, falling back to a synchronous layout when the
// handler refuses the task. Refusal means the handler's backlog is full or
// it was closed.
func (b *Binder) layoutAsync(ctx context.Context, s *Slot, container layout.Size) {
	w, h := b.childSpecs(container, s.Info())
	err := s.computeAsync(ctx, b.builder, w, h, b.handler, b.onAsyncDone)
	if err == nil {
		return
	}
	recordAsyncFallback(ctx)
	b.logger.Warn("async layout refused, laying out synchronously", "slot", s.ID(), "error", err)
	b.layoutSync(ctx, s, container)
}

// onAsyncDone runs on the worker goroutine that performed the layout.
func (b *Binder) onAsyncDone(s *Slot, committed bool, err error) {
	ctx := b.ctx
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		recordLayoutFailure(ctx)
		b.logger.Error("async layout failed", "slot", s.ID(), "error", err)
		return
	}
	if !committed {
		recordDiscard(ctx)
		b.logger.Debug("discarded stale async layout", "slot", s.ID())
		return
	}
	b.mu.Lock()
	c := b.container
	b.mu.Unlock()
	if c != nil {
		c.LayoutReady(s.ID())
	}
}
