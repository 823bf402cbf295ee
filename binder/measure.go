package binder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/miosa/osa-recycler/layout"
	"github.com/miosa/osa-recycler/telemetry"
)

// Measure sizes the container for the given constraints and writes the
// result to out. The scroll axis takes exactly its constraint; the cross
// axis comes from the range estimate.
//
// A scroll axis left unspecified panics with ErrUnconstrainedScrollAxis
// unless the binder wraps its content. Constraints compatible with the last
// measured size return the cached size and change nothing. Any other
// constraints invalidate every cached layout and recompute the range.
func (b *Binder) Measure(out *layout.Size, widthSpec, heightSpec layout.Spec) {
	b.control.check("Measure")

	axis := b.strategy.ScrollAxis()
	mainSpec, crossSpec := axis.Specs(widthSpec, heightSpec)
	if mainSpec.Mode == layout.Unspecified && !b.wrapContent {
		panic(fmt.Errorf("measure with %s %s axis: %w", mainSpec, axis, ErrUnconstrainedScrollAxis))
	}

	ctx, span := tracer.Start(b.ctx, "binder.Measure", trace.WithAttributes(
		attribute.String("width_spec", widthSpec.String()),
		attribute.String("height_spec", heightSpec.String()),
	))
	defer span.End()

	b.mu.Lock()
	if b.hasMeasured && !b.requiresRemeasure &&
		layout.Compatible(b.lastWidthSpec, widthSpec, b.measured.Width) &&
		layout.Compatible(b.lastHeightSpec, heightSpec, b.measured.Height) {
		*out = b.measured
		b.mu.Unlock()
		span.SetAttributes(attribute.Bool("cached", true))
		recordMeasureCached(ctx)
		return
	}
	b.lastWidthSpec = widthSpec
	b.lastHeightSpec = heightSpec
	b.requiresRemeasure = false
	b.estimate = RangeEstimate{Count: unknownCount}
	b.mutations++
	slots := slices.Clone(b.slots)
	b.mu.Unlock()

	for _, s := range slots {
		s.invalidate()
	}

	itemCross := 0
	if item, ok := b.initEstimate(ctx, widthSpec, heightSpec); ok {
		itemCross = axis.Cross(item)
	}
	cross := b.crossExtent(crossSpec, itemCross)

	main := mainSpec.Size
	if b.wrapContent && mainSpec.Mode != layout.Exactly {
		main = b.wrapExtent(ctx, cross, mainSpec)
	}
	size := axis.Compose(main, cross)

	b.mu.Lock()
	b.measured = size
	b.hasMeasured = true
	b.estimate.CrossSize = cross
	estimate := b.estimate
	b.mu.Unlock()

	*out = size
	span.SetAttributes(
		attribute.Int("width", size.Width),
		attribute.Int("height", size.Height),
		attribute.Int("estimated_count", estimate.Count),
	)
	telemetry.LoggerWithTrace(ctx, b.logger).Debug("measured",
		"width_spec", widthSpec.String(),
		"height_spec", heightSpec.String(),
		"width", size.Width,
		"height", size.Height,
		"estimated_count", estimate.Count,
	)
	b.computeRange(ctx)
}

// SetSize measures with exact constraints unless the size is already
// compatible with the last measured one.
func (b *Binder) SetSize(width, height int) {
	b.control.check("SetSize")
	b.mu.Lock()
	skip := b.hasMeasured && !b.requiresRemeasure &&
		layout.Compatible(b.lastWidthSpec, layout.Exact(width), b.measured.Width) &&
		layout.Compatible(b.lastHeightSpec, layout.Exact(height), b.measured.Height)
	b.mu.Unlock()
	if skip {
		return
	}
	var out layout.Size
	b.Measure(&out, layout.Exact(width), layout.Exact(height))
}

// crossExtent sizes the cross axis from its spec and one item's extent.
func (b *Binder) crossExtent(spec layout.Spec, itemCross int) int {
	if spec.Mode == layout.Exactly {
		return spec.Size
	}
	return spec.Resolve(itemCross * b.strategy.SpanCount())
}

// initEstimate lays out the anchor item (the first visible index, clamped)
// with constraints derived from the container's and stores the resulting
// viewport estimate. The anchor's result is then re-keyed to the child specs
// of the resolved container so the first range pass reuses it. It reports false when there is no item to measure or
// the layout failed.
func (b *Binder) initEstimate(ctx context.Context, widthSpec, heightSpec layout.Spec) (layout.Size, bool) {
	b.mu.Lock()
	n := len(b.slots)
	if n == 0 {
		b.mu.Unlock()
		return layout.Size{}, false
	}
	anchor := min(max(b.firstVisible, 0), n-1)
	s := b.slots[anchor]
	b.mu.Unlock()

	span := s.Info().Span()
	cw := b.strategy.ChildWidthSpec(widthSpec, span)
	ch := b.strategy.ChildHeightSpec(heightSpec, span)
	item, err := s.computeSync(ctx, b.builder, cw, ch)
	if err != nil && !errors.Is(err, ErrStaleLayout) {
		recordLayoutFailure(ctx)
		b.logger.Error("estimate layout failed", "index", anchor, "error", err)
		return layout.Size{}, false
	}

	axis := b.strategy.ScrollAxis()
	mainSpec, crossSpec := axis.Specs(widthSpec, heightSpec)
	main := mainSpec.Size
	if mainSpec.Mode == layout.Unspecified {
		main = axis.Main(item)
	}
	container := axis.Compose(main, b.crossExtent(crossSpec, axis.Cross(item)))

	// The range pass lays the anchor out against the resolved container.
	// Carry the result over when the container's specs accept it.
	if err == nil {
		rw, rh := b.childSpecs(container, s.Info())
		if !s.adopt(rw, rh) {
			b.logger.Debug("anchor layout does not fit the container", "index", anchor)
		}
	}

	estimate := RangeEstimate{
		Count:     b.strategy.EstimateViewportCount(item, container),
		CrossSize: axis.Cross(container),
	}

	b.mu.Lock()
	b.estimate = estimate
	b.mu.Unlock()
	b.logger.Debug("range estimate established", "anchor", anchor, "count", estimate.Count)
	return item, true
}

// ensureEstimate establishes the estimate after a mutation when the
// container was measured before any item could be laid out. If the cross
// axis now needs a different size the mounted container is asked to measure
// again.
func (b *Binder) ensureEstimate(ctx context.Context) {
	b.mu.Lock()
	if !b.hasMeasured || b.estimate.Known() || len(b.slots) == 0 {
		b.mu.Unlock()
		return
	}
	widthSpec, heightSpec := b.lastWidthSpec, b.lastHeightSpec
	b.mu.Unlock()

	item, ok := b.initEstimate(ctx, widthSpec, heightSpec)
	if !ok {
		return
	}

	axis := b.strategy.ScrollAxis()
	_, crossSpec := axis.Specs(widthSpec, heightSpec)
	cross := b.crossExtent(crossSpec, axis.Cross(item))

	b.mu.Lock()
	changed := cross != axis.Cross(b.measured)
	if changed {
		b.requiresRemeasure = true
	}
	c := b.container
	b.mu.Unlock()

	if changed && c != nil {
		c.RequestRemeasure()
	}
}

// wrapExtent lays out every item and sums their extents along the scroll
// axis, packing spans into lines. It stops early once an at-most bound is
// reached.
func (b *Binder) wrapExtent(ctx context.Context, cross int, mainSpec layout.Spec) int {
	axis := b.strategy.ScrollAxis()
	spans := b.strategy.SpanCount()
	container := axis.Compose(0, cross)

	b.mu.Lock()
	slots := slices.Clone(b.slots)
	b.mu.Unlock()

	total, line, used := 0, 0, 0
	for i, s := range slots {
		info := s.Info()
		w, h := b.childSpecs(container, info)
		size, err := s.computeSync(ctx, b.builder, w, h)
		if err != nil && !errors.Is(err, ErrStaleLayout) {
			recordLayoutFailure(ctx)
			b.logger.Error("wrap content layout failed", "index", i, "error", err)
			continue
		}
		units := spanUnits(info, spans)
		if used+units > spans {
			total += line
			line, used = 0, 0
		}
		used += units
		line = max(line, axis.Main(size))
		if mainSpec.Mode == layout.AtMost && total+line >= mainSpec.Size {
			return mainSpec.Size
		}
	}
	return mainSpec.Resolve(total + line)
}

func spanUnits(info RenderInfo, spans int) int {
	if info.FullSpan {
		return spans
	}
	return min(max(info.SpanSize, 1), spans)
}
