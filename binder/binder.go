// Package binder keeps a virtualized list responsive without laying out
// every item up front.
//
// A Binder owns the ordered list of Slots and maintains a computed range of
// indices around the visible window: visible items are laid out
// synchronously, the rest of the range asynchronously on a Handler, and
// items that leave the range drop their layout while keeping their state.
//
// Structural mutation, measurement, mount lifecycle and viewport changes
// belong to a single control goroutine, bound by the first such call.
// Calling them from any other goroutine panics with ErrNotControlGoroutine.
package binder

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/miosa/osa-recycler/layout"
)

const (
	// DefaultRangeRatio extends the computed range by this many viewports
	// on each side of the visible window.
	DefaultRangeRatio = 2.0

	unknownCount = -1
)

// RangeEstimate is the binder's sizing estimate: how many items fill one
// viewport and the container size measured across the scroll axis.
type RangeEstimate struct {
	Count     int // -1 until the first item has been laid out
	CrossSize int
}

// Known reports whether the viewport count has been established.
func (e RangeEstimate) Known() bool { return e.Count >= 0 }

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Binder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRangeRatio sets how many viewports the computed range extends beyond
// the visible window on each side. Negative values are ignored.
func WithRangeRatio(r float64) Option {
	return func(b *Binder) {
		if r >= 0 {
			b.rangeRatio = r
		}
	}
}

// WithHandlerFactory sets the factory consulted for per-item handlers.
func WithHandlerFactory(f HandlerFactory) Option {
	return func(b *Binder) { b.handlers = f }
}

// WithHandler replaces the default worker pool. The binder does not close a
// handler it did not create.
func WithHandler(h Handler) Option {
	return func(b *Binder) {
		if h != nil {
			b.handler = h
		}
	}
}

// WithWorkers sizes the default worker pool. Ignored when WithHandler is set.
func WithWorkers(n int) Option {
	return func(b *Binder) { b.workers = n }
}

// WithWrapContent lets the container be measured with an unspecified scroll
// axis; it then takes the summed extent of its items.
func WithWrapContent(wrap bool) Option {
	return func(b *Binder) { b.wrapContent = wrap }
}

// WithContext sets the parent context passed to the builder. Close cancels
// a child of it.
func WithContext(ctx context.Context) Option {
	return func(b *Binder) {
		if ctx != nil {
			b.ctx = ctx
		}
	}
}

// Binder is the range-caching orchestrator for one list.
//
// Thread Safety:
//
//	mu guards the slot list, the estimate, the measured size, the visible
//	window and the mounted container. It is never held while an item is
//	laid out. Each Slot synchronizes its own layout state.
type Binder struct {
	strategy    layout.Strategy
	builder     Builder
	handlers    HandlerFactory
	handler     Handler
	pool        *WorkerPool
	workers     int
	rangeRatio  float64
	wrapContent bool
	logger      *slog.Logger
	control     controlGoroutine

	ctx    context.Context
	cancel context.CancelFunc

	mu                sync.Mutex
	slots             []*Slot
	mutations         uint64
	estimate          RangeEstimate
	measured          layout.Size
	hasMeasured       bool
	requiresRemeasure bool
	lastWidthSpec     layout.Spec
	lastHeightSpec    layout.Spec
	firstVisible      int
	lastVisible       int
	rangeStart        int
	rangeEnd          int
	container         Container
	paused            bool
}

// New returns a Binder laying items out with builder under strategy.
func New(strategy layout.Strategy, builder Builder, opts ...Option) *Binder {
	b := &Binder{
		strategy:     strategy,
		builder:      builder,
		rangeRatio:   DefaultRangeRatio,
		workers:      runtime.GOMAXPROCS(0),
		logger:       slog.Default(),
		ctx:          context.Background(),
		estimate:     RangeEstimate{Count: unknownCount},
		firstVisible: -1,
		lastVisible:  -1,
		rangeStart:   -1,
		rangeEnd:     -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.handler == nil {
		b.pool = NewWorkerPool(b.workers)
		b.handler = b.pool
	}
	b.ctx, b.cancel = context.WithCancel(b.ctx)
	b.logger = b.logger.With("component", "binder")
	return b
}

// Close cancels in-flight layouts and waits for the default pool to drain.
// It may be called from any goroutine.
func (b *Binder) Close() error {
	b.cancel()
	if b.pool != nil {
		return b.pool.Close()
	}
	return nil
}

// Strategy returns the layout strategy the binder was built with.
func (b *Binder) Strategy() layout.Strategy { return b.strategy }

// ItemCount returns the number of items.
func (b *Binder) ItemCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}

// Estimate returns the current range estimate.
func (b *Binder) Estimate() RangeEstimate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.estimate
}

// ComputedRange returns the inclusive bounds of the last completed range
// pass, or (-1, -1) before the first one.
func (b *Binder) ComputedRange() (start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rangeStart, b.rangeEnd
}

// VisibleRange returns the window last reported to OnViewportChanged.
func (b *Binder) VisibleRange() (first, last int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.firstVisible, b.lastVisible
}

// MeasuredSize returns the size produced by the last Measure.
func (b *Binder) MeasuredSize() (layout.Size, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.measured, b.hasMeasured
}

// ID returns the stable id of the item at index.
func (b *Binder) ID(index int) uuid.UUID { return b.slotAt("ID", index).ID() }

// Info returns the descriptor of the item at index.
func (b *Binder) Info(index int) RenderInfo { return b.slotAt("Info", index).Info() }

// Result returns the layout of the item at index when it is valid.
func (b *Binder) Result(index int) (*Result, bool) { return b.slotAt("Result", index).Result() }

// State returns the persisted state of the item at index.
func (b *Binder) State(index int) any { return b.slotAt("State", index).State() }

func (b *Binder) slotAt(op string, index int) *Slot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.slots) {
		indexPanic(op, index, len(b.slots))
	}
	return b.slots[index]
}

func (b *Binder) handlerFor(info RenderInfo) Handler {
	if b.handlers == nil {
		return nil
	}
	return b.handlers.Handler(info)
}

// ---------------------------------------------------------------------------
// Mount lifecycle
// ---------------------------------------------------------------------------

// Mount attaches the binder to c, installing the strategy and the adapter
// bridge and restoring the last first-visible position. Mounting to another
// container first unmounts the current one; mounting to the same container
// again is a no-op. Containers are compared with ==, so they should be
// pointers.
func (b *Binder) Mount(c Container) {
	b.control.check("Mount")
	b.mu.Lock()
	current := b.container
	first := b.firstVisible
	b.mu.Unlock()

	if current == c {
		return
	}
	if current != nil {
		b.Unmount(current)
	}

	b.mu.Lock()
	b.container = c
	b.paused = false
	b.mu.Unlock()

	c.Attach(bridge{b: b}, b.strategy)
	if first > 0 {
		c.ScrollToPosition(first)
	}
	b.logger.Debug("mounted", "first_visible", first)
}

// Unmount detaches the binder from c. It is a no-op unless c is the mounted
// container.
func (b *Binder) Unmount(c Container) {
	b.control.check("Unmount")
	b.mu.Lock()
	if b.container == nil || b.container != c {
		b.mu.Unlock()
		return
	}
	b.container = nil
	b.mu.Unlock()

	c.Detach()
	b.logger.Debug("unmounted")
}

// Bind tells the binder the mounted container is on screen. Async prefetch
// resumes and the range is recomputed.
func (b *Binder) Bind(c Container) {
	b.control.check("Bind")
	b.mu.Lock()
	if b.container != c {
		b.mu.Unlock()
		return
	}
	b.paused = false
	b.mu.Unlock()
	b.computeRange(b.ctx)
}

// Unbind tells the binder the mounted container left the screen. Range
// passes stop scheduling async prefetch until the next Bind; visible items
// still lay out synchronously.
func (b *Binder) Unbind(c Container) {
	b.control.check("Unbind")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container != c {
		return
	}
	b.paused = true
}

// bindCell serves Adapter.BindCell.
func (b *Binder) bindCell(index int) (*Result, error) {
	b.control.check("BindCell")
	s := b.slotAt("BindCell", index)
	if res, ok := s.Result(); ok {
		return res, nil
	}

	b.mu.Lock()
	if !b.hasMeasured {
		b.mu.Unlock()
		return nil, ErrNotMeasured
	}
	size := b.measured
	b.mu.Unlock()

	w, h := b.childSpecs(size, s.Info())
	if _, err := s.computeSync(b.ctx, b.builder, w, h); err != nil {
		return nil, err
	}
	res, ok := s.Result()
	if !ok {
		return nil, ErrStaleLayout
	}
	return res, nil
}

// childSpecs derives an item's constraints from the container size.
func (b *Binder) childSpecs(container layout.Size, info RenderInfo) (layout.Spec, layout.Spec) {
	span := info.Span()
	return b.strategy.ChildWidthSpec(layout.Exact(container.Width), span),
		b.strategy.ChildHeightSpec(layout.Exact(container.Height), span)
}
