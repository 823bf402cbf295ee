package binder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miosa/osa-recycler/layout"
)

// Slot is the cache entry for one item. It owns the item's RenderInfo, the
// cached layout Result while the item is in the computed range, and the
// item's persisted state, which survives release of the Result.
//
// Thread Safety:
//
//	Every field is guarded by mu. Layout itself runs without mu held: a
//	computation takes a ticket under the lock, builds unlocked, and commits
//	only if its ticket is still the pending one and the RenderInfo version
//	has not moved. Starting a computation, releasing, invalidating,
//	replacing the RenderInfo or removing the slot all retire the pending
//	ticket, so at most one computation can ever commit.
type Slot struct {
	id uuid.UUID

	mu      sync.Mutex
	info    RenderInfo
	version uint64
	handler Handler

	result     *Result
	state      any
	valid      bool
	widthSpec  layout.Spec
	heightSpec layout.Spec

	token   uint64
	pending *ticket
	removed bool
}

// ticket is the snapshot a computation works from.
type ticket struct {
	token      uint64
	version    uint64
	info       RenderInfo
	state      any
	widthSpec  layout.Spec
	heightSpec layout.Spec
}

// completion is reported for every async computation that ran.
type completion func(s *Slot, committed bool, err error)

func newSlot(info RenderInfo, handler Handler) *Slot {
	return &Slot{
		id:      uuid.New(),
		info:    info,
		handler: handler,
	}
}

// ID is the slot's stable identity. It does not change across moves.
func (s *Slot) ID() uuid.UUID { return s.id }

// Info returns the current RenderInfo.
func (s *Slot) Info() RenderInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Valid reports whether the cached result matches the current RenderInfo and
// the constraints it was last computed for.
func (s *Slot) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

// Result returns the cached layout, or false when it is missing or invalid.
func (s *Slot) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid || s.result == nil {
		return nil, false
	}
	return s.result, true
}

// State returns the persisted state, whether or not a result is cached.
func (s *Slot) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStateLocked()
}

func (s *Slot) currentStateLocked() any {
	if s.result != nil {
		return s.result.State
	}
	return s.state
}

func (s *Slot) validForLocked(widthSpec, heightSpec layout.Spec) bool {
	return s.valid && s.result != nil && s.widthSpec == widthSpec && s.heightSpec == heightSpec
}

func (s *Slot) beginLocked(widthSpec, heightSpec layout.Spec) ticket {
	s.token++
	t := ticket{
		token:      s.token,
		version:    s.version,
		info:       s.info,
		state:      s.currentStateLocked(),
		widthSpec:  widthSpec,
		heightSpec: heightSpec,
	}
	s.pending = &t
	return t
}

// commit stores res if t is still the pending ticket and the RenderInfo has
// not been replaced since t was taken.
func (s *Slot) commit(t ticket, res *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.token != t.token {
		return false
	}
	s.pending = nil
	if s.removed || s.version != t.version {
		return false
	}
	s.result = res
	s.state = res.State
	s.valid = true
	s.widthSpec = t.widthSpec
	s.heightSpec = t.heightSpec
	return true
}

// adopt keeps the cached result under new constraints when it is still a
// valid answer for them. It reports whether the result now matches them.
func (s *Slot) adopt(widthSpec, heightSpec layout.Spec) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validForLocked(widthSpec, heightSpec) {
		return true
	}
	if !s.valid || s.result == nil || s.pending != nil {
		return false
	}
	size := s.result.Size
	if !layout.Compatible(s.widthSpec, widthSpec, size.Width) ||
		!layout.Compatible(s.heightSpec, heightSpec, size.Height) {
		return false
	}
	s.widthSpec = widthSpec
	s.heightSpec = heightSpec
	return true
}

func (s *Slot) abort(t ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.token == t.token {
		s.pending = nil
	}
}

func run(ctx context.Context, b Builder, t ticket) (*Result, time.Duration, error) {
	start := time.Now()
	res, err := b.Layout(ctx, t.info, t.state, t.widthSpec, t.heightSpec)
	if err == nil && res == nil {
		err = errors.New("builder returned no result")
	}
	return res, time.Since(start), err
}

// computeSync lays the item out on the calling goroutine. A still-valid
// result for the same constraints is returned without calling the builder.
// ErrStaleLayout means the slot changed while the builder ran and the result
// was thrown away.
func (s *Slot) computeSync(ctx context.Context, b Builder, widthSpec, heightSpec layout.Spec) (layout.Size, error) {
	s.mu.Lock()
	if s.validForLocked(widthSpec, heightSpec) {
		size := s.result.Size
		s.mu.Unlock()
		return size, nil
	}
	if s.removed {
		s.mu.Unlock()
		return layout.Size{}, ErrStaleLayout
	}
	t := s.beginLocked(widthSpec, heightSpec)
	s.mu.Unlock()

	res, elapsed, err := run(ctx, b, t)
	if err != nil {
		s.abort(t)
		return layout.Size{}, fmt.Errorf("layout %s: %w", s.id, err)
	}
	recordLayout(ctx, modeSync, elapsed)
	if !s.commit(t, res) {
		return res.Size, ErrStaleLayout
	}
	return res.Size, nil
}

// computeAsync schedules a layout on the slot's own handler, or fallback when
// it has none. It does nothing when the result is already valid for the
// constraints or an identical computation is in flight. An error means the
// handler refused the task and nothing was scheduled.
func (s *Slot) computeAsync(ctx context.Context, b Builder, widthSpec, heightSpec layout.Spec, fallback Handler, done completion) error {
	s.mu.Lock()
	if s.removed || s.validForLocked(widthSpec, heightSpec) {
		s.mu.Unlock()
		return nil
	}
	if p := s.pending; p != nil && p.version == s.version && p.widthSpec == widthSpec && p.heightSpec == heightSpec {
		s.mu.Unlock()
		return nil
	}
	t := s.beginLocked(widthSpec, heightSpec)
	h := s.handler
	if h == nil {
		h = fallback
	}
	s.mu.Unlock()

	err := h.Post(func() {
		if err := ctx.Err(); err != nil {
			s.abort(t)
			done(s, false, err)
			return
		}
		res, elapsed, err := run(ctx, b, t)
		if err != nil {
			s.abort(t)
			done(s, false, err)
			return
		}
		recordLayout(ctx, modeAsync, elapsed)
		done(s, s.commit(t, res), nil)
	})
	if err != nil {
		s.abort(t)
		return err
	}
	return nil
}

// releaseKeepingState drops the cached result, keeping its state, and
// retires any in-flight computation. It reports whether there was anything
// to drop.
func (s *Slot) releaseKeepingState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	released := s.result != nil || s.pending != nil
	if s.result != nil {
		s.state = s.result.State
		s.result = nil
	}
	s.valid = false
	s.pending = nil
	return released
}

// invalidate marks the result stale without touching state. Used when the
// container's constraints change.
func (s *Slot) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.pending = nil
}

// setInfo replaces the RenderInfo. The cached result is dropped, the state
// is kept.
func (s *Slot) setInfo(info RenderInfo, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.currentStateLocked()
	s.info = info
	s.handler = handler
	s.version++
	s.result = nil
	s.valid = false
	s.pending = nil
}

// updateState applies fn to the persisted state. The result is dropped since
// the layout depends on the state.
func (s *Slot) updateState(fn func(any) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.currentStateLocked())
	s.result = nil
	s.valid = false
	s.pending = nil
}

// destroy discards everything. Late completions for the slot are dropped.
func (s *Slot) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	s.result = nil
	s.state = nil
	s.valid = false
	s.pending = nil
}
