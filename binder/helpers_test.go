package binder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-recycler/layout"
)

// ---------------------------------------------------------------------------
// Test builder
// ---------------------------------------------------------------------------

type testItem struct {
	key    string
	height int
}

func item(key string) RenderInfo { return RenderInfo{Component: testItem{key: key, height: 4}} }

func items(n int) []RenderInfo {
	infos := make([]RenderInfo, n)
	for i := range infos {
		infos[i] = item(fmt.Sprintf("item-%d", i))
	}
	return infos
}

// countingBuilder lays out testItems with a fixed height and records calls
// and the state each call received.
type countingBuilder struct {
	mu     sync.Mutex
	calls  map[string]int
	states map[string]any
	hook   func(key string)
	fail   map[string]error
}

func newCountingBuilder() *countingBuilder {
	return &countingBuilder{
		calls:  make(map[string]int),
		states: make(map[string]any),
		fail:   make(map[string]error),
	}
}

func (c *countingBuilder) Layout(_ context.Context, info RenderInfo, state any, widthSpec, _ layout.Spec) (*Result, error) {
	it := info.Component.(testItem)
	c.mu.Lock()
	c.calls[it.key]++
	c.states[it.key] = state
	hook := c.hook
	err := c.fail[it.key]
	c.mu.Unlock()

	if hook != nil {
		hook(it.key)
	}
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = 0
	}
	return &Result{
		Size:   layout.Size{Width: widthSpec.Resolve(10), Height: it.height},
		Output: it.key,
		State:  state,
	}, nil
}

func (c *countingBuilder) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func (c *countingBuilder) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingBuilder) lastState(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[key]
}

// ---------------------------------------------------------------------------
// Test handlers
// ---------------------------------------------------------------------------

// manualHandler queues tasks until the test runs them.
type manualHandler struct {
	mu    sync.Mutex
	tasks []func()
}

func (h *manualHandler) Post(task func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, task)
	return nil
}

func (h *manualHandler) pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tasks)
}

func (h *manualHandler) runAll() {
	for {
		h.mu.Lock()
		tasks := h.tasks
		h.tasks = nil
		h.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, t := range tasks {
			t()
		}
	}
}

func (h *manualHandler) runFirst() {
	h.mu.Lock()
	t := h.tasks[0]
	h.tasks = h.tasks[1:]
	h.mu.Unlock()
	t()
}

var refusingHandler = HandlerFunc(func(func()) error { return ErrHandlerSaturated })

var inlineHandler = HandlerFunc(func(task func()) error {
	task()
	return nil
})

// ---------------------------------------------------------------------------
// Test container
// ---------------------------------------------------------------------------

type fakeContainer struct {
	mu         sync.Mutex
	adapter    Adapter
	strategy   layout.Strategy
	events     []string
	scrolledTo int
	ready      []uuid.UUID
	remeasures int
}

func newFakeContainer() *fakeContainer { return &fakeContainer{scrolledTo: -1} }

func (f *fakeContainer) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf(format, args...))
}

func (f *fakeContainer) ItemsInserted(index, count int) { f.record("insert %d %d", index, count) }
func (f *fakeContainer) ItemsChanged(index, count int)  { f.record("change %d %d", index, count) }
func (f *fakeContainer) ItemMoved(from, to int)         { f.record("move %d %d", from, to) }
func (f *fakeContainer) ItemsRemoved(index, count int)  { f.record("remove %d %d", index, count) }

func (f *fakeContainer) Attach(a Adapter, s layout.Strategy) {
	f.adapter = a
	f.strategy = s
	f.record("attach")
}

func (f *fakeContainer) Detach() {
	f.adapter = nil
	f.record("detach")
}

func (f *fakeContainer) ScrollToPosition(index int) { f.scrolledTo = index }

func (f *fakeContainer) LayoutReady(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, id)
}

func (f *fakeContainer) RequestRemeasure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remeasures++
}

func (f *fakeContainer) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// newMeasured returns a vertical list of n items four rows tall, measured at
// 80x20 so that five items fill the viewport.
func newMeasured(t *testing.T, n int, opts ...Option) (*Binder, *countingBuilder) {
	t.Helper()
	cb := newCountingBuilder()
	b := New(layout.NewLinear(layout.Vertical), cb, opts...)
	t.Cleanup(func() { _ = b.Close() })
	b.InsertRange(0, items(n))
	var out layout.Size
	b.Measure(&out, layout.Exact(80), layout.Exact(20))
	require.Equal(t, layout.Size{Width: 80, Height: 20}, out)
	return b, cb
}

func keyAt(t *testing.T, b *Binder, index int) string {
	t.Helper()
	return b.slotAt("test", index).Info().Component.(testItem).key
}

// panicErr runs fn and returns the error it panicked with.
func panicErr(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			err = e
			return
		}
		err = fmt.Errorf("%v", r)
	}()
	fn()
	return errors.New("did not panic")
}
