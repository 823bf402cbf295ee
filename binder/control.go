package binder

import (
	"fmt"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// controlGoroutine pins a binder's control-only methods to one goroutine.
// The goroutine is bound by the first control call.
type controlGoroutine struct {
	id atomic.Int64
}

func (c *controlGoroutine) check(op string) {
	g := goid.Get()
	if c.id.CompareAndSwap(0, g) {
		return
	}
	if owner := c.id.Load(); owner != g {
		panic(fmt.Errorf("%s from goroutine %d, owner is %d: %w", op, g, owner, ErrNotControlGoroutine))
	}
}

