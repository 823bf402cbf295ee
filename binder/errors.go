package binder

import (
	"errors"
	"fmt"
)

// Programming errors. The binder panics with one of these wrapped; callers
// should not try to recover from them.
var (
	ErrNotControlGoroutine     = errors.New("binder: called off the control goroutine")
	ErrUnconstrainedScrollAxis = errors.New("binder: scroll axis must be constrained")
	ErrIndexOutOfRange         = errors.New("binder: index out of range")
)

// Runtime conditions, returned as errors.
var (
	ErrNotMeasured      = errors.New("binder: not measured yet")
	ErrStaleLayout      = errors.New("binder: layout discarded as stale")
	ErrHandlerSaturated = errors.New("binder: handler saturated")
	ErrHandlerClosed    = errors.New("binder: handler closed")
)

func indexPanic(op string, index, count int) {
	panic(fmt.Errorf("%s: index %d with %d items: %w", op, index, count, ErrIndexOutOfRange))
}
