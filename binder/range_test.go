package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name               string
		first, last, count int
		ratio              float64
		n                  int
		wantStart, wantEnd int
	}{
		{"middle", 10, 14, 5, 1, 100, 5, 20},
		{"default ratio", 10, 14, 5, 2, 100, 0, 25},
		{"clamped at head", 0, 4, 5, 1, 100, 0, 10},
		{"clamped at tail", 95, 99, 5, 1, 100, 90, 99},
		{"zero ratio", 10, 14, 5, 0, 100, 10, 15},
		{"fractional ratio floors", 10, 14, 5, 0.5, 100, 8, 17},
		{"last beyond estimate", 10, 40, 5, 1, 100, 5, 40},
		{"short list", 0, 2, 5, 2, 3, 0, 2},
		{"empty", 0, -1, 5, 2, 0, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := rangeBounds(tt.first, tt.last, tt.count, tt.ratio, tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestRange_ViewportScenario(t *testing.T) {
	h := &manualHandler{}
	b, cb := newMeasured(t, 100, WithHandler(h), WithRangeRatio(1))

	b.OnViewportChanged(10, 14)

	start, end := b.ComputedRange()
	assert.Equal(t, 5, start)
	assert.Equal(t, 20, end)

	for i := 10; i <= 14; i++ {
		_, ok := b.Result(i)
		assert.True(t, ok, "visible item %d is laid out synchronously", i)
	}
	_, ok := b.Result(5)
	assert.False(t, ok, "prefetch waits for the handler")

	h.runAll()
	for i := 0; i < 100; i++ {
		_, ok := b.Result(i)
		assert.Equal(t, i >= 5 && i <= 20, ok, "item %d", i)
	}
	assert.Equal(t, 0, cb.count("item-21"))
}

func TestRange_ContainsFirstVisible(t *testing.T) {
	h := &manualHandler{}
	b, _ := newMeasured(t, 100, WithHandler(h))

	for first := 0; first < 100; first += 7 {
		last := min(first+4, 99)
		b.OnViewportChanged(first, last)
		start, end := b.ComputedRange()
		assert.LessOrEqual(t, start, first)
		assert.GreaterOrEqual(t, end, last)
		assert.GreaterOrEqual(t, start, 0)
		assert.LessOrEqual(t, end, 99)
	}
}

func TestRange_ReleasesOnScroll(t *testing.T) {
	h := &manualHandler{}
	b, _ := newMeasured(t, 100, WithHandler(h), WithRangeRatio(1))
	h.runAll()
	for i := 0; i <= 10; i++ {
		_, ok := b.Result(i)
		require.True(t, ok, "item %d", i)
	}

	b.OnViewportChanged(60, 64)
	h.runAll()
	for i := 0; i <= 10; i++ {
		_, ok := b.Result(i)
		assert.False(t, ok, "item %d", i)
	}
	start, end := b.ComputedRange()
	assert.Equal(t, 55, start)
	assert.Equal(t, 70, end)
}

func TestRange_ShrinkingListClampsVisibleWindow(t *testing.T) {
	h := &manualHandler{}
	b, _ := newMeasured(t, 100, WithHandler(h), WithRangeRatio(1))
	b.OnViewportChanged(90, 94)

	b.RemoveRange(20, 80)

	start, end := b.ComputedRange()
	assert.Equal(t, 19, end)
	assert.LessOrEqual(t, start, 19)
	_, ok := b.Result(19)
	assert.True(t, ok)
}
