package anim

import (
	"strings"
	"testing"
)

func TestStartStop(t *testing.T) {
	m := New("laying out")
	if m.Spinning() || m.View() != "" {
		t.Fatal("new spinner must be stopped and render nothing")
	}
	if m.Start() == nil {
		t.Fatal("Start must schedule the first tick")
	}
	if m.Start() != nil {
		t.Error("Start on a running spinner must not schedule a second tick loop")
	}
	if !strings.Contains(m.View(), "laying out") {
		t.Errorf("running spinner must show its label, got %q", m.View())
	}
	m.Stop()
	if m.View() != "" {
		t.Error("stopped spinner must render nothing")
	}
}

func TestUpdate_AdvancesOwnTicksOnly(t *testing.T) {
	a := New("")
	b := New("")
	a.Start()

	next, cmd := a.Update(TickMsg{ID: b.id})
	if cmd != nil || next.frame != 0 {
		t.Error("a tick for another spinner must be ignored")
	}

	for range ellipsisFrames {
		next, cmd = next.Update(TickMsg{ID: a.id})
		if cmd == nil {
			t.Fatal("a running spinner must reschedule itself")
		}
	}
	if next.frame != ellipsisFrames || next.ellipsisIdx != 1 {
		t.Errorf("want frame %d and one ellipsis step, got %d/%d", ellipsisFrames, next.frame, next.ellipsisIdx)
	}

	next.Stop()
	if _, cmd = next.Update(TickMsg{ID: a.id}); cmd != nil {
		t.Error("a stopped spinner must not reschedule")
	}
}

func TestSetLabel(t *testing.T) {
	m := New("a")
	m.Start()
	m.SetLabel("pending 3")
	if !strings.Contains(m.View(), "pending 3") {
		t.Errorf("want new label, got %q", m.View())
	}
}
