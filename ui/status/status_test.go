package status

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func sample() Stats {
	return Stats{
		Strategy:      "linear",
		Items:         100,
		EstimateKnown: true,
		Estimate:      12,
		VisibleFirst:  3,
		VisibleLast:   9,
		ComputedStart: 0,
		ComputedEnd:   21,
	}
}

func TestStatsText(t *testing.T) {
	s := sample()
	if s.EstimateText() != "12" || s.VisibleText() != "3–9" || s.ComputedText() != "0–21" {
		t.Errorf("unexpected text: %s %s %s", s.EstimateText(), s.VisibleText(), s.ComputedText())
	}
	if s.PrefetchText() != "on" {
		t.Error("want prefetch on")
	}

	var zero Stats
	zero.VisibleFirst, zero.ComputedStart = -1, -1
	zero.Paused = true
	if zero.EstimateText() != "unknown" || zero.VisibleText() != "–" || zero.PrefetchText() != "paused" {
		t.Errorf("unexpected text for unmeasured stats: %s %s %s",
			zero.EstimateText(), zero.VisibleText(), zero.PrefetchText())
	}
}

func TestView(t *testing.T) {
	m := New()
	m.SetKeyHelp("[q] quit")
	m.SetStats(sample(), true)
	m.SetToast("✓ inserted")

	out := m.View()
	for _, want := range []string{"[q] quit", "est 12", "range 0–21", "inserted"} {
		if !strings.Contains(out, want) {
			t.Errorf("status must contain %q, got %q", want, out)
		}
	}

	m.SetStats(sample(), false)
	if strings.Contains(m.View(), "est 12") {
		t.Error("hidden stats must not render")
	}
}

func TestView_ClipsToWidth(t *testing.T) {
	m := New()
	m.SetKeyHelp(strings.Repeat("k", 200))
	m.SetWidth(40)
	if w := lipgloss.Width(m.View()); w > 40 {
		t.Errorf("want at most 40 columns, got %d", w)
	}
}

func TestView_ToastSurvivesLongHelp(t *testing.T) {
	m := New()
	m.SetKeyHelp(strings.Repeat("k", 200))
	m.SetStats(sample(), true)
	m.SetToast("inserted #60 at 60")
	m.SetWidth(90)

	out := m.View()
	if !strings.Contains(out, "inserted #60 at 60") {
		t.Errorf("toast must survive clipping, got %q", out)
	}
	if w := lipgloss.Width(out); w > 90 {
		t.Errorf("want at most 90 columns, got %d", w)
	}
	if !strings.Contains(out, "kkkk") {
		t.Error("key help must keep the remaining width")
	}
}

func TestView_ToastWiderThanBar(t *testing.T) {
	m := New()
	m.SetKeyHelp("[q] quit")
	m.SetToast(strings.Repeat("t", 50))
	m.SetWidth(20)

	out := m.View()
	if w := lipgloss.Width(out); w > 20 {
		t.Errorf("want at most 20 columns, got %d", w)
	}
	if strings.Contains(out, "quit") {
		t.Error("key help must give way to the toast")
	}
}
