package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-recycler/config"
	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/cell"
	"github.com/miosa/osa-recycler/ui/toast"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Items = 60
	cfg.Workers = 2
	cfg.MarkdownStyle = "notty"
	cfg.Sidebar = false
	return cfg
}

// newApp builds a model sized 90x30 on the test goroutine, which becomes
// the binder's control goroutine.
func newApp(t *testing.T, cfg config.Config) Model {
	t.Helper()
	m := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = m.Close() })
	return update(m, tea.WindowSizeMsg{Width: 90, Height: 30})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyPressMsg
		switch k {
		case "enter":
			msg = tea.KeyPressMsg{Code: tea.KeyEnter}
		default:
			r := []rune(k)
			msg = tea.KeyPressMsg{Code: r[0], Text: k}
		}
		m = update(m, msg)
	}
	return m
}

func content(t *testing.T, m Model, index int) string {
	t.Helper()
	msg, ok := m.binder.Info(index).Component.(cell.Message)
	if !ok {
		t.Fatalf("item %d is not a cell.Message", index)
	}
	return msg.Content
}

// ---------------------------------------------------------------------------
// Construction and sizing
// ---------------------------------------------------------------------------

func TestNew_MountsSampleItems(t *testing.T) {
	m := New(context.Background(), testConfig(), nil)
	t.Cleanup(func() { _ = m.Close() })

	if n := m.binder.ItemCount(); n != 60 {
		t.Fatalf("want 60 items, got %d", n)
	}
	if m.state != StateBrowsing || m.state.String() != "browsing" {
		t.Errorf("want browsing state, got %v", m.state)
	}
	if m.Init() == nil {
		t.Error("Init must request the window size")
	}
}

func TestWindowSize_MeasuresBinder(t *testing.T) {
	m := newApp(t, testConfig())

	if _, ok := m.binder.MeasuredSize(); !ok {
		t.Fatal("binder must be measured after the first WindowSizeMsg")
	}
	if !m.binder.Estimate().Known() {
		t.Error("range estimate must be established")
	}
	first, last := m.binder.VisibleRange()
	if first != 0 || last < 0 {
		t.Errorf("want visible window from 0, got (%d, %d)", first, last)
	}
	if m.layout.ListHeight != 30-m.layout.HeaderHeight-m.layout.StatusHeight {
		t.Errorf("list must take the remaining height, got %d", m.layout.ListHeight)
	}
}

func TestStrategyFromConfig(t *testing.T) {
	for _, name := range []string{config.StrategyLinear, config.StrategyGrid, config.StrategyStaggered} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Strategy = name
			cfg.SpanCount = 3
			m := newApp(t, cfg)
			want := 1
			if name != config.StrategyLinear {
				want = 3
			}
			if got := m.binder.Strategy().SpanCount(); got != want {
				t.Errorf("want span count %d, got %d", want, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

func TestKeys_Scroll(t *testing.T) {
	m := newApp(t, testConfig())
	_ = m.View()

	m = press(m, "j", "j", "j")
	if idx, line := m.list.Offset(); idx == 0 && line == 0 {
		t.Error("j must scroll down")
	}
	m = press(m, "g")
	if idx, line := m.list.Offset(); idx != 0 || line != 0 {
		t.Errorf("g must return to top, got (%d, %d)", idx, line)
	}
	m = press(m, "G")
	if !m.list.AtBottom() {
		t.Error("G must scroll to the bottom")
	}
	if first, _ := m.binder.VisibleRange(); first == 0 {
		t.Error("binder must see the new viewport")
	}
}

func TestKeys_ToggleThinking(t *testing.T) {
	m := newApp(t, testConfig())

	m = press(m, "enter")
	st, _ := m.binder.State(0).(cell.State)
	if !st.Expanded || st.Toggles != 1 {
		t.Fatalf("want expanded after one toggle, got %+v", st)
	}
	m = press(m, "t")
	st, _ = m.binder.State(0).(cell.State)
	if st.Expanded || st.Toggles != 2 {
		t.Errorf("want collapsed after two toggles, got %+v", st)
	}
}

func TestKeys_AppendAndPrepend(t *testing.T) {
	m := newApp(t, testConfig())

	m = press(m, "a")
	if n := m.binder.ItemCount(); n != 61 {
		t.Fatalf("want 61 items, got %d", n)
	}
	if c := content(t, m, 60); !strings.Contains(c, "#60") {
		t.Errorf("appended item must be #60, got %q", c)
	}
	if !m.list.AtBottom() {
		t.Error("append must follow the new item")
	}

	m = press(m, "i")
	if c := content(t, m, 0); !strings.Contains(c, "#61") {
		t.Errorf("prepended item must be #61, got %q", c)
	}
}

func TestKeys_RemoveShiftsIdentity(t *testing.T) {
	m := newApp(t, testConfig())
	second := m.binder.ID(1)

	m = press(m, "x")
	if n := m.binder.ItemCount(); n != 59 {
		t.Fatalf("want 59 items, got %d", n)
	}
	if m.binder.ID(0) != second {
		t.Error("item 1 must become item 0")
	}
}

func TestKeys_EditKeepsState(t *testing.T) {
	m := newApp(t, testConfig())
	id := m.binder.ID(0)

	m = press(m, "enter", "e")
	if c := content(t, m, 0); !strings.HasSuffix(c, "_edited_") {
		t.Errorf("want edited content, got %q", c)
	}
	if m.binder.ID(0) != id {
		t.Error("edit must keep the item identity")
	}
	if st, _ := m.binder.State(0).(cell.State); !st.Expanded {
		t.Error("edit must keep the thinking state")
	}
}

func TestKeys_MoveToEnd(t *testing.T) {
	m := newApp(t, testConfig())
	id := m.binder.ID(0)

	m = press(m, "m")
	if m.binder.ID(m.binder.ItemCount()-1) != id {
		t.Error("first visible item must move to the end")
	}
}

func TestKeys_ReplaceAll(t *testing.T) {
	m := newApp(t, testConfig())
	id := m.binder.ID(0)

	m = press(m, "r")
	if n := m.binder.ItemCount(); n != 60 {
		t.Fatalf("want 60 items, got %d", n)
	}
	if m.binder.ID(0) == id {
		t.Error("replace must create new items")
	}
	if c := content(t, m, 0); !strings.Contains(c, "#60") {
		t.Errorf("replacement must continue the sequence, got %q", c)
	}
}

func TestKeys_Help(t *testing.T) {
	m := newApp(t, testConfig())
	short := m.layout.StatusHeight

	m = press(m, "?")
	if m.state != StateHelp {
		t.Fatalf("want help state, got %v", m.state)
	}
	if m.layout.StatusHeight <= short {
		t.Errorf("help must grow the status area, got %d", m.layout.StatusHeight)
	}
	m = press(m, "?")
	if m.state != StateBrowsing || m.layout.StatusHeight != short {
		t.Errorf("second ? must close help, got %v / %d", m.state, m.layout.StatusHeight)
	}
}

func TestKeys_Sidebar(t *testing.T) {
	m := New(context.Background(), testConfig(), nil)
	t.Cleanup(func() { _ = m.Close() })
	m = update(m, tea.WindowSizeMsg{Width: 140, Height: 30})
	if m.layout.Mode != LayoutCompact {
		t.Fatal("sidebar starts closed in the test config")
	}

	m = press(m, "s")
	if m.layout.Mode != LayoutSidebar {
		t.Fatal("s must open the stats sidebar")
	}
	if m.list.Width() != m.layout.ListWidth {
		t.Errorf("list must shrink to %d, got %d", m.layout.ListWidth, m.list.Width())
	}
	if !strings.Contains(m.View().Content, "computed") {
		t.Error("sidebar must show the computed range")
	}
}

// ---------------------------------------------------------------------------
// Prefetch binding
// ---------------------------------------------------------------------------

func TestPrefetch_PauseAndFocus(t *testing.T) {
	m := newApp(t, testConfig())

	m = press(m, "p")
	if got := m.stats().PrefetchText(); got != "paused" {
		t.Errorf("p must pause prefetch, got %q", got)
	}
	m = press(m, "p")
	if got := m.stats().PrefetchText(); got != "on" {
		t.Errorf("second p must resume prefetch, got %q", got)
	}

	m = update(m, tea.BlurMsg{})
	if got := m.stats().PrefetchText(); got != "paused" {
		t.Errorf("blur must pause prefetch, got %q", got)
	}
	m = update(m, tea.FocusMsg{})
	if got := m.stats().PrefetchText(); got != "on" {
		t.Errorf("focus must resume prefetch, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

func TestMouseClick_TogglesItemUnderCursor(t *testing.T) {
	m := newApp(t, testConfig())
	_ = m.View()

	m = update(m, tea.MouseClickMsg{X: 2, Y: m.layout.HeaderHeight, Button: tea.MouseLeft})
	if st, _ := m.binder.State(0).(cell.State); !st.Expanded {
		t.Error("left click must toggle the item under the cursor")
	}

	m = update(m, tea.MouseClickMsg{X: 2, Y: m.layout.HeaderHeight, Button: tea.MouseRight})
	if st, _ := m.binder.State(0).(cell.State); st.Toggles != 1 {
		t.Error("right click must be ignored")
	}
}

func TestMouseWheel_Scrolls(t *testing.T) {
	m := newApp(t, testConfig())
	_ = m.View()

	m = update(m, tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	if idx, line := m.list.Offset(); idx == 0 && line == 0 {
		t.Error("wheel down must scroll")
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func TestView_Frame(t *testing.T) {
	m := newApp(t, testConfig())
	v := m.View()

	if !v.AltScreen || !v.ReportFocus || v.MouseMode != tea.MouseModeCellMotion {
		t.Error("view must enable alt screen, focus reports and cell motion")
	}
	if !strings.Contains(v.Content, "linear · 60 items") {
		t.Error("header must name the strategy and item count")
	}
	if got := countLines(v.Content); got != 30 {
		t.Errorf("frame must fill the terminal height (30), got %d lines", got)
	}
}

// ---------------------------------------------------------------------------
// Toasts and quit
// ---------------------------------------------------------------------------

func TestToasts_MutationSchedulesExpiry(t *testing.T) {
	m := newApp(t, testConfig())

	next, cmd := m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("a mutation must schedule the toast expiry")
	}
	if m.toasts.Len() != 1 {
		t.Fatalf("want one toast, got %d", m.toasts.Len())
	}
	if !strings.Contains(m.renderStatus(), "inserted #60") {
		t.Error("status bar must show the newest toast")
	}

	m = update(m, toast.ExpireMsg{})
	if m.toasts.Len() != 1 {
		t.Error("a fresh toast must survive an early expiry tick")
	}

	m = press(m, "j")
	if m.toasts.Len() != 1 {
		t.Error("scrolling must not add a toast")
	}
}

func TestToasts_WarnOnNoop(t *testing.T) {
	cfg := testConfig()
	cfg.Items = 0
	m := newApp(t, cfg)

	m = press(m, "x")
	if m.toasts.Len() != 1 || !strings.Contains(m.renderStatus(), "nothing to remove") {
		t.Error("removing from an empty list must warn")
	}
}

func TestSpinner_StopsWhilePaused(t *testing.T) {
	m := newApp(t, testConfig())
	m = press(m, "p")
	if m.spinner.Spinning() {
		t.Error("spinner must stop while prefetch is paused")
	}
	if strings.Contains(m.renderHeader(), "laying out") {
		t.Error("a stopped spinner must not render in the header")
	}
}

func TestQuit(t *testing.T) {
	m := newApp(t, testConfig())
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("q must return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q must quit")
	}
}

func TestMarkdownStyle(t *testing.T) {
	if got := markdownStyle("notty"); got != "notty" {
		t.Errorf("explicit style must pass through, got %q", got)
	}
	t.Cleanup(func() { style.SetTheme("dark") })
	style.SetTheme("light")
	if got := markdownStyle(config.MarkdownAuto); got != "light" {
		t.Errorf("auto must follow the light theme, got %q", got)
	}
	style.SetTheme("tokyo-night")
	if got := markdownStyle(config.MarkdownAuto); got != "dark" {
		t.Errorf("auto must follow a dark theme, got %q", got)
	}
}
