package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/binder"
	"github.com/miosa/osa-recycler/config"
	"github.com/miosa/osa-recycler/layout"
	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/anim"
	"github.com/miosa/osa-recycler/ui/cell"
	"github.com/miosa/osa-recycler/ui/common"
	"github.com/miosa/osa-recycler/ui/header"
	"github.com/miosa/osa-recycler/ui/list"
	"github.com/miosa/osa-recycler/ui/sidebar"
	"github.com/miosa/osa-recycler/ui/status"
	"github.com/miosa/osa-recycler/ui/toast"
)

// Version is shown in the header. main sets it from the build.
var Version = "dev"

// ProgramReady is sent by main once the program exists. Binder workers
// deliver layout notifications through it.
type ProgramReady struct{ Program *tea.Program }

// sender hands messages from binder workers to the program. It drops them
// until ProgramReady arrives; the next frame binds whatever they announced.
type sender struct {
	program atomic.Pointer[tea.Program]
}

func (s *sender) send(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}

// -- Model --------------------------------------------------------------------

// Model is the root Bubble Tea model. It owns the binder, the list it is
// mounted into, and the worker pool markdown cards lay out on.
//
// The binder's control goroutine is the one that calls New; main runs the
// program on that same goroutine.
type Model struct {
	binder   *binder.Binder
	list     *list.Model
	markdown *binder.WorkerPool
	sender   *sender

	state      State
	layout     Layout
	layoutMode LayoutMode
	keys       KeyMap
	config     config.Config
	logger     *slog.Logger

	width  int
	height int

	// seq numbers the next generated sample message.
	seq     int
	paused  bool // prefetch paused from the keyboard
	blurred bool // terminal lost focus

	header     header.Model
	status     status.Model
	sidebar    sidebar.Model
	toasts     toast.Model
	spinner    anim.Model
	toastAdded bool // schedule an expiry tick at the end of the update
	quitting   bool
}

// New builds the binder from cfg, mounts a list and fills it with
// cfg.Items sample messages. Layouts still running when ctx is cancelled
// are abandoned.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	builder := cell.NewBuilder(
		cell.WithLatency(cfg.Latency),
		cell.WithMarkdownStyle(markdownStyle(cfg.MarkdownStyle)),
		cell.WithLogger(logger),
	)

	markdown := binder.NewWorkerPool(max(cfg.Workers/2, 1))
	factory := binder.HandlerFactoryFunc(func(info binder.RenderInfo) binder.Handler {
		if info.LayoutHint == hintMarkdown {
			return markdown
		}
		return nil
	})

	b := binder.New(newStrategy(cfg), builder,
		binder.WithContext(ctx),
		binder.WithLogger(logger),
		binder.WithRangeRatio(cfg.RangeRatio),
		binder.WithWorkers(cfg.Workers),
		binder.WithHandlerFactory(factory),
	)

	s := &sender{}
	l := list.New(b,
		list.WithGap(cfg.Gap),
		list.WithScrollbar(cfg.Scrollbar),
		list.WithNotify(s.send),
	)
	b.Mount(l)
	b.InsertRange(0, sampleInfos(0, cfg.Items))

	layoutMode := LayoutCompact
	if cfg.Sidebar {
		layoutMode = LayoutSidebar
	}

	return Model{
		binder:     b,
		list:       l,
		markdown:   markdown,
		sender:     s,
		state:      StateBrowsing,
		layoutMode: layoutMode,
		keys:       DefaultKeyMap(),
		config:     cfg,
		logger:     logger.With("component", "app"),
		width:      80,
		height:     24,
		seq:        cfg.Items,
		header:     header.New(Version),
		status:     status.New(),
		sidebar:    sidebar.New(),
		toasts:     toast.New(),
		spinner:    anim.New(""),
	}
}

// markdownStyle resolves config.MarkdownAuto against the active theme.
func markdownStyle(name string) string {
	if name != config.MarkdownAuto {
		return name
	}
	if style.IsDark() {
		return "dark"
	}
	return "light"
}

// newStrategy maps the configured strategy name onto a vertical strategy.
func newStrategy(cfg config.Config) layout.Strategy {
	switch cfg.Strategy {
	case config.StrategyGrid:
		return layout.NewGrid(layout.Vertical, cfg.SpanCount)
	case config.StrategyStaggered:
		return layout.NewStaggered(layout.Vertical, cfg.SpanCount)
	default:
		return layout.NewLinear(layout.Vertical)
	}
}

// Close stops the binder and the markdown pool, waiting for in-flight
// layouts. Call it after the program has exited.
func (m Model) Close() error {
	return errors.Join(m.binder.Close(), m.markdown.Close())
}

// -- Init ---------------------------------------------------------------------

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tea.RequestWindowSize() }
}

// -- Update -------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.recomputeLayout()

	case ProgramReady:
		m.sender.program.Store(v.Program)
		return m, nil

	case list.LayoutReadyMsg:
		cmd = m.list.Update(v)

	case tea.MouseWheelMsg:
		cmd = m.list.Update(v)

	case tea.MouseClickMsg:
		if v.Button != tea.MouseLeft {
			return m, nil
		}
		if idx := m.list.ItemAt(v.X, v.Y-m.layout.HeaderHeight); idx >= 0 {
			m.toggleThinking(idx)
		}
		cmd = m.flushToasts()

	case toast.ExpireMsg:
		m.toasts.Prune(time.Now())
		return m, nil

	case anim.TickMsg:
		m.spinner, cmd = m.spinner.Update(v)

	case tea.FocusMsg:
		m.blurred = false
		m.applyBinding()

	case tea.BlurMsg:
		m.blurred = true
		m.applyBinding()

	case tea.KeyPressMsg:
		m.handleAction(v)
		if m.quitting {
			return m, tea.Quit
		}
		cmd = m.flushToasts()

	default:
		return m, nil
	}
	return m, tea.Batch(cmd, m.syncSpinner())
}

// syncSpinner runs the header spinner while items in the computed range
// wait for a layout and prefetch is active.
func (m *Model) syncSpinner() tea.Cmd {
	pending := m.stats().Pending
	if pending == 0 || m.paused || m.blurred {
		m.spinner.Stop()
		return nil
	}
	m.spinner.SetLabel(fmt.Sprintf("laying out %d", pending))
	return m.spinner.Start()
}

// -- Key handling -------------------------------------------------------------

// handleAction applies the binding matched by k.
func (m *Model) handleAction(k tea.KeyPressMsg) {
	switch {
	case key.Matches(k, m.keys.Quit):
		m.quitting = true

	case key.Matches(k, m.keys.Help):
		if m.state == StateHelp {
			m.state = StateBrowsing
		} else {
			m.state = StateHelp
		}
		m.recomputeLayout()

	case key.Matches(k, m.keys.ScrollUp):
		m.list.ScrollUp(1)
	case key.Matches(k, m.keys.ScrollDown):
		m.list.ScrollDown(1)
	case key.Matches(k, m.keys.PageUp):
		m.list.PageUp()
	case key.Matches(k, m.keys.PageDown):
		m.list.PageDown()
	case key.Matches(k, m.keys.HalfPageUp):
		m.list.HalfPageUp()
	case key.Matches(k, m.keys.HalfPageDown):
		m.list.HalfPageDown()
	case key.Matches(k, m.keys.ScrollTop):
		m.list.ScrollToTop()
	case key.Matches(k, m.keys.ScrollBottom):
		m.list.ScrollToBottom()

	case key.Matches(k, m.keys.ToggleThinking):
		if idx := m.focusIndex(); idx >= 0 {
			m.toggleThinking(idx)
		}

	case key.Matches(k, m.keys.Append):
		m.insert(m.binder.ItemCount())
		m.list.ScrollToBottom()
	case key.Matches(k, m.keys.Prepend):
		m.insert(0)
	case key.Matches(k, m.keys.Remove):
		m.remove()
	case key.Matches(k, m.keys.Edit):
		m.edit()
	case key.Matches(k, m.keys.MoveToEnd):
		m.moveToEnd()
	case key.Matches(k, m.keys.Shuffle):
		m.replaceAll()

	case key.Matches(k, m.keys.TogglePrefetch):
		m.paused = !m.paused
		m.applyBinding()
		if m.paused {
			m.note("prefetch paused")
		} else {
			m.note("prefetch resumed")
		}

	case key.Matches(k, m.keys.ToggleSidebar):
		if m.layoutMode == LayoutSidebar {
			m.layoutMode = LayoutCompact
		} else {
			m.layoutMode = LayoutSidebar
		}
		m.recomputeLayout()
	}
}

// focusIndex is the item keyboard actions apply to: the first visible one.
func (m Model) focusIndex() int {
	first, _ := m.list.VisibleRange()
	if first >= m.binder.ItemCount() {
		return -1
	}
	return first
}

// -- Binder actions -----------------------------------------------------------

// Every action mutates the binder on the control goroutine and then settles
// the list, which re-reports the visible window.

func (m *Model) toggleThinking(idx int) {
	m.binder.UpdateState(idx, cell.Toggle)
	st, _ := m.binder.State(idx).(cell.State)
	m.note("item %d thinking expanded=%t", idx, st.Expanded)
	m.list.Sync()
}

func (m *Model) insert(idx int) {
	m.binder.Insert(idx, renderInfo(sampleMessage(m.seq)))
	m.note("inserted #%d at %d", m.seq, idx)
	m.seq++
	m.list.Sync()
}

func (m *Model) remove() {
	idx := m.focusIndex()
	if idx < 0 {
		m.warn("nothing to remove")
		return
	}
	m.binder.Remove(idx)
	m.note("removed item %d", idx)
	m.list.Sync()
}

func (m *Model) edit() {
	idx := m.focusIndex()
	if idx < 0 {
		m.warn("nothing to edit")
		return
	}
	info := m.binder.Info(idx)
	msg, ok := info.Component.(cell.Message)
	if !ok {
		return
	}
	msg.Content += "\n\n_edited_"
	m.binder.Update(idx, renderInfo(msg))
	m.note("edited item %d", idx)
	m.list.Sync()
}

func (m *Model) moveToEnd() {
	idx := m.focusIndex()
	n := m.binder.ItemCount()
	if idx < 0 || idx == n-1 {
		m.warn("already at the end")
		return
	}
	m.binder.Move(idx, n-1)
	m.note("moved item %d to %d", idx, n-1)
	m.list.Sync()
}

func (m *Model) replaceAll() {
	n := m.config.Items
	m.binder.ReplaceAll(sampleInfos(m.seq, n))
	m.seq += n
	m.note("replaced all with %d items", n)
	m.list.Sync()
	m.list.ScrollToTop()
}

// note logs the action and shows it as a toast.
func (m *Model) note(format string, args ...any) {
	m.notify(toast.Info, format, args...)
}

// warn is note for actions that could not be applied.
func (m *Model) warn(format string, args ...any) {
	m.notify(toast.Warning, format, args...)
}

func (m *Model) notify(level toast.Level, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	m.logger.Debug(text, "level", level)
	m.toasts.Add(text, level, time.Now())
	m.toastAdded = true
}

// flushToasts returns the expiry tick for toasts added during this update.
func (m *Model) flushToasts() tea.Cmd {
	if !m.toastAdded {
		return nil
	}
	m.toastAdded = false
	return toast.Expire()
}

// applyBinding binds the list while it has focus and prefetch is not paused.
func (m *Model) applyBinding() {
	if m.paused || m.blurred {
		m.binder.Unbind(m.list)
		return
	}
	m.binder.Bind(m.list)
}

// -- Layout -------------------------------------------------------------------

// recomputeLayout recalculates the Layout from the current dimensions and
// resizes the list, which measures the binder.
func (m *Model) recomputeLayout() {
	m.layout = ComputeLayout(m.width, m.height, m.layoutMode, countLines(m.renderStatus()))
	m.list.SetSize(m.layout.ListWidth, m.layout.ListHeight)
}

// countLines returns the number of lines in a rendered string.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// -- View ---------------------------------------------------------------------

// View returns the tea.View for the current frame.
// AltScreen, MouseMode, and ReportFocus are set on every frame.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderView())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true
	return v
}

func (m Model) renderView() string {
	sections := []string{m.renderHeader(), m.renderMain(), m.renderStatus()}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	h := m.header
	h.SetWidth(m.width)
	h.SetList(m.config.Strategy, m.binder.ItemCount())
	h.SetActivity(m.spinner.View())
	return h.HeaderView()
}

// renderMain returns the list, side by side with the stats sidebar in
// sidebar mode.
func (m Model) renderMain() string {
	listView := m.list.View()
	if m.layout.Mode != LayoutSidebar || m.layout.SidebarWidth == 0 {
		return listView
	}
	listView = lipgloss.NewStyle().Width(m.layout.ListWidth).Height(m.layout.ListHeight).Render(listView)
	sb := m.sidebar
	sb.SetSize(m.layout.SidebarWidth, m.layout.SidebarHeight)
	sb.SetStats(m.stats())
	return lipgloss.JoinHorizontal(lipgloss.Top, listView, sb.View())
}

func (m Model) renderStatus() string {
	if m.state == StateHelp {
		groups := m.keys.FullHelp()
		lines := make([]string, 0, len(groups))
		for _, g := range groups {
			lines = append(lines, style.StatusBar.Render(common.KeyHelp(g...)))
		}
		return strings.Join(lines, "\n")
	}
	st := m.status
	st.SetWidth(m.width)
	st.SetKeyHelp(common.KeyHelp(m.keys.ShortHelp()...))
	st.SetStats(m.stats(), m.layout.Mode != LayoutSidebar)
	st.SetToast(m.toasts.View(max(m.width/3, 20)))
	return st.View()
}

// stats snapshots the binder for the status bar and sidebar.
func (m Model) stats() status.Stats {
	s := status.Stats{
		Strategy: m.config.Strategy,
		Items:    m.binder.ItemCount(),
		Ratio:    m.config.RangeRatio,
		Workers:  m.config.Workers,
		Paused:   m.paused || m.blurred,
	}
	if est := m.binder.Estimate(); est.Known() {
		s.EstimateKnown = true
		s.Estimate = est.Count
	}
	s.VisibleFirst, s.VisibleLast = m.binder.VisibleRange()
	s.ComputedStart, s.ComputedEnd = m.binder.ComputedRange()
	if s.ComputedStart >= 0 {
		for i := s.ComputedStart; i <= s.ComputedEnd && i < s.Items; i++ {
			if _, ok := m.binder.Result(i); ok {
				s.Hot++
			} else {
				s.Pending++
			}
		}
	}
	return s
}
