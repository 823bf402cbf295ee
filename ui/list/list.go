// Package list provides an offset-based scrollable container that draws the
// items of a binder.Binder.
//
// Key properties:
//   - The list never lays items out itself. Every visible cell comes from
//     Adapter.BindCell, which serves the binder's cached layout or computes
//     it on the spot.
//   - Offset-based scrolling: offsetIdx is the first item of the topmost
//     visible row; offsetLine is the number of that row's lines scrolled off
//     the top.
//   - Multi-span strategies pack items into rows of SpanCount units. Rows are
//     drawn side by side; the list itself always scrolls vertically.
//   - Scroll arithmetic uses the heights of items already drawn, and the last
//     drawn height for items that were not, so scrolling never forces a
//     layout.
//   - Every change of the visible window is reported to the Host, which
//     recomputes the binder's range.
package list

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/miosa/osa-recycler/binder"
	"github.com/miosa/osa-recycler/layout"
	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/common"
)

// ---------------------------------------------------------------------------
// Public interfaces
// ---------------------------------------------------------------------------

// Host is the binder side the list drives. *binder.Binder satisfies it.
type Host interface {
	SetSize(width, height int)
	OnViewportChanged(first, last int)
}

// LayoutReadyMsg is sent through the notify func when an item finished an
// async layout. The program should route it back to Update.
type LayoutReadyMsg struct {
	ID uuid.UUID
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Option is a functional option for New.
type Option func(*Model)

// WithWidth sets the initial viewport width.
func WithWidth(w int) Option {
	return func(m *Model) { m.width = w }
}

// WithHeight sets the initial viewport height.
func WithHeight(h int) Option {
	return func(m *Model) { m.height = h }
}

// WithGap sets the number of blank lines between rows.
func WithGap(g int) Option {
	return func(m *Model) {
		if g >= 0 {
			m.gap = g
		}
	}
}

// WithScrollbar reserves the rightmost column for a scrollbar.
func WithScrollbar(on bool) Option {
	return func(m *Model) { m.scrollbar = on }
}

// WithNotify sets the function LayoutReady hands its message to. It must be
// safe to call from any goroutine; tea.Program.Send is.
func WithNotify(fn func(tea.Msg)) Option {
	return func(m *Model) { m.notify = fn }
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// row is a half-open range of item indices drawn on the same lines.
type row struct {
	start, end int
}

// Model is a scroll container for a binder. Mount it with
// binder.Binder.Mount; it must be used by pointer.
type Model struct {
	host     Host
	adapter  binder.Adapter
	strategy layout.Strategy
	notify   func(tea.Msg)

	width     int
	height    int
	gap       int
	scrollbar bool

	offsetIdx  int
	offsetLine int

	rows      []row
	dirty     bool
	remeasure bool

	// sizes holds the last drawn size per item; fallback is the last drawn
	// height of any item and stands in for items not drawn yet.
	sizes    map[uuid.UUID]layout.Size
	fallback int

	// first and last are the visible bounds last reported to host.
	first int
	last  int
}

var _ binder.Container = (*Model)(nil)

// New constructs a Model reporting to host.
func New(host Host, opts ...Option) *Model {
	m := &Model{
		host:     host,
		sizes:    make(map[uuid.UUID]layout.Size),
		fallback: 1,
		first:    -1,
		last:     -1,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ---------------------------------------------------------------------------
// binder.Container
// ---------------------------------------------------------------------------

func (m *Model) Attach(adapter binder.Adapter, strategy layout.Strategy) {
	m.adapter = adapter
	m.strategy = strategy
	m.offsetIdx, m.offsetLine = 0, 0
	m.first, m.last = -1, -1
	m.dirty = true
}

func (m *Model) Detach() {
	m.adapter = nil
	m.strategy = nil
	m.rows = nil
	m.sizes = make(map[uuid.UUID]layout.Size)
}

// ScrollToPosition puts the row holding index at the top of the viewport.
func (m *Model) ScrollToPosition(index int) {
	m.offsetIdx = max(index, 0)
	m.offsetLine = 0
	m.dirty = true
}

// LayoutReady runs on a binder worker goroutine and only forwards the id.
func (m *Model) LayoutReady(id uuid.UUID) {
	if m.notify != nil {
		m.notify(LayoutReadyMsg{ID: id})
	}
}

// RequestRemeasure defers the measure to the next Sync; the binder is in the
// middle of a mutation when it asks.
func (m *Model) RequestRemeasure() { m.remeasure = true }

func (m *Model) ItemsInserted(index, count int) {
	if index < m.offsetIdx {
		m.offsetIdx += count
	}
	m.dirty = true
}

func (m *Model) ItemsChanged(int, int) { m.dirty = true }

func (m *Model) ItemMoved(from, to int) {
	switch {
	case from == m.offsetIdx:
	case from < m.offsetIdx && to >= m.offsetIdx:
		m.offsetIdx--
	case from > m.offsetIdx && to <= m.offsetIdx:
		m.offsetIdx++
	}
	m.dirty = true
}

func (m *Model) ItemsRemoved(index, count int) {
	switch {
	case index+count <= m.offsetIdx:
		m.offsetIdx -= count
	case index <= m.offsetIdx:
		m.offsetIdx = index
		m.offsetLine = 0
	}
	m.dirty = true
}

// ---------------------------------------------------------------------------
// Size and synchronization
// ---------------------------------------------------------------------------

// SetSize updates the viewport and measures the binder for it.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.remeasure = false
	if m.adapter != nil {
		m.host.SetSize(m.contentWidth(), h)
	}
	m.Sync()
}

// Width and Height return the viewport dimensions.
func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }

func (m *Model) contentWidth() int {
	if m.scrollbar && m.width > 1 {
		return m.width - 1
	}
	return m.width
}

// Sync settles the list after the binder changed: it measures again when the
// binder asked for it, repacks rows, clamps the scroll position and reports
// the visible window. Call it after mutating the binder.
func (m *Model) Sync() {
	if m.adapter == nil {
		return
	}
	if m.remeasure {
		m.remeasure = false
		m.host.SetSize(m.contentWidth(), m.height)
	}
	if m.dirty {
		m.repack()
	}
	m.clampScroll()
	m.reportViewport()
}

// repack groups items into rows of at most SpanCount span units.
func (m *Model) repack() {
	m.dirty = false
	m.rows = m.rows[:0]
	n := m.adapter.ItemCount()
	if len(m.sizes) > n {
		m.pruneSizes(n)
	}
	spans := 1
	if m.strategy != nil {
		spans = m.strategy.SpanCount()
	}
	if spans <= 1 {
		for i := range n {
			m.rows = append(m.rows, row{start: i, end: i + 1})
		}
		return
	}
	start, used := 0, 0
	for i := range n {
		u := spanUnits(m.adapter.RenderInfo(i), spans)
		if used+u > spans && i > start {
			m.rows = append(m.rows, row{start: start, end: i})
			start, used = i, 0
		}
		used += u
	}
	if start < n {
		m.rows = append(m.rows, row{start: start, end: n})
	}
}

// pruneSizes drops drawn sizes of items no longer in the list.
func (m *Model) pruneSizes(n int) {
	live := make(map[uuid.UUID]struct{}, n)
	for i := range n {
		live[m.adapter.ItemID(i)] = struct{}{}
	}
	for id := range m.sizes {
		if _, ok := live[id]; !ok {
			delete(m.sizes, id)
		}
	}
}

func spanUnits(info binder.RenderInfo, spans int) int {
	if info.FullSpan {
		return spans
	}
	return min(max(info.SpanSize, 1), spans)
}

// reportViewport tells the host about a changed visible window.
func (m *Model) reportViewport() {
	first, last := m.VisibleRange()
	if first < 0 || (first == m.first && last == m.last) {
		return
	}
	m.first, m.last = first, last
	m.host.OnViewportChanged(first, last)
}

// ---------------------------------------------------------------------------
// Scroll
// ---------------------------------------------------------------------------

// ScrollToTop positions the viewport at the very first item.
func (m *Model) ScrollToTop() {
	m.offsetIdx = 0
	m.offsetLine = 0
	m.Sync()
}

// ScrollToBottom positions the viewport so the last row is fully visible.
func (m *Model) ScrollToBottom() {
	if len(m.rows) == 0 {
		return
	}
	r, line := m.computeTopForBottom()
	m.offsetIdx, m.offsetLine = m.rows[r].start, line
	m.Sync()
}

// ScrollDown moves the viewport down by lines.
func (m *Model) ScrollDown(lines int) {
	if lines <= 0 || len(m.rows) == 0 {
		return
	}
	r := m.topRow()
	for lines > 0 && r < len(m.rows) {
		inRow := m.rowHeight(r) - m.offsetLine
		if lines < inRow {
			m.offsetLine += lines
			break
		}
		lines -= inRow
		r++
		m.offsetLine = 0
		if r < len(m.rows) && m.gap > 0 {
			if lines < m.gap {
				break
			}
			lines -= m.gap
		}
	}
	m.offsetIdx = m.rows[min(r, len(m.rows)-1)].start
	m.Sync()
}

// ScrollUp moves the viewport up by lines.
func (m *Model) ScrollUp(lines int) {
	if lines <= 0 || len(m.rows) == 0 {
		return
	}
	r := m.topRow()
	for lines > 0 {
		if m.offsetLine > 0 {
			if lines <= m.offsetLine {
				m.offsetLine -= lines
				break
			}
			lines -= m.offsetLine
			m.offsetLine = 0
		}
		if r == 0 {
			break
		}
		if m.gap > 0 {
			if lines <= m.gap {
				r--
				m.offsetLine = 0
				break
			}
			lines -= m.gap
		}
		r--
		h := m.rowHeight(r)
		if lines < h {
			m.offsetLine = h - lines
			break
		}
		lines -= h
	}
	m.offsetIdx = m.rows[r].start
	m.Sync()
}

// PageDown scrolls down by one full viewport height.
func (m *Model) PageDown() { m.ScrollDown(m.height) }

// PageUp scrolls up by one full viewport height.
func (m *Model) PageUp() { m.ScrollUp(m.height) }

// HalfPageDown scrolls down by half the viewport height.
func (m *Model) HalfPageDown() { m.ScrollDown(m.height / 2) }

// HalfPageUp scrolls up by half the viewport height.
func (m *Model) HalfPageUp() { m.ScrollUp(m.height / 2) }

// AtBottom reports whether the last row is fully visible.
func (m *Model) AtBottom() bool {
	if len(m.rows) == 0 {
		return true
	}
	r, line := m.computeTopForBottom()
	return m.topRow() == r && m.offsetLine == line
}

// Offset returns the scroll position as the first item of the top row and
// the number of its lines hidden above the viewport.
func (m *Model) Offset() (index, line int) { return m.offsetIdx, m.offsetLine }

// ---------------------------------------------------------------------------
// Position helpers
// ---------------------------------------------------------------------------

// VisibleRange returns the first and last item index drawn in the viewport,
// or (-1, -1) when nothing is.
func (m *Model) VisibleRange() (first, last int) {
	if m.height <= 0 || len(m.rows) == 0 {
		return -1, -1
	}
	r := m.topRow()
	end := r
	remaining := m.height - (m.rowHeight(r) - m.offsetLine)
	for remaining > 0 && end+1 < len(m.rows) {
		remaining -= m.gap
		if remaining <= 0 {
			break
		}
		end++
		remaining -= m.rowHeight(end)
	}
	return m.rows[r].start, m.rows[end].end - 1
}

// ItemAt resolves a cell position relative to the viewport's top-left corner
// to an item index. It returns -1 for gaps, padding and positions outside
// the viewport.
func (m *Model) ItemAt(x, y int) int {
	if y < 0 || y >= m.height || x < 0 || len(m.rows) == 0 {
		return -1
	}
	line := 0
	for r := m.topRow(); r < len(m.rows) && line <= y; r++ {
		start := 0
		if r == m.topRow() {
			start = m.offsetLine
		}
		visible := m.rowHeight(r) - start
		if y < line+visible {
			return m.cellAt(r, x)
		}
		line += visible
		if r < len(m.rows)-1 && m.gap > 0 {
			if y < line+m.gap {
				return -1
			}
			line += m.gap
		}
	}
	return -1
}

func (m *Model) cellAt(r, x int) int {
	rw := m.rows[r]
	if rw.end-rw.start == 1 {
		return rw.start
	}
	col := 0
	for i := rw.start; i < rw.end; i++ {
		w := m.sizes[m.adapter.ItemID(i)].Width
		if x < col+w {
			return i
		}
		col += w
	}
	return -1
}

// ---------------------------------------------------------------------------
// Update (bubbletea)
// ---------------------------------------------------------------------------

// Update handles mouse wheel scrolling and async layout notifications.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.ScrollUp(3)
		case tea.MouseWheelDown:
			m.ScrollDown(3)
		}
	case LayoutReadyMsg:
		// The next View draws the cached result; heights may have moved.
		m.Sync()
	}
	return nil
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View draws the rows that fall within the viewport. Items outside it are
// never bound.
func (m *Model) View() string {
	if m.height <= 0 || m.width <= 0 || m.adapter == nil || len(m.rows) == 0 {
		return ""
	}

	var lines []string
	remaining := m.height
	top := m.topRow()
	for r := top; r < len(m.rows) && remaining > 0; r++ {
		rowLines := m.renderRow(r)
		start := 0
		if r == top {
			start = min(m.offsetLine, len(rowLines))
		}
		visible := rowLines[start:]
		if len(visible) > remaining {
			visible = visible[:remaining]
		}
		lines = append(lines, visible...)
		remaining -= len(visible)

		if remaining > 0 && r < len(m.rows)-1 && m.gap > 0 {
			g := min(m.gap, remaining)
			for range g {
				lines = append(lines, "")
			}
			remaining -= g
		}
	}
	for ; remaining > 0; remaining-- {
		lines = append(lines, "")
	}

	body := strings.Join(lines, "\n")
	if !m.scrollbar {
		return body
	}
	bar := common.Scrollbar(m.height, m.contentHeight(), m.scrollOffset())
	if bar == "" {
		return body
	}
	body = lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, bar)
}

func (m *Model) renderRow(r int) []string {
	rw := m.rows[r]
	if rw.end-rw.start == 1 {
		out, size := m.bind(rw.start)
		return fitLines(splitLines(out), size.Height)
	}
	cells := make([]string, 0, rw.end-rw.start)
	for i := rw.start; i < rw.end; i++ {
		out, size := m.bind(i)
		cell := strings.Join(fitLines(splitLines(out), size.Height), "\n")
		cells = append(cells, lipgloss.NewStyle().Width(size.Width).Render(cell))
	}
	return splitLines(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

// bind fetches the item's layout and records its size for scroll arithmetic.
func (m *Model) bind(index int) (string, layout.Size) {
	res, err := m.adapter.BindCell(index)
	if err != nil {
		size := layout.Size{Width: m.contentWidth(), Height: 1}
		return style.ErrorText.Render(fmt.Sprintf("! %v", err)), size
	}
	size := res.Size
	size.Height = max(size.Height, 1)
	m.sizes[m.adapter.ItemID(index)] = size
	m.fallback = size.Height
	return output(res.Output), size
}

func output(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// topRow returns the row holding offsetIdx, clamped to the last row.
func (m *Model) topRow() int {
	if len(m.rows) == 0 {
		return 0
	}
	r := sort.Search(len(m.rows), func(i int) bool { return m.rows[i].end > m.offsetIdx })
	return min(r, len(m.rows)-1)
}

// computeTopForBottom returns the top row and line offset that place the
// last row's last line at the bottom of the viewport.
func (m *Model) computeTopForBottom() (int, int) {
	remaining := m.height
	for r := len(m.rows) - 1; r >= 0; r-- {
		remaining -= m.rowHeight(r)
		if remaining <= 0 {
			return r, -remaining
		}
		if r > 0 && m.gap > 0 {
			remaining -= m.gap
			if remaining <= 0 {
				return r, 0
			}
		}
	}
	return 0, 0
}

// clampScroll keeps the scroll position inside the content.
func (m *Model) clampScroll() {
	if len(m.rows) == 0 {
		m.offsetIdx, m.offsetLine = 0, 0
		return
	}
	r := m.topRow()
	m.offsetIdx = m.rows[r].start
	m.offsetLine = min(max(m.offsetLine, 0), m.rowHeight(r)-1)

	bottom, line := m.computeTopForBottom()
	if r > bottom || (r == bottom && m.offsetLine > line) {
		m.offsetIdx, m.offsetLine = m.rows[bottom].start, line
	}
}

func (m *Model) itemHeight(index int) int {
	if s, ok := m.sizes[m.adapter.ItemID(index)]; ok {
		return s.Height
	}
	return m.fallback
}

func (m *Model) rowHeight(r int) int {
	h := 1
	for i := m.rows[r].start; i < m.rows[r].end; i++ {
		h = max(h, m.itemHeight(i))
	}
	return h
}

func (m *Model) contentHeight() int {
	total := 0
	for r := range m.rows {
		total += m.rowHeight(r)
	}
	return total + max(len(m.rows)-1, 0)*m.gap
}

func (m *Model) scrollOffset() int {
	offset := m.offsetLine
	for r := range m.topRow() {
		offset += m.rowHeight(r) + m.gap
	}
	return offset
}

// splitLines splits a rendered string into individual lines.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// fitLines pads or trims lines to exactly h entries.
func fitLines(lines []string, h int) []string {
	if len(lines) >= h {
		return lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return lines
}
