package app

// LayoutMode determines the visual layout.
type LayoutMode int

const (
	LayoutCompact LayoutMode = iota // Header + List + Status (default)
	LayoutSidebar                   // Header + [List | Stats] + Status
)

const (
	// compactModeBreakpoint is the terminal width below which we force compact
	// layout regardless of user preference.
	compactModeBreakpoint = 100

	// Sidebar sizing bounds.
	sidebarMinWidth = 26
	sidebarMaxWidth = 36

	// Minimum list pane width; enforced even if it means the sidebar is clipped.
	listMinWidth = 40

	// minSidebarWidth must accommodate sidebarMinWidth + listMinWidth + 1 (divider).
	minSidebarWidth = sidebarMinWidth + listMinWidth + 1

	listMinHeight = 3
)

// Layout holds computed dimensions for the current frame.
type Layout struct {
	Mode          LayoutMode
	TermWidth     int
	TermHeight    int
	HeaderHeight  int // title line + separator
	StatusHeight  int
	ListWidth     int
	ListHeight    int
	SidebarWidth  int // 0 in compact mode
	SidebarHeight int
	CompactMode   bool // true when the terminal is too narrow for sidebar layout
}

// ComputeLayout calculates the layout dimensions based on terminal size and mode.
//
// Responsive rules:
//   - If termW < compactModeBreakpoint, force LayoutCompact regardless of mode.
//   - Sidebar width is a fifth of the terminal, clamped between
//     sidebarMinWidth and sidebarMaxWidth, and sits right of the list.
//   - Heights: header (2) and status; the remainder goes to the list.
func ComputeLayout(termW, termH int, mode LayoutMode, statusLines int) Layout {
	l := Layout{
		TermWidth:    termW,
		TermHeight:   termH,
		HeaderHeight: 2,
		StatusHeight: max(statusLines, 1),
	}

	effectiveMode := mode
	if termW < compactModeBreakpoint {
		effectiveMode = LayoutCompact
		l.CompactMode = true
	}

	if effectiveMode == LayoutSidebar && termW >= minSidebarWidth {
		l.Mode = LayoutSidebar
		sw := min(max(termW/5, sidebarMinWidth), sidebarMaxWidth)
		l.SidebarWidth = sw
		l.ListWidth = termW - sw - 1 // -1 for the divider border column
	} else {
		l.Mode = LayoutCompact
		l.ListWidth = termW
	}
	l.ListWidth = max(l.ListWidth, listMinWidth)

	l.ListHeight = max(termH-l.HeaderHeight-l.StatusHeight, listMinHeight)
	l.SidebarHeight = l.ListHeight
	return l
}
