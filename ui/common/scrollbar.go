package common

import (
	"strings"

	"github.com/miosa/osa-recycler/style"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// Scrollbar renders a vertical scrollbar one column wide and height rows
// tall. contentHeight and offset are in the same unit as height; the list
// passes estimated line counts. Returns "" when the content fits.
func Scrollbar(height, contentHeight, offset int) string {
	if height <= 0 || contentHeight <= height {
		return ""
	}

	thumbH := min(max(height*height/contentHeight, 1), height)

	thumbTop := offset * (height - thumbH) / (contentHeight - height)
	thumbTop = min(max(thumbTop, 0), height-thumbH)

	rows := make([]string, height)
	for i := range rows {
		if i >= thumbTop && i < thumbTop+thumbH {
			rows[i] = style.ScrollbarThumb.Render(scrollThumbChar)
		} else {
			rows[i] = style.ScrollbarTrack.Render(scrollTrackChar)
		}
	}
	return strings.Join(rows, "\n")
}
