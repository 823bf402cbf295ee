package common

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/miosa/osa-recycler/style"
)

// KeyHelp renders a help line for the status bar. Each binding is rendered
// as "[key] description", using the binding's help key. Disabled bindings
// are omitted.
func KeyHelp(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		keys := h.Key
		if keys == "" {
			keys = strings.Join(b.Keys(), "/")
		}
		parts = append(parts, style.HelpKey.Render("["+keys+"]")+style.HelpDesc.Render(" "+h.Desc))
	}
	return strings.Join(parts, style.HelpSeparator.Render("  ·  "))
}
