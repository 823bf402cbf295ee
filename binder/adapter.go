package binder

import (
	"github.com/google/uuid"

	"github.com/miosa/osa-recycler/layout"
)

// Observer receives structural change notifications in the order the binder
// applied them. Calls arrive on the control goroutine.
type Observer interface {
	ItemsInserted(index, count int)
	ItemsChanged(index, count int)
	ItemMoved(from, to int)
	ItemsRemoved(index, count int)
}

// Container is a host scroll container a Binder can be mounted into.
type Container interface {
	Observer

	// Attach installs the adapter and the layout strategy. Detach undoes it.
	Attach(adapter Adapter, strategy layout.Strategy)
	Detach()

	// ScrollToPosition restores the scroll position on mount.
	ScrollToPosition(index int)

	// LayoutReady is called from a worker goroutine after an async layout
	// committed for the slot with the given id. Implementations must hand
	// the notification over to their own loop.
	LayoutReady(id uuid.UUID)

	// RequestRemeasure asks the host to call Measure again; the binder's
	// cross-axis size changed after the first item was laid out.
	RequestRemeasure()
}

// Adapter is the view a mounted container has of the binder's items.
type Adapter interface {
	ItemCount() int
	ItemID(index int) uuid.UUID
	RenderInfo(index int) RenderInfo

	// BindCell returns the layout result to draw at index, laying the item
	// out synchronously if its cached result is not valid. Control
	// goroutine only.
	BindCell(index int) (*Result, error)
}

// bridge forwards binder changes to the mounted container and serves the
// container's Adapter calls from the binder.
type bridge struct {
	b *Binder
}

func (br bridge) ItemCount() int { return br.b.ItemCount() }

func (br bridge) ItemID(index int) uuid.UUID { return br.b.slotAt("ItemID", index).ID() }

func (br bridge) RenderInfo(index int) RenderInfo { return br.b.slotAt("RenderInfo", index).Info() }

func (br bridge) BindCell(index int) (*Result, error) { return br.b.bindCell(index) }

func (br bridge) observer() Observer {
	br.b.mu.Lock()
	defer br.b.mu.Unlock()
	if br.b.container == nil {
		return nil
	}
	return br.b.container
}

func (br bridge) inserted(index, count int) {
	if o := br.observer(); o != nil {
		o.ItemsInserted(index, count)
	}
}

func (br bridge) changed(index, count int) {
	if o := br.observer(); o != nil {
		o.ItemsChanged(index, count)
	}
}

func (br bridge) moved(from, to int) {
	if o := br.observer(); o != nil {
		o.ItemMoved(from, to)
	}
}

func (br bridge) removed(index, count int) {
	if o := br.observer(); o != nil {
		o.ItemsRemoved(index, count)
	}
}
