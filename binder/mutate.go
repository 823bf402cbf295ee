package binder

import (
	"errors"
	"slices"
)

// Insert adds an item at index, shifting later items up by one.
func (b *Binder) Insert(index int, info RenderInfo) {
	b.insertRange("Insert", index, []RenderInfo{info})
}

// InsertRange adds items starting at index, in order.
func (b *Binder) InsertRange(index int, infos []RenderInfo) {
	b.insertRange("InsertRange", index, infos)
}

func (b *Binder) insertRange(op string, index int, infos []RenderInfo) {
	b.control.check(op)
	if len(infos) == 0 {
		return
	}
	added := make([]*Slot, len(infos))
	for i, info := range infos {
		added[i] = newSlot(info, b.handlerFor(info))
	}

	b.mu.Lock()
	if index < 0 || index > len(b.slots) {
		n := len(b.slots)
		b.mu.Unlock()
		indexPanic(op, index, n)
	}
	b.slots = slices.Insert(b.slots, index, added...)
	b.mutations++
	b.mu.Unlock()

	bridge{b: b}.inserted(index, len(added))
	b.computeRange(b.ctx)
}

// Update replaces the RenderInfo at index. The cached layout is dropped; the
// item's state is kept.
func (b *Binder) Update(index int, info RenderInfo) {
	b.updateRange("Update", index, []RenderInfo{info})
}

// UpdateRange replaces the RenderInfo of consecutive items starting at index.
func (b *Binder) UpdateRange(index int, infos []RenderInfo) {
	b.updateRange("UpdateRange", index, infos)
}

func (b *Binder) updateRange(op string, index int, infos []RenderInfo) {
	b.control.check(op)
	if len(infos) == 0 {
		return
	}

	b.mu.Lock()
	if index < 0 || index+len(infos) > len(b.slots) {
		n := len(b.slots)
		b.mu.Unlock()
		indexPanic(op, index+len(infos)-1, n)
	}
	targets := slices.Clone(b.slots[index : index+len(infos)])
	b.mutations++
	b.mu.Unlock()

	for i, s := range targets {
		s.setInfo(infos[i], b.handlerFor(infos[i]))
	}

	bridge{b: b}.changed(index, len(infos))
	b.computeRange(b.ctx)
}

// Move relocates the item at from to to. Every other item keeps its identity
// and the count is unchanged.
func (b *Binder) Move(from, to int) {
	b.control.check("Move")

	b.mu.Lock()
	n := len(b.slots)
	if from < 0 || from >= n {
		b.mu.Unlock()
		indexPanic("Move", from, n)
	}
	if to < 0 || to >= n {
		b.mu.Unlock()
		indexPanic("Move", to, n)
	}
	if from == to {
		b.mu.Unlock()
		return
	}
	s := b.slots[from]
	b.slots = slices.Delete(b.slots, from, from+1)
	b.slots = slices.Insert(b.slots, to, s)
	b.mutations++
	b.mu.Unlock()

	bridge{b: b}.moved(from, to)
	b.computeRange(b.ctx)
}

// Remove deletes the item at index, shifting later items down by one. The
// item's layout and state are discarded.
func (b *Binder) Remove(index int) {
	b.removeRange("Remove", index, 1)
}

// RemoveRange deletes count items starting at index.
func (b *Binder) RemoveRange(index, count int) {
	b.removeRange("RemoveRange", index, count)
}

func (b *Binder) removeRange(op string, index, count int) {
	b.control.check(op)
	if count <= 0 {
		return
	}

	b.mu.Lock()
	if index < 0 || index+count > len(b.slots) {
		n := len(b.slots)
		b.mu.Unlock()
		indexPanic(op, index+count-1, n)
	}
	removed := slices.Clone(b.slots[index : index+count])
	b.slots = slices.Delete(b.slots, index, index+count)
	b.mutations++
	b.mu.Unlock()

	for _, s := range removed {
		s.destroy()
	}

	bridge{b: b}.removed(index, count)
	b.computeRange(b.ctx)
}

// ReplaceAll swaps the whole list. Old items are destroyed.
func (b *Binder) ReplaceAll(infos []RenderInfo) {
	b.control.check("ReplaceAll")
	added := make([]*Slot, len(infos))
	for i, info := range infos {
		added[i] = newSlot(info, b.handlerFor(info))
	}

	b.mu.Lock()
	old := b.slots
	b.slots = added
	b.mutations++
	b.mu.Unlock()

	for _, s := range old {
		s.destroy()
	}

	br := bridge{b: b}
	if len(old) > 0 {
		br.removed(0, len(old))
	}
	if len(added) > 0 {
		br.inserted(0, len(added))
	}
	b.computeRange(b.ctx)
}

// UpdateState applies fn to the persisted state of the item at index,
// whether or not its layout is currently cached. The item is laid out again
// if it is in range.
func (b *Binder) UpdateState(index int, fn func(state any) any) {
	b.control.check("UpdateState")
	if fn == nil {
		panic(errors.New("binder: UpdateState with nil func"))
	}
	s := b.slotAt("UpdateState", index)
	s.updateState(fn)

	bridge{b: b}.changed(index, 1)
	b.computeRange(b.ctx)
}
