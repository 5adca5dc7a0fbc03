package buffer

import "bufferpool/storage/disk"

// BasicPageGuard is a scoped handle owning a pin on a frame. Its zero
// value and any guard after Drop or Move are in the "empty" state: Drop
// is then a no-op and accessors return the sentinel/nil they would for an
// absent page. Guards are move-only; copying one and using both copies
// independently would double-unpin on drop.
type BasicPageGuard struct {
	bpm   *BufferPoolManager
	frame *frame
	dirty bool
}

func newBasicPageGuard(bpm *BufferPoolManager, f *frame) *BasicPageGuard {
	return &BasicPageGuard{bpm: bpm, frame: f}
}

func (g *BasicPageGuard) valid() bool {
	return g != nil && g.frame != nil
}

// PageID returns the guarded page's id, or InvalidPageID if the guard is
// empty.
func (g *BasicPageGuard) PageID() int64 {
	if !g.valid() {
		return disk.InvalidPageID
	}
	return g.frame.pageID
}

// Data returns the guarded page's bytes. Callers of a BasicPageGuard are
// responsible for any synchronization beyond the pin; use FetchPageRead /
// FetchPageWrite for latch-protected access.
func (g *BasicPageGuard) Data() []byte {
	if !g.valid() {
		return nil
	}
	return g.frame.data
}

// SetDirty marks the guard's dirty flag, which is OR'd into the frame's
// dirty bit when the guard is dropped.
func (g *BasicPageGuard) SetDirty() {
	if g.valid() {
		g.dirty = true
	}
}

// Drop unpins the page if the guard still owns one; idempotent.
func (g *BasicPageGuard) Drop() {
	if !g.valid() {
		return
	}
	g.bpm.UnpinPage(g.frame.pageID, g.dirty)
	g.frame = nil
	g.bpm = nil
}

// Move transfers ownership to a newly-returned guard and empties g.
func (g *BasicPageGuard) Move() *BasicPageGuard {
	if !g.valid() {
		return &BasicPageGuard{}
	}
	moved := &BasicPageGuard{bpm: g.bpm, frame: g.frame, dirty: g.dirty}
	g.frame = nil
	g.bpm = nil
	return moved
}

// ReadPageGuard composes a BasicPageGuard with the frame's shared latch,
// acquired after the pool call returns and released before the unpin.
type ReadPageGuard struct {
	BasicPageGuard
}

func newReadPageGuard(bpm *BufferPoolManager, f *frame) *ReadPageGuard {
	f.mu.RLock()
	return &ReadPageGuard{BasicPageGuard{bpm: bpm, frame: f}}
}

// Data returns the page's bytes under the shared latch.
func (g *ReadPageGuard) Data() []byte {
	return g.BasicPageGuard.Data()
}

// Drop releases the shared latch, then unpins; idempotent.
func (g *ReadPageGuard) Drop() {
	if !g.valid() {
		return
	}
	g.frame.mu.RUnlock()
	g.BasicPageGuard.Drop()
}

// Move transfers ownership to a newly-returned guard and empties g.
func (g *ReadPageGuard) Move() *ReadPageGuard {
	if !g.valid() {
		return &ReadPageGuard{}
	}
	moved := &ReadPageGuard{BasicPageGuard{bpm: g.bpm, frame: g.frame, dirty: g.dirty}}
	g.frame = nil
	g.bpm = nil
	return moved
}

// WritePageGuard composes a BasicPageGuard with the frame's exclusive
// latch. Any write access implies a mutation, so the guard is born dirty.
type WritePageGuard struct {
	BasicPageGuard
}

func newWritePageGuard(bpm *BufferPoolManager, f *frame) *WritePageGuard {
	f.mu.Lock()
	return &WritePageGuard{BasicPageGuard{bpm: bpm, frame: f, dirty: true}}
}

// DataMut returns the page's bytes for in-place mutation under the
// exclusive latch.
func (g *WritePageGuard) DataMut() []byte {
	return g.BasicPageGuard.Data()
}

// Drop releases the exclusive latch, then unpins; idempotent.
func (g *WritePageGuard) Drop() {
	if !g.valid() {
		return
	}
	g.frame.mu.Unlock()
	g.BasicPageGuard.Drop()
}

// Move transfers ownership to a newly-returned guard and empties g.
func (g *WritePageGuard) Move() *WritePageGuard {
	if !g.valid() {
		return &WritePageGuard{}
	}
	moved := &WritePageGuard{BasicPageGuard{bpm: g.bpm, frame: g.frame, dirty: g.dirty}}
	g.frame = nil
	g.bpm = nil
	return moved
}
