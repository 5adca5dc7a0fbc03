package buffer

import (
	"sync"
	"sync/atomic"

	"bufferpool/storage/disk"
)

// frame is one slot in the pool's fixed frame array: a page-sized buffer
// plus the metadata needed to decide whether it may be reused.
type frame struct {
	mu       sync.RWMutex
	id       int
	data     []byte
	pinCount atomic.Int32
	dirty    atomic.Bool
	pageID   int64
}

func newFrame(id int) *frame {
	f := &frame{id: id, data: make([]byte, disk.PageSize)}
	f.pageID = disk.InvalidPageID
	return f
}

func (f *frame) pin() int32 {
	return f.pinCount.Add(1)
}

// unpin decrements the pin count and returns the count after decrementing.
func (f *frame) unpin() int32 {
	return f.pinCount.Add(-1)
}

func (f *frame) pins() int32 {
	return f.pinCount.Load()
}

func (f *frame) isDirty() bool {
	return f.dirty.Load()
}

// markDirty ORs dirty into the frame's dirty bit; once set it only clears
// on flush or reset.
func (f *frame) markDirty(dirty bool) {
	if dirty {
		f.dirty.Store(true)
	}
}

// reset clears a frame for reuse by a new page_id. Callers must hold
// pool.latch and know no guard still references this frame.
func (f *frame) reset() {
	f.dirty.Store(false)
	f.pinCount.Store(0)
	clear(f.data)
	f.pageID = disk.InvalidPageID
}
