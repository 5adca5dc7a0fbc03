package buffer

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"bufferpool/storage/disk"
)

// BufferPoolManager caches a bounded number of disk pages in memory,
// mediates I/O through a disk scheduler, and enforces pin-based residency.
// Every operation serializes on mu; disk I/O happens while mu is held.
type BufferPoolManager struct {
	mu         sync.Mutex
	frames     []*frame
	pageTable  map[int64]int
	freeList   []int
	replacer   *lrukReplacer
	disk       *disk.DiskScheduler
	nextPageID int64
}

// NewBufferPoolManager builds a pool of poolSize frames backed by
// scheduler, using an LRU-K replacer with history depth replacerK.
func NewBufferPoolManager(poolSize, replacerK int, scheduler *disk.DiskScheduler) *BufferPoolManager {
	frames := make([]*frame, poolSize)
	free := make([]int, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = newFrame(i)
		// The free list is used as a stack (popped from its end), so it is
		// filled in reverse to hand out frame 0 first.
		free[poolSize-1-i] = i
	}

	return &BufferPoolManager{
		frames:    frames,
		pageTable: make(map[int64]int),
		freeList:  free,
		replacer:  newLrukReplacer(poolSize, replacerK),
		disk:      scheduler,
	}
}

// NewPage allocates a fresh page id and binds it to a frame, returning a
// basic guard holding the pin. ok is false if the pool is exhausted.
func (b *BufferPoolManager) NewPage() (pageID int64, guard *BasicPageGuard, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fid, ok := b.obtainFrame()
	if !ok {
		return disk.InvalidPageID, nil, false
	}

	f := b.frames[fid]
	pageID = b.allocatePageID()
	f.reset()
	f.pageID = pageID
	f.pin()
	b.pageTable[pageID] = fid

	b.replacer.recordAccess(fid)
	b.replacer.setEvictable(fid, false)

	return pageID, newBasicPageGuard(b, f), true
}

// FetchPage returns a basic guard for pageID, reading it from disk on a
// cache miss. ok is false for InvalidPageID or when the pool is exhausted.
func (b *BufferPoolManager) FetchPage(pageID int64) (*BasicPageGuard, bool) {
	f, ok := b.fetchFrame(pageID)
	if !ok {
		return nil, false
	}
	return newBasicPageGuard(b, f), true
}

// FetchPageBasic is an alias for FetchPage, matching the basic/read/write
// guard factory family offered to higher layers.
func (b *BufferPoolManager) FetchPageBasic(pageID int64) (*BasicPageGuard, bool) {
	return b.FetchPage(pageID)
}

// FetchPageRead returns a read guard for pageID, holding the frame's
// shared latch in addition to the pin.
func (b *BufferPoolManager) FetchPageRead(pageID int64) (*ReadPageGuard, bool) {
	f, ok := b.fetchFrame(pageID)
	if !ok {
		return nil, false
	}
	return newReadPageGuard(b, f), true
}

// FetchPageWrite returns a write guard for pageID, holding the frame's
// exclusive latch in addition to the pin. The guard is born dirty, so the
// frame's dirty bit is set when the guard is dropped.
func (b *BufferPoolManager) FetchPageWrite(pageID int64) (*WritePageGuard, bool) {
	f, ok := b.fetchFrame(pageID)
	if !ok {
		return nil, false
	}
	return newWritePageGuard(b, f), true
}

// NewPageGuarded allocates a fresh page and returns a basic guard over it.
func (b *BufferPoolManager) NewPageGuarded() (int64, *BasicPageGuard, bool) {
	return b.NewPage()
}

// fetchFrame implements the shared fetch path for all guard factories: hit
// bumps the pin and records an access; miss obtains a frame, installs the
// mapping, and reads the page's content from disk.
func (b *BufferPoolManager) fetchFrame(pageID int64) (*frame, bool) {
	if pageID == disk.InvalidPageID {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if fid, ok := b.pageTable[pageID]; ok {
		f := b.frames[fid]
		f.pin()
		b.replacer.recordAccess(fid)
		b.replacer.setEvictable(fid, false)
		return f, true
	}

	fid, ok := b.obtainFrame()
	if !ok {
		return nil, false
	}

	f := b.frames[fid]
	f.reset()
	f.pageID = pageID
	f.pin()
	b.pageTable[pageID] = fid

	b.replacer.recordAccess(fid)
	b.replacer.setEvictable(fid, false)

	// Disk I/O failures are the disk manager's concern, not the cache's
	// (spec: out of scope for this layer); a failed read just leaves the
	// freshly-zeroed frame in place.
	_ = b.disk.ReadPage(pageID, f.data)

	return f, true
}

// obtainFrame returns a free or evicted frame index. Callers must hold mu.
// A victim's mapping is removed and, if dirty, its data is written back
// before the frame is returned.
func (b *BufferPoolManager) obtainFrame() (int, bool) {
	if n := len(b.freeList); n > 0 {
		fid := b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
		return fid, true
	}

	fid, ok := b.replacer.evict()
	if !ok {
		return 0, false
	}

	victim := b.frames[fid]
	delete(b.pageTable, victim.pageID)
	if victim.isDirty() {
		_ = b.disk.WritePage(victim.pageID, victim.data)
		victim.dirty.Store(false)
	}
	return fid, true
}

// UnpinPage decrements pageID's pin count, ORing dirty into its dirty bit.
// Returns false for InvalidPageID, a non-resident page, or an already
// zero pin count.
func (b *BufferPoolManager) UnpinPage(pageID int64, dirty bool) bool {
	if pageID == disk.InvalidPageID {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fid, ok := b.pageTable[pageID]
	if !ok {
		return false
	}

	f := b.frames[fid]
	f.markDirty(dirty)

	if f.pins() <= 0 {
		return false
	}

	if f.unpin() == 0 {
		b.replacer.setEvictable(fid, true)
	}
	return true
}

// FlushPage writes pageID to disk unconditionally and clears its dirty
// bit, without touching pin count or evictability. Returns false for
// InvalidPageID or a non-resident page.
func (b *BufferPoolManager) FlushPage(pageID int64) bool {
	if pageID == disk.InvalidPageID {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fid, ok := b.pageTable[pageID]
	if !ok {
		return false
	}

	f := b.frames[fid]
	if err := b.disk.WritePage(pageID, f.data); err != nil {
		return false
	}
	f.dirty.Store(false)
	return true
}

// FlushAllPages writes every resident frame to disk and clears its dirty
// bit, fanning the writes out concurrently but waiting for all of them
// before mu is released.
func (b *BufferPoolManager) FlushAllPages() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var g errgroup.Group
	for _, f := range b.frames {
		if f.pageID == disk.InvalidPageID {
			continue
		}
		f := f
		g.Go(func() error {
			if err := b.disk.WritePage(f.pageID, f.data); err != nil {
				return err
			}
			f.dirty.Store(false)
			return nil
		})
	}
	_ = g.Wait()
}

// DeletePage removes pageID from the pool, returning its frame to the free
// list. Returns false if the page is resident and still pinned.
func (b *BufferPoolManager) DeletePage(pageID int64) bool {
	if pageID == disk.InvalidPageID {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fid, ok := b.pageTable[pageID]
	if !ok {
		b.deallocatePageID(pageID)
		return true
	}

	f := b.frames[fid]
	if f.pins() > 0 {
		return false
	}

	delete(b.pageTable, pageID)
	b.freeList = append(b.freeList, fid)
	b.replacer.remove(fid)
	f.reset()

	b.deallocatePageID(pageID)
	return true
}

func (b *BufferPoolManager) allocatePageID() int64 {
	id := b.nextPageID
	b.nextPageID++
	return id
}

// deallocatePageID is a no-op placeholder: page ids are never recycled.
func (b *BufferPoolManager) deallocatePageID(int64) {}
