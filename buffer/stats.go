package buffer

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"bufferpool/storage/disk"
	"bufferpool/util"
)

// Stats is a human-oriented summary of pool occupancy for log lines.
type Stats struct {
	PoolSize   int
	FreeFrames int
	Resident   int
	Evictable  int
}

// Stats reports current pool occupancy. It takes the pool latch briefly.
func (b *BufferPoolManager) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		PoolSize:   len(b.frames),
		FreeFrames: len(b.freeList),
		Resident:   len(b.pageTable),
		Evictable:  b.replacer.size(),
	}
}

// String renders stats with humanized byte counts, suitable for a log line.
func (s Stats) String() string {
	size := humanize.Bytes(uint64(s.PoolSize) * disk.PageSize)
	return fmt.Sprintf("pool: %s (%d frames), %d resident, %d free, %d evictable",
		size, s.PoolSize, s.Resident, s.FreeFrames, s.Evictable)
}

// Snapshot captures a msgpack-serializable view of pool occupancy for
// external diagnostics. It never includes page content.
func (b *BufferPoolManager) Snapshot() util.PoolSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	frames := make([]util.FrameSnapshot, len(b.frames))
	for i, f := range b.frames {
		frames[i] = util.FrameSnapshot{
			FrameID:   f.id,
			PageID:    f.pageID,
			PinCount:  f.pins(),
			Dirty:     f.isDirty(),
			Evictable: b.replacer.isEvictable(f.id),
		}
	}

	return util.PoolSnapshot{
		PoolSize:   len(b.frames),
		FreeFrames: len(b.freeList),
		Frames:     frames,
	}
}
