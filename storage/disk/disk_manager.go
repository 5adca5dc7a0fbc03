package disk

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"bufferpool/util"
)

// DiskManager owns the backing file and the page_id -> byte-offset table.
// The disk scheduler runs one worker goroutine per active page, so this
// manager's own bookkeeping (offsets, checksums, free slots) must tolerate
// concurrent calls for distinct pages.
type DiskManager struct {
	mu           sync.Mutex
	dbFile       *os.File
	pages        map[int64]int64
	checksums    map[int64]uint64
	freeSlots    []int64
	pageCapacity int64
}

// NewDiskManager wraps an already-open file as a page-addressable store.
func NewDiskManager(file *os.File) *DiskManager {
	return &DiskManager{
		dbFile:       file,
		pageCapacity: DefaultPageCapacity,
		freeSlots:    []int64{},
		pages:        map[int64]int64{},
		checksums:    map[int64]uint64{},
	}
}

// WritePage persists data as the on-disk contents of pageID and records its
// checksum for later verification.
func (dm *DiskManager) WritePage(pageID int64, data []byte) error {
	offset, err := dm.offsetFor(pageID)
	if err != nil {
		return err
	}

	if _, err := dm.dbFile.WriteAt(data, offset); err != nil {
		return ioError("error writing", offset, err)
	}

	dm.mu.Lock()
	dm.checksums[pageID] = xxhash.Sum64(data)
	dm.mu.Unlock()
	return nil
}

// ReadPage fills buf with pageID's on-disk contents and verifies the
// checksum recorded at the last WritePage, if any.
func (dm *DiskManager) ReadPage(pageID int64, buf []byte) error {
	offset, err := dm.offsetFor(pageID)
	if err != nil {
		return err
	}

	if _, err := dm.dbFile.ReadAt(buf, offset); err != nil {
		return ioError("error reading", offset, err)
	}

	dm.mu.Lock()
	want, ok := dm.checksums[pageID]
	dm.mu.Unlock()
	if ok && xxhash.Sum64(buf) != want {
		return util.ErrCorruptPage
	}

	return nil
}

// DeletePage reclaims pageID's on-disk slot for reuse.
func (dm *DiskManager) DeletePage(pageID int64) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if offset, ok := dm.pages[pageID]; ok {
		dm.freeSlots = append(dm.freeSlots, offset)
		delete(dm.pages, pageID)
		delete(dm.checksums, pageID)
	}
}

// offsetFor returns pageID's byte offset, allocating one on first use.
func (dm *DiskManager) offsetFor(pageID int64) (int64, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if offset, ok := dm.pages[pageID]; ok {
		return offset, nil
	}

	offset, err := dm.allocatePage()
	if err != nil {
		return 0, err
	}
	dm.pages[pageID] = offset
	return offset, nil
}

// allocatePage must be called with dm.mu held.
func (dm *DiskManager) allocatePage() (int64, error) {
	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		dm.freeSlots = dm.freeSlots[1:]
		return offset, nil
	}

	if int64(len(dm.pages))+1 > dm.pageCapacity {
		dm.pageCapacity *= 2
		if err := os.Truncate(dm.dbFile.Name(), dm.pageCapacity*PageSize); err != nil {
			return -1, fmt.Errorf("error resizing db file: %w", err)
		}
	}

	return dm.getNextOffset(), nil
}

func (dm *DiskManager) getNextOffset() int64 {
	return int64(len(dm.pages)) * PageSize
}

func ioError(message string, offset int64, err error) error {
	return &util.CacheError{Message: fmt.Sprintf("%s at offset %d", message, offset), Err: err}
}
