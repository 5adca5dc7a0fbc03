package disk

// PageSize is the fixed size, in bytes, of every page the manager reads,
// writes, or hands to the buffer pool.
const PageSize = 4096

// InvalidPageID is the sentinel returned for "no page" across the module.
const InvalidPageID int64 = -1

// DefaultPageCapacity is the initial number of page slots the backing file
// is sized for before it needs its first resize.
const DefaultPageCapacity = 16
