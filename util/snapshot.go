package util

import "github.com/vmihailenco/msgpack"

// FrameSnapshot is a point-in-time view of one pool frame, used only for
// diagnostics and tooling — never for deciding cache behavior.
type FrameSnapshot struct {
	FrameID   int   `msgpack:"frame_id"`
	PageID    int64 `msgpack:"page_id"`
	PinCount  int32 `msgpack:"pin_count"`
	Dirty     bool  `msgpack:"dirty"`
	Evictable bool  `msgpack:"evictable"`
}

// PoolSnapshot is the full pool occupancy report handed to external
// tooling (e.g. a debug endpoint or an operator CLI); it never carries
// page content, only residency metadata.
type PoolSnapshot struct {
	PoolSize   int             `msgpack:"pool_size"`
	FreeFrames int             `msgpack:"free_frames"`
	Frames     []FrameSnapshot `msgpack:"frames"`
}

// Encode serializes a snapshot with msgpack for transport or storage.
func Encode(snap PoolSnapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

// Decode reverses Encode.
func Decode(data []byte) (PoolSnapshot, error) {
	var snap PoolSnapshot
	err := msgpack.Unmarshal(data, &snap)
	return snap, err
}
