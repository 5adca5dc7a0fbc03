package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotEncodeDecodeRoundTrip(t *testing.T) {
	snap := PoolSnapshot{
		PoolSize:   4,
		FreeFrames: 1,
		Frames: []FrameSnapshot{
			{FrameID: 0, PageID: 7, PinCount: 2, Dirty: true, Evictable: false},
			{FrameID: 1, PageID: InvalidPageIDForTest, PinCount: 0, Dirty: false, Evictable: true},
		},
	}

	data, err := Encode(snap)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	decoded, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

// InvalidPageIDForTest mirrors disk.InvalidPageID. Importing the disk
// package here would cycle back to util, which disk itself imports.
const InvalidPageIDForTest int64 = -1
