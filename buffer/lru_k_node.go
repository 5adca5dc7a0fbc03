package buffer

import "container/list"

// invalidFrameID is returned by evict when no victim is available.
const invalidFrameID = -1

// lrukNode is a frame's access-history entry in the replacer. It sits in
// exactly one of the replacer's history list (fewer than k accesses) or
// cache list (k or more), ordered by the k-th-most-recent access time.
type lrukNode struct {
	frameID   int
	k         int
	history   []int // capped at k entries; history[0] is the oldest retained
	evictable bool
	elem      *list.Element
}

func newLrukNode(frameID, k int) *lrukNode {
	return &lrukNode{frameID: frameID, k: k, evictable: true}
}

// hasKAccess reports whether this node has accumulated k recorded accesses.
func (n *lrukNode) hasKAccess() bool {
	return len(n.history) == n.k
}

// kthAccess returns the oldest retained access timestamp (the k-th most
// recent once the node holds k of them), or -1 if the node has no recorded
// accesses yet.
func (n *lrukNode) kthAccess() int {
	if len(n.history) == 0 {
		return -1
	}
	return n.history[0]
}

// addTimestamp records a new access, discarding the oldest retained
// timestamp once the node already holds k of them.
func (n *lrukNode) addTimestamp(timestamp int) {
	if len(n.history) < n.k {
		n.history = append(n.history, timestamp)
		return
	}

	n.history = append(n.history[1:], timestamp)
}
