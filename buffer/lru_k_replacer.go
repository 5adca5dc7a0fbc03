package buffer

import (
	"container/list"
	"sync"
)

// lrukReplacer picks eviction victims using backward k-distance: frames
// with fewer than k recorded accesses are treated as having infinite
// k-distance and are evicted LRU-first; frames with k or more accesses are
// evicted by ascending k-th-most-recent timestamp.
type lrukReplacer struct {
	mu            sync.Mutex
	nodeStore     map[int]*lrukNode
	historyList   *list.List // frame ids with fewer than k accesses, oldest insertion at front
	cacheList     *list.List // frame ids with >= k accesses, smallest k-th timestamp at front
	replacerSize  int
	currSize      int
	currTimestamp int
	k             int
}

// newLrukReplacer returns a replacer for a pool of numFrames frames, using
// a history depth of k.
func newLrukReplacer(numFrames, k int) *lrukReplacer {
	return &lrukReplacer{
		nodeStore:    make(map[int]*lrukNode),
		historyList:  list.New(),
		cacheList:    list.New(),
		replacerSize: numFrames,
		k:            k,
	}
}

// recordAccess bumps the current timestamp and appends it to frameId's
// history, creating the node if unknown. Frame ids outside [0, numFrames)
// are silently ignored.
func (lru *lrukReplacer) recordAccess(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if frameID < 0 || frameID >= lru.replacerSize {
		return
	}

	ts := lru.currTimestamp
	lru.currTimestamp++

	node, ok := lru.nodeStore[frameID]
	if !ok {
		node = newLrukNode(frameID, lru.k)
		lru.nodeStore[frameID] = node
		node.addTimestamp(ts)
		if node.hasKAccess() {
			// k=1: the first access already qualifies the node for the
			// cache list, so it must never be left dangling in historyList.
			node.elem = lru.insertIntoCacheList(node)
		} else {
			node.elem = lru.historyList.PushBack(frameID)
		}
		if node.evictable {
			lru.currSize++
		}
		return
	}

	hadKAccess := node.hasKAccess()
	node.addTimestamp(ts)

	switch {
	case !hadKAccess && node.hasKAccess():
		// transition: move from history list to cache list
		lru.historyList.Remove(node.elem)
		node.elem = lru.insertIntoCacheList(node)
	case hadKAccess:
		// already qualified: reposition within the cache list
		lru.cacheList.Remove(node.elem)
		node.elem = lru.insertIntoCacheList(node)
	}
}

// insertIntoCacheList places node in cacheList at the position given by
// its k-th-most-recent timestamp, ascending.
func (lru *lrukReplacer) insertIntoCacheList(node *lrukNode) *list.Element {
	kth := node.kthAccess()
	for e := lru.cacheList.Front(); e != nil; e = e.Next() {
		other := lru.nodeStore[e.Value.(int)]
		if kth <= other.kthAccess() {
			return lru.cacheList.InsertBefore(node.frameID, e)
		}
	}
	return lru.cacheList.PushBack(node.frameID)
}

// setEvictable toggles frameId's evictable flag, adjusting currSize by ±1
// only when the flag actually changes. Unknown frame ids are ignored.
func (lru *lrukReplacer) setEvictable(frameID int, evictable bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameID]
	if !ok {
		return
	}

	if node.evictable && !evictable {
		node.evictable = false
		lru.currSize--
	} else if !node.evictable && evictable {
		node.evictable = true
		lru.currSize++
	}
}

// evict returns and forgets the current victim: the oldest evictable node
// in the history list if one exists, else the evictable node in the cache
// list with the smallest k-th-most-recent timestamp.
func (lru *lrukReplacer) evict() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if lru.currSize == 0 {
		return invalidFrameID, false
	}

	for e := lru.historyList.Front(); e != nil; e = e.Next() {
		frameID := e.Value.(int)
		if lru.nodeStore[frameID].evictable {
			lru.historyList.Remove(e)
			delete(lru.nodeStore, frameID)
			lru.currSize--
			return frameID, true
		}
	}

	for e := lru.cacheList.Front(); e != nil; e = e.Next() {
		frameID := e.Value.(int)
		if lru.nodeStore[frameID].evictable {
			lru.cacheList.Remove(e)
			delete(lru.nodeStore, frameID)
			lru.currSize--
			return frameID, true
		}
	}

	return invalidFrameID, false
}

// remove forcibly drops an evictable frame from tracking. Removing an
// unknown or non-evictable frame is a no-op.
func (lru *lrukReplacer) remove(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameID]
	if !ok || !node.evictable {
		return
	}

	if node.hasKAccess() {
		lru.cacheList.Remove(node.elem)
	} else {
		lru.historyList.Remove(node.elem)
	}
	delete(lru.nodeStore, frameID)
	lru.currSize--
}

// isEvictable reports whether frameID is currently tracked and evictable.
func (lru *lrukReplacer) isEvictable(frameID int) bool {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameID]
	return ok && node.evictable
}

// size returns the number of evictable frames currently tracked.
func (lru *lrukReplacer) size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.currSize
}
