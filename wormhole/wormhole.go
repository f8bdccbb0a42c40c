// Copyright 2014 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package wormhole implements an ordered, single-threaded, in-memory
// associative container keyed by byte-string-encoded keys: a doubly
// linked chain of sorted leaf nodes whose split points are located by a
// hash-table-backed prefix trie (the "meta-trie hash table", or MTHT).
//
// There is no persistence, no concurrency, and no custom comparator:
// order is always unsigned lexicographic over Key's bytes. All public
// operations are synchronous and none suspend. Leaves are preallocated
// at capacity; a split allocates the new leaf, and the lazy key-reference
// sort (reached from Scan, Delete, split and merge) allocates a transient
// scratch buffer.
package wormhole

import "github.com/probeum/wormhole/log"

// DefaultCapacity is the leaf capacity F used when Config.Capacity is
// not positive.
const DefaultCapacity = 128

// mergeNum/mergeDen == 3/4: the merge threshold is floor(3*F/4).
const mergeNum, mergeDen = 3, 4

// Config configures a Wormhole instance.
type Config struct {
	// Capacity is F, the maximum number of records a leaf may hold
	// before it must split. Defaults to DefaultCapacity if <= 0. Small
	// values such as 3 are accepted; there is no enforced minimum.
	Capacity int
	// Debug, when true, runs Validate after every mutating operation
	// and panics immediately if it reports an error, so a violated
	// invariant is caught at the operation that introduced it rather
	// than at some later unrelated failure.
	Debug bool
}

func (c Config) capacity() int {
	if c.Capacity > 0 {
		return c.Capacity
	}
	return DefaultCapacity
}

func (c Config) mergeThreshold() int {
	return c.capacity() * mergeNum / mergeDen
}

// Wormhole is the top-level coordinator: it routes Get/Put/Delete/Scan
// to the correct leaf via the MTHT, drives leaf split on overflow and
// merge on underflow, and keeps the MTHT's invariants consistent across
// every structural change.
type Wormhole struct {
	cfg      Config
	arena    *leafArena
	meta     *mtht
	log      log.Logger
	scanning bool
}

// New constructs a Wormhole with a single root leaf anchored at the
// empty key.
func New(cfg Config) *Wormhole {
	w := &Wormhole{
		cfg:   cfg,
		arena: newLeafArena(),
		meta:  newMTHT(),
		log:   log.New("component", "wormhole"),
	}
	root := w.arena.alloc(newLeaf(EmptyKey(), cfg.capacity()))
	w.meta.put(EmptyKey(), &nodeMeta{isLeaf: true, leaf: root})
	return w
}

// resolveLeaf finds the leaf that owns k: the longest-prefix match in
// the MTHT directly names a leaf, or names an internal node whose
// sibling bitmap and leftmost/rightmost pointers pin down the exact
// leaf.
func (w *Wormhole) resolveLeaf(k Key) leafHandle {
	prefix, meta := w.meta.longestPrefixMatch(k)
	if meta.isLeaf {
		return meta.leaf
	}
	pl := prefix.Len()
	if pl == k.Len() {
		lm := w.arena.get(meta.leftmost)
		if k.Compare(lm.anchor) < 0 {
			return lm.left
		}
		return meta.leftmost
	}
	m := k.ByteAt(pl)
	sibling, ok := meta.bitmap.findSibling(m)
	if !ok {
		return meta.leftmost
	}
	childPrefix := prefix.AppendByte(sibling)
	child, ok := w.meta.get(childPrefix)
	if !ok {
		fatalf("resolveLeaf: bitmap bit %d set at prefix %s but no child meta found", sibling, prefix)
	}
	if child.isLeaf {
		if m < sibling {
			return w.arena.get(child.leaf).left
		}
		return child.leaf
	}
	if m < sibling {
		return w.arena.get(child.leftmost).left
	}
	return child.rightmost
}

// Get returns the record for k, if present. It never mutates the index.
func (w *Wormhole) Get(k Key) (Record, bool) {
	l := w.arena.get(w.resolveLeaf(k))
	return l.pointLookup(k)
}

// Put inserts or overwrites the record for k, returning the previous
// value (if any) and whether one existed. If the resolved leaf is full
// and k is new, the leaf is split first and the new record is routed to
// whichever half now owns k's range. Put rejects a nil userKey and
// rejects being called from inside a Scan's visit callback.
func (w *Wormhole) Put(k Key, userKey, value interface{}) (interface{}, bool, error) {
	if userKey == nil {
		return nil, false, ErrNilKey
	}
	if w.scanning {
		return nil, false, ErrMutateDuringVisit
	}
	h := w.resolveLeaf(k)
	l := w.arena.get(h)
	if _, ok := l.pointLookup(k); ok {
		old := l.setValue(k, value)
		w.afterMutation()
		return old, true, nil
	}
	if l.size == l.capacity {
		newAnchor, newHandle := w.splitLeaf(h)
		if k.Compare(newAnchor) >= 0 {
			h, l = newHandle, w.arena.get(newHandle)
		}
	}
	l.add(Record{Enc: k, UserKey: userKey, Value: value})
	w.afterMutation()
	return nil, false, nil
}

// Delete removes the record for k, returning whether it was present.
// After a successful delete it attempts at most one merge: with the
// left neighbor if the combined size would stay below the merge
// threshold, else with the right neighbor under the same test. Delete
// rejects being called from inside a Scan's visit callback.
func (w *Wormhole) Delete(k Key) (bool, error) {
	if w.scanning {
		return false, ErrMutateDuringVisit
	}
	h := w.resolveLeaf(k)
	l := w.arena.get(h)
	if !l.delete(k) {
		return false, nil
	}
	w.maybeMerge(h)
	w.afterMutation()
	return true, nil
}

// Scan walks the leaf chain from the leaf resolving `start` (or the
// globally leftmost leaf if start is nil) rightward, invoking visit on
// every record with start <= key <= end (or < end if endExclusive).
// visit may return false to stop early; Scan returns promptly when it
// does. The caller must not mutate the index from within visit: Put and
// Delete both detect reentrancy while a Scan on the same Wormhole is in
// progress and return ErrMutateDuringVisit instead of corrupting state.
func (w *Wormhole) Scan(start, end *Key, endExclusive bool, visit func(Record) bool) {
	w.scanning = true
	defer func() { w.scanning = false }()

	var h leafHandle
	if start == nil {
		h = w.resolveLeaf(EmptyKey())
	} else {
		h = w.resolveLeaf(*start)
	}
	cur := start
	for h != nilHandle {
		l := w.arena.get(h)
		if l.iterate(cur, end, endExclusive, visit) {
			h = l.right
			cur = nil
			continue
		}
		return
	}
}

// ScanWithCount collects up to count records starting at start (or the
// beginning of the index if start is nil).
func (w *Wormhole) ScanWithCount(start *Key, count int) ([]Record, error) {
	if count < 0 {
		return nil, ErrNegativeCount
	}
	out := make([]Record, 0, count)
	remaining := count
	w.Scan(start, nil, false, func(r Record) bool {
		if remaining <= 0 {
			return false
		}
		out = append(out, r)
		remaining--
		return remaining > 0
	})
	return out, nil
}

// splitLeaf splits the leaf at h, wires the new leaf into the chain and
// the MTHT, and returns its anchor and handle.
func (w *Wormhole) splitLeaf(h leafHandle) (Key, leafHandle) {
	l := w.arena.get(h)
	anchor, rightLeaf := l.split(func(k Key) bool { return !w.meta.contains(k) })

	newHandle := w.arena.alloc(rightLeaf)
	oldRight := l.right
	l.right = newHandle
	rightLeaf.left = h
	rightLeaf.right = oldRight
	if oldRight != nilHandle {
		w.arena.get(oldRight).left = newHandle
	}

	w.meta.handleSplit(anchor, newHandle, h, oldRight)
	w.log.Debug("leaf split", "anchor", anchor, "left_size", l.size, "right_size", rightLeaf.size)
	return anchor, newHandle
}

// maybeMerge attempts at most one merge after a delete at h, preferring
// the left neighbor.
func (w *Wormhole) maybeMerge(h leafHandle) {
	l := w.arena.get(h)
	threshold := w.cfg.mergeThreshold()
	if l.left != nilHandle {
		left := w.arena.get(l.left)
		if left.size+l.size < threshold {
			w.mergeLeaves(l.left, h)
			return
		}
	}
	if l.right != nilHandle {
		right := w.arena.get(l.right)
		if right.size+l.size < threshold {
			w.mergeLeaves(h, l.right)
		}
	}
}

// mergeLeaves merges victimH into leftH, updates the chain, the MTHT,
// and releases victimH's arena slot.
func (w *Wormhole) mergeLeaves(leftH, victimH leafHandle) {
	left := w.arena.get(leftH)
	victim := w.arena.get(victimH)
	victimAnchor := victim.anchor
	victimLeft := victim.left
	victimRight := victim.right

	left.merge(victim)
	left.right = victimRight
	if victimRight != nilHandle {
		w.arena.get(victimRight).left = leftH
	}

	w.meta.handleMerge(victimAnchor, victimH, victimLeft, victimRight)
	w.arena.release(victimH)
	w.log.Debug("leaf merge", "victim_anchor", victimAnchor, "merged_size", left.size)
}

func (w *Wormhole) afterMutation() {
	if !w.cfg.Debug {
		return
	}
	if err := w.Validate(); err != nil {
		fatalf("debug validation failed after mutation: %v", err)
	}
}
