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

package wormhole

// nodeMeta is the value type stored in the MTHT, keyed by an anchor
// prefix. A leaf-meta (isLeaf) points at the leaf whose anchor exactly
// equals this prefix. An internal-meta describes the subtree of leaves
// whose anchors share this prefix: leftmost/rightmost are its extreme
// leaves in chain order, and bitmap has bit b set iff some descendant
// anchor has byte[len(prefix)] == b.
type nodeMeta struct {
	isLeaf    bool
	leaf      leafHandle
	leftmost  leafHandle
	rightmost leafHandle
	bitmap    bitmap256
}

// mtht is the flat meta-trie hash table: a map from anchor prefix to
// nodeMeta, plus the longest prefix length ever inserted so
// longestPrefixMatch can bound its binary search.
type mtht struct {
	table  map[string]*nodeMeta
	maxLen int
}

func newMTHT() *mtht {
	return &mtht{table: make(map[string]*nodeMeta)}
}

func (m *mtht) get(prefix Key) (*nodeMeta, bool) {
	v, ok := m.table[prefix.str()]
	return v, ok
}

func (m *mtht) contains(prefix Key) bool {
	_, ok := m.get(prefix)
	return ok
}

func (m *mtht) put(prefix Key, meta *nodeMeta) {
	m.table[prefix.str()] = meta
	if n := prefix.Len(); n > m.maxLen {
		m.maxLen = n
	}
}

// remove deletes the meta at prefix. If prefix was the longest prefix on
// record, maxLen is recomputed by a linear scan.
func (m *mtht) remove(prefix Key) {
	n := prefix.Len()
	delete(m.table, prefix.str())
	if n == m.maxLen {
		max := 0
		for k := range m.table {
			if len(k) > max {
				max = len(k)
			}
		}
		m.maxLen = max
	}
}

// longestPrefixMatch returns the longest prefix of k present in the
// table (and its meta), via binary search over prefix length: the loop
// invariant is that position lo is present and position hi is absent.
// The empty prefix is always present, so the search always terminates
// with a valid meta.
func (m *mtht) longestPrefixMatch(k Key) (Key, *nodeMeta) {
	lo, hi := 0, minInt(k.Len(), m.maxLen)+1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if m.contains(k.Slice(mid)) {
			lo = mid
		} else {
			hi = mid
		}
	}
	p := k.Slice(lo)
	meta, ok := m.get(p)
	if !ok {
		fatalf("longestPrefixMatch: empty-prefix root meta missing")
	}
	return p, meta
}

// handleSplit updates the MTHT after a leaf split produced newLeaf with
// anchor newAnchor, spliced into the chain between leftOfNew and
// rightOfNew (newLeaf's own left/right neighbors). It walks every
// prefix of newAnchor from shortest to longest, creating or updating
// the nodeMeta at each, and reassigns an ancestor's leftmost/rightmost
// handle whenever it previously pointed at newLeaf's chain neighbor
// rather than newLeaf itself.
func (m *mtht) handleSplit(newAnchor Key, newLeaf, leftOfNew, rightOfNew leafHandle) {
	m.put(newAnchor, &nodeMeta{isLeaf: true, leaf: newLeaf})

	for p := 0; p < newAnchor.Len(); p++ {
		prefix := newAnchor.Slice(p)
		c := newAnchor.ByteAt(p)
		meta, ok := m.get(prefix)
		if !ok {
			nm := &nodeMeta{leftmost: newLeaf, rightmost: newLeaf}
			nm.bitmap.set(c)
			m.put(prefix, nm)
			continue
		}
		if meta.isLeaf {
			existing := meta.leaf
			meta = &nodeMeta{leftmost: existing, rightmost: newLeaf}
			m.put(prefix, meta)
		}
		meta.bitmap.set(c)
		if meta.leftmost == rightOfNew {
			meta.leftmost = newLeaf
		}
		if meta.rightmost == leftOfNew {
			meta.rightmost = newLeaf
		}
	}
}

// handleMerge updates the MTHT after left.merge(victim) has already
// collapsed victim's records into left and spliced the chain, removing
// victim. victimLeft and victimRight are victim's former chain
// neighbors (victimLeft == the absorbing leaf's handle). It walks
// victimAnchor's prefixes from longest to shortest, removing victim's
// own leaf-meta outright and, at each ancestor, clearing the bitmap bit
// only when the child meta below it was actually removed and pruning
// any internal-meta left describing a single remaining leaf. The root
// empty-prefix meta (prefix length 0) is never removed.
func (m *mtht) handleMerge(victimAnchor Key, victim, victimLeft, victimRight leafHandle) {
	childRemoved := false
	for p := victimAnchor.Len(); p >= 0; p-- {
		prefix := victimAnchor.Slice(p)
		meta, ok := m.get(prefix)
		if !ok {
			fatalf("handleMerge: expected meta at prefix length %d missing", p)
		}
		if childRemoved {
			meta.bitmap.clear(victimAnchor.ByteAt(p))
		}
		removeThis := p > 0 && (meta.isLeaf || meta.leftmost == meta.rightmost)
		if removeThis {
			m.remove(prefix)
			childRemoved = true
			continue
		}
		childRemoved = false
		if !meta.isLeaf {
			if meta.leftmost == victim {
				meta.leftmost = victimRight
			}
			if meta.rightmost == victim {
				meta.rightmost = victimLeft
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
