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

import "sort"

// Record is one (encoded key, user key, value) triple held by a leaf.
// The encoded key is kept alongside the user key so structural
// operations (split, merge, sort) never need to re-encode.
type Record struct {
	Enc     Key
	UserKey interface{}
	Value   interface{}
}

// leaf is a fixed-capacity bag of up to `capacity` records, holding
// three coexisting views of the same record set: the record array
// itself, a hash-tag array for O(1)-expected point lookup, and a
// lazily-sorted key-reference array for ordered iteration. All three
// are preallocated in newLeaf at length `capacity` and never grow;
// sortKeyRefs and splitAt allocate transient scratch slices.
type leaf struct {
	anchor      Key
	capacity    int
	records     []Record
	hashTags    []uint32 // ascending by tagHash; len==capacity, [0:size) live
	keyRefs     []int    // permutation of [0,size); [0:sortedCount) ascending by Enc
	size        int
	sortedCount int
	left, right leafHandle
}

func newLeaf(anchor Key, capacity int) *leaf {
	return &leaf{
		anchor:   anchor,
		capacity: capacity,
		records:  make([]Record, capacity),
		hashTags: make([]uint32, capacity),
		keyRefs:  make([]int, capacity),
		left:     nilHandle,
		right:    nilHandle,
	}
}

// pointLookup returns the record for k, if present. O(F) worst case,
// O(1 + collisions) expected. Never mutates the leaf.
func (l *leaf) pointLookup(k Key) (Record, bool) {
	h := hash15(k)
	lo, hi := 0, l.size
	for lo < hi {
		mid := (lo + hi) / 2
		if tagHash(l.hashTags[mid]) < h {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	for i := lo; i < l.size && tagHash(l.hashTags[i]) == h; i++ {
		idx := tagIndex(l.hashTags[i])
		if l.records[idx].Enc.Compare(k) == 0 {
			return l.records[idx], true
		}
	}
	return Record{}, false
}

// setValue overwrites the value of the record whose encoded key is k,
// returning the previous value. The caller must have already confirmed
// k is present (via pointLookup).
func (l *leaf) setValue(k Key, value interface{}) interface{} {
	h := hash15(k)
	lo, hi := 0, l.size
	for lo < hi {
		mid := (lo + hi) / 2
		if tagHash(l.hashTags[mid]) < h {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	for i := lo; i < l.size && tagHash(l.hashTags[i]) == h; i++ {
		idx := tagIndex(l.hashTags[i])
		if l.records[idx].Enc.Compare(k) == 0 {
			old := l.records[idx].Value
			l.records[idx].Value = value
			return old
		}
	}
	fatalf("setValue: key reported present by caller was not found")
	return nil
}

// sortKeyRefs lazily brings the key-reference array fully into ascending
// order: a quicksort of the unsorted [sortedCount:size) tail followed by
// an O(size) merge of the two now-sorted runs, using one O(size) scratch
// buffer. Called from iterate, split and delete.
func (l *leaf) sortKeyRefs() {
	if l.sortedCount >= l.size {
		l.sortedCount = l.size
		return
	}
	tail := l.keyRefs[l.sortedCount:l.size]
	sort.Slice(tail, func(i, j int) bool {
		return l.records[tail[i]].Enc.Compare(l.records[tail[j]].Enc) < 0
	})

	merged := make([]int, l.size)
	i, j, k := 0, l.sortedCount, 0
	for i < l.sortedCount && j < l.size {
		if l.records[l.keyRefs[i]].Enc.Compare(l.records[l.keyRefs[j]].Enc) <= 0 {
			merged[k] = l.keyRefs[i]
			i++
		} else {
			merged[k] = l.keyRefs[j]
			j++
		}
		k++
	}
	for ; i < l.sortedCount; i++ {
		merged[k] = l.keyRefs[i]
		k++
	}
	for ; j < l.size; j++ {
		merged[k] = l.keyRefs[j]
		k++
	}
	copy(l.keyRefs, merged)
	l.sortedCount = l.size
}

// rebuildHashTags recomputes the hash-tag array from scratch over
// records[0:size], in ascending hash order. Used after split/merge,
// where the record array itself was just rewritten.
func (l *leaf) rebuildHashTags() {
	for i := 0; i < l.size; i++ {
		l.hashTags[i] = packHashTag(hash15(l.records[i].Enc), i)
	}
	view := l.hashTags[:l.size]
	sort.Slice(view, func(i, j int) bool { return tagHash(view[i]) < tagHash(view[j]) })
}

// lowerBound returns the first index i in [0,size) with
// records[keyRefs[i]].Enc >= k, assuming the key-reference array is
// fully sorted.
func (l *leaf) lowerBound(k Key) int {
	lo, hi := 0, l.size
	for lo < hi {
		mid := (lo + hi) / 2
		if l.records[l.keyRefs[mid]].Enc.Compare(k) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the first index i in [0,size) with
// records[keyRefs[i]].Enc > k, assuming the key-reference array is
// fully sorted.
func (l *leaf) upperBound(k Key) int {
	lo, hi := 0, l.size
	for lo < hi {
		mid := (lo + hi) / 2
		if l.records[l.keyRefs[mid]].Enc.Compare(k) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// add appends rec to all three views. Preconditions (caller-enforced via
// a prior pointLookup): size < capacity and rec.Enc is absent from the
// leaf. Hash tags are inserted in sorted position; key references are
// appended unsorted at the tail.
func (l *leaf) add(rec Record) {
	idx := l.size
	l.records[idx] = rec
	tag := packHashTag(hash15(rec.Enc), idx)
	h := tagHash(tag)
	pos := sort.Search(l.size, func(i int) bool { return tagHash(l.hashTags[i]) >= h })
	copy(l.hashTags[pos+1:l.size+1], l.hashTags[pos:l.size])
	l.hashTags[pos] = tag
	l.keyRefs[l.size] = idx
	l.size++
}

// delete removes the record for k, if present, compacting all three
// views and renumbering every index reference above the removed
// record's position. Ensures the key-reference array is fully sorted
// first so the lookup is a binary search.
func (l *leaf) delete(k Key) bool {
	l.sortKeyRefs()
	pos := l.lowerBound(k)
	if pos >= l.size || l.records[l.keyRefs[pos]].Enc.Compare(k) != 0 {
		return false
	}
	recIdx := l.keyRefs[pos]

	h := hash15(k)
	hpos := -1
	for i := 0; i < l.size; i++ {
		if tagHash(l.hashTags[i]) == h && tagIndex(l.hashTags[i]) == recIdx {
			hpos = i
			break
		}
	}
	if hpos < 0 {
		fatalf("delete: hash tag for key reported present by key-reference lookup was not found")
	}

	copy(l.hashTags[hpos:l.size-1], l.hashTags[hpos+1:l.size])
	copy(l.keyRefs[pos:l.size-1], l.keyRefs[pos+1:l.size])
	copy(l.records[recIdx:l.size-1], l.records[recIdx+1:l.size])

	for i := 0; i < l.size-1; i++ {
		if idx := tagIndex(l.hashTags[i]); idx > recIdx {
			l.hashTags[i] = withIndex(l.hashTags[i], idx-1)
		}
		if l.keyRefs[i] > recIdx {
			l.keyRefs[i]--
		}
	}
	l.size--
	l.sortedCount = l.size
	return true
}

// split runs only when the leaf is full. It fully sorts the
// key-reference array, then scans forward from the midpoint for the
// lowest split position i whose candidate anchor (the shortest byte
// string separating records[i-1] from records[i]) is both strictly
// greater than its left neighbor and absent from the MTHT, per
// prefixAbsent. It returns the new anchor and the new right leaf; the
// caller (the coordinator) is responsible for splicing handles and
// updating the MTHT.
func (l *leaf) split(prefixAbsent func(Key) bool) (Key, *leaf) {
	l.sortKeyRefs()
	n := l.size
	for i := n / 2; i < n; i++ {
		k1 := l.records[l.keyRefs[i-1]].Enc
		k2 := l.records[l.keyRefs[i]].Enc
		lcp := k1.LCP(k2)
		candidate := k2.Slice(lcp).AppendByte(k2.ByteAt(lcp))
		if candidate.Compare(k1) > 0 && prefixAbsent(candidate) {
			return l.splitAt(i, candidate)
		}
	}
	fatalf("split: no candidate anchor in [%d,%d) satisfied both the ordering and uniqueness conditions", n/2, n)
	panic("unreachable")
}

func (l *leaf) splitAt(i int, candidate Key) (Key, *leaf) {
	n := l.size
	right := newLeaf(candidate, l.capacity)
	for j := i; j < n; j++ {
		right.records[j-i] = l.records[l.keyRefs[j]]
		right.keyRefs[j-i] = j - i
	}
	right.size = n - i
	right.sortedCount = right.size
	right.rebuildHashTags()

	kept := make([]Record, i)
	for j := 0; j < i; j++ {
		kept[j] = l.records[l.keyRefs[j]]
	}
	copy(l.records, kept)
	for j := 0; j < i; j++ {
		l.keyRefs[j] = j
	}
	l.size = i
	l.sortedCount = i
	l.rebuildHashTags()

	return candidate, right
}

// merge appends r's records onto l and rebuilds l's hash-tag and
// key-reference views. It assumes l and r are adjacent in key order
// (every key in l is less than every key in r), which the coordinator
// guarantees by only ever merging chain neighbors. It does not touch
// chain pointers or the MTHT; the coordinator does that with the
// handles it already holds.
func (l *leaf) merge(r *leaf) {
	l.sortKeyRefs()
	r.sortKeyRefs()
	n, m := l.size, r.size
	for j := 0; j < m; j++ {
		l.records[n+j] = r.records[r.keyRefs[j]]
		l.keyRefs[n+j] = n + j
	}
	l.size = n + m
	l.sortedCount = l.size
	l.rebuildHashTags()
}

// iterate lazily sorts the key-reference array if needed, then invokes
// visit on every record in [start,end] (or [start,end) if endExclusive)
// in ascending key order. start==nil means no lower bound; end==nil
// means no upper bound. It returns whether the leaf was exhausted
// within the requested range: false means either visit returned stop,
// or the leaf contains records beyond end that were not visited (so the
// coordinator's scan must stop here); true means the caller should
// continue into the right neighbor.
func (l *leaf) iterate(start, end *Key, endExclusive bool, visit func(Record) bool) bool {
	if l.sortedCount < l.size {
		l.sortKeyRefs()
	}
	startIdx := 0
	if start != nil {
		startIdx = l.lowerBound(*start)
	}
	endIdx := l.size - 1
	reachedEnd := true
	if end != nil {
		if endExclusive {
			endIdx = l.lowerBound(*end) - 1
		} else {
			endIdx = l.upperBound(*end) - 1
		}
		if endIdx < l.size-1 {
			reachedEnd = false
		}
	}
	for i := startIdx; i <= endIdx && i >= 0 && i < l.size; i++ {
		if !visit(l.records[l.keyRefs[i]]) {
			return false
		}
	}
	return reachedEnd
}

// validate checks this leaf's own invariants (capacity, sort-tail
// bookkeeping, key ordering, hash-tag consistency) and returns a
// descriptive error if any is violated.
func (l *leaf) validate() error {
	if l.size > l.capacity {
		return fatalErrf("leaf %s: size %d exceeds capacity %d", l.anchor, l.size, l.capacity)
	}
	if l.sortedCount > l.size {
		return fatalErrf("leaf %s: sortedCount %d exceeds size %d", l.anchor, l.sortedCount, l.size)
	}
	seenIdx := make([]bool, l.size)
	for i := 0; i < l.size; i++ {
		if i > 0 && tagHash(l.hashTags[i-1]) > tagHash(l.hashTags[i]) {
			return fatalErrf("leaf %s: hash tags not ascending at %d", l.anchor, i)
		}
		idx := tagIndex(l.hashTags[i])
		if idx < 0 || idx >= l.size || seenIdx[idx] {
			return fatalErrf("leaf %s: hash-tag record index %d is not a permutation of [0,%d)", l.anchor, idx, l.size)
		}
		seenIdx[idx] = true
	}
	seenRef := make([]bool, l.size)
	for i := 0; i < l.size; i++ {
		idx := l.keyRefs[i]
		if idx < 0 || idx >= l.size || seenRef[idx] {
			return fatalErrf("leaf %s: key-reference %d is not a permutation of [0,%d)", l.anchor, idx, l.size)
		}
		seenRef[idx] = true
	}
	for i := 1; i < l.sortedCount; i++ {
		if l.records[l.keyRefs[i-1]].Enc.Compare(l.records[l.keyRefs[i]].Enc) > 0 {
			return fatalErrf("leaf %s: key-reference prefix not ascending at %d", l.anchor, i)
		}
	}
	for i := 0; i < l.size; i++ {
		if l.records[i].Enc.Compare(l.anchor) < 0 {
			return fatalErrf("leaf %s: record %s precedes anchor", l.anchor, l.records[i].Enc)
		}
	}
	return nil
}
