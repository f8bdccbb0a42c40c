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

import (
	"bytes"
	"hash/fnv"
)

// Key is an immutable encoded key: an unsigned byte sequence ordered by
// plain lexicographic comparison, shorter-as-prefix counting as smaller.
// Every method returns a new value; none mutates the receiver's bytes in
// place, so a Key can be shared freely between leaves, the MTHT and
// caller code without synchronization.
type Key struct {
	b []byte
}

// NewKey copies b and returns the encoded key wrapping the copy, so the
// caller's slice can be reused or mutated afterwards.
func NewKey(b []byte) Key {
	if len(b) == 0 {
		return Key{}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Key{b: cp}
}

// EmptyKey is the always-present sentinel used as the root leaf's anchor.
func EmptyKey() Key { return Key{} }

// Len reports the number of bytes in the key.
func (k Key) Len() int { return len(k.b) }

// ByteAt returns the byte at position i.
func (k Key) ByteAt(i int) byte { return k.b[i] }

// Slice returns the length-n prefix of k. It shares k's backing array;
// callers never observe the difference because Key values are never
// mutated in place.
func (k Key) Slice(n int) Key { return Key{b: k.b[:n:n]} }

// AppendByte returns a new key equal to k with b appended.
func (k Key) AppendByte(b byte) Key {
	nb := make([]byte, len(k.b)+1)
	copy(nb, k.b)
	nb[len(k.b)] = b
	return Key{b: nb}
}

// HasPrefix reports whether p is a prefix of k.
func (k Key) HasPrefix(p Key) bool {
	return len(k.b) >= len(p.b) && bytes.Equal(k.b[:len(p.b)], p.b)
}

// Compare returns -1, 0 or 1 per unsigned lexicographic order, treating a
// shorter key that is a prefix of a longer one as smaller.
func (k Key) Compare(o Key) int {
	return bytes.Compare(k.b, o.b)
}

// LCP returns the length of the longest common prefix of k and o.
func (k Key) LCP(o Key) int {
	n := len(k.b)
	if len(o.b) < n {
		n = len(o.b)
	}
	i := 0
	for i < n && k.b[i] == o.b[i] {
		i++
	}
	return i
}

// Bytes exposes the underlying bytes read-only; callers must not mutate
// the returned slice.
func (k Key) Bytes() []byte { return k.b }

// str is used as the MTHT's map key; the empty key maps to "".
func (k Key) str() string { return string(k.b) }

func (k Key) String() string { return hexString(k.b) }

// hash15 returns a 15-bit nonnegative hash of k's bytes, used only to
// prune the hash-tag scan inside a single leaf of size <= F. Collisions
// are harmless: pointLookup falls back to comparing the full encoded key.
func hash15(k Key) uint32 {
	h := fnv.New32a()
	h.Write(k.b)
	return h.Sum32() & 0x7FFF
}
