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

// Package encoding holds pure, order-preserving byte-producing functions
// for the key domains package wormhole's typed index wrappers support.
// They have no dependency on package wormhole; each returns a plain
// []byte that the caller hands to wormhole.NewKey.
package encoding

import "encoding/binary"

// Text returns s's natural byte sequence. Text keys sort in the byte
// order of the caller's string encoding (natural for ASCII and for
// UTF-8 compared codepoint-by-codepoint).
func Text(s string) []byte {
	return []byte(s)
}

// Int32 encodes a signed 32-bit integer as 4 big-endian bytes with the
// sign bit flipped, so unsigned lexicographic byte order matches
// numeric order: the most negative value encodes to all-zero bytes, and
// the most positive to all-one bytes.
func Int32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v)^0x80000000)
	return b
}

// Int64 encodes a signed 64-bit integer as 8 big-endian bytes with the
// sign bit flipped, by the same reasoning as Int32.
func Int64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v)^0x8000000000000000)
	return b
}
