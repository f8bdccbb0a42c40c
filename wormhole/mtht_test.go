package wormhole

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMTHTLongestPrefixMatchFindsEmptyRoot(t *testing.T) {
	m := newMTHT()
	m.put(EmptyKey(), &nodeMeta{isLeaf: true, leaf: 0})

	prefix, meta := m.longestPrefixMatch(k("anything"))
	require.Equal(t, 0, prefix.Len())
	require.True(t, meta.isLeaf)
}

func TestMTHTLongestPrefixMatchPrefersLongerPresentPrefix(t *testing.T) {
	m := newMTHT()
	m.put(EmptyKey(), &nodeMeta{leftmost: 0, rightmost: 1})
	m.put(k("j"), &nodeMeta{leftmost: 1, rightmost: 1})
	m.put(k("ja"), &nodeMeta{isLeaf: true, leaf: 1})

	prefix, meta := m.longestPrefixMatch(k("james"))
	require.Equal(t, "ja", string(prefix.Bytes()))
	require.True(t, meta.isLeaf)
	require.Equal(t, leafHandle(1), meta.leaf)
}

func TestMTHTRemoveRecomputesMaxLen(t *testing.T) {
	m := newMTHT()
	m.put(EmptyKey(), &nodeMeta{isLeaf: true, leaf: 0})
	m.put(k("abc"), &nodeMeta{isLeaf: true, leaf: 1})
	require.Equal(t, 3, m.maxLen)

	m.remove(k("abc"))
	require.Equal(t, 0, m.maxLen)
	require.False(t, m.contains(k("abc")))
}

func TestMTHTHandleSplitInsertsLeafAndAncestors(t *testing.T) {
	m := newMTHT()
	m.put(EmptyKey(), &nodeMeta{isLeaf: true, leaf: 0})

	// Simulate splitting leaf 0 (anchor "") and producing a new right
	// leaf 1 anchored at "j".
	m.handleSplit(k("j"), 1, 0, nilHandle)

	leafMeta, ok := m.get(k("j"))
	require.True(t, ok)
	require.True(t, leafMeta.isLeaf)
	require.Equal(t, leafHandle(1), leafMeta.leaf)

	rootMeta, ok := m.get(EmptyKey())
	require.True(t, ok)
	require.False(t, rootMeta.isLeaf)
	require.True(t, rootMeta.bitmap.test('j'))
	require.Equal(t, leafHandle(0), rootMeta.leftmost)
	require.Equal(t, leafHandle(1), rootMeta.rightmost)
}

func TestMTHTHandleMergePrunesSingleDescendantInternal(t *testing.T) {
	m := newMTHT()
	m.put(EmptyKey(), &nodeMeta{isLeaf: true, leaf: 0})
	m.handleSplit(k("j"), 1, 0, nilHandle)

	// Now merge leaf 1 (anchor "j") back into leaf 0.
	m.handleMerge(k("j"), 1, 0, nilHandle)

	_, ok := m.get(k("j"))
	require.False(t, ok, "victim's own leaf-meta should be pruned")

	rootMeta, ok := m.get(EmptyKey())
	require.True(t, ok, "root meta must never be removed")
	require.False(t, rootMeta.bitmap.test('j'), "stale child bit must be cleared")
	require.Equal(t, leafHandle(0), rootMeta.leftmost)
	require.Equal(t, leafHandle(0), rootMeta.rightmost)
}
