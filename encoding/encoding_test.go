package encoding

import (
	"bytes"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextPreservesByteOrder(t *testing.T) {
	require.True(t, bytes.Compare(Text("a"), Text("b")) < 0)
	require.True(t, bytes.Compare(Text(""), Text("a")) < 0)
}

func TestInt32OrderMatchesNumericOrder(t *testing.T) {
	values := []int32{math.MinInt32, -100, -1, 0, 1, 100, math.MaxInt32}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		encoded[i] = Int32(v)
	}
	sorted := append([][]byte{}, encoded...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	for i := range sorted {
		require.Equal(t, encoded[i], sorted[i])
	}
}

func TestInt64OrderMatchesNumericOrderRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := make([]int64, 200)
	for i := range values {
		values[i] = rng.Int63() - rng.Int63()
	}
	sortedVals := append([]int64{}, values...)
	sort.Slice(sortedVals, func(i, j int) bool { return sortedVals[i] < sortedVals[j] })

	encoded := make([][]byte, len(values))
	for i, v := range sortedVals {
		encoded[i] = Int64(v)
	}
	for i := 1; i < len(encoded); i++ {
		require.True(t, bytes.Compare(encoded[i-1], encoded[i]) <= 0)
	}
}

func TestInt64MinSortsFirst(t *testing.T) {
	min := Int64(math.MinInt64)
	other := Int64(0)
	require.True(t, bytes.Compare(min, other) < 0)
}
