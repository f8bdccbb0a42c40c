package wormhole

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func textIdx(cfg Config) *TextIndex { return NewTextIndex(cfg) }

func scanAll(t *testing.T, x *TextIndex) []KV {
	t.Helper()
	var out []KV
	x.Scan(nil, nil, false, func(k string, v interface{}) bool {
		out = append(out, KV{Key: k, Value: v})
		return true
	})
	return out
}

func TestRoundTripLaw(t *testing.T) {
	x := textIdx(Config{Capacity: 8, Debug: true})
	x.Put("James", "semaj")
	v, ok := x.Get("James")
	require.True(t, ok)
	require.Equal(t, "semaj", v)
}

func TestOverwriteLaw(t *testing.T) {
	x := textIdx(Config{Capacity: 8, Debug: true})
	x.Put("James", "v1")
	old, existed, err := x.Put("James", "v2")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, "v1", old)
	v, _ := x.Get("James")
	require.Equal(t, "v2", v)
}

func TestDeleteLaw(t *testing.T) {
	x := textIdx(Config{Capacity: 8, Debug: true})
	x.Put("James", "semaj")
	deleted, err := x.Delete("James")
	require.NoError(t, err)
	require.True(t, deleted)
	_, ok := x.Get("James")
	require.False(t, ok)
	deleted, err = x.Delete("James")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestScenario1PointLookupAfterThreeInserts(t *testing.T) {
	x := textIdx(Config{Capacity: 3, Debug: true})
	x.Put("James", "semaj")
	x.Put("John", "nhoj")
	x.Put("Jason", "nosaj")

	_, ok := x.Get("Jame")
	require.False(t, ok)
	v, ok := x.Get("James")
	require.True(t, ok)
	require.Equal(t, "semaj", v)
	v, ok = x.Get("Jason")
	require.True(t, ok)
	require.Equal(t, "nosaj", v)
}

func TestScenario2SplitsAndScansInOrder(t *testing.T) {
	x := textIdx(Config{Capacity: 3, Debug: true})
	data := map[string]string{
		"James": "semaj", "Joseph": "hpesoj", "John": "nhoj", "Jacob": "bocaj", "Jason": "nosaj",
	}
	for _, key := range []string{"James", "Joseph", "John", "Jacob", "Jason"} {
		x.Put(key, data[key])
	}
	got := scanAll(t, x)
	want := []KV{
		{"Jacob", "bocaj"}, {"James", "semaj"}, {"Jason", "nosaj"}, {"John", "nhoj"}, {"Joseph", "hpesoj"},
	}
	require.Equal(t, want, got)
}

func TestScenario3ScanRangeOnTextKeys(t *testing.T) {
	x := textIdx(Config{Capacity: 3, Debug: true})
	values := map[string]int{"aaaaa": 5, "a": 1, "aaa": 3, "aaaa": 4, "aa": 2}
	for _, key := range []string{"aaaaa", "a", "aaa", "aaaa", "aa"} {
		x.Put(key, values[key])
	}
	start := "aa"
	kvs, err := x.ScanWithCount(&start, 4)
	require.NoError(t, err)
	require.Equal(t, []KV{{"aa", 2}, {"aaa", 3}, {"aaaa", 4}, {"aaaaa", 5}}, kvs)

	start2 := "ab"
	kvs2, err := x.ScanWithCount(&start2, 10)
	require.NoError(t, err)
	require.Empty(t, kvs2)
}

func TestScenario4ScanRangeOnIntegerKeys(t *testing.T) {
	x := NewInt32Index(Config{Capacity: 8, Debug: true})
	for _, kv := range [][2]int32{{10, 100}, {20, 200}, {30, 300}, {40, 400}, {50, 500}} {
		x.Put(kv[0], kv[1])
	}
	var got [][2]int32
	s, e := int32(11), int32(49)
	x.Scan(&s, &e, false, func(k int32, v interface{}) bool {
		got = append(got, [2]int32{k, v.(int32)})
		return true
	})
	require.Equal(t, [][2]int32{{20, 200}, {30, 300}, {40, 400}}, got)

	got = nil
	e2 := int32(50)
	x.Scan(&s, &e2, true, func(k int32, v interface{}) bool {
		got = append(got, [2]int32{k, v.(int32)})
		return true
	})
	require.Equal(t, [][2]int32{{20, 200}, {30, 300}, {40, 400}}, got)
}

func TestScenario5Int64MinKeySortsFirst(t *testing.T) {
	x := NewInt64Index(Config{Capacity: 8, Debug: true})
	x.Put(int64(-9223372036854775808), "foo")

	var got []string
	x.Scan(nil, nil, false, func(k int64, v interface{}) bool {
		got = append(got, v.(string))
		return true
	})
	require.Equal(t, []string{"foo"}, got)

	start := int64(-9223372036854775807)
	got = nil
	x.Scan(&start, nil, false, func(k int64, v interface{}) bool {
		got = append(got, v.(string))
		return true
	})
	require.Empty(t, got)
}

func TestEndExclusiveEqualBoundsIsEmpty(t *testing.T) {
	x := textIdx(Config{Capacity: 8, Debug: true})
	x.Put("m", 1)
	start, end := "m", "m"
	var got []string
	x.Scan(&start, &end, true, func(k string, v interface{}) bool {
		got = append(got, k)
		return true
	})
	require.Empty(t, got)
}

func TestPutRejectsNilUserKey(t *testing.T) {
	w := New(Config{Capacity: 8})
	_, _, err := w.Put(NewKey([]byte("k")), nil, "v")
	require.Equal(t, ErrNilKey, err)
}

func TestMutateDuringVisitIsRejected(t *testing.T) {
	w := New(Config{Capacity: 8})
	w.Put(NewKey([]byte("a")), "a", 1)
	w.Put(NewKey([]byte("b")), "b", 2)

	var putErr, delErr error
	w.Scan(nil, nil, false, func(r Record) bool {
		_, _, putErr = w.Put(NewKey([]byte("c")), "c", 3)
		_, delErr = w.Delete(NewKey([]byte("a")))
		return false
	})
	require.Equal(t, ErrMutateDuringVisit, putErr)
	require.Equal(t, ErrMutateDuringVisit, delErr)

	// The index must be usable again once the scan has returned.
	old, existed, err := w.Put(NewKey([]byte("c")), "c", 3)
	require.NoError(t, err)
	require.False(t, existed)
	require.Nil(t, old)
}

func TestValidatorIdempotence(t *testing.T) {
	x := textIdx(Config{Capacity: 4})
	for i := 0; i < 20; i++ {
		x.Put(fmt.Sprintf("key-%03d", i), i)
	}
	require.NoError(t, x.Validate())
	require.NoError(t, x.Validate())
}

func TestStressRandomInt64Keys(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test skipped in short mode")
	}
	const n = 5000
	rng := rand.New(rand.NewSource(1))
	fz := fuzz.New().RandSource(rand.NewSource(2)).NilChance(0)
	x := NewInt64Index(Config{Capacity: 8, Debug: false})
	oracle := make(map[int64]int)

	keys := rng.Perm(n)
	for _, k := range keys {
		key := int64(k) * 7919
		var value int
		fz.Fuzz(&value)
		x.Put(key, value)
		oracle[key] = value
	}
	require.NoError(t, x.Validate())
	for key, want := range oracle {
		got, ok := x.Get(key)
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	assertSortedScanMatchesOracle(t, x, oracle)

	// Delete half at random.
	i := 0
	for key := range oracle {
		if i%2 == 0 {
			deleted, err := x.Delete(key)
			require.NoError(t, err)
			require.True(t, deleted)
			delete(oracle, key)
		}
		i++
	}
	require.NoError(t, x.Validate())
	assertSortedScanMatchesOracle(t, x, oracle)

	// Delete down to ~5%.
	target := n / 20
	for key := range oracle {
		if len(oracle) <= target {
			break
		}
		deleted, err := x.Delete(key)
		require.NoError(t, err)
		require.True(t, deleted)
		delete(oracle, key)
	}
	require.NoError(t, x.Validate())
	assertSortedScanMatchesOracle(t, x, oracle)

	for key := range oracle {
		deleted, err := x.Delete(key)
		require.NoError(t, err)
		require.True(t, deleted)
	}
	oracle = map[int64]int{}
	require.NoError(t, x.Validate())
	assertSortedScanMatchesOracle(t, x, oracle)
}

func assertSortedScanMatchesOracle(t *testing.T, x *Int64Index, oracle map[int64]int) {
	t.Helper()
	wantKeys := make([]int64, 0, len(oracle))
	for k := range oracle {
		wantKeys = append(wantKeys, k)
	}
	sort.Slice(wantKeys, func(i, j int) bool { return wantKeys[i] < wantKeys[j] })

	var gotKeys []int64
	var gotVals []int
	x.Scan(nil, nil, false, func(k int64, v interface{}) bool {
		gotKeys = append(gotKeys, k)
		gotVals = append(gotVals, v.(int))
		return true
	})
	if diff := cmp.Diff(wantKeys, gotKeys); diff != "" {
		t.Fatalf("scan key order mismatch (-want +got):\n%s", diff)
	}
	for i, k := range gotKeys {
		require.Equal(t, oracle[k], gotVals[i])
	}
}
