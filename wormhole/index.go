package wormhole

import "github.com/probeum/wormhole/encoding"

// TextIndex, Int32Index and Int64Index are thin public API wrappers:
// each pairs a *Wormhole with the matching encoding.* adapter and
// exposes put/get/delete/scan in terms of the caller's own key domain
// instead of raw Key values.

// TextIndex is a Wormhole keyed by natural-byte-order strings.
type TextIndex struct{ w *Wormhole }

// NewTextIndex constructs a TextIndex.
func NewTextIndex(cfg Config) *TextIndex { return &TextIndex{w: New(cfg)} }

func (x *TextIndex) Put(key string, value interface{}) (interface{}, bool, error) {
	return x.w.Put(NewKey(encoding.Text(key)), key, value)
}

func (x *TextIndex) Get(key string) (interface{}, bool) {
	rec, ok := x.w.Get(NewKey(encoding.Text(key)))
	if !ok {
		return nil, false
	}
	return rec.Value, true
}

func (x *TextIndex) Delete(key string) (bool, error) {
	return x.w.Delete(NewKey(encoding.Text(key)))
}

// Scan visits every (key, value) pair with start <= key <= end (or
// start <= key < end if endExclusive); a nil bound is unbounded on that
// side. visit may return false to stop early.
func (x *TextIndex) Scan(start, end *string, endExclusive bool, visit func(string, interface{}) bool) {
	x.w.Scan(textKeyPtr(start), textKeyPtr(end), endExclusive, func(r Record) bool {
		return visit(r.UserKey.(string), r.Value)
	})
}

func (x *TextIndex) ScanWithCount(start *string, count int) ([]KV, error) {
	recs, err := x.w.ScanWithCount(textKeyPtr(start), count)
	if err != nil {
		return nil, err
	}
	return toKV(recs), nil
}

func (x *TextIndex) Validate() error { return x.w.Validate() }

func textKeyPtr(s *string) *Key {
	if s == nil {
		return nil
	}
	k := NewKey(encoding.Text(*s))
	return &k
}

// Int32Index is a Wormhole keyed by signed 32-bit integers.
type Int32Index struct{ w *Wormhole }

func NewInt32Index(cfg Config) *Int32Index { return &Int32Index{w: New(cfg)} }

func (x *Int32Index) Put(key int32, value interface{}) (interface{}, bool, error) {
	return x.w.Put(NewKey(encoding.Int32(key)), key, value)
}

func (x *Int32Index) Get(key int32) (interface{}, bool) {
	rec, ok := x.w.Get(NewKey(encoding.Int32(key)))
	if !ok {
		return nil, false
	}
	return rec.Value, true
}

func (x *Int32Index) Delete(key int32) (bool, error) {
	return x.w.Delete(NewKey(encoding.Int32(key)))
}

func (x *Int32Index) Scan(start, end *int32, endExclusive bool, visit func(int32, interface{}) bool) {
	x.w.Scan(int32KeyPtr(start), int32KeyPtr(end), endExclusive, func(r Record) bool {
		return visit(r.UserKey.(int32), r.Value)
	})
}

func int32KeyPtr(v *int32) *Key {
	if v == nil {
		return nil
	}
	k := NewKey(encoding.Int32(*v))
	return &k
}

func (x *Int32Index) Validate() error { return x.w.Validate() }

// Int64Index is a Wormhole keyed by signed 64-bit integers.
type Int64Index struct{ w *Wormhole }

func NewInt64Index(cfg Config) *Int64Index { return &Int64Index{w: New(cfg)} }

func (x *Int64Index) Put(key int64, value interface{}) (interface{}, bool, error) {
	return x.w.Put(NewKey(encoding.Int64(key)), key, value)
}

func (x *Int64Index) Get(key int64) (interface{}, bool) {
	rec, ok := x.w.Get(NewKey(encoding.Int64(key)))
	if !ok {
		return nil, false
	}
	return rec.Value, true
}

func (x *Int64Index) Delete(key int64) (bool, error) {
	return x.w.Delete(NewKey(encoding.Int64(key)))
}

func (x *Int64Index) Scan(start, end *int64, endExclusive bool, visit func(int64, interface{}) bool) {
	x.w.Scan(int64KeyPtr(start), int64KeyPtr(end), endExclusive, func(r Record) bool {
		return visit(r.UserKey.(int64), r.Value)
	})
}

func int64KeyPtr(v *int64) *Key {
	if v == nil {
		return nil
	}
	k := NewKey(encoding.Int64(*v))
	return &k
}

func (x *Int64Index) Validate() error { return x.w.Validate() }

// KV is a (user key, value) pair returned by ScanWithCount.
type KV struct {
	Key   interface{}
	Value interface{}
}

func toKV(recs []Record) []KV {
	out := make([]KV, len(recs))
	for i, r := range recs {
		out[i] = KV{Key: r.UserKey, Value: r.Value}
	}
	return out
}
