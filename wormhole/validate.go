package wormhole

// Validate walks the leaf chain and the MTHT and reports the first
// violated structural invariant, or nil if none is found. It is run
// automatically after every mutation when Config.Debug is true, and can
// be called directly by tests at any other point: calling Validate
// between operations that did not mutate the index must never itself
// report an error.
func (w *Wormhole) Validate() error {
	if _, ok := w.meta.get(EmptyKey()); !ok {
		return fatalErrf("validate: empty-prefix root meta is missing")
	}

	leftmost := w.leftmostHandle()
	if err := w.validateChain(leftmost); err != nil {
		return err
	}
	if err := w.validateMTHT(leftmost); err != nil {
		return err
	}
	return nil
}

func (w *Wormhole) leftmostHandle() leafHandle {
	return w.resolveLeaf(EmptyKey())
}

// validateChain walks the chain left to right from leftmost, checking
// each leaf's own invariants, bidirectional consistency, and ordering
// against its right neighbor.
func (w *Wormhole) validateChain(leftmost leafHandle) error {
	h := leftmost
	if l := w.arena.get(h); l != nil && l.left != nilHandle {
		return fatalErrf("validate: leftmost leaf %s has a non-nil left pointer", l.anchor)
	}
	var prev *leaf
	var prevHandle leafHandle = nilHandle
	count := 0
	for h != nilHandle {
		l := w.arena.get(h)
		if l == nil {
			return fatalErrf("validate: chain references a freed leaf handle")
		}
		if err := l.validate(); err != nil {
			return err
		}
		if l.left != prevHandle {
			return fatalErrf("validate: leaf %s's left pointer does not match its predecessor", l.anchor)
		}
		if prev != nil {
			for i := 0; i < l.size; i++ {
				if l.records[i].Enc.Compare(l.anchor) < 0 {
					return fatalErrf("validate: record in leaf %s precedes its own anchor", l.anchor)
				}
			}
			for i := 0; i < prev.size; i++ {
				if prev.records[i].Enc.Compare(l.anchor) >= 0 {
					return fatalErrf("validate: record in leaf %s is >= right neighbor %s's anchor", prev.anchor, l.anchor)
				}
			}
		}
		prev = l
		prevHandle = h
		h = l.right
		count++
		if count > w.arena.count()+1 {
			return fatalErrf("validate: chain does not terminate (cycle suspected)")
		}
	}
	return nil
}

// validateMTHT performs a BFS from the empty-prefix root over every
// internal bitmap, confirming no meta is reached twice and that each
// internal meta's leftmost/rightmost leaves share its prefix, then
// confirms every live leaf's anchor names a reachable meta for it: a
// leaf-meta, or an internal-meta whose leftmost is that leaf (the case
// once a longer anchor extends it, as with the root's empty anchor after
// the first split). Metas in the table that the BFS never reaches are
// not reported.
func (w *Wormhole) validateMTHT(leftmost leafHandle) error {
	visited := make(map[string]bool)
	type qentry struct{ prefix Key }
	queue := []qentry{{EmptyKey()}}
	reachableLeaves := make(map[leafHandle]bool)

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		key := e.prefix.str()
		if visited[key] {
			return fatalErrf("validate: MTHT prefix %s reachable more than once", e.prefix)
		}
		visited[key] = true

		meta, ok := w.meta.get(e.prefix)
		if !ok {
			return fatalErrf("validate: MTHT prefix %s in reachability queue but missing from table", e.prefix)
		}
		if meta.isLeaf {
			reachableLeaves[meta.leaf] = true
			continue
		}
		lm := w.arena.get(meta.leftmost)
		rm := w.arena.get(meta.rightmost)
		if lm == nil || rm == nil {
			return fatalErrf("validate: internal meta at %s has a freed leftmost/rightmost handle", e.prefix)
		}
		if !lm.anchor.HasPrefix(e.prefix) {
			return fatalErrf("validate: internal meta at %s's leftmost leaf %s does not share the prefix", e.prefix, lm.anchor)
		}
		if !rm.anchor.HasPrefix(e.prefix) {
			return fatalErrf("validate: internal meta at %s's rightmost leaf %s does not share the prefix", e.prefix, rm.anchor)
		}
		if lm.anchor.Compare(e.prefix) == 0 {
			reachableLeaves[meta.leftmost] = true
		}
		for b := 0; b < 256; b++ {
			if meta.bitmap.test(byte(b)) {
				queue = append(queue, qentry{e.prefix.AppendByte(byte(b))})
			}
		}
	}

	h := leftmost
	for h != nilHandle {
		l := w.arena.get(h)
		leafMeta, ok := w.meta.get(l.anchor)
		if !ok || (leafMeta.isLeaf && leafMeta.leaf != h) || (!leafMeta.isLeaf && leafMeta.leftmost != h) {
			return fatalErrf("validate: leaf %s has no matching leaf-meta in the MTHT", l.anchor)
		}
		if !reachableLeaves[h] {
			return fatalErrf("validate: leaf %s's meta is not reachable from the empty-prefix root", l.anchor)
		}
		h = l.right
	}
	return nil
}
