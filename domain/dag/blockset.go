package dag

import "github.com/kaspanet/devdag/util/daghash"

// hashSet implements a basic unsorted set of hashes, grounded on kaspad's
// blockSet idiom (a bare map keyed by hash).
type hashSet map[daghash.Hash]struct{}

func newHashSet() hashSet {
	return make(hashSet)
}

func (s hashSet) add(h daghash.Hash) {
	s[h] = struct{}{}
}

func (s hashSet) remove(h daghash.Hash) {
	delete(s, h)
}

func (s hashSet) contains(h daghash.Hash) bool {
	_, ok := s[h]
	return ok
}

func (s hashSet) toSlice() []daghash.Hash {
	slice := make([]daghash.Hash, 0, len(s))
	for h := range s {
		slice = append(slice, h)
	}
	return slice
}

func (s hashSet) clone() hashSet {
	clone := newHashSet()
	for h := range s {
		clone.add(h)
	}
	return clone
}
