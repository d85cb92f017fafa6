package miner

import (
	"github.com/kaspanet/devdag/util/daghash"
	"github.com/kaspanet/devdag/util/math"
)

// selectParents implements spec §4.4.1. Given the round's snapshot tips T
// and block index i, it returns the parent set for the i-th block of the
// round: a single tip if only one exists, otherwise a deduplicated,
// rotation-offset window of up to maxParents tips that differs across
// block indices so a round fans out instead of chaining linearly.
func selectParents(tips []daghash.Hash, i, maxParents int) []daghash.Hash {
	if len(tips) == 0 {
		panic("selectParents: no tips available, genesis must always be present")
	}
	if len(tips) == 1 {
		return []daghash.Hash{tips[0]}
	}

	n := math.MinInt(maxParents, len(tips))
	start := i % len(tips)

	seen := make(map[daghash.Hash]struct{}, n)
	parents := make([]daghash.Hash, 0, n)
	for j := 0; j < n; j++ {
		tip := tips[(start+j)%len(tips)]
		if _, dup := seen[tip]; dup {
			continue
		}
		seen[tip] = struct{}{}
		parents = append(parents, tip)
	}
	return parents
}
