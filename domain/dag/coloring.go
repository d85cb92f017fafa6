package dag

import "sort"

// recolor recomputes the blue/red classification and blue score of every
// block in the DAG from scratch, per spec §4.1.3. It must be called with
// d.mu held for writing.
//
// This is a deliberately simplified GHOSTDAG: no incremental merge-set
// maintenance, full O(blocks^2) anticone-size recomputation on every
// append. Grounded on kaspad's legacy from-scratch PHANTOM pass
// (blockdag/phantom.go), generalized to the simpler "anticone size against
// the current blue set" rule spec.md mandates instead of kaspad's
// chain-walk selected-parent algorithm.
func (d *DAG) recolor() {
	ordered := make([]*Block, 0, len(d.blocks))
	for _, b := range d.blocks {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].DAGDepth != ordered[j].DAGDepth {
			return ordered[i].DAGDepth < ordered[j].DAGDepth
		}
		return ordered[i].Hash.Cmp(&ordered[j].Hash) < 0
	})

	blueSet := newHashSet()
	for _, b := range ordered {
		b.Color = ColorRed
	}

	for _, b := range ordered {
		if b.IsGenesis() {
			b.Color = ColorBlue
			blueSet.add(b.Hash)
			continue
		}

		ancestorSet := d.ancestors[b.Hash]
		anticoneSize := 0
		for blue := range blueSet {
			if !ancestorSet.contains(blue) {
				anticoneSize++
			}
		}

		if anticoneSize <= int(d.k) {
			b.Color = ColorBlue
			blueSet.add(b.Hash)
		}
	}

	for _, b := range ordered {
		if b.Color != ColorBlue {
			b.BlueScore = 0
			continue
		}
		score := uint64(0)
		for ancestor := range d.ancestors[b.Hash] {
			if d.blocks[ancestor].Color == ColorBlue {
				score++
			}
		}
		b.BlueScore = score
	}
}
