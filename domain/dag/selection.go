package dag

// GetBlockAtDepth returns the canonical representative block at depth: the
// bluest block among those sharing that depth (highest BlueScore, ties
// broken by lexicographically smallest hash for determinism), or nil if no
// block exists at that depth.
//
// A BlockDAG has no single chain, so "the block at depth N" is ambiguous by
// nature; this mirrors GHOSTDAG's own notion of a "selected parent" — the
// bluest candidate stands in for the depth the way a selected parent stands
// in for its blue-score "slot" in kaspad's chain-selection logic
// (blockdag/virtualblock.go's selected-tip comparison, generalized from
// whole-DAG tip selection to per-depth selection).
func (d *DAG) GetBlockAtDepth(depth uint64) *Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.blockAtDepthLocked(depth)
}

func (d *DAG) blockAtDepthLocked(depth uint64) *Block {
	var best *Block
	for _, b := range d.blocks {
		if b.DAGDepth != depth {
			continue
		}
		if best == nil || isBluer(b, best) {
			best = b
		}
	}
	return best
}

// GetLatestBlock returns the canonical representative block at the DAG's
// current maximum depth.
func (d *DAG) GetLatestBlock() *Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	maxDepth := uint64(0)
	for _, b := range d.blocks {
		if b.DAGDepth > maxDepth {
			maxDepth = b.DAGDepth
		}
	}
	return d.blockAtDepthLocked(maxDepth)
}

func isBluer(a, b *Block) bool {
	if a.Color == ColorBlue && b.Color != ColorBlue {
		return true
	}
	if a.Color != ColorBlue && b.Color == ColorBlue {
		return false
	}
	if a.BlueScore != b.BlueScore {
		return a.BlueScore > b.BlueScore
	}
	return a.Hash.Cmp(&b.Hash) < 0
}
