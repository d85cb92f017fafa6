package dag

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/util/daghash"
)

var zeroAddress common.Address

// AddResult describes the outcome of AddBlock.
type AddResult int

// AddResult values.
const (
	Added AddResult = iota
	AlreadyPresent
	Rejected
)

// Stats summarizes the DAG's current shape, returned by GetStats.
type Stats struct {
	BlockCount int
	TipCount   int
	BlueCount  int
	RedCount   int
	MaxDepth   uint64
}

// DAG is a single-writer, many-reader block graph. Every mutation (AddBlock)
// is expected to be serialized by the caller (the node orchestrator holds
// the exclusive lock); DAG additionally guards its own maps with a mutex so
// that read-only queries never observe a half-built index.
type DAG struct {
	mu sync.RWMutex

	k uint32

	blocks      map[daghash.Hash]*Block
	children    map[daghash.Hash]hashSet
	tips        hashSet
	genesisHash daghash.Hash

	// ancestors caches the full past-cone hash set of each block, extended
	// incrementally on every AddBlock, so Ancestors is a lookup and
	// Descendants, Anticone and the coloring pass's anticone-size check are
	// set-membership tests. The coloring pass still visits every pair of
	// blocks, so it stays quadratic in the block count on each append.
	ancestors map[daghash.Hash]hashSet
}

// DefaultK is the default GHOSTDAG anticone-size bound.
const DefaultK uint32 = 18

// New creates a DAG containing only the genesis block. genesisTimestamp lets
// callers pin a reproducible genesis identity; k must be positive.
func New(k uint32, genesisTimestamp int64) *DAG {
	if k == 0 {
		panic("dag: k must be positive")
	}

	genesis := NewBlock(nil, genesisTimestamp, 0, zeroHash, zeroHash, zeroAddress, 0, nil)
	genesis.Color = ColorBlue
	genesis.DAGDepth = 0
	genesis.BlueScore = 0

	d := &DAG{
		k:           k,
		blocks:      map[daghash.Hash]*Block{genesis.Hash: genesis},
		children:    map[daghash.Hash]hashSet{genesis.Hash: newHashSet()},
		tips:        hashSet{genesis.Hash: struct{}{}},
		genesisHash: genesis.Hash,
		ancestors:   map[daghash.Hash]hashSet{genesis.Hash: newHashSet()},
	}
	return d
}

var zeroHash = common.Hash{}

// AddBlock validates and appends a block. It is idempotent for a hash
// already present in the DAG, and rejects a block whose parents are not all
// already resolvable. On acceptance it recomputes the coloring for the
// entire DAG (§4.1.3) before returning.
func (d *DAG) AddBlock(b *Block) AddResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.blocks[b.Hash]; exists {
		return AlreadyPresent
	}

	parentBlocks := make([]*Block, len(b.ParentHashes))
	for i, ph := range b.ParentHashes {
		parent, ok := d.blocks[ph]
		if !ok {
			return Rejected
		}
		parentBlocks[i] = parent
	}

	maxParentDepth := uint64(0)
	hasParent := false
	past := newHashSet()
	for _, parent := range parentBlocks {
		hasParent = true
		if parent.DAGDepth+1 > maxParentDepth {
			maxParentDepth = parent.DAGDepth + 1
		}
		past.add(parent.Hash)
		for h := range d.ancestors[parent.Hash] {
			past.add(h)
		}
	}
	if hasParent {
		b.DAGDepth = maxParentDepth
	} else {
		b.DAGDepth = 0
	}

	d.blocks[b.Hash] = b
	d.children[b.Hash] = newHashSet()
	d.ancestors[b.Hash] = past

	for _, parent := range parentBlocks {
		d.children[parent.Hash].add(b.Hash)
		delete(d.tips, parent.Hash)
	}
	d.tips.add(b.Hash)

	d.recolor()

	return Added
}

// GetBlock returns the block with hash h, or nil if unknown.
func (d *DAG) GetBlock(h daghash.Hash) *Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.blocks[h]
}

// GetAllBlocks returns every block currently in the DAG, in no particular
// order.
func (d *DAG) GetAllBlocks() []*Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Block, 0, len(d.blocks))
	for _, b := range d.blocks {
		out = append(out, b)
	}
	return out
}

// GetChildren returns the hashes of h's children, or nil if h is unknown.
func (d *DAG) GetChildren(h daghash.Hash) []daghash.Hash {
	d.mu.RLock()
	defer d.mu.RUnlock()
	children, ok := d.children[h]
	if !ok {
		return nil
	}
	return children.toSlice()
}

// GetTips returns the current tip hashes: blocks with no children.
func (d *DAG) GetTips() []daghash.Hash {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tips.toSlice()
}

// GetGenesisHash returns the DAG's fixed genesis hash.
func (d *DAG) GetGenesisHash() daghash.Hash {
	return d.genesisHash
}

// GetMaxDepth returns the maximum dagDepth over every block in the DAG.
func (d *DAG) GetMaxDepth() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	max := uint64(0)
	for _, b := range d.blocks {
		if b.DAGDepth > max {
			max = b.DAGDepth
		}
	}
	return max
}

// GetBlockCount returns the number of blocks in the DAG.
func (d *DAG) GetBlockCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.blocks)
}

// Ancestors returns the past cone of h, excluding h itself. Returns
// ErrUnknownBlock if h is not in the DAG.
func (d *DAG) Ancestors(h daghash.Hash) ([]daghash.Hash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set, ok := d.ancestors[h]
	if !ok {
		return nil, ErrUnknownBlock
	}
	return set.toSlice(), nil
}

// Descendants returns the future cone of h, excluding h itself. Returns
// ErrUnknownBlock if h is not in the DAG.
func (d *DAG) Descendants(h daghash.Hash) ([]daghash.Hash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.blocks[h]; !ok {
		return nil, ErrUnknownBlock
	}

	descendants := newHashSet()
	for candidate, ancestorSet := range d.ancestors {
		if candidate == h {
			continue
		}
		if ancestorSet.contains(h) {
			descendants.add(candidate)
		}
	}
	return descendants.toSlice(), nil
}

// Anticone returns all blocks that are neither ancestors nor descendants of
// h, and are not h itself. Returns ErrUnknownBlock if h is not in the DAG.
func (d *DAG) Anticone(h daghash.Hash) ([]daghash.Hash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ancestorSet, ok := d.ancestors[h]
	if !ok {
		return nil, ErrUnknownBlock
	}

	anticone := make([]daghash.Hash, 0, len(d.blocks))
	for candidate, candidateAncestors := range d.ancestors {
		if candidate == h {
			continue
		}
		if ancestorSet.contains(candidate) {
			continue // candidate is an ancestor of h
		}
		if candidateAncestors.contains(h) {
			continue // candidate is a descendant of h
		}
		anticone = append(anticone, candidate)
	}
	return anticone, nil
}

// IsBlue reports whether h is currently classified blue. False for an
// unknown hash.
func (d *DAG) IsBlue(h daghash.Hash) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.blocks[h]
	return ok && b.Color == ColorBlue
}

// GetBlueBlocks returns every block currently classified blue.
func (d *DAG) GetBlueBlocks() []*Block {
	return d.filterByColor(ColorBlue)
}

// GetRedBlocks returns every block currently classified red.
func (d *DAG) GetRedBlocks() []*Block {
	return d.filterByColor(ColorRed)
}

func (d *DAG) filterByColor(c Color) []*Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Block
	for _, b := range d.blocks {
		if b.Color == c {
			out = append(out, b)
		}
	}
	return out
}

// GetStats returns a snapshot summary of the DAG's shape.
func (d *DAG) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	stats := Stats{
		BlockCount: len(d.blocks),
		TipCount:   len(d.tips),
	}
	for _, b := range d.blocks {
		if b.DAGDepth > stats.MaxDepth {
			stats.MaxDepth = b.DAGDepth
		}
		switch b.Color {
		case ColorBlue:
			stats.BlueCount++
		case ColorRed:
			stats.RedCount++
		}
	}
	return stats
}
