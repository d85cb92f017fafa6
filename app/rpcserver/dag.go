package rpcserver

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/kaspanet/devdag/domain/node"
)

// DagService implements the dag_* namespace: DAG-native queries that have
// no Ethereum-compatible equivalent.
type DagService struct {
	node *node.Node
}

// DAGInfoView summarizes the DAG's shape for dag_getDAGInfo.
type DAGInfoView struct {
	BlockCount hexutil.Uint64 `json:"blockCount"`
	TipCount   hexutil.Uint64 `json:"tipCount"`
	MaxDepth   hexutil.Uint64 `json:"maxDepth"`
	GenesisHash common.Hash   `json:"genesisHash"`
}

// GetDAGInfo returns a summary of the DAG's current shape.
func (d *DagService) GetDAGInfo() DAGInfoView {
	stats := d.node.DAG.GetStats()
	return DAGInfoView{
		BlockCount:  hexutil.Uint64(stats.BlockCount),
		TipCount:    hexutil.Uint64(stats.TipCount),
		MaxDepth:    hexutil.Uint64(stats.MaxDepth),
		GenesisHash: func() common.Hash {
			genesisHash := d.node.DAG.GetGenesisHash()
			return common.BytesToHash(genesisHash.CloneBytes())
		}(),
	}
}

// StatsView is the wire shape of dag.Stats.
type StatsView struct {
	BlockCount hexutil.Uint64 `json:"blockCount"`
	TipCount   hexutil.Uint64 `json:"tipCount"`
	BlueCount  hexutil.Uint64 `json:"blueCount"`
	RedCount   hexutil.Uint64 `json:"redCount"`
	MaxDepth   hexutil.Uint64 `json:"maxDepth"`
}

// GetStats returns the DAG's block/tip/color/depth counters.
func (d *DagService) GetStats() StatsView {
	s := d.node.DAG.GetStats()
	return StatsView{
		BlockCount: hexutil.Uint64(s.BlockCount),
		TipCount:   hexutil.Uint64(s.TipCount),
		BlueCount:  hexutil.Uint64(s.BlueCount),
		RedCount:   hexutil.Uint64(s.RedCount),
		MaxDepth:   hexutil.Uint64(s.MaxDepth),
	}
}

// GetBlockByHash returns the block with hash, fully populated with
// transactions, or nil if unknown.
func (d *DagService) GetBlockByHash(hash common.Hash) (*BlockView, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return nil, err
	}
	b := d.node.DAG.GetBlock(h)
	if b == nil {
		return nil, nil
	}
	return newBlockView(b, true), nil
}

// SendTransaction is the DAG-native alias of eth_sendTransaction.
func (d *DagService) SendTransaction(spec TxSpec) (common.Hash, error) {
	eth := &EthService{node: d.node}
	return eth.SendTransaction(spec)
}

// GetBlueSet returns the hashes of every blue block.
func (d *DagService) GetBlueSet() []common.Hash {
	blocks := d.node.DAG.GetBlueBlocks()
	out := make([]common.Hash, len(blocks))
	for i, b := range blocks {
		out[i] = common.BytesToHash(b.Hash.CloneBytes())
	}
	return out
}

// GetRedSet returns the hashes of every red block.
func (d *DagService) GetRedSet() []common.Hash {
	blocks := d.node.DAG.GetRedBlocks()
	out := make([]common.Hash, len(blocks))
	for i, b := range blocks {
		out[i] = common.BytesToHash(b.Hash.CloneBytes())
	}
	return out
}

// GetTips returns the DAG's current tip hashes.
func (d *DagService) GetTips() []common.Hash {
	tips := d.node.DAG.GetTips()
	out := make([]common.Hash, len(tips))
	for i, h := range tips {
		out[i] = common.BytesToHash(h.CloneBytes())
	}
	return out
}

// GetBlockParents returns the parent hashes of the block with hash.
func (d *DagService) GetBlockParents(hash common.Hash) ([]common.Hash, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return nil, err
	}
	b := d.node.DAG.GetBlock(h)
	if b == nil {
		return nil, errors.New("unknown block")
	}
	out := make([]common.Hash, len(b.ParentHashes))
	for i, p := range b.ParentHashes {
		out[i] = common.BytesToHash(p.CloneBytes())
	}
	return out, nil
}

// GetBlockChildren returns the hashes of blocks that name hash as a parent.
func (d *DagService) GetBlockChildren(hash common.Hash) ([]common.Hash, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return nil, err
	}
	children := d.node.DAG.GetChildren(h)
	out := make([]common.Hash, len(children))
	for i, c := range children {
		out[i] = common.BytesToHash(c.CloneBytes())
	}
	return out, nil
}

// GetAnticone returns the anticone of the block with hash.
func (d *DagService) GetAnticone(hash common.Hash) ([]common.Hash, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return nil, err
	}
	anticone, err := d.node.DAG.Anticone(h)
	if err != nil {
		return nil, err
	}
	out := make([]common.Hash, len(anticone))
	for i, a := range anticone {
		out[i] = common.BytesToHash(a.CloneBytes())
	}
	return out, nil
}

// GetBlueScore returns the blue score of the block with hash.
func (d *DagService) GetBlueScore(hash common.Hash) (hexutil.Uint64, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return 0, err
	}
	b := d.node.DAG.GetBlock(h)
	if b == nil {
		return 0, errors.New("unknown block")
	}
	return hexutil.Uint64(b.BlueScore), nil
}

// MineBlocks mines n blocks synchronously and returns their hashes, in
// commit order.
func (d *DagService) MineBlocks(n hexutil.Uint64) []common.Hash {
	blocks := d.node.MineBlocks(int(n))
	out := make([]common.Hash, len(blocks))
	for i, b := range blocks {
		out[i] = common.BytesToHash(b.Hash.CloneBytes())
	}
	return out
}
