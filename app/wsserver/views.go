package wsserver

import (
	"github.com/kaspanet/devdag/domain/dag"
)

// blockView is the wire shape of a block pushed or replied over the
// WebSocket channel. It is a reduced form of app/rpcserver's BlockView:
// hash, number, parents, timestamp, miner, color, depth, blueScore and a
// txCount, without difficulty, nonce, roots or the transaction list. A
// block with no parents (genesis) reports parentHash "0x0".
type blockView struct {
	Hash         string   `json:"hash"`
	Number       uint64   `json:"number"`
	ParentHash   string   `json:"parentHash"`
	ParentHashes []string `json:"parentHashes"`
	Timestamp    int64    `json:"timestamp"`
	Miner        string   `json:"miner"`
	Color        string   `json:"color"`
	DAGDepth     uint64   `json:"dagDepth"`
	BlueScore    uint64   `json:"blueScore"`
	TxCount      int      `json:"txCount"`
}

func newBlockView(b *dag.Block) blockView {
	parentHash := "0x0"
	parentHashes := make([]string, len(b.ParentHashes))
	for i, p := range b.ParentHashes {
		parentHashes[i] = p.String()
		if i == 0 {
			parentHash = p.String()
		}
	}
	return blockView{
		Hash:         b.Hash.String(),
		Number:       b.DAGDepth,
		ParentHash:   parentHash,
		ParentHashes: parentHashes,
		Timestamp:    b.Timestamp,
		Miner:        b.Miner.Hex(),
		Color:        b.Color.String(),
		DAGDepth:     b.DAGDepth,
		BlueScore:    b.BlueScore,
		TxCount:      len(b.Transactions),
	}
}

type statsView struct {
	BlockCount int    `json:"blockCount"`
	TipCount   int    `json:"tipCount"`
	BlueCount  int    `json:"blueCount"`
	RedCount   int    `json:"redCount"`
	MaxDepth   uint64 `json:"maxDepth"`
}

func newStatsView(s dag.Stats) statsView {
	return statsView{
		BlockCount: s.BlockCount,
		TipCount:   s.TipCount,
		BlueCount:  s.BlueCount,
		RedCount:   s.RedCount,
		MaxDepth:   s.MaxDepth,
	}
}
