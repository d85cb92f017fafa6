// Package dag implements the BlockDAG graph: block storage, tip tracking,
// ancestor/descendant/anticone queries, and a simplified GHOSTDAG blue/red
// coloring pass.
package dag

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/util/daghash"
)

// Color classifies a block as seen by the GHOSTDAG coloring pass.
type Color int

// Color values.
const (
	ColorPending Color = iota
	ColorBlue
	ColorRed
)

// String renders the color the way it appears on the wire.
func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	default:
		return "pending"
	}
}

// Block is an immutable DAG node, except for Color and BlueScore, which the
// coloring pass derives after every append.
type Block struct {
	Hash             daghash.Hash
	ParentHashes     []daghash.Hash
	Timestamp        int64 // milliseconds
	Miner            common.Address
	Difficulty       uint64
	StateRoot        common.Hash
	TransactionsRoot common.Hash
	Nonce            uint64
	Transactions     []*types.Transaction

	Color     Color
	DAGDepth  uint64
	BlueScore uint64
}

// IsGenesis reports whether b has no parents.
func (b *Block) IsGenesis() bool {
	return len(b.ParentHashes) == 0
}

// ComputeHash derives a block's content hash from the fields that define its
// identity: parentHashes, timestamp, nonce, transactionsRoot, miner,
// stateRoot. It deliberately excludes Color/DAGDepth/BlueScore, which are
// derived quantities, not identity.
func ComputeHash(parentHashes []daghash.Hash, timestamp int64, nonce uint64,
	transactionsRoot, stateRoot common.Hash, miner common.Address) daghash.Hash {

	w := daghash.NewHashWriter()
	for _, p := range parentHashes {
		_, _ = w.Write(p[:])
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(timestamp))
	_, _ = w.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], nonce)
	_, _ = w.Write(buf[:])

	_, _ = w.Write(transactionsRoot[:])
	_, _ = w.Write(miner[:])
	_, _ = w.Write(stateRoot[:])

	return w.Finalize()
}

// NewBlock builds a Block and computes its hash. Callers that build the
// genesis block pass a nil/empty parentHashes slice.
func NewBlock(parentHashes []daghash.Hash, timestamp int64, nonce uint64,
	transactionsRoot, stateRoot common.Hash, miner common.Address,
	difficulty uint64, txs []*types.Transaction) *Block {

	return &Block{
		Hash:             ComputeHash(parentHashes, timestamp, nonce, transactionsRoot, stateRoot, miner),
		ParentHashes:     parentHashes,
		Timestamp:        timestamp,
		Miner:            miner,
		Difficulty:       difficulty,
		StateRoot:        stateRoot,
		TransactionsRoot: transactionsRoot,
		Nonce:            nonce,
		Transactions:     txs,
		Color:            ColorPending,
	}
}
