package miner

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/infrastructure/logger"
	"github.com/kaspanet/devdag/util/daghash"
	"github.com/kaspanet/devdag/util/mstime"
)

// blockNonceSeq gives every produced block a distinct nonce, so blocks of the
// same round that share parents, state root and millisecond timestamp still
// hash differently.
var blockNonceSeq uint64

// produceBlock executes one block's worth of the round: drains up to
// txsPerBlock gas-price-ordered mempool transactions, runs each through the
// EVM, and constructs the block around the resulting state root. The block
// hash is computed last because it commits to stateRoot, which only exists
// after execution (spec §4.4 step 2e).
func (m *Miner) produceBlock(parents []daghash.Hash, minerAddress common.Address) *dag.Block {
	defer logger.LogAndMeasureExecutionTime(log, "produceBlock")()

	txs := m.mempool.Pending(txsPerBlock)

	m.evm.ResetCumulativeGas()

	tempBlockHash := daghash.Hash{}
	included := make([]*types.Transaction, 0, len(txs))
	for _, tx := range txs {
		receipt, _, _, err := m.evm.Execute(tx, tempBlockHash)
		if err != nil {
			// the executor itself faulted (not a reverted transaction); skip
			// this tx and continue the block per spec §4.4 step 2d.
			log.Warnf("skipping tx %s: executor error: %s", tx.Hash, err)
			continue
		}
		included = append(included, tx)
		m.receiptsMu.Lock()
		m.receipts[tx.Hash] = receipt
		m.receiptsMu.Unlock()
	}

	stateRoot := m.evm.GetStateRoot()
	timestamp := mstime.TimeToUnixMilli(mstime.Now())
	nonce := atomic.AddUint64(&blockNonceSeq, 1)

	block := dag.NewBlock(parents, timestamp, nonce, common.Hash{}, stateRoot, minerAddress, 0, included)

	m.receiptsMu.Lock()
	for _, tx := range included {
		if receipt, ok := m.receipts[tx.Hash]; ok {
			receipt.BlockHash = block.Hash
		}
	}
	m.receiptsMu.Unlock()

	return block
}

// removeIncludedTransactions removes block's transactions from the mempool,
// per spec §4.4's "remove on inclusion" open-question resolution.
func (m *Miner) removeIncludedTransactions(block *dag.Block) {
	for _, tx := range block.Transactions {
		m.mempool.Remove(tx.Hash)
	}
}

// GetReceipt returns the receipt for hash, or nil if none was recorded.
func (m *Miner) GetReceipt(hash daghash.Hash) *types.Receipt {
	m.receiptsMu.RLock()
	defer m.receiptsMu.RUnlock()
	return m.receipts[hash]
}

// GetAllReceipts returns every recorded receipt, in no particular order.
func (m *Miner) GetAllReceipts() []*types.Receipt {
	m.receiptsMu.RLock()
	defer m.receiptsMu.RUnlock()
	out := make([]*types.Receipt, 0, len(m.receipts))
	for _, r := range m.receipts {
		out = append(out, r)
	}
	return out
}
