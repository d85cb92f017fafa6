// Package rpcserver implements the JSON-RPC 2.0 HTTP boundary: the
// eth_*/dag_*/net_* namespaces, wire-shape views, and the plain /health
// endpoint.
//
// Grounded on go-ethereum's own rpc package — the namespace-struct
// reflection registration it provides (Server.RegisterName) is exactly the
// shape spec.md's method table needs, and it's already a dependency of the
// EVM layer, so the wire and execution layers share one dependency family.
package rpcserver

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/types"
)

// BlockView is the wire shape of a block, per spec §6.
type BlockView struct {
	Hash             common.Hash     `json:"hash"`
	Number           hexutil.Uint64  `json:"number"`
	ParentHash       common.Hash     `json:"parentHash"`
	ParentHashes     []common.Hash   `json:"parentHashes"`
	Timestamp        hexutil.Uint64  `json:"timestamp"`
	Miner            common.Address  `json:"miner"`
	Difficulty       hexutil.Uint64  `json:"difficulty"`
	Transactions     []interface{}   `json:"transactions"`
	TransactionsRoot common.Hash     `json:"transactionsRoot"`
	StateRoot        common.Hash     `json:"stateRoot"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	Color            string          `json:"color"`
	DAGDepth         hexutil.Uint64  `json:"dagDepth"`
	BlueScore        hexutil.Uint64  `json:"blueScore"`
}

// ReceiptView is the wire shape of a receipt, per spec §6.
type ReceiptView struct {
	TransactionHash   common.Hash     `json:"transactionHash"`
	BlockHash         common.Hash     `json:"blockHash"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	Status            hexutil.Uint64  `json:"status"`
	Logs              []interface{}   `json:"logs"`
	ContractAddress   *common.Address `json:"contractAddress"`
}

func newBlockView(b *dag.Block, fullTxs bool) *BlockView {
	parentHash := common.Hash{}
	if len(b.ParentHashes) > 0 {
		parentHash = common.BytesToHash(b.ParentHashes[0][:])
	}
	parentHashes := make([]common.Hash, len(b.ParentHashes))
	for i, p := range b.ParentHashes {
		parentHashes[i] = common.BytesToHash(p[:])
	}

	txs := make([]interface{}, len(b.Transactions))
	for i, tx := range b.Transactions {
		if fullTxs {
			txs[i] = newTransactionView(tx)
		} else {
			txs[i] = common.BytesToHash(tx.Hash[:])
		}
	}

	return &BlockView{
		Hash:             common.BytesToHash(b.Hash[:]),
		Number:           hexutil.Uint64(b.DAGDepth),
		ParentHash:       parentHash,
		ParentHashes:     parentHashes,
		Timestamp:        hexutil.Uint64(b.Timestamp),
		Miner:            b.Miner,
		Difficulty:       hexutil.Uint64(b.Difficulty),
		Transactions:     txs,
		TransactionsRoot: b.TransactionsRoot,
		StateRoot:        b.StateRoot,
		Nonce:            hexutil.Uint64(b.Nonce),
		Color:            b.Color.String(),
		DAGDepth:         hexutil.Uint64(b.DAGDepth),
		BlueScore:        hexutil.Uint64(b.BlueScore),
	}
}

// transactionView is the wire shape of a transaction embedded in a
// full-transactions BlockView.
type transactionView struct {
	Hash     common.Hash    `json:"hash"`
	From     common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Value    string         `json:"value"`
	Input    hexutil.Bytes  `json:"input"`
	Nonce    hexutil.Uint64 `json:"nonce"`
	Gas      hexutil.Uint64 `json:"gas"`
	GasPrice hexutil.Uint64 `json:"gasPrice"`
}

func newTransactionView(tx *types.Transaction) *transactionView {
	value := "0x0"
	if tx.Value != nil {
		value = hexutil.EncodeBig(tx.Value.ToBig())
	}
	return &transactionView{
		Hash:     common.BytesToHash(tx.Hash[:]),
		From:     tx.From,
		To:       tx.To,
		Value:    value,
		Input:    tx.Data,
		Nonce:    hexutil.Uint64(tx.Nonce),
		Gas:      hexutil.Uint64(tx.GasLimit),
		GasPrice: hexutil.Uint64(tx.GasPrice),
	}
}

func newReceiptView(r *types.Receipt) *ReceiptView {
	status := hexutil.Uint64(0)
	if r.Status == types.StatusSuccess {
		status = 1
	}
	logs := r.Logs
	view := make([]interface{}, len(logs))
	for i, l := range logs {
		view[i] = l
	}
	return &ReceiptView{
		TransactionHash:   common.BytesToHash(r.TransactionHash[:]),
		BlockHash:         common.BytesToHash(r.BlockHash[:]),
		From:              r.From,
		To:                r.To,
		GasUsed:           hexutil.Uint64(r.GasUsed),
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		Status:            status,
		Logs:              view,
		ContractAddress:   r.ContractAddress,
	}
}
