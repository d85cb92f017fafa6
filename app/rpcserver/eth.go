package rpcserver

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/node"
	"github.com/kaspanet/devdag/domain/types"
)

// EthService implements the eth_* namespace. Its exported methods are
// registered by the server as eth_methodName, per go-ethereum rpc's
// reflection-based dispatch.
type EthService struct {
	node *node.Node
}

// ChainId returns the fixed devnode chain id.
func (e *EthService) ChainId() hexutil.Uint64 { // nolint: revive,stylecheck — method name fixes the RPC method name
	return hexutil.Uint64(evmexec.ChainID)
}

// BlockNumber returns the DAG's current maximum depth.
func (e *EthService) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(e.node.DAG.GetMaxDepth())
}

func (e *EthService) resolveDepth(tag gethrpc.BlockNumber) uint64 {
	switch tag {
	case gethrpc.EarliestBlockNumber:
		return 0
	case gethrpc.LatestBlockNumber, gethrpc.PendingBlockNumber:
		return e.node.DAG.GetMaxDepth()
	default:
		if tag < 0 {
			return e.node.DAG.GetMaxDepth()
		}
		return uint64(tag)
	}
}

// GetBalance returns addr's current balance. tag is accepted for wire
// compatibility and ignored: only the current state is kept.
func (e *EthService) GetBalance(addr common.Address, tag gethrpc.BlockNumber) (*hexutil.Big, error) {
	return (*hexutil.Big)(e.node.EVM.GetBalance(addr)), nil
}

// GetTransactionCount returns addr's current account nonce; tag is ignored.
func (e *EthService) GetTransactionCount(addr common.Address, tag gethrpc.BlockNumber) (hexutil.Uint64, error) {
	return hexutil.Uint64(e.node.EVM.GetNonce(addr)), nil
}

// GetCode returns addr's current deployed bytecode; tag is ignored.
func (e *EthService) GetCode(addr common.Address, tag gethrpc.BlockNumber) (hexutil.Bytes, error) {
	return e.node.EVM.GetCode(addr), nil
}

// GetStorageAt returns the current value at addr's storage slot key; tag is
// ignored.
func (e *EthService) GetStorageAt(addr common.Address, slot common.Hash, tag gethrpc.BlockNumber) (common.Hash, error) {
	return e.node.EVM.GetStorageAt(addr, slot), nil
}

// GetBlockByHash returns the block with hash, or nil if unknown.
func (e *EthService) GetBlockByHash(hash common.Hash, fullTxs bool) (*BlockView, error) {
	h, err := toDagHash(hash)
	if err != nil {
		return nil, err
	}
	b := e.node.DAG.GetBlock(h)
	if b == nil {
		return nil, nil
	}
	return newBlockView(b, fullTxs), nil
}

// GetBlockByNumber returns the canonical block at depth/tag, or nil if none
// exists yet.
func (e *EthService) GetBlockByNumber(tag gethrpc.BlockNumber, fullTxs bool) (*BlockView, error) {
	b := e.node.DAG.GetBlockAtDepth(e.resolveDepth(tag))
	if b == nil {
		return nil, nil
	}
	return newBlockView(b, fullTxs), nil
}

// TxSpec is the submitted shape for eth_sendTransaction/eth_call/eth_estimateGas.
type TxSpec struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to"`
	Value    *hexutil.Big    `json:"value"`
	Data     hexutil.Bytes   `json:"data"`
	Nonce    *hexutil.Uint64 `json:"nonce"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Uint64 `json:"gasPrice"`
}

func (s TxSpec) toTransaction(defaultNonce uint64) *types.Transaction {
	value := uint256.NewInt(0)
	if s.Value != nil {
		value, _ = uint256.FromBig((*big.Int)(s.Value))
	}
	nonce := defaultNonce
	if s.Nonce != nil {
		nonce = uint64(*s.Nonce)
	}
	gas := uint64(21000)
	if s.Gas != nil {
		gas = uint64(*s.Gas)
	}
	gasPrice := uint64(1_000_000_000)
	if s.GasPrice != nil {
		gasPrice = uint64(*s.GasPrice)
	}
	return types.NewTransaction(s.From, s.To, value, s.Data, nonce, gas, gasPrice)
}

// SendTransaction admits a transaction built from spec into the mempool and
// returns its hash.
func (e *EthService) SendTransaction(spec TxSpec) (common.Hash, error) {
	tx := spec.toTransaction(e.node.EVM.GetNonce(spec.From))
	switch e.node.AddTransaction(tx) {
	case mempool.Accepted:
		return common.BytesToHash(tx.Hash[:]), nil
	case mempool.Duplicate:
		return common.Hash{}, errors.New("transaction rejected: already pooled")
	default:
		return common.Hash{}, errors.New("transaction rejected: mempool full and gas price not above the pool minimum")
	}
}

// SendRawTransaction is an alias of SendTransaction for this devnode: there
// is no signature verification or RLP decoding to perform (see spec.md
// Non-goals), so the "raw" bytes are simply the same TxSpec as JSON.
func (e *EthService) SendRawTransaction(spec TxSpec) (common.Hash, error) {
	return e.SendTransaction(spec)
}

// Call executes spec read-only against the current state and returns the
// resulting bytes; tag is ignored.
func (e *EthService) Call(spec TxSpec, tag gethrpc.BlockNumber) (hexutil.Bytes, error) {
	if spec.To == nil {
		return nil, errors.New("eth_call requires a to address")
	}
	var value *uint256.Int
	if spec.Value != nil {
		value, _ = uint256.FromBig((*big.Int)(spec.Value))
	}
	ret, err := e.node.EVM.Call(*spec.To, spec.Data, &spec.From, value)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// EstimateGas runs spec against a generous gas cap and returns a
// conservative estimate.
func (e *EthService) EstimateGas(spec TxSpec) (hexutil.Uint64, error) {
	tx := spec.toTransaction(e.node.EVM.GetNonce(spec.From))
	gas, err := e.node.EVM.EstimateGas(tx)
	if err != nil {
		return 0, err
	}
	return hexutil.Uint64(gas), nil
}

// GetTransactionReceipt returns the receipt for txHash, or nil if none was
// recorded.
func (e *EthService) GetTransactionReceipt(txHash common.Hash) (*ReceiptView, error) {
	h, err := toDagHash(txHash)
	if err != nil {
		return nil, err
	}
	r := e.node.Miner.GetReceipt(h)
	if r == nil {
		return nil, nil
	}
	return newReceiptView(r), nil
}

// GasPrice returns the devnode's fixed gas price, per spec §6.
func (e *EthService) GasPrice() hexutil.Uint64 {
	return hexutil.Uint64(1_000_000_000)
}

// Accounts returns the single configured miner address as the devnode's
// only "managed" account.
func (e *EthService) Accounts() []common.Address {
	return []common.Address{e.node.Miner.Address()}
}
