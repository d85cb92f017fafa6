// Package types holds the value objects shared across the DAG, mempool, EVM
// executor, and miner: transactions, receipts, and their content hashing.
package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/kaspanet/devdag/util/daghash"
)

// Transaction is a byte-for-byte value object describing a single call or
// deployment. Its Hash uniquely keys it within a Mempool instance.
type Transaction struct {
	Hash     daghash.Hash
	From     common.Address
	To       *common.Address // nil for a contract deployment
	Value    *uint256.Int
	Data     []byte
	Nonce    uint64
	GasLimit uint64
	GasPrice uint64
}

// IsDeployment reports whether the transaction has no recipient, meaning its
// Data should be interpreted as deployment bytecode.
func (tx *Transaction) IsDeployment() bool {
	return tx.To == nil
}

// ComputeHash derives tx's content hash from its fields, per
// daghash.Hash { from, to, value, data, nonce, gasLimit, gasPrice }. Two
// byte-identical transactions always hash identically; this is the
// deterministic alternative to a randomly-generated id (spec Open Question).
func ComputeHash(from common.Address, to *common.Address, value *uint256.Int, data []byte,
	nonce, gasLimit, gasPrice uint64) daghash.Hash {

	w := daghash.NewHashWriter()
	_, _ = w.Write(from[:])
	if to != nil {
		_, _ = w.Write(to[:])
	}
	if value != nil {
		valueBytes := value.Bytes32()
		_, _ = w.Write(valueBytes[:])
	}
	_, _ = w.Write(data)

	var numBuf [8]byte
	binary.BigEndian.PutUint64(numBuf[:], nonce)
	_, _ = w.Write(numBuf[:])
	binary.BigEndian.PutUint64(numBuf[:], gasLimit)
	_, _ = w.Write(numBuf[:])
	binary.BigEndian.PutUint64(numBuf[:], gasPrice)
	_, _ = w.Write(numBuf[:])

	return w.Finalize()
}

// NewTransaction builds a Transaction and computes its content hash.
func NewTransaction(from common.Address, to *common.Address, value *uint256.Int, data []byte,
	nonce, gasLimit, gasPrice uint64) *Transaction {

	if value == nil {
		value = uint256.NewInt(0)
	}
	return &Transaction{
		Hash:     ComputeHash(from, to, value, data, nonce, gasLimit, gasPrice),
		From:     from,
		To:       to,
		Value:    value,
		Data:     data,
		Nonce:    nonce,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
	}
}
