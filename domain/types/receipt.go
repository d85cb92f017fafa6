package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kaspanet/devdag/util/daghash"
)

// Status is the outcome of executing a transaction.
type Status int

// Status values.
const (
	StatusFailed Status = iota
	StatusSuccess
)

// Receipt is produced exactly once per accepted transaction inclusion and is
// immutable thereafter.
type Receipt struct {
	TransactionHash   daghash.Hash
	BlockHash         daghash.Hash
	From              common.Address
	To                *common.Address // nil on deployment
	GasUsed           uint64
	CumulativeGasUsed uint64
	Status            Status
	Logs              []*types.Log
	ContractAddress   *common.Address // populated iff deployment succeeded
}
