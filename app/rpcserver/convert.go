package rpcserver

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/util/daghash"
)

func toDagHash(h common.Hash) (daghash.Hash, error) {
	var out daghash.Hash
	if err := out.SetBytes(h[:]); err != nil {
		return daghash.Hash{}, err
	}
	return out, nil
}

func toCommonHash(h daghash.Hash) common.Hash {
	return common.BytesToHash(h.CloneBytes())
}
