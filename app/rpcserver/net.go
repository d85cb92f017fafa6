package rpcserver

import "github.com/kaspanet/devdag/domain/evmexec"

// NetService implements the net_* namespace go-ethereum-compatible clients
// probe on connect.
type NetService struct{}

// Version returns the devnode's fixed network id, as a decimal string per
// the net_version wire convention (unlike most other fields, this one is
// not 0x-prefixed).
func (n *NetService) Version() string {
	return itoa(evmexec.ChainID)
}

// Listening always reports true: the devnode has no peer-to-peer layer to
// be down (see spec.md Non-goals), so there is nothing to fail to listen on.
func (n *NetService) Listening() bool {
	return true
}

// PeerCount is always zero: this devnode has no peers.
func (n *NetService) PeerCount() string {
	return "0x0"
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
