package miner

import "github.com/ethereum/go-ethereum/common"

// Default configuration values, per spec §4.4.
const (
	DefaultParallelism = 3
	DefaultBlockTimeMS = 2000
	DefaultMaxParents  = 3
)

// Config controls the miner's round cadence and block shape.
type Config struct {
	Parallelism  int
	BlockTimeMS  int64
	MaxParents   int
	MinerAddress common.Address
}

// DefaultConfig returns a Config populated with spec §4.4's defaults and the
// given miner address.
func DefaultConfig(minerAddress common.Address) Config {
	return Config{
		Parallelism:  DefaultParallelism,
		BlockTimeMS:  DefaultBlockTimeMS,
		MaxParents:   DefaultMaxParents,
		MinerAddress: minerAddress,
	}
}

// Validate enforces spec §7's fail-fast configuration invariants.
func (c Config) Validate() error {
	if c.Parallelism < 1 {
		return errConfig("parallelism must be >= 1")
	}
	if c.MaxParents < 1 {
		return errConfig("maxParents must be >= 1")
	}
	if c.BlockTimeMS < 1 {
		return errConfig("blockTime must be >= 1ms")
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }

func errConfig(msg string) error { return configError(msg) }
