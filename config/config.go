// Package config parses the devnode's command-line flags into a validated
// Config. The process has no configuration file and no environment-variable
// layer by design (see spec.md Non-goals on configuration loading); it is a
// pure flags-to-struct parse, fail-fast on anything invalid.
//
// Grounded on the teacher's cmd/kaspaminer/config.go: a flat go-flags struct
// with defaults pre-populated before Parse, version flag short-circuits,
// and domain-specific validation run after parsing succeeds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/miner"
	"github.com/kaspanet/devdag/version"
)

const (
	// DefaultRPCPort is the JSON-RPC HTTP port, per spec §4.6.
	DefaultRPCPort = 8545
	// DefaultWSPort is the WebSocket port, per spec §4.6.
	DefaultWSPort = 8546
	// DefaultMinerAddress is used when no --miner-address flag is given.
	DefaultMinerAddress = "0x0000000000000000000000000000000000000001"
)

// Flags is the flat set of command-line options the devnode accepts.
type Flags struct {
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
	RPCPort      int    `long:"rpc-port" description:"JSON-RPC HTTP listen port"`
	WSPort       int    `long:"ws-port" description:"WebSocket listen port"`
	Parallelism  int    `long:"parallelism" description:"Number of blocks mined per round"`
	BlockTimeMS  int64  `long:"block-time-ms" description:"Milliseconds between mining rounds"`
	MaxParents   int    `long:"max-parents" description:"Maximum parents referenced by a mined block"`
	K            uint32 `long:"ghostdag-k" description:"GHOSTDAG anticone-size bound"`
	MinerAddress string `long:"miner-address" description:"Address credited as the miner of produced blocks"`
	MaxMempool   int    `long:"max-mempool" description:"Maximum number of pooled pending transactions"`
	LogFile      string `long:"log-file" description:"File to additionally write logs to, on top of stdout"`
}

// Config is the devnode's fully resolved, validated configuration.
type Config struct {
	RPCAddr     string
	WSAddr      string
	K           uint32
	MaxMempool  int
	MinerConfig miner.Config
	LogFile     string
}

func defaultFlags() *Flags {
	return &Flags{
		RPCPort:      DefaultRPCPort,
		WSPort:       DefaultWSPort,
		Parallelism:  miner.DefaultParallelism,
		BlockTimeMS:  miner.DefaultBlockTimeMS,
		MaxParents:   miner.DefaultMaxParents,
		K:            dag.DefaultK,
		MinerAddress: DefaultMinerAddress,
		MaxMempool:   mempool.DefaultMaxSize,
	}
}

// Parse parses args (typically os.Args[1:]) into a validated Config.
func Parse(args []string) (*Config, error) {
	f := defaultFlags()
	parser := flags.NewParser(f, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if f.ShowVersion {
		appName := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if !common.IsHexAddress(f.MinerAddress) {
		return nil, errors.Errorf("--miner-address %q is not a valid address", f.MinerAddress)
	}

	minerConfig := miner.Config{
		Parallelism:  f.Parallelism,
		BlockTimeMS:  f.BlockTimeMS,
		MaxParents:   f.MaxParents,
		MinerAddress: common.HexToAddress(f.MinerAddress),
	}
	if err := minerConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mining configuration")
	}

	if f.K == 0 {
		return nil, errors.New("--ghostdag-k must be at least 1")
	}
	if f.MaxMempool < 1 {
		return nil, errors.New("--max-mempool must be at least 1")
	}
	if f.RPCPort == f.WSPort {
		return nil, errors.New("--rpc-port and --ws-port must differ")
	}

	return &Config{
		RPCAddr:     fmt.Sprintf(":%d", f.RPCPort),
		WSAddr:      fmt.Sprintf(":%d", f.WSPort),
		K:           f.K,
		MaxMempool:  f.MaxMempool,
		MinerConfig: minerConfig,
		LogFile:     f.LogFile,
	}, nil
}
