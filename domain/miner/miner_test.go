package miner

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/util/daghash"
)

func newTestMiner(t *testing.T, parallelism, maxParents int) (*Miner, *dag.DAG, *mempool.Mempool) {
	t.Helper()
	d := dag.New(dag.DefaultK, 0)
	mp := mempool.New(mempool.DefaultMaxSize)
	evm, err := evmexec.NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	config := Config{
		Parallelism:  parallelism,
		BlockTimeMS:  DefaultBlockTimeMS,
		MaxParents:   maxParents,
		MinerAddress: common.HexToAddress("0xFEED000000000000000000000000000000FEED"),
	}
	m, err := New(d, mp, evm, config, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, d, mp
}

// TestParallelFanOutRound replays spec §8's parallel fan-out scenario across
// two rounds.
func TestParallelFanOutRound(t *testing.T) {
	m, d, _ := newTestMiner(t, 3, 3)

	m.RunRound()
	if got := d.GetBlockCount(); got != 4 {
		t.Fatalf("round 1: expected 4 total blocks, got %d", got)
	}
	if got := d.GetMaxDepth(); got != 1 {
		t.Fatalf("round 1: expected max depth 1, got %d", got)
	}
	if got := len(d.GetTips()); got != 3 {
		t.Fatalf("round 1: expected 3 tips, got %d", got)
	}
	genesis := d.GetGenesisHash()
	for _, b := range d.GetAllBlocks() {
		if b.Hash == genesis {
			continue
		}
		if len(b.ParentHashes) != 1 || b.ParentHashes[0] != genesis {
			t.Fatalf("round 1: block %s expected single parent genesis, got %v", b.Hash, b.ParentHashes)
		}
	}

	m.RunRound()
	if got := d.GetBlockCount(); got != 7 {
		t.Fatalf("round 2: expected 7 total blocks, got %d", got)
	}
	if got := d.GetMaxDepth(); got != 2 {
		t.Fatalf("round 2: expected max depth 2, got %d", got)
	}
}

// TestRoundFansOutNotChain asserts the central round invariant: all
// parallelism blocks within a round reference the tips observed at round
// start, never each other.
func TestRoundFansOutNotChain(t *testing.T) {
	m, d, _ := newTestMiner(t, 4, 4)
	genesis := d.GetGenesisHash()

	m.RunRound()

	for _, b := range d.GetAllBlocks() {
		if b.Hash == genesis {
			continue
		}
		for _, p := range b.ParentHashes {
			if p != genesis {
				t.Fatalf("block %s referenced a same-round sibling %s instead of the round-start snapshot", b.Hash, p)
			}
		}
	}
}

func TestRoundIncludesAndRemovesMempoolTransactions(t *testing.T) {
	m, _, mp := newTestMiner(t, 1, 1)

	from := common.HexToAddress("0x1000000000000000000000000000000000000001")
	to := common.HexToAddress("0x2000000000000000000000000000000000000002")
	oneThousandEth := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1_000_000_000_000_000_000))
	m.evm.SetBalance(from, oneThousandEth)

	tx := types.NewTransaction(from, &to, uint256.NewInt(1), nil, 0, 21000, 1)
	if result := mp.Add(tx); result != mempool.Accepted {
		t.Fatalf("Add: got %v, want Accepted", result)
	}

	m.RunRound()

	if mp.Get(tx.Hash) != nil {
		t.Fatal("expected included tx to be removed from the mempool")
	}
	if receipt := m.GetReceipt(tx.Hash); receipt == nil {
		t.Fatal("expected a receipt to be recorded for the included tx")
	} else if receipt.Status != types.StatusSuccess {
		t.Fatalf("expected status success, got %v", receipt.Status)
	}
}

func TestLifecycleIdempotence(t *testing.T) {
	m, _, _ := newTestMiner(t, 1, 1)

	m.Start()
	if !m.IsRunning() {
		t.Fatal("expected miner to be running after Start")
	}
	m.Start() // no-op, must not panic or double-schedule

	m.Stop()
	if m.IsRunning() {
		t.Fatal("expected miner to be stopped after Stop")
	}
	m.Stop() // no-op
}

func TestSelectParentsSingleTip(t *testing.T) {
	tip := daghash.Hash{0x01}
	parents := selectParents([]daghash.Hash{tip}, 0, 3)
	if len(parents) != 1 || parents[0] != tip {
		t.Fatalf("expected single tip returned verbatim, got %v", parents)
	}
}

func TestSelectParentsRotationDiffersAcrossIndex(t *testing.T) {
	tips := []daghash.Hash{{0x01}, {0x02}, {0x03}}
	p0 := selectParents(tips, 0, 2)
	p1 := selectParents(tips, 1, 2)
	if len(p0) != 2 || len(p1) != 2 {
		t.Fatalf("expected 2 parents each, got %d and %d", len(p0), len(p1))
	}
	if p0[0] == p1[0] && p0[1] == p1[1] {
		t.Fatal("expected rotation offset to produce distinct parent windows across block indices")
	}
}
