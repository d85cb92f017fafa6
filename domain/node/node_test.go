package node

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/miner"
	"github.com/kaspanet/devdag/domain/types"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	d := dag.New(dag.DefaultK, 0)
	mp := mempool.New(mempool.DefaultMaxSize)
	evm, err := evmexec.NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	config := miner.Config{
		Parallelism:  2,
		BlockTimeMS:  50,
		MaxParents:   2,
		MinerAddress: common.HexToAddress("0xFEED000000000000000000000000000000FEED"),
	}
	n, err := New(d, mp, evm, config)
	if err != nil {
		t.Fatalf("node.New: %v", err)
	}
	return n
}

func TestMineBlocksWaitsForExactCount(t *testing.T) {
	n := newTestNode(t)

	done := make(chan []*dag.Block, 1)
	go func() { done <- n.MineBlocks(2) }()

	select {
	case blocks := <-done:
		if len(blocks) != 2 {
			t.Fatalf("expected 2 mined blocks, got %d", len(blocks))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for MineBlocks")
	}

	if n.Miner.IsRunning() {
		t.Fatal("expected miner to be stopped again after MineBlocks, since it was idle beforehand")
	}
}

func TestAddTransactionEmitsEventOnlyWhenAccepted(t *testing.T) {
	n := newTestNode(t)
	ch, unsubscribe := n.Subscribe()
	defer unsubscribe()

	from := common.HexToAddress("0x1000000000000000000000000000000000000001")
	to := common.HexToAddress("0x2000000000000000000000000000000000000002")
	tx := types.NewTransaction(from, &to, nil, nil, 0, 21000, 1)

	if result := n.AddTransaction(tx); result != mempool.Accepted {
		t.Fatalf("AddTransaction: got %v, want Accepted", result)
	}

	select {
	case ev := <-ch:
		if ev.Type != EventTransactionAdded || ev.Transaction.Hash != tx.Hash {
			t.Fatalf("expected transaction-added event for %s, got %+v", tx.Hash, ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transaction-added event")
	}

	if result := n.AddTransaction(tx); result != mempool.Duplicate {
		t.Fatalf("AddTransaction (duplicate): got %v, want Duplicate", result)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected no event for a duplicate tx, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStartStopPublishesLifecycleEvents(t *testing.T) {
	n := newTestNode(t)
	ch, unsubscribe := n.Subscribe()
	defer unsubscribe()

	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	wantStarted := map[EventType]bool{EventStarted: false, EventMiningStarted: false}
	collectUntil(t, ch, wantStarted)

	if err := n.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	wantStopped := map[EventType]bool{EventMiningStopped: false, EventStopped: false}
	collectUntil(t, ch, wantStopped)
}

func collectUntil(t *testing.T, ch <-chan Event, want map[EventType]bool) {
	t.Helper()
	remaining := len(want)
	for remaining > 0 {
		select {
		case ev := <-ch:
			if seen, ok := want[ev.Type]; ok && !seen {
				want[ev.Type] = true
				remaining--
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events %+v", want)
		}
	}
}
