package node

import (
	"sync"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/miner"
	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/infrastructure/logger"
)

var log, _ = logger.Get("NODE")

// Server is anything the orchestrator sequences around the miner's
// lifecycle — the RPC and WebSocket boundaries implement this without the
// domain layer importing either.
type Server interface {
	Start() error
	Stop() error
}

// Node owns the DAG, mempool, EVM executor, and miner, and sequences their
// lifecycle together with whatever Servers it's constructed with.
type Node struct {
	DAG     *dag.DAG
	Mempool *mempool.Mempool
	EVM     *evmexec.Executor
	Miner   *miner.Miner

	servers []Server

	hub *eventHub

	mu      sync.Mutex
	started bool
}

// New constructs a Node and the miner that drives it, wiring the miner's
// onBlockMined callback to publish EventBlockMined. servers are started in
// order on Start and stopped in reverse order on Stop, surrounding the
// miner: Start starts servers then the miner; Stop stops the miner then the
// servers, per spec §4.5.
func New(d *dag.DAG, mp *mempool.Mempool, evm *evmexec.Executor, minerConfig miner.Config, servers ...Server) (*Node, error) {
	n := &Node{
		DAG:     d,
		Mempool: mp,
		EVM:     evm,
		servers: servers,
		hub:     newEventHub(),
	}
	m, err := miner.New(d, mp, evm, minerConfig, n.onMinerBlockMined)
	if err != nil {
		return nil, err
	}
	n.Miner = m
	return n, nil
}

// AddServer registers an additional Server to be sequenced around the
// miner's lifecycle. Servers are typically built after the Node itself,
// since they hold a reference to it (see app/rpcserver.New, app/wsserver.New);
// AddServer lets main wire them in before the first Start. Adding a server
// after Start has no effect on the current run.
func (n *Node) AddServer(s Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers = append(n.servers, s)
}

// Subscribe registers a new event listener. The returned function
// unsubscribes it.
func (n *Node) Subscribe() (<-chan Event, func()) {
	return n.hub.Subscribe()
}

// Start starts every server in order, then the miner, then publishes
// EventStarted and EventMiningStarted.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return nil
	}
	for _, s := range n.servers {
		if err := s.Start(); err != nil {
			return err
		}
	}
	n.Miner.Start()
	n.started = true
	n.hub.Publish(Event{Type: EventStarted})
	n.hub.Publish(Event{Type: EventMiningStarted})
	return nil
}

// Stop stops the miner and publishes EventMiningStopped, then stops every
// server in reverse order, then publishes EventStopped.
func (n *Node) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return nil
	}
	n.Miner.Stop()
	n.hub.Publish(Event{Type: EventMiningStopped})
	for i := len(n.servers) - 1; i >= 0; i-- {
		if err := n.servers[i].Stop(); err != nil {
			log.Warnf("error stopping server: %s", err)
		}
	}
	n.started = false
	n.hub.Publish(Event{Type: EventStopped})
	return nil
}

// AddTransaction forwards tx to the mempool and emits EventTransactionAdded
// iff it was accepted.
func (n *Node) AddTransaction(tx *types.Transaction) mempool.AddResult {
	result := n.Mempool.Add(tx)
	if result == mempool.Accepted {
		n.hub.Publish(Event{Type: EventTransactionAdded, Transaction: tx})
	}
	return result
}

// MineBlocks starts the miner if it is idle, waits for n new block-mined
// events, and stops it again if it wasn't already running when MineBlocks
// was called.
func (n *Node) MineBlocks(count int) []*dag.Block {
	ch, unsubscribe := n.hub.Subscribe()
	defer unsubscribe()

	wasRunning := n.Miner.IsRunning()
	if !wasRunning {
		n.Miner.Start()
	}

	mined := make([]*dag.Block, 0, count)
	for len(mined) < count {
		ev := <-ch
		if ev.Type == EventBlockMined {
			mined = append(mined, ev.Block)
		}
	}

	if !wasRunning {
		n.Miner.Stop()
	}
	return mined
}

// onMinerBlockMined is wired as the miner's onBlockMined callback; it
// publishes EventBlockMined for each committed block.
func (n *Node) onMinerBlockMined(b *dag.Block) {
	n.hub.Publish(Event{Type: EventBlockMined, Block: b})
}
