// Package miner implements the round-driven parallel block producer: at each
// tick it snapshots the DAG's tips once, fans out `parallelism` blocks whose
// parents rotate through that fixed snapshot, drains the mempool, drives the
// EVM, and commits the round's blocks to the DAG in order.
//
// Grounded on kaspad's domain/miningmanager package for the
// interface-plus-unexported-impl shape and mutex discipline, generalized
// from its one-block-per-template model to spec.md's parallel-round model;
// the timer-driven lifecycle is grounded on util/panics.AfterFuncWrapperFunc,
// the same wrapper the teacher uses to schedule recoverable goroutines.
package miner

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/infrastructure/logger"
	"github.com/kaspanet/devdag/util/daghash"
	"github.com/kaspanet/devdag/util/panics"
)

// txsPerBlock is the number of gas-price-ordered mempool transactions drawn
// into each block, per spec §4.4 step 2b.
const txsPerBlock = 10

var log, _ = logger.Get("MINR")

// Miner drives block production at a configurable cadence.
type Miner struct {
	mu sync.Mutex

	dag     *dag.DAG
	mempool *mempool.Mempool
	evm     *evmexec.Executor

	config Config

	running bool
	timer   *time.Timer

	onBlockMined func(*dag.Block)

	receiptsMu sync.RWMutex
	receipts   map[daghash.Hash]*types.Receipt

	wrapGoroutine func(func())
	wrapAfterFunc func(d time.Duration, f func()) *time.Timer
}

// New constructs a Miner over the given DAG, mempool, and EVM executor.
// onBlockMined, if non-nil, is invoked once per committed block, in commit
// order, after each round.
func New(d *dag.DAG, mp *mempool.Mempool, evm *evmexec.Executor, config Config, onBlockMined func(*dag.Block)) (*Miner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Miner{
		dag:           d,
		mempool:       mp,
		evm:           evm,
		config:        config,
		onBlockMined:  onBlockMined,
		receipts:      make(map[daghash.Hash]*types.Receipt),
		wrapGoroutine: panics.GoroutineWrapperFunc(log),
		wrapAfterFunc: panics.AfterFuncWrapperFunc(log),
	}, nil
}

// Start fires an immediate round, then schedules further rounds every
// config.BlockTimeMS until Stop is called. Calling Start on an already
// running miner is a no-op.
func (m *Miner) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.wrapGoroutine(m.runRoundAndReschedule)
}

// Stop cancels the miner's scheduled timer. Any in-flight round completes
// fully: a partial round would leave orphaned receipts. Calling Stop on an
// already stopped miner is a no-op.
func (m *Miner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Address returns the configured miner address new blocks are attributed to.
func (m *Miner) Address() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.MinerAddress
}

// IsRunning reports whether the miner is currently scheduled.
func (m *Miner) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// UpdateConfig replaces the miner's configuration. If the miner is running,
// its timer is restarted under the new blockTime.
func (m *Miner) UpdateConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	running := m.running
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	if running {
		m.scheduleNext()
	}
	return nil
}

func (m *Miner) runRoundAndReschedule() {
	m.RunRound()

	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if running {
		m.scheduleNext()
	}
}

func (m *Miner) scheduleNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	blockTime := time.Duration(m.config.BlockTimeMS) * time.Millisecond
	m.timer = m.wrapAfterFunc(blockTime, m.runRoundAndReschedule)
}

// RunRound executes a single mining round synchronously: snapshot tips,
// produce config.Parallelism blocks fanning out from that snapshot, append
// them to the DAG in order, and fire onBlockMined for each. It is exported
// so mine_blocks-style callers (the node orchestrator) can force a round
// outside the timer cadence.
func (m *Miner) RunRound() {
	m.mu.Lock()
	config := m.config
	m.mu.Unlock()

	tips := m.dag.GetTips()
	pending := make([]*dag.Block, 0, config.Parallelism)

	for i := 0; i < config.Parallelism; i++ {
		parents := selectParents(tips, i, config.MaxParents)
		block := m.produceBlock(parents, config.MinerAddress)
		pending = append(pending, block)
	}

	for _, block := range pending {
		result := m.dag.AddBlock(block)
		if result == dag.Rejected {
			log.Warnf("round produced an unappendable block %s, skipping", block.Hash)
			continue
		}
		m.removeIncludedTransactions(block)
		if m.onBlockMined != nil {
			m.onBlockMined(block)
		}
	}
}

