// Package mempool implements the bounded, hash-keyed transaction pool: admit,
// evict-on-full, and gas-price-ordered retrieval for the miner.
//
// Grounded on kaspad's domain/miningmanager/mempool package — specifically
// the sorted-slice-with-insertion-point idiom of
// model/ordered_transactions_by_fee_rate.go and the pool-as-struct-of-indexes
// shape of transactions_pool.go — stripped of UTXO chaining and the orphan
// pool, which don't apply to spec.md's account-model, no-signature-check
// pool.
package mempool

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/util/daghash"
)

// AddResult describes the outcome of Add.
type AddResult int

// AddResult values.
const (
	Accepted AddResult = iota
	Duplicate
	// Rejected means the pool was full and tx's gasPrice was not higher
	// than the lowest currently pooled gasPrice, so it was refused outright
	// rather than evicting something priced the same or higher.
	Rejected
)

// DefaultMaxSize is the default bound on the number of pooled transactions.
const DefaultMaxSize = 1000

type entry struct {
	tx       *types.Transaction
	addedAt  int64 // insertion sequence number, used for stable ordering
	attempts int
}

// Mempool holds pending transactions keyed by hash, bounded to maxSize. When
// full, a new transaction priced above the lowest pooled gasPrice evicts the
// lowest-gasPrice entry; one priced at or below it is rejected.
type Mempool struct {
	mu      sync.RWMutex
	maxSize int
	entries map[daghash.Hash]*entry
	seq     int64
}

// New creates an empty Mempool bounded to maxSize entries.
func New(maxSize int) *Mempool {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Mempool{
		maxSize: maxSize,
		entries: make(map[daghash.Hash]*entry),
	}
}

// Add admits tx. If the pool is full, tx is only admitted when its
// gasPrice is strictly higher than the pool's current lowest gasPrice; in
// that case the lowest-gasPrice entry is evicted (ties broken by earliest
// insertion) to make room. Otherwise tx is rejected outright, so the pool
// never evicts something priced the same as, or higher than, an incoming
// tx in its favor. Returns Duplicate without modifying the pool if tx's
// hash is already present.
func (m *Mempool) Add(tx *types.Transaction) AddResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[tx.Hash]; exists {
		return Duplicate
	}

	if len(m.entries) >= m.maxSize {
		lowestHash, lowestGasPrice, ok := m.lowestGasPriceLocked()
		if ok && tx.GasPrice <= lowestGasPrice {
			return Rejected
		}
		if ok {
			delete(m.entries, lowestHash)
		}
	}

	m.seq++
	m.entries[tx.Hash] = &entry{tx: tx, addedAt: m.seq}
	return Accepted
}

func (m *Mempool) lowestGasPriceLocked() (hash daghash.Hash, gasPrice uint64, ok bool) {
	var lowest *entry
	for h, e := range m.entries {
		if lowest == nil ||
			e.tx.GasPrice < lowest.tx.GasPrice ||
			(e.tx.GasPrice == lowest.tx.GasPrice && e.addedAt < lowest.addedAt) {
			lowest = e
			hash = h
		}
	}
	if lowest == nil {
		return daghash.Hash{}, 0, false
	}
	return hash, lowest.tx.GasPrice, true
}

// Remove deletes hash from the pool, if present.
func (m *Mempool) Remove(hash daghash.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, hash)
}

// Get returns the transaction with hash, or nil if not pooled.
func (m *Mempool) Get(hash daghash.Hash) *types.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[hash]
	if !ok {
		return nil
	}
	return e.tx
}

// All returns every pooled transaction, in no particular order.
func (m *Mempool) All() []*types.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.Transaction, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.tx)
	}
	return out
}

// ByGasPrice returns pooled transactions ordered by gasPrice descending,
// ties broken by insertion order (stable). If limit > 0, at most limit
// transactions are returned.
func (m *Mempool) ByGasPrice(limit int) []*types.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].tx.GasPrice != entries[j].tx.GasPrice {
			return entries[i].tx.GasPrice > entries[j].tx.GasPrice
		}
		return entries[i].addedAt < entries[j].addedAt
	})

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := make([]*types.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.tx
	}
	return out
}

// Pending is an alias of ByGasPrice, matching the vocabulary the miner uses
// when drafting a block's transaction batch.
func (m *Mempool) Pending(limit int) []*types.Transaction {
	return m.ByGasPrice(limit)
}

// Size returns the number of pooled transactions.
func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear empties the pool.
func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[daghash.Hash]*entry)
}

// BySender returns every pooled transaction sent by addr.
func (m *Mempool) BySender(addr common.Address) []*types.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.Transaction
	for _, e := range m.entries {
		if e.tx.From == addr {
			out = append(out, e.tx)
		}
	}
	return out
}

// IncrementAttempt bumps the retry counter of the pooled transaction with
// hash, if present. The counter is informational only; it does not affect
// ordering or eviction.
func (m *Mempool) IncrementAttempt(hash daghash.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[hash]; ok {
		e.attempts++
	}
}
