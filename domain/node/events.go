// Package node owns the lifecycle of the DAG, mempool, EVM executor, and
// miner, plus the RPC and WebSocket servers layered on top of them, and
// multiplexes their activity onto a bounded-channel event hub.
//
// Grounded on design note §9 "Event fan-out": a broadcast hub with
// per-subscriber bounded channels, dropped on overflow rather than blocking
// the publisher — the same trade-off kaspad's own netadapter router makes
// for peer message queues, generalized here to in-process subscribers.
package node

import (
	"sync"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/types"
)

// EventType names one of the orchestrator's published event kinds.
type EventType string

// Event types, per spec §4.5.
const (
	EventStarted          EventType = "started"
	EventStopped          EventType = "stopped"
	EventMiningStarted    EventType = "mining-started"
	EventMiningStopped    EventType = "mining-stopped"
	EventBlockMined       EventType = "block-mined"
	EventTransactionAdded EventType = "transaction-added"
)

// Event is a single published occurrence. Block is set for EventBlockMined,
// Transaction for EventTransactionAdded; both are nil otherwise.
type Event struct {
	Type        EventType
	Block       *dag.Block
	Transaction *types.Transaction
}

// subscriberQueueSize bounds each subscriber's channel. A slow or stalled
// subscriber drops events rather than blocking the publisher.
const subscriberQueueSize = 256

// eventHub is a broadcast publisher over bounded, per-subscriber channels.
type eventHub struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a new listener and returns its channel and an
// unsubscribe function.
func (h *eventHub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberQueueSize)
	h.subscribers[id] = ch
	return ch, func() { h.unsubscribe(id) }
}

func (h *eventHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Publish fans ev out to every subscriber. A subscriber whose channel is
// full has the event silently dropped for it.
func (h *eventHub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
