// Package wsserver streams orchestrator events to WebSocket subscribers and
// answers a small set of client-initiated queries over the same socket.
//
// Grounded on design note §9 "Event fan-out": per-subscriber bounded
// channels with drop-on-overflow, the same shape domain/node's event hub
// uses internally, layered here over github.com/gorilla/websocket (already
// an indirect dependency of the pack's prysm example, promoted to direct
// for this boundary).
package wsserver

import "time"

// Message is the envelope every server-to-client payload is wrapped in.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func newMessage(msgType string, data interface{}) Message {
	return Message{Type: msgType, Data: data, Timestamp: time.Now().UnixMilli()}
}

// Push message types, per spec §6.
const (
	pushBlockMined       = "blockMined"
	pushTransactionAdded = "transactionAdded"
	pushMiningStarted    = "miningStarted"
	pushMiningStopped    = "miningStopped"
	pushNodeStarted      = "nodeStarted"
	pushNodeStopped      = "nodeStopped"
	pushTipsChanged      = "tipsChanged"
	pushDAGStatsUpdated  = "dagStatsUpdated"

	msgWelcome = "welcome"
	msgHistory = "history"
	msgError   = "error"
)

// clientRequest is the shape of a client-sent command. Commands that take
// no argument (ping, getStats, getTips, getAllBlocks) leave the relevant
// field zero.
type clientRequest struct {
	Type  string `json:"type"`
	Hash  string `json:"hash"`
	Count int    `json:"count"`
}
