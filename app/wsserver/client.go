package wsserver

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// writeQueueSize bounds a client's outbound queue; a slow reader's events
// are dropped rather than blocking the broadcaster, mirroring
// domain/node's event hub discipline.
const writeQueueSize = 256

const writeWait = 10 * time.Second

type client struct {
	conn *Server
	ws   *websocket.Conn
	send chan Message
	done chan struct{}
}

func newClient(ws *websocket.Conn, s *Server) *client {
	return &client{
		conn: s,
		ws:   ws,
		send: make(chan Message, writeQueueSize),
		done: make(chan struct{}),
	}
}

func (c *client) enqueue(m Message) {
	select {
	case c.send <- m:
	default:
		log.Warnf("client send queue full, dropping message type %s", m.Type)
	}
}

func (c *client) writeLoop() {
	defer c.ws.Close()
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(m); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) readLoop() {
	defer close(c.done)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			// A closed or broken socket is detected here, at read time; the
			// client is removed silently, per spec §4.6.
			return
		}
		var req clientRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.enqueue(newMessage(msgError, map[string]string{"message": "malformed request"}))
			continue
		}
		c.conn.handleClientRequest(c, req)
	}
}
