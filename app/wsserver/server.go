package wsserver

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaspanet/devdag/domain/node"
	"github.com/kaspanet/devdag/infrastructure/logger"
	"github.com/kaspanet/devdag/util/daghash"
	"github.com/kaspanet/devdag/util/panics"
)

var log, _ = logger.Get("WSSV")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the /ws event broadcaster. It implements domain/node.Server.
type Server struct {
	addr string
	n    *node.Node

	history *history

	wrapGoroutine func(func())

	mu      sync.Mutex
	clients map[*client]struct{}
	http    *http.Server
	active  bool

	unsubscribe func()
	stopPump    chan struct{}
}

// New constructs a Server bound to addr (e.g. ":8546") over n.
func New(addr string, n *node.Node) *Server {
	return &Server{
		addr:          addr,
		n:             n,
		history:       newHistory(),
		clients:       make(map[*client]struct{}),
		wrapGoroutine: panics.GoroutineWrapperFunc(log),
	}
}

// Start begins accepting WebSocket connections and subscribes to the
// orchestrator's event hub to begin pushing events.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil
	}

	ch, unsubscribe := s.n.Subscribe()
	s.unsubscribe = unsubscribe
	s.stopPump = make(chan struct{})
	s.wrapGoroutine(func() { s.pump(ch, s.stopPump) })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{Addr: s.addr, Handler: mux}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.unsubscribe()
		return err
	}

	s.wrapGoroutine(func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("ws server error: %s", err)
		}
	})

	s.active = true
	log.Infof("WebSocket listening on %s/ws", s.addr)
	return nil
}

// Stop closes every connected client and shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	close(s.stopPump)
	s.unsubscribe()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		close(c.send)
		_ = c.ws.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// pump translates orchestrator events into pushed messages and broadcasts
// them to every connected client, recording each in the replay history.
func (s *Server) pump(ch <-chan node.Event, stop <-chan struct{}) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			for _, m := range s.eventToMessages(ev) {
				s.broadcast(m)
			}
		case <-stop:
			return
		}
	}
}

func (s *Server) eventToMessages(ev node.Event) []Message {
	switch ev.Type {
	case node.EventStarted:
		return []Message{newMessage(pushNodeStarted, nil)}
	case node.EventStopped:
		return []Message{newMessage(pushNodeStopped, nil)}
	case node.EventMiningStarted:
		return []Message{newMessage(pushMiningStarted, nil)}
	case node.EventMiningStopped:
		return []Message{newMessage(pushMiningStopped, nil)}
	case node.EventTransactionAdded:
		return []Message{newMessage(pushTransactionAdded, ev.Transaction.Hash.String())}
	case node.EventBlockMined:
		return []Message{
			newMessage(pushBlockMined, newBlockView(ev.Block)),
			newMessage(pushTipsChanged, s.tipsView()),
			newMessage(pushDAGStatsUpdated, newStatsView(s.n.DAG.GetStats())),
		}
	default:
		return nil
	}
}

func (s *Server) tipsView() []string {
	tips := s.n.DAG.GetTips()
	out := make([]string, len(tips))
	for i, t := range tips {
		out[i] = t.String()
	}
	return out
}

func (s *Server) broadcast(m Message) {
	s.history.append(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.enqueue(m)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("ws upgrade failed: %s", err)
		return
	}

	c := newClient(ws, s)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	c.enqueue(newMessage(msgWelcome, map[string]interface{}{
		"message":  "connected to devdag",
		"dagStats": newStatsView(s.n.DAG.GetStats()),
		"tips":     s.tipsView(),
	}))
	c.enqueue(newMessage(msgHistory, map[string]interface{}{"messages": s.history.recent()}))

	s.wrapGoroutine(c.writeLoop)
	c.readLoop()

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) handleClientRequest(c *client, req clientRequest) {
	switch req.Type {
	case "ping":
		c.enqueue(newMessage("pong", nil))
	case "getStats":
		c.enqueue(newMessage("stats", newStatsView(s.n.DAG.GetStats())))
	case "getTips":
		c.enqueue(newMessage("tips", s.tipsView()))
	case "getAllBlocks":
		c.enqueue(newMessage("allBlocks", s.allBlocksView()))
	case "getBlock":
		c.enqueue(s.getBlockMessage(req.Hash))
	case "mineBlocks":
		count := req.Count
		if count <= 0 {
			count = 1
		}
		s.wrapGoroutine(func() {
			blocks := s.n.MineBlocks(count)
			views := make([]blockView, len(blocks))
			for i, b := range blocks {
				views[i] = newBlockView(b)
			}
			c.enqueue(newMessage("minedBlocks", views))
		})
	default:
		log.Debugf("ignoring unknown ws message type %q", req.Type)
	}
}

func (s *Server) allBlocksView() []blockView {
	blocks := s.n.DAG.GetAllBlocks()
	out := make([]blockView, len(blocks))
	for i, b := range blocks {
		out[i] = newBlockView(b)
	}
	return out
}

func (s *Server) getBlockMessage(hashHex string) Message {
	h, err := daghash.NewHashFromStr(hashHex)
	if err != nil {
		return newMessage(msgError, map[string]string{"message": "malformed hash"})
	}
	b := s.n.DAG.GetBlock(*h)
	if b == nil {
		return newMessage(msgError, map[string]string{"message": "unknown block"})
	}
	return newMessage("block", newBlockView(b))
}
