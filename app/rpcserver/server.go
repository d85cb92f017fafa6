// Package rpcserver exposes the node over HTTP JSON-RPC, combining an
// Ethereum-compatible eth_* namespace with DAG-native dag_* and net_*
// namespaces on a single endpoint, plus a plain-HTTP /health probe.
//
// Grounded on go-ethereum's own rpc package for namespace registration and
// dispatch (the same reflection-based approach client libraries such as
// ethers.js and web3.js already expect), and on the teacher's daemon server
// lifecycle (cmd/kaspawallet/daemon/server/server.go) for the
// listen-then-serve-then-graceful-shutdown shape.
package rpcserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/kaspanet/devdag/domain/node"
	"github.com/kaspanet/devdag/infrastructure/logger"
	"github.com/kaspanet/devdag/util/panics"
)

var log, _ = logger.Get("RPCS")

// Server is the HTTP JSON-RPC front end. It implements domain/node.Server.
type Server struct {
	addr string
	n    *node.Node

	rpc *gethrpc.Server

	wrapGoroutine func(func())

	mu     sync.Mutex
	http   *http.Server
	active bool
}

// New constructs a Server bound to addr (e.g. ":8545") over n, registering
// the eth, dag, and net namespaces.
func New(addr string, n *node.Node) (*Server, error) {
	srv := gethrpc.NewServer()

	if err := srv.RegisterName("eth", &EthService{node: n}); err != nil {
		return nil, errors.Wrap(err, "registering eth namespace")
	}
	if err := srv.RegisterName("dag", &DagService{node: n}); err != nil {
		return nil, errors.Wrap(err, "registering dag namespace")
	}
	if err := srv.RegisterName("net", &NetService{}); err != nil {
		return nil, errors.Wrap(err, "registering net namespace")
	}

	return &Server{addr: addr, n: n, rpc: srv, wrapGoroutine: panics.GoroutineWrapperFunc(log)}, nil
}

// Start begins serving JSON-RPC over HTTP. It returns once the listener is
// up; request handling continues on background goroutines until Stop.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", corsAllowAll(s.rpc))

	s.http = &http.Server{Addr: s.addr, Handler: mux}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.addr)
	}

	s.wrapGoroutine(func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("rpc server error: %s", err)
		}
	})

	s.active = true
	log.Infof("JSON-RPC listening on %s", s.addr)
	return nil
}

// Stop gracefully shuts the HTTP server down, waiting up to 5 seconds for
// in-flight requests to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	s.active = false

	s.rpc.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	node := "stopped"
	if s.n.Miner.IsRunning() {
		node = "running"
	}
	stats := s.n.DAG.GetStats()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"node":   node,
		"blocks": stats.BlockCount,
	})
}

func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
