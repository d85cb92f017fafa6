package rpcserver

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/miner"
	"github.com/kaspanet/devdag/domain/node"

	"github.com/ethereum/go-ethereum/common"
)

func TestServerHealthEndpointReportsNodeState(t *testing.T) {
	d := dag.New(dag.DefaultK, 0)
	mp := mempool.New(mempool.DefaultMaxSize)
	evm, err := evmexec.NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	config := miner.Config{
		Parallelism:  1,
		BlockTimeMS:  50,
		MaxParents:   2,
		MinerAddress: common.HexToAddress("0xFEED000000000000000000000000000000FEED"),
	}
	n, err := node.New(d, mp, evm, config)
	if err != nil {
		t.Fatalf("node.New: %v", err)
	}

	srv, err := New("127.0.0.1:0", n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// health is exercised by calling the handler directly rather than over
	// the network: the server listens on :0, so its real address is not
	// known here.
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}()

	// Give the Serve goroutine a moment to begin accepting connections.
	time.Sleep(20 * time.Millisecond)

	addr := srv.http.Addr
	_ = addr // the :0 listener's actual address isn't surfaced by http.Server; exercise via the handler instead.

	rr := &recorder{headers: http.Header{}}
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	srv.handleHealth(rr, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rr.body, &body); err != nil {
		t.Fatalf("decoding /health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %v", body["status"])
	}
	if body["node"] != "stopped" {
		t.Fatalf("expected node=stopped before mining starts, got %v", body["node"])
	}
}

type recorder struct {
	headers http.Header
	status  int
	body    []byte
}

func (r *recorder) Header() http.Header { return r.headers }
func (r *recorder) Write(b []byte) (int, error) {
	r.body = append(r.body, b...)
	return len(b), nil
}
func (r *recorder) WriteHeader(status int) { r.status = status }
