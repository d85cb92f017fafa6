// Command devnode runs a local BlockDAG development node: an in-process
// engine that accepts transactions, mines multiple blocks per round,
// executes them on an EVM-compatible executor, colors the resulting DAG,
// and exposes it over JSON-RPC and WebSocket.
//
// Grounded on the teacher's main.go (a thin os.Exit wrapper around a
// StartApp-style entrypoint), generalized here since this devnode has no
// app.StartApp equivalent to delegate to: construction, server wiring, and
// the interrupt-driven shutdown all live in this package instead.
package main

import (
	"os"

	"github.com/kaspanet/devdag/app/rpcserver"
	"github.com/kaspanet/devdag/app/wsserver"
	"github.com/kaspanet/devdag/config"
	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/node"
	"github.com/kaspanet/devdag/infrastructure/logger"
	"github.com/kaspanet/devdag/signal"
)

var log, _ = logger.Get("MAIN")

func main() {
	if err := run(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	backend := logger.DefaultBackend()
	if err := backend.AddLogWriter(os.Stdout, logger.LevelInfo); err != nil {
		return err
	}
	if cfg.LogFile != "" {
		if err := backend.AddLogFile(cfg.LogFile, logger.LevelInfo); err != nil {
			return err
		}
	}
	if err := backend.Run(); err != nil {
		return err
	}
	defer backend.Close()

	d := dag.New(cfg.K, 0)
	mp := mempool.New(cfg.MaxMempool)
	evm, err := evmexec.NewExecutor()
	if err != nil {
		return err
	}

	n, err := node.New(d, mp, evm, cfg.MinerConfig)
	if err != nil {
		return err
	}

	rpcSrv, err := rpcserver.New(cfg.RPCAddr, n)
	if err != nil {
		return err
	}
	n.AddServer(rpcSrv)
	n.AddServer(wsserver.New(cfg.WSAddr, n))

	if err := n.Start(); err != nil {
		return err
	}
	log.Infof("devnode running: rpc on %s, ws on %s/ws", cfg.RPCAddr, cfg.WSAddr)

	interrupt := signal.InterruptListener()
	<-interrupt

	log.Infof("shutting down")
	return n.Stop()
}
