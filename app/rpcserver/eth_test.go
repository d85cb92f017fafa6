package rpcserver

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kaspanet/devdag/domain/dag"
	"github.com/kaspanet/devdag/domain/evmexec"
	"github.com/kaspanet/devdag/domain/mempool"
	"github.com/kaspanet/devdag/domain/miner"
	"github.com/kaspanet/devdag/domain/node"
)

func newTestServices(t *testing.T) (*EthService, *DagService, *node.Node) {
	t.Helper()
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
	return &EthService{node: n}, &DagService{node: n}, n
}

func TestChainIdAndGasPriceAreFixed(t *testing.T) {
	eth, _, _ := newTestServices(t)
	if got := eth.ChainId(); got != hexutil.Uint64(evmexec.ChainID) {
		t.Fatalf("ChainId = %d, want %d", got, evmexec.ChainID)
	}
	if got := eth.GasPrice(); got != hexutil.Uint64(1_000_000_000) {
		t.Fatalf("GasPrice = %d, want 1e9", got)
	}
}

func TestSendTransactionThenReceiptAfterMining(t *testing.T) {
	eth, dagSvc, n := newTestServices(t)

	sender := common.HexToAddress("0x0000000000000000000000000000000000A11CE")
	oneEth := new(big.Int).Mul(big.NewInt(1), big.NewInt(1_000_000_000_000_000_000))
	n.EVM.SetBalance(sender, oneEth)

	recipient := common.HexToAddress("0x000000000000000000000000000000000000B0B")
	value := hexutil.Big(*big.NewInt(1000))
	spec := TxSpec{From: sender, To: &recipient, Value: &value}

	txHash, err := eth.SendTransaction(spec)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}

	mined := dagSvc.MineBlocks(1)
	if len(mined) != 1 {
		t.Fatalf("expected 1 mined block, got %d", len(mined))
	}

	receipt, err := eth.GetTransactionReceipt(txHash)
	if err != nil {
		t.Fatalf("GetTransactionReceipt: %v", err)
	}
	if receipt == nil {
		t.Fatal("expected a receipt after mining")
	}
	if receipt.Status != 1 {
		t.Fatalf("expected success status, got %d", receipt.Status)
	}
}

func TestGetBlockByNumberResolvesLatestAndEarliest(t *testing.T) {
	eth, dagSvc, _ := newTestServices(t)

	genesis, err := eth.GetBlockByNumber(gethrpc.EarliestBlockNumber, false)
	if err != nil {
		t.Fatalf("GetBlockByNumber(earliest): %v", err)
	}
	if genesis == nil || genesis.DAGDepth != 0 {
		t.Fatalf("expected genesis block at depth 0, got %+v", genesis)
	}

	dagSvc.MineBlocks(2)

	latest, err := eth.GetBlockByNumber(gethrpc.LatestBlockNumber, false)
	if err != nil {
		t.Fatalf("GetBlockByNumber(latest): %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest block after mining")
	}
	if uint64(latest.DAGDepth) == 0 {
		t.Fatal("expected latest block depth to have advanced past genesis")
	}
}

func TestEstimateGasForDeploymentDoesNotMutateState(t *testing.T) {
	eth, _, n := newTestServices(t)

	sender := common.HexToAddress("0x0000000000000000000000000000000000FEED2")
	oneEth := new(big.Int).Mul(big.NewInt(1), big.NewInt(1_000_000_000_000_000_000))
	n.EVM.SetBalance(sender, oneEth)
	before := n.EVM.GetStateRoot()

	spec := TxSpec{From: sender, Data: hexutil.MustDecode("0x604260005260206000f3")}
	gas, err := eth.EstimateGas(spec)
	if err != nil {
		t.Fatalf("EstimateGas: %v", err)
	}
	if gas == 0 {
		t.Fatal("expected a nonzero gas estimate")
	}
	if after := n.EVM.GetStateRoot(); after != before {
		t.Fatal("EstimateGas must not mutate committed state")
	}
}
