package evmexec

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/kaspanet/devdag/domain/types"
	"github.com/kaspanet/devdag/util/daghash"
)

func weiPerEther() *big.Int {
	return new(big.Int).Mul(big.NewInt(1), big.NewInt(1_000_000_000_000_000_000))
}

func mustNewExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return e
}

// TestDeploymentReceipt replays spec §8's deployment scenario with a real
// CREATE-shaped init code: fund 0x1000...0001 with 1000 ETH, submit a
// deployment whose data is init code that CODECOPYs a 10-byte runtime body
// (0x604260005260206000f3, PUSH1 0x42 PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1
// 0x00 RETURN) out of its own trailing bytes and RETURNs it — the standard
// constructor idiom compiled Solidity contracts use. The deployed runtime
// bytecode is the constructor's return value, not the submitted init code.
func TestDeploymentReceipt(t *testing.T) {
	e := mustNewExecutor(t)
	sender := common.HexToAddress("0x1000000000000000000000000000000000000001")
	e.SetBalance(sender, new(big.Int).Mul(weiPerEther(), big.NewInt(1000)))

	runtimeCode := common.FromHex("0x604260005260206000f3")
	// PUSH1 len(runtime), DUP1, PUSH1 <runtime offset>, PUSH1 0, CODECOPY, PUSH1 0, RETURN
	initCode := common.FromHex("0x600a80600b6000396000f3")
	deployData := append(append([]byte{}, initCode...), runtimeCode...)

	tx := types.NewTransaction(sender, nil, uint256.NewInt(0), deployData, 0, 100000, 1)

	receipt, ret, createdAddress, err := e.Execute(tx, daghash.Hash{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Status != types.StatusSuccess {
		t.Fatalf("expected status success, got %v", receipt.Status)
	}
	if createdAddress == nil {
		t.Fatal("expected non-nil contractAddress")
	}
	if receipt.ContractAddress == nil || *receipt.ContractAddress != *createdAddress {
		t.Fatal("expected receipt.ContractAddress to match returned createdAddress")
	}
	if !bytes.Equal(ret, runtimeCode) {
		t.Fatalf("expected Execute's return value to be the constructor's returned runtime code %x, got %x", runtimeCode, ret)
	}

	deployedCode := e.GetCode(*createdAddress)
	if !bytes.Equal(deployedCode, runtimeCode) {
		t.Fatalf("expected deployed code to equal the constructor's return value %x, got %x", runtimeCode, deployedCode)
	}

	callRet, err := e.Call(*createdAddress, nil, nil, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(callRet) != 32 {
		t.Fatalf("expected 32 returned bytes, got %d", len(callRet))
	}
	if callRet[31] != 0x42 {
		t.Fatalf("expected last byte 0x42, got 0x%x", callRet[31])
	}
}

// TestCheckpointRevert replays spec §8's checkpoint/revert scenario.
func TestCheckpointRevert(t *testing.T) {
	e := mustNewExecutor(t)
	addr := common.HexToAddress("0xA000000000000000000000000000000000000A")

	oneThousandEth := weiPerEther()
	oneThousandEth.Mul(oneThousandEth, big.NewInt(1000))
	e.SetBalance(addr, oneThousandEth)

	checkpoint := e.Checkpoint()
	e.SetBalance(addr, big.NewInt(999))

	if got := e.GetBalance(addr); got.Cmp(big.NewInt(999)) != 0 {
		t.Fatalf("expected balance 999 before revert, got %s", got)
	}

	e.Revert(checkpoint)

	if got := e.GetBalance(addr); got.Cmp(oneThousandEth) != 0 {
		t.Fatalf("expected balance restored to 1000 ETH after revert, got %s", got)
	}
}

// TestEstimateGasNoLeakage covers invariant 10: estimate_gas followed by a
// real execution of the same tx leaves the state root unchanged relative to
// before estimate_gas.
func TestEstimateGasNoLeakage(t *testing.T) {
	e := mustNewExecutor(t)
	sender := common.HexToAddress("0x1000000000000000000000000000000000000001")
	recipient := common.HexToAddress("0x2000000000000000000000000000000000000002")
	e.SetBalance(sender, weiPerEther())

	tx := types.NewTransaction(sender, &recipient, uint256.NewInt(1000), nil, 0, 21000, 1)

	rootBefore := e.GetStateRoot()

	if _, err := e.EstimateGas(tx); err != nil {
		t.Fatalf("EstimateGas: %v", err)
	}

	rootAfterEstimate := e.GetStateRoot()
	if rootAfterEstimate != rootBefore {
		t.Fatalf("estimate_gas leaked state: root before %s, after %s", rootBefore, rootAfterEstimate)
	}

	receipt, _, _, err := e.Execute(tx, daghash.Hash{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Status != types.StatusSuccess {
		t.Fatalf("expected status success, got %v", receipt.Status)
	}
	if got := e.GetBalance(recipient); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("expected recipient balance 1000, got %s", got)
	}
}

func TestCumulativeGasAccounting(t *testing.T) {
	e := mustNewExecutor(t)
	e.ResetCumulativeGas()

	sender := common.HexToAddress("0x1000000000000000000000000000000000000001")
	recipient := common.HexToAddress("0x2000000000000000000000000000000000000002")
	e.SetBalance(sender, weiPerEther())

	tx1 := types.NewTransaction(sender, &recipient, uint256.NewInt(1), nil, 0, 21000, 1)
	tx2 := types.NewTransaction(sender, &recipient, uint256.NewInt(1), nil, 1, 21000, 1)

	r1, _, _, err := e.Execute(tx1, daghash.Hash{})
	if err != nil {
		t.Fatalf("Execute tx1: %v", err)
	}
	r2, _, _, err := e.Execute(tx2, daghash.Hash{})
	if err != nil {
		t.Fatalf("Execute tx2: %v", err)
	}

	if r2.CumulativeGasUsed <= r1.CumulativeGasUsed {
		t.Fatalf("expected cumulativeGasUsed to increase, got %d then %d", r1.CumulativeGasUsed, r2.CumulativeGasUsed)
	}
	if r2.CumulativeGasUsed != r1.GasUsed+r2.GasUsed {
		t.Fatalf("expected cumulativeGasUsed %d to equal sum of per-tx gasUsed %d",
			r2.CumulativeGasUsed, r1.GasUsed+r2.GasUsed)
	}
}

func TestFailedCallConsumesEntireGasLimit(t *testing.T) {
	e := mustNewExecutor(t)
	sender := common.HexToAddress("0x1000000000000000000000000000000000000001")
	// no balance funded: the transfer traps on insufficient funds inside the EVM
	recipient := common.HexToAddress("0x2000000000000000000000000000000000000002")

	tx := types.NewTransaction(sender, &recipient, uint256.NewInt(1), nil, 0, 21000, 1)
	receipt, _, _, err := e.Execute(tx, daghash.Hash{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Status != types.StatusFailed {
		t.Fatalf("expected status failed, got %v", receipt.Status)
	}
	if receipt.GasUsed != tx.GasLimit {
		t.Fatalf("expected entire gasLimit %d consumed, got %d", tx.GasLimit, receipt.GasUsed)
	}
}
