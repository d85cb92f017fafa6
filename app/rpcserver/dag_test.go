package rpcserver

import "testing"

func TestDagInfoAndStatsAdvanceWithMining(t *testing.T) {
	_, dagSvc, _ := newTestServices(t)

	before := dagSvc.GetStats()
	if before.BlockCount != 1 {
		t.Fatalf("expected genesis-only block count 1, got %d", before.BlockCount)
	}

	dagSvc.MineBlocks(3)

	after := dagSvc.GetStats()
	if after.BlockCount <= before.BlockCount {
		t.Fatalf("expected block count to grow after mining, before=%d after=%d", before.BlockCount, after.BlockCount)
	}

	info := dagSvc.GetDAGInfo()
	if info.BlockCount != after.BlockCount {
		t.Fatalf("GetDAGInfo block count %d disagrees with GetStats %d", info.BlockCount, after.BlockCount)
	}
}

func TestGetTipsAndBlueSetAfterMining(t *testing.T) {
	_, dagSvc, _ := newTestServices(t)
	dagSvc.MineBlocks(2)

	tips := dagSvc.GetTips()
	if len(tips) == 0 {
		t.Fatal("expected at least one tip after mining")
	}

	blue := dagSvc.GetBlueSet()
	if len(blue) == 0 {
		t.Fatal("expected at least one blue block (the genesis) after mining")
	}
}

func TestGetBlockParentsAndChildren(t *testing.T) {
	_, dagSvc, n := newTestServices(t)
	genesisHash := n.DAG.GetGenesisHash()

	dagSvc.MineBlocks(1)

	children, err := dagSvc.GetBlockChildren(toCommonHash(genesisHash))
	if err != nil {
		t.Fatalf("GetBlockChildren: %v", err)
	}
	if len(children) == 0 {
		t.Fatal("expected genesis to have at least one child after mining")
	}

	parents, err := dagSvc.GetBlockParents(children[0])
	if err != nil {
		t.Fatalf("GetBlockParents: %v", err)
	}
	found := false
	for _, p := range parents {
		if p == toCommonHash(genesisHash) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected genesis hash among the mined block's parents")
	}
}
