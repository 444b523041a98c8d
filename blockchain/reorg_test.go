// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain_test

import (
	"testing"

	"github.com/hnscore/hnscore/blockchain"
	"github.com/hnscore/hnscore/chainbuild"
	"github.com/hnscore/hnscore/namehash"
	"github.com/hnscore/hnscore/wire"
)

// TestTreeCommitIntervalBoundary exercises both disconnect paths spec
// §4.9 describes: reverting a committed interval via RevertToRoot, and
// unwinding a still-pending overlay via the per-entry undo that
// disconnecting a non-boundary height uses. Regtest's TreeInterval is 4,
// so heights 1-3 stage into the overlay without moving Tree.Root, and
// height 4 folds all of it into a new committed root.
func TestTreeCommitIntervalBoundary(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)

	cb0 := chainbuild.CoinbaseTx(0, addr, 0)
	block0 := mineBlock(t, h, []*wire.Transaction{cb0}, 1)
	if err := h.Chain.ConnectBlock(block0); err != nil {
		t.Fatalf("connect height 0: %v", err)
	}
	rootAfterGenesis := h.Chain.TreeRoot()

	cb1 := chainbuild.CoinbaseTx(0, addr, 1)
	block1 := mineBlock(t, h, []*wire.Transaction{cb1}, 100)
	if err := h.Chain.ConnectBlock(block1); err != nil {
		t.Fatalf("connect height 1: %v", err)
	}
	if got := h.Chain.TreeRoot(); got != rootAfterGenesis {
		t.Fatalf("tree root moved at a non-boundary height: got %s, want %s", got, rootAfterGenesis)
	}

	openOut, err := chainbuild.OpenOutput("boundary", addr)
	if err != nil {
		t.Fatalf("OpenOutput: %v", err)
	}
	openTx := &wire.Transaction{
		Version: 1,
		Inputs:  []wire.Input{{PrevOutpoint: wire.Outpoint{Hash: cb0.Hash(), Index: 0}}},
		Outputs: []wire.Output{openOut},
	}
	cb2 := chainbuild.CoinbaseTx(0, addr, 2)
	block2 := mineBlock(t, h, []*wire.Transaction{cb2, openTx}, 200)
	if err := h.Chain.ConnectBlock(block2); err != nil {
		t.Fatalf("connect height 2 with OPEN: %v", err)
	}
	if got := h.Chain.TreeRoot(); got != rootAfterGenesis {
		t.Fatalf("tree root moved while the OPEN was still only staged: got %s, want %s", got, rootAfterGenesis)
	}

	nameHash, _, err := namehash.HashLabel([]byte("boundary"))
	if err != nil {
		t.Fatalf("hash label: %v", err)
	}
	key := [32]byte(nameHash)
	if state, err := h.Names.GetState(key); err != nil {
		t.Fatalf("GetState: %v", err)
	} else if state == nil {
		t.Fatal("expected a NameState for \"boundary\" once the OPEN connected")
	}

	cb3 := chainbuild.CoinbaseTx(0, addr, 3)
	block3 := mineBlock(t, h, []*wire.Transaction{cb3}, 300)
	if err := h.Chain.ConnectBlock(block3); err != nil {
		t.Fatalf("connect height 3: %v", err)
	}
	if got := h.Chain.TreeRoot(); got != rootAfterGenesis {
		t.Fatalf("tree root moved before the commit interval: got %s, want %s", got, rootAfterGenesis)
	}

	cb4 := chainbuild.CoinbaseTx(0, addr, 4)
	block4 := mineBlock(t, h, []*wire.Transaction{cb4}, 400)
	if err := h.Chain.ConnectBlock(block4); err != nil {
		t.Fatalf("connect height 4: %v", err)
	}
	rootAfterCommit := h.Chain.TreeRoot()
	if rootAfterCommit == rootAfterGenesis {
		t.Fatal("expected the height-4 commit to move the tree root")
	}

	// Disconnecting the commit-boundary block must take the RevertToRoot
	// path and land exactly back on the pre-commit root.
	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("disconnect height 4: %v", err)
	}
	if got := h.Chain.TreeRoot(); got != rootAfterGenesis {
		t.Fatalf("RevertToRoot did not restore the pre-commit root: got %s, want %s", got, rootAfterGenesis)
	}

	// Disconnecting back through the non-boundary heights must use the
	// per-entry overlay undo and, for height 2, remove the OPEN's state.
	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("disconnect height 3: %v", err)
	}
	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("disconnect height 2: %v", err)
	}
	if got := h.Chain.TreeRoot(); got != rootAfterGenesis {
		t.Fatalf("overlay undo moved the committed root: got %s, want %s", got, rootAfterGenesis)
	}
	state, err := h.Names.GetState(key)
	if err != nil {
		t.Fatalf("GetState after disconnect: %v", err)
	}
	if state != nil {
		t.Fatal("expected the OPEN's NameState to be gone after disconnecting its block")
	}

	height, hash := h.Chain.Tip()
	if height != 1 || hash != block1.Header.Hash() {
		t.Fatalf("expected tip back at height 1 (block1), got height=%d hash=%s", height, hash)
	}
}

// TestReorganizeSwitchesToWinningBranch builds a two-block losing chain,
// rewinds it, builds a two-block winning branch from the same fork
// point, reinstates the losing chain as the active tip, and then asks
// Reorganize to switch onto the winning branch in one call, the way a
// peer announcing a longer chain would drive the connector per spec §5.
func TestReorganizeSwitchesToWinningBranch(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)

	cb0 := chainbuild.CoinbaseTx(0, addr, 0)
	block0 := mineBlock(t, h, []*wire.Transaction{cb0}, 1)
	if err := h.Chain.ConnectBlock(block0); err != nil {
		t.Fatalf("connect height 0: %v", err)
	}

	cbLosing := chainbuild.CoinbaseTx(0, addr, 10)
	blockLosing := mineBlock(t, h, []*wire.Transaction{cbLosing}, 100)
	if err := h.Chain.ConnectBlock(blockLosing); err != nil {
		t.Fatalf("connect losing height 1: %v", err)
	}

	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("rewind losing chain: %v", err)
	}

	cbWin1 := chainbuild.CoinbaseTx(0, addr, 20)
	blockWin1 := mineBlock(t, h, []*wire.Transaction{cbWin1}, 150)
	if err := h.Chain.ConnectBlock(blockWin1); err != nil {
		t.Fatalf("connect winning height 1 (staging): %v", err)
	}
	cbWin2 := chainbuild.CoinbaseTx(0, addr, 21)
	blockWin2 := mineBlock(t, h, []*wire.Transaction{cbWin2}, 250)
	if err := h.Chain.ConnectBlock(blockWin2); err != nil {
		t.Fatalf("connect winning height 2 (staging): %v", err)
	}

	// Unwind the staged winning branch and reinstate the losing chain as
	// the active tip, so Reorganize has real work to do.
	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("unstage winning height 2: %v", err)
	}
	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("unstage winning height 1: %v", err)
	}
	if err := h.Chain.ConnectBlock(blockLosing); err != nil {
		t.Fatalf("reinstate losing chain: %v", err)
	}

	notifications := h.Chain.Subscribe(8)

	if err := h.Chain.Reorganize([]*wire.Block{blockWin1, blockWin2}); err != nil {
		t.Fatalf("Reorganize: %v", err)
	}

	height, hash := h.Chain.Tip()
	if height != 2 || hash != blockWin2.Header.Hash() {
		t.Fatalf("expected tip at height 2 on the winning branch, got height=%d hash=%s", height, hash)
	}

	var sawReorg, sawDisconnectLosing, sawConnectWin1, sawConnectWin2 bool
	for done := false; !done; {
		select {
		case n := <-notifications:
			switch n.Type {
			case blockchain.NtfnReorg:
				sawReorg = true
				if n.LosingTip != blockLosing.Header.Hash() {
					t.Fatalf("NtfnReorg LosingTip mismatch: got %s, want %s", n.LosingTip, blockLosing.Header.Hash())
				}
				if n.WinningTip != blockWin2.Header.Hash() {
					t.Fatalf("NtfnReorg WinningTip mismatch: got %s, want %s", n.WinningTip, blockWin2.Header.Hash())
				}
			case blockchain.NtfnDisconnected:
				if n.Block.Header.Hash() == blockLosing.Header.Hash() {
					sawDisconnectLosing = true
				}
			case blockchain.NtfnConnected:
				switch n.Block.Header.Hash() {
				case blockWin1.Header.Hash():
					sawConnectWin1 = true
				case blockWin2.Header.Hash():
					sawConnectWin2 = true
				}
			}
		default:
			done = true
		}
	}
	if !sawReorg {
		t.Fatal("expected an NtfnReorg notification")
	}
	if !sawDisconnectLosing {
		t.Fatal("expected the losing chain's block to be disconnected before the reorg")
	}
	if !sawConnectWin1 || !sawConnectWin2 {
		t.Fatal("expected both winning-branch blocks to be connected")
	}
}
