// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/hnscore/hnscore/chainbuild"
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/namehash"
	"github.com/hnscore/hnscore/wire"
)

func mineBlock(t *testing.T, h *chainbuild.Harness, txs []*wire.Transaction, timeOffset uint64) *wire.Block {
	t.Helper()
	block, err := h.Chain.ProposeBlock(txs, 1, h.Params.PowLimitBits, 1700000000+timeOffset)
	if err != nil {
		t.Fatalf("ProposeBlock: %v", err)
	}
	return block
}

func TestConnectGenesisAndExtend(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)

	cb0 := chainbuild.CoinbaseTx(0, addr, 0)
	block0 := mineBlock(t, h, []*wire.Transaction{cb0}, 1)
	if err := h.Chain.ConnectBlock(block0); err != nil {
		t.Fatalf("connect genesis: %v", err)
	}

	height, hash := h.Chain.Tip()
	if height != 0 {
		t.Fatalf("expected tip height 0, got %d", height)
	}
	if hash != block0.Header.Hash() {
		t.Fatalf("tip hash mismatch")
	}

	cb1 := chainbuild.CoinbaseTx(0, addr, 1)
	block1 := mineBlock(t, h, []*wire.Transaction{cb1}, 700)
	if err := h.Chain.ConnectBlock(block1); err != nil {
		t.Fatalf("connect height 1: %v", err)
	}

	height, hash = h.Chain.Tip()
	if height != 1 {
		t.Fatalf("expected tip height 1, got %d", height)
	}
	if hash != block1.Header.Hash() {
		t.Fatalf("tip hash mismatch after second block")
	}

	cs := h.Chain.ChainState()
	if cs.TotalTx != 2 {
		t.Fatalf("expected total_tx 2, got %d", cs.TotalTx)
	}
}

func TestConnectRejectsUnknownParent(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)
	cb := chainbuild.CoinbaseTx(0, addr, 0)
	block, err := h.Chain.ProposeBlock([]*wire.Transaction{cb}, 1, h.Params.PowLimitBits, 1700000001)
	if err != nil {
		t.Fatalf("ProposeBlock: %v", err)
	}
	block.Header.PrevBlock[0] ^= 0xff
	err = h.Chain.ConnectBlock(block)
	if !chainerr.Is(err, chainerr.ErrUnknownParent) {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func TestConnectRejectsTamperedMerkleRoot(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)
	cb := chainbuild.CoinbaseTx(0, addr, 0)
	block, err := h.Chain.ProposeBlock([]*wire.Transaction{cb}, 1, h.Params.PowLimitBits, 1700000001)
	if err != nil {
		t.Fatalf("ProposeBlock: %v", err)
	}
	block.Header.MerkleRoot[0] ^= 0xff
	err = h.Chain.ConnectBlock(block)
	if !chainerr.Is(err, chainerr.ErrBadMerkleRoot) {
		t.Fatalf("expected ErrBadMerkleRoot, got %v", err)
	}
}

func TestDisconnectTipRestoresChainState(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)

	cb0 := chainbuild.CoinbaseTx(0, addr, 0)
	block0 := mineBlock(t, h, []*wire.Transaction{cb0}, 1)
	if err := h.Chain.ConnectBlock(block0); err != nil {
		t.Fatalf("connect height 0: %v", err)
	}
	stateAfter0 := h.Chain.ChainState()

	cb1 := chainbuild.CoinbaseTx(0, addr, 1)
	block1 := mineBlock(t, h, []*wire.Transaction{cb1}, 700)
	if err := h.Chain.ConnectBlock(block1); err != nil {
		t.Fatalf("connect height 1: %v", err)
	}

	disconnected, err := h.Chain.DisconnectTip()
	if err != nil {
		t.Fatalf("DisconnectTip: %v", err)
	}
	if disconnected.Header.Hash() != block1.Header.Hash() {
		t.Fatalf("disconnected the wrong block")
	}

	height, hash := h.Chain.Tip()
	if height != 0 || hash != block0.Header.Hash() {
		t.Fatalf("tip did not revert to block0, got height=%d hash=%s", height, hash)
	}
	if got := h.Chain.ChainState(); got != stateAfter0 {
		t.Fatalf("chain state did not revert exactly:\ngot:  %s\nwant: %s", spew.Sdump(got), spew.Sdump(stateAfter0))
	}
}

func TestOpenCovenantRoundTripsThroughDisconnect(t *testing.T) {
	h := chainbuild.NewRegtest(nil)
	addr := chainbuild.PayToAddress(1)

	openOut, err := chainbuild.OpenOutput("example", addr)
	if err != nil {
		t.Fatalf("OpenOutput: %v", err)
	}
	cb0 := chainbuild.CoinbaseTx(0, addr, 0)
	openTx := &wire.Transaction{
		Version: 1,
		Inputs:  []wire.Input{{PrevOutpoint: wire.Outpoint{Hash: cb0.Hash(), Index: 0}}},
		Outputs: []wire.Output{openOut},
	}

	block0 := mineBlock(t, h, []*wire.Transaction{cb0}, 1)
	if err := h.Chain.ConnectBlock(block0); err != nil {
		t.Fatalf("connect height 0: %v", err)
	}

	// CoinbaseMaturity on regtest is 2, so the OPEN spending the
	// coinbase output must wait that many confirmations.
	cb1 := chainbuild.CoinbaseTx(0, addr, 1)
	block1 := mineBlock(t, h, []*wire.Transaction{cb1}, 700)
	if err := h.Chain.ConnectBlock(block1); err != nil {
		t.Fatalf("connect height 1: %v", err)
	}
	cb2 := chainbuild.CoinbaseTx(0, addr, 2)
	block2 := mineBlock(t, h, []*wire.Transaction{cb2, openTx}, 1400)
	if err := h.Chain.ConnectBlock(block2); err != nil {
		t.Fatalf("connect height 2 with OPEN: %v", err)
	}

	hash, _, err := namehash.HashLabel([]byte("example"))
	if err != nil {
		t.Fatalf("hash label: %v", err)
	}
	nameHash := [32]byte(hash)
	state, err := h.Names.GetState(nameHash)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if state == nil {
		t.Fatal("expected a NameState for \"example\" after OPEN connected")
	}

	if _, err := h.Chain.DisconnectTip(); err != nil {
		t.Fatalf("DisconnectTip: %v", err)
	}
	state, err = h.Names.GetState(nameHash)
	if err != nil {
		t.Fatalf("GetState after disconnect: %v", err)
	}
	if state != nil {
		t.Fatal("expected NameState to be gone after disconnecting the OPEN's block")
	}
}
