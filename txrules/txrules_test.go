// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"testing"

	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/covenant"
	"github.com/hnscore/hnscore/namehash"
	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/wire"
)

func plainTx(outputs ...wire.Output) *wire.Transaction {
	return &wire.Transaction{
		Version: 1,
		Inputs:  []wire.Input{{PrevOutpoint: wire.Outpoint{Index: 0}}},
		Outputs: outputs,
	}
}

func TestCheckStructuralRejectsEmptyInputsOutputs(t *testing.T) {
	p := chaincfg.RegNetParams()
	empty := &wire.Transaction{}
	if err := CheckStructural(empty, p); err == nil {
		t.Fatal("expected empty transaction to be rejected")
	}
}

func TestCheckStructuralRejectsDuplicateInput(t *testing.T) {
	p := chaincfg.RegNetParams()
	dup := wire.Outpoint{Index: 5}
	tx := &wire.Transaction{
		Inputs:  []wire.Input{{PrevOutpoint: dup}, {PrevOutpoint: dup}},
		Outputs: []wire.Output{{Value: 1}},
	}
	if err := CheckStructural(tx, p); err == nil {
		t.Fatal("expected duplicate prevout to be rejected")
	}
}

func TestCheckStructuralRejectsWrongCovenantItemCount(t *testing.T) {
	p := chaincfg.RegNetParams()
	tx := plainTx(wire.Output{Value: 1, Covenant: wire.Covenant{Type: wire.CovenantOpen, Items: [][]byte{{0x01}}}})
	if err := CheckStructural(tx, p); err == nil {
		t.Fatal("expected OPEN with wrong item count to be rejected")
	}
}

func TestCheckStructuralAcceptsWellFormedTx(t *testing.T) {
	p := chaincfg.RegNetParams()
	tx := plainTx(wire.Output{Value: 1000, Address: wire.Address{Version: 0, Hash: make([]byte, 20)}})
	if err := CheckStructural(tx, p); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestCheckContextualFeeAccounting(t *testing.T) {
	p := chaincfg.RegNetParams()
	store := coinview.NewMemStore()
	cache := coinview.NewCache(store, 10, false)
	view := cache.NewView()

	prevout := wire.Outpoint{Hash: chainhash.Hash{0x01}, Index: 0}
	store.PutCoin(prevout, &coinview.Coin{Value: 1000, Address: wire.Address{Version: 0, Hash: make([]byte, 20)}})

	tx := &wire.Transaction{
		Inputs:  []wire.Input{{PrevOutpoint: prevout}},
		Outputs: []wire.Output{{Value: 900, Address: wire.Address{Version: 0, Hash: make([]byte, 20)}}},
	}

	ctx := &covenant.Context{Height: 10, Params: p, Names: namestate.NewView(namestate.NewMemStore())}
	result, err := CheckContextual(ctx, view, tx, chainhash.Hash{})
	if err != nil {
		t.Fatalf("CheckContextual: %v", err)
	}
	if result.Fee != 100 {
		t.Fatalf("Fee = %d, want 100", result.Fee)
	}
	if !result.MaturedInputs.Get(0) {
		t.Fatal("expected input 0 to be flagged matured")
	}
}

func TestCheckContextualRejectsImmatureCoinbaseSpend(t *testing.T) {
	p := chaincfg.RegNetParams()
	store := coinview.NewMemStore()
	cache := coinview.NewCache(store, 10, false)
	view := cache.NewView()

	prevout := wire.Outpoint{Hash: chainhash.Hash{0x02}, Index: 0}
	store.PutCoin(prevout, &coinview.Coin{Value: 1000, Coinbase: true, Height: 10, Address: wire.Address{Version: 0, Hash: make([]byte, 20)}})

	tx := &wire.Transaction{
		Inputs:  []wire.Input{{PrevOutpoint: prevout}},
		Outputs: []wire.Output{{Value: 900, Address: wire.Address{Version: 0, Hash: make([]byte, 20)}}},
	}

	ctx := &covenant.Context{Height: 10 + p.CoinbaseMaturity - 1, Params: p, Names: namestate.NewView(namestate.NewMemStore())}
	if _, err := CheckContextual(ctx, view, tx, chainhash.Hash{}); err == nil {
		t.Fatal("expected immature coinbase spend to be rejected")
	}
}

func TestCheckContextualDispatchesOpenCovenant(t *testing.T) {
	p := chaincfg.RegNetParams()
	store := coinview.NewMemStore()
	cache := coinview.NewCache(store, 10, false)
	view := cache.NewView()
	store.PutCoin(wire.Outpoint{Index: 0}, &coinview.Coin{Address: wire.Address{Version: 0, Hash: make([]byte, 20)}})

	nameHash := namehash.Hash([]byte("alpha"))
	cov := wire.Covenant{Type: wire.CovenantOpen, Items: [][]byte{nameHash[:], []byte("alpha")}}
	tx := plainTx(wire.Output{Value: 0, Covenant: cov})

	ctx := &covenant.Context{Height: 0, Params: p, Names: namestate.NewView(namestate.NewMemStore())}
	if _, err := CheckContextual(ctx, view, tx, chainhash.Hash{}); err != nil {
		t.Fatalf("CheckContextual OPEN: %v", err)
	}
	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if state == nil {
		t.Fatal("expected OPEN to stage a NameState")
	}
}

func TestCheckBlockSigopsRejectsOverCap(t *testing.T) {
	p := chaincfg.RegNetParams()
	p.MaxBlockSigops = 10
	if err := CheckBlockSigops(11, p); err == nil {
		t.Fatal("expected sigop count above cap to be rejected")
	}
	if err := CheckBlockSigops(10, p); err != nil {
		t.Fatalf("unexpected rejection at cap: %v", err)
	}
}
