// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"testing"

	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

func testOutpoint(b byte, index uint32) wire.Outpoint {
	var h chainhash.Hash
	h[0] = b
	return wire.Outpoint{Hash: h, Index: index}
}

func testAddr(b byte) wire.Address {
	return wire.Address{Version: 0, Hash: []byte{b, b, b, b}}
}

func TestViewFetchOnMiss(t *testing.T) {
	store := NewMemStore()
	op := testOutpoint(1, 0)
	want := &Coin{Value: 5000, Address: testAddr(0xaa), Height: 10}
	if err := store.PutCoin(op, want); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}

	cache := NewCache(store, 16, false)
	view := cache.NewView()

	got, err := view.Fetch(op)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || got.Value != want.Value {
		t.Fatalf("Fetch returned %+v, want %+v", got, want)
	}
}

func TestViewSpendDoubleSpend(t *testing.T) {
	store := NewMemStore()
	op := testOutpoint(2, 0)
	if err := store.PutCoin(op, &Coin{Value: 100, Address: testAddr(0xbb)}); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}

	cache := NewCache(store, 16, false)
	view := cache.NewView()

	if _, err := view.Spend(op); err != nil {
		t.Fatalf("first Spend: %v", err)
	}

	_, err := view.Spend(op)
	if !chainerr.Is(err, chainerr.ErrDoubleSpend) {
		t.Fatalf("second Spend: expected ErrDoubleSpend, got %v", err)
	}
}

func TestViewSpendMissing(t *testing.T) {
	store := NewMemStore()
	cache := NewCache(store, 16, false)
	view := cache.NewView()

	_, err := view.Spend(testOutpoint(3, 0))
	if !chainerr.Is(err, chainerr.ErrMissingPrevout) {
		t.Fatalf("Spend on missing coin: expected ErrMissingPrevout, got %v", err)
	}
}

func TestViewAddThenSpendSameBlock(t *testing.T) {
	store := NewMemStore()
	cache := NewCache(store, 16, false)
	view := cache.NewView()

	tx := &wire.Transaction{
		Outputs: []wire.Output{
			{Value: 777, Address: testAddr(0xcc)},
		},
	}
	view.Add(tx, 5)

	op := wire.Outpoint{Hash: tx.Hash(), Index: 0}
	coin, err := view.Spend(op)
	if err != nil {
		t.Fatalf("Spend newly-added coin: %v", err)
	}
	if coin.Value != 777 {
		t.Fatalf("spent coin value = %d, want 777", coin.Value)
	}

	// Spending something created and spent purely within this session
	// must never reach the backing store.
	if store.Len() != 0 {
		t.Fatalf("store.Len() = %d, want 0 (nothing flushed yet)", store.Len())
	}
}

func TestViewFlushAndUndoRoundTrip(t *testing.T) {
	store := NewMemStore()
	priorOp := testOutpoint(4, 0)
	if err := store.PutCoin(priorOp, &Coin{Value: 42, Address: testAddr(0xdd), Height: 1}); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}

	cache := NewCache(store, 16, true)
	view := cache.NewView()

	if _, err := view.Spend(priorOp); err != nil {
		t.Fatalf("Spend: %v", err)
	}

	tx := &wire.Transaction{
		Outputs: []wire.Output{
			{Value: 10, Address: testAddr(0xee)},
		},
	}
	view.Add(tx, 2)
	newOp := wire.Outpoint{Hash: tx.Hash(), Index: 0}

	if err := view.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("store.Len() after flush = %d, want 1", store.Len())
	}
	if got, _ := store.GetCoin(priorOp); got != nil {
		t.Fatalf("prior coin should be deleted after flush, got %+v", got)
	}
	if got, _ := store.GetCoin(newOp); got == nil || got.Value != 10 {
		t.Fatalf("new coin missing or wrong after flush: %+v", got)
	}
	if outs := cache.Outpoints(testAddr(0xee)); len(outs) != 1 {
		t.Fatalf("address index after flush = %v, want 1 entry", outs)
	}

	undo := view.Undo()
	if len(undo) != 2 {
		t.Fatalf("len(undo) = %d, want 2", len(undo))
	}

	if err := cache.ApplyUndo(undo); err != nil {
		t.Fatalf("ApplyUndo: %v", err)
	}
	if got, _ := store.GetCoin(priorOp); got == nil || got.Value != 42 {
		t.Fatalf("prior coin not restored by ApplyUndo: %+v", got)
	}
	if got, _ := store.GetCoin(newOp); got != nil {
		t.Fatalf("new coin should be removed by ApplyUndo, got %+v", got)
	}
	if outs := cache.Outpoints(testAddr(0xee)); len(outs) != 0 {
		t.Fatalf("address index after ApplyUndo = %v, want 0 entries", outs)
	}
}

func TestViewDiscard(t *testing.T) {
	store := NewMemStore()
	cache := NewCache(store, 16, false)
	view := cache.NewView()

	tx := &wire.Transaction{Outputs: []wire.Output{{Value: 1, Address: testAddr(0xff)}}}
	view.Add(tx, 1)
	view.Discard()

	view.Flush()
	if store.Len() != 0 {
		t.Fatalf("discarded view must not persist anything, store.Len() = %d", store.Len())
	}
}
