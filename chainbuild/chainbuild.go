// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainbuild provides a fluent synthetic-chain builder for
// tests, the way the teacher's blockchain/chaingen package lets a test
// script an arbitrary sequence of blocks without hand-assembling every
// header field. It wires every package's in-memory Store/MemStore
// together behind a blockchain.Chain so a test can focus on the
// transactions it cares about.
package chainbuild

import (
	"github.com/hnscore/hnscore/blockchain"
	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/covenant"
	"github.com/hnscore/hnscore/namehash"
	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/nametree"
	"github.com/hnscore/hnscore/store"
	"github.com/hnscore/hnscore/wire"
)

// memUndoStore is a trivial in-memory blockchain.UndoStore.
type memUndoStore struct {
	records map[int32][]byte
}

func newMemUndoStore() *memUndoStore {
	return &memUndoStore{records: make(map[int32][]byte)}
}

func (s *memUndoStore) GetUndo(height int32) ([]byte, error) {
	return s.records[height], nil
}

func (s *memUndoStore) PutUndo(height int32, data []byte) error {
	s.records[height] = append([]byte(nil), data...)
	return nil
}

func (s *memUndoStore) DeleteUndo(height int32) error {
	delete(s.records, height)
	return nil
}

// memChainStateStore is a trivial in-memory blockchain.ChainStateStore.
type memChainStateStore struct {
	state store.ChainState
}

func (s *memChainStateStore) Get() (store.ChainState, error) { return s.state, nil }

func (s *memChainStateStore) Put(cs store.ChainState) error {
	s.state = cs
	return nil
}

// Harness bundles a Chain with the in-memory collaborators behind it,
// so a test can both drive the chain and inspect its backing stores
// directly (e.g. namestate.MemStore.Len() after a disconnect).
type Harness struct {
	Chain  *blockchain.Chain
	Params *chaincfg.Params

	Coins *coinview.Cache
	Names *namestate.MemStore
	Tree  *nametree.Tree
}

// NewRegtest builds a Harness over chaincfg.RegNetParams with every
// backing store in memory, the tightest timing that still exercises
// every auction phase within a handful of blocks.
func NewRegtest(claimVerify covenant.ClaimVerifier) *Harness {
	p := chaincfg.RegNetParams()
	coins := coinview.NewCache(coinview.NewMemStore(), 64, false)
	names := namestate.NewMemStore()
	tree := nametree.NewTree(nametree.NewMemStore(), 64, 16)

	chain, err := blockchain.NewChain(p, coins, names, tree, newMemUndoStore(), &memChainStateStore{}, claimVerify)
	if err != nil {
		// NewChain only fails if the ChainStateStore.Get call fails,
		// which a fresh in-memory store never does.
		panic(err)
	}

	return &Harness{Chain: chain, Params: p, Coins: coins, Names: names, Tree: tree}
}

// CoinbaseTx builds a single-input, single-output coinbase transaction
// paying value to addr, tagged with extraNonce so consecutive calls at
// the same height still produce distinct txids.
func CoinbaseTx(value uint64, addr wire.Address, extraNonce byte) *wire.Transaction {
	return &wire.Transaction{
		Version: 1,
		Inputs: []wire.Input{{
			PrevOutpoint: wire.NullOutpoint,
			Witness:      [][]byte{{extraNonce}},
		}},
		Outputs: []wire.Output{{Value: value, Address: addr}},
	}
}

// PayToAddress returns a minimal spendable address: version 0 with a
// 20-byte hash derived from tag, distinct enough across test fixtures
// without needing a real signing key.
func PayToAddress(tag byte) wire.Address {
	h := make([]byte, 20)
	h[0] = tag
	return wire.Address{Version: 0, Hash: h}
}

// OpenOutput builds a well-formed OPEN covenant output for name paying
// addr, canonicalizing and hashing name the way C5's evalOpen requires.
// The output stays spendable (value 0 is fine). A later BID does not
// spend it: BID inputs must be NONE-covenant coins.
func OpenOutput(name string, addr wire.Address) (wire.Output, error) {
	hash, canon, err := namehash.HashLabel([]byte(name))
	if err != nil {
		return wire.Output{}, err
	}
	return wire.Output{
		Value:   0,
		Address: addr,
		Covenant: wire.Covenant{
			Type:  wire.CovenantOpen,
			Items: [][]byte{hash[:], canon},
		},
	}, nil
}
