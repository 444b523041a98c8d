// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinview implements spec §4.6 (C6): a coin cache over a
// backing store with fetch-on-miss, batch-spend, add-new, undo-log
// generation and an optional per-address index. Its call surface
// (FetchEntry/Amount/ScriptVersion-shaped accessors) is grounded on the
// teacher's blockchain/stakeext.go, which calls exactly such a cache
// (b.utxoCache.FetchEntry(outpoint), .Amount(), .ScriptVersion()) when
// answering ticket-ownership queries.
package coinview

import (
	"github.com/hnscore/hnscore/wire"
)

// UnconfirmedHeight is the height recorded for a Coin created by a
// transaction not yet included in a block, per spec §3 ("-1 means
// unconfirmed").
const UnconfirmedHeight = -1

// Coin is a single unspent transaction output, per spec §3.
type Coin struct {
	Value    uint64
	Address  wire.Address
	Covenant wire.Covenant
	Height   int32
	Coinbase bool

	// spent is not set by View.Spend or by anything else in this
	// package; a view tracks spent outpoints in its own spentThisSession
	// set instead.
	spent bool
}

// IsSpendable reports whether the coin's address is not the
// unspendable nulldata marker.
func (c *Coin) IsSpendable() bool {
	return !c.Address.IsUnspendable()
}

// NameHash returns the name hash carried by the coin's covenant, or nil
// if the coin's covenant is NONE.
func (c *Coin) NameHash() []byte {
	if c.Covenant.Type == wire.CovenantNone {
		return nil
	}
	return c.Covenant.NameHash()
}

// Clone returns a deep copy of c suitable for storing in an undo entry
// independent of further mutation of the original.
func (c *Coin) Clone() *Coin {
	clone := *c
	clone.Address.Hash = append([]byte(nil), c.Address.Hash...)
	if c.Covenant.Items != nil {
		items := make([][]byte, len(c.Covenant.Items))
		for i, item := range c.Covenant.Items {
			items[i] = append([]byte(nil), item...)
		}
		clone.Covenant.Items = items
	}
	return &clone
}

// NewCoinFromOutput builds the Coin a given transaction output creates
// once mined at height (or UnconfirmedHeight while still only in a
// mempool view).
func NewCoinFromOutput(out wire.Output, height int32, coinbase bool) *Coin {
	return &Coin{
		Value:    out.Value,
		Address:  out.Address,
		Covenant: out.Covenant,
		Height:   height,
		Coinbase: coinbase,
	}
}
