// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/wire"
)

// UndoEntry is one reversible mutation a View session performed, per
// spec §3 ("Undo record"). A nil Coin means the outpoint was newly
// created during this session and must be deleted on disconnect; a
// non-nil Coin is the prior value that must be restored.
type UndoEntry struct {
	Outpoint wire.Outpoint
	Coin     *Coin
}

// View is a per-block (or per-tx, for mempool-adjacent callers outside
// this core) working set over a shared Cache: fetch-on-miss reads
// layered over the session's own added/spent overlay, batch-spend, and
// undo-log generation, per spec §4.6.
type View struct {
	cache *Cache

	// added holds outpoints created during this session, keyed so a
	// later input in the same block can spend an output from an
	// earlier tx in declared order (spec §5's intra-block availability
	// guarantee).
	added map[wire.Outpoint]*Coin

	// removedFromStore mirrors the final Cache/Store deletion a commit
	// must perform: coins that existed before this session and were
	// spent. A coin added then spent within the same session is only
	// dropped from added, so it is never persisted.
	removedFromStore map[wire.Outpoint]*Coin

	// undo is the ordered log of mutations, used to build the block's
	// undo record and to reverse this session on discard.
	undo []UndoEntry

	// spentThisSession guards against double-spending the same
	// outpoint twice within one view.
	spentThisSession map[wire.Outpoint]struct{}
}

// NewView opens a fresh per-block session against c.
func (c *Cache) NewView() *View {
	return &View{
		cache:            c,
		added:            make(map[wire.Outpoint]*Coin),
		removedFromStore: make(map[wire.Outpoint]*Coin),
		spentThisSession: make(map[wire.Outpoint]struct{}),
	}
}

// Fetch returns the coin at outpoint, consulting this session's
// overlay, then the shared cache, then (via the cache) the backing
// store. It returns (nil, nil) if no such coin exists or it has already
// been spent in this session.
func (v *View) Fetch(outpoint wire.Outpoint) (*Coin, error) {
	if _, spent := v.spentThisSession[outpoint]; spent {
		return nil, nil
	}
	if coin, ok := v.added[outpoint]; ok {
		return coin, nil
	}
	return v.cache.fetch(outpoint)
}

// Spend marks outpoint as spent within this session, returning the coin
// that was spent. It fails with ErrMissingPrevout if the coin does not
// exist, and ErrDoubleSpend if it was already spent in this session.
func (v *View) Spend(outpoint wire.Outpoint) (*Coin, error) {
	if _, already := v.spentThisSession[outpoint]; already {
		return nil, chainerr.Newf(chainerr.ErrDoubleSpend, "outpoint %s already spent in this view", outpoint.Hash.String())
	}

	if coin, ok := v.added[outpoint]; ok {
		delete(v.added, outpoint)
		v.spentThisSession[outpoint] = struct{}{}
		v.undo = append(v.undo, UndoEntry{Outpoint: outpoint, Coin: nil})
		return coin, nil
	}

	coin, err := v.cache.fetch(outpoint)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		return nil, chainerr.Newf(chainerr.ErrMissingPrevout, "no coin for outpoint %s:%d", outpoint.Hash.String(), outpoint.Index)
	}

	v.spentThisSession[outpoint] = struct{}{}
	v.removedFromStore[outpoint] = coin
	v.undo = append(v.undo, UndoEntry{Outpoint: outpoint, Coin: coin})
	return coin, nil
}

// Add inserts one entry per non-pruned output of tx, per spec §4.6.
// Unspendable (nulldata) outputs are never tracked as coins.
func (v *View) Add(tx *wire.Transaction, height int32) {
	coinbase := tx.IsCoinbase()
	hash := tx.Hash()
	for i, out := range tx.Outputs {
		if out.Address.IsUnspendable() {
			continue
		}
		outpoint := wire.Outpoint{Hash: hash, Index: uint32(i)}
		v.added[outpoint] = NewCoinFromOutput(out, height, coinbase)
		v.undo = append(v.undo, UndoEntry{Outpoint: outpoint, Coin: nil})
	}
}

// Undo returns this session's accumulated undo log in application
// order, suitable for storing in a block's undo record.
func (v *View) Undo() []UndoEntry {
	return v.undo
}

// Flush persists every add/remove this session performed to the shared
// cache and its backing store. Called once, by the connector, after a
// block's every tx has validated successfully.
func (v *View) Flush() error {
	return v.cache.commit(v)
}

// Discard drops this session's overlay without touching the shared
// cache or store — used when a block fails validation partway through
// (spec §4.9 step 6: "any failure ... discards all in-memory session
// state").
func (v *View) Discard() {
	v.added = nil
	v.removedFromStore = nil
	v.undo = nil
	v.spentThisSession = nil
}

// ApplyUndo reverses an undo log against the shared cache, used by
// block disconnect. Entries are applied in reverse order so a coin that
// was both added and later spent within the same block unwinds
// correctly.
func (c *Cache) ApplyUndo(entries []UndoEntry) error {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Coin == nil {
			// This outpoint was newly created by the block; remove it.
			if prior, err := c.store.GetCoin(e.Outpoint); err == nil && prior != nil {
				c.indexRemove(e.Outpoint, prior.Address)
			}
			if err := c.store.DeleteCoin(e.Outpoint); err != nil {
				return err
			}
			c.mu.Lock()
			c.entries.Put(e.Outpoint, nil)
			c.mu.Unlock()
			continue
		}
		// This outpoint was spent by the block; restore it.
		if err := c.store.PutCoin(e.Outpoint, e.Coin); err != nil {
			return err
		}
		c.mu.Lock()
		c.entries.Put(e.Outpoint, e.Coin)
		c.mu.Unlock()
		c.indexAdd(e.Outpoint, e.Coin.Address)
	}
	return nil
}
