// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import "github.com/hnscore/hnscore/wire"

// Store is the backing persistence collaborator for the coin cache,
// matching spec §6's store::get_coin/store::put_coin interface points.
// The store package provides a goleveldb-backed implementation; tests
// use an in-memory map implementation.
type Store interface {
	GetCoin(outpoint wire.Outpoint) (*Coin, error)
	PutCoin(outpoint wire.Outpoint, coin *Coin) error
	DeleteCoin(outpoint wire.Outpoint) error
}

// MemStore is a trivial in-memory Store, used by package tests and by
// chainbuild for constructing synthetic chains without a disk-backed
// store.
type MemStore struct {
	coins map[wire.Outpoint]*Coin
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{coins: make(map[wire.Outpoint]*Coin)}
}

// GetCoin implements Store.
func (m *MemStore) GetCoin(outpoint wire.Outpoint) (*Coin, error) {
	c, ok := m.coins[outpoint]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

// PutCoin implements Store.
func (m *MemStore) PutCoin(outpoint wire.Outpoint, coin *Coin) error {
	m.coins[outpoint] = coin.Clone()
	return nil
}

// DeleteCoin implements Store.
func (m *MemStore) DeleteCoin(outpoint wire.Outpoint) error {
	delete(m.coins, outpoint)
	return nil
}

// Len reports how many coins are currently stored, used by tests to
// assert connect/disconnect symmetry.
func (m *MemStore) Len() int {
	return len(m.coins)
}
