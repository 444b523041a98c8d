// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nametree

import "github.com/hnscore/hnscore/chainhash"

// Store is the backing persistence collaborator for committed trie
// nodes, matching spec §6's store::tree_* interface points. Nodes are
// content-addressed and immutable once written, so Store never needs an
// update or delete operation: a commit only ever adds nodes, and a
// revert to a prior historical root simply stops referencing newer
// ones. The store package provides a goleveldb-backed implementation;
// tests use an in-memory map implementation.
type Store interface {
	GetNode(hash chainhash.Hash) ([]byte, error)
	PutNode(hash chainhash.Hash, encoded []byte) error
}

// MemStore is a trivial in-memory Store, used by package tests and by
// chainbuild for constructing synthetic chains without a disk-backed
// store.
type MemStore struct {
	nodes map[chainhash.Hash][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[chainhash.Hash][]byte)}
}

// GetNode implements Store.
func (m *MemStore) GetNode(hash chainhash.Hash) ([]byte, error) {
	return m.nodes[hash], nil
}

// PutNode implements Store.
func (m *MemStore) PutNode(hash chainhash.Hash, encoded []byte) error {
	m.nodes[hash] = append([]byte(nil), encoded...)
	return nil
}

// Len reports how many distinct nodes are currently stored.
func (m *MemStore) Len() int {
	return len(m.nodes)
}
