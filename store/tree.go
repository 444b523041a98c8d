// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "github.com/hnscore/hnscore/chainhash"

// TreeStore implements nametree.Store over a DB. Trie nodes are
// content-addressed and immutable once written, so no delete path is
// needed here: a reverted root simply stops being referenced.
type TreeStore struct {
	db *DB
}

func treeNodeKey(hash chainhash.Hash) []byte {
	buf := make([]byte, 0, 33)
	buf = append(buf, prefixTreeNode)
	return append(buf, hash[:]...)
}

// GetNode implements nametree.Store.
func (s *TreeStore) GetNode(hash chainhash.Hash) ([]byte, error) {
	data, err := s.db.ldb.Get(treeNodeKey(hash), nil)
	if isNotFound(err) {
		return nil, nil
	}
	return data, err
}

// PutNode implements nametree.Store.
func (s *TreeStore) PutNode(hash chainhash.Hash, encoded []byte) error {
	return s.db.ldb.Put(treeNodeKey(hash), encoded, nil)
}
