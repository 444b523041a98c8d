// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store is the disk-backed persistence collaborator for
// spec §6's store::get_coin/put_coin, store::get_namestate/
// put_namestate and store::tree_* interface points. It is a fresh
// implementation (the teacher's own database/ package was retrieved
// empty) sized to this module's coin/name-state/tree schemas, wrapping
// a single goleveldb database with a one-byte key prefix per logical
// table, following the prefixed-single-database convention common
// across btcd/dcrd-lineage node storage.
package store

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	prefixCoin       byte = 'c'
	prefixName       byte = 'n'
	prefixTreeNode   byte = 't'
	prefixUndo       byte = 'u'
	prefixChainState byte = 's'
)

// DB wraps a single goleveldb database shared by the coin store, the
// name-state store, the authenticated tree's node store and the
// per-block undo log, distinguished by key prefix.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if absent) a DB rooted at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	log.Infof("opened chain database at %s", path)
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying database's resources.
func (db *DB) Close() error {
	log.Infof("closing chain database")
	return db.ldb.Close()
}

// Coins returns a coinview.Store view over db.
func (db *DB) Coins() *CoinStore {
	return &CoinStore{db: db}
}

// Names returns a namestate.Store view over db.
func (db *DB) Names() *NameStateStore {
	return &NameStateStore{db: db}
}

// Tree returns a nametree.Store view over db.
func (db *DB) Tree() *TreeStore {
	return &TreeStore{db: db}
}

// Undo returns the per-block undo log store over db.
func (db *DB) Undo() *UndoStore {
	return &UndoStore{db: db}
}

// ChainState returns the chain aggregate counters store over db.
func (db *DB) ChainState() *ChainStateStore {
	return &ChainStateStore{db: db}
}

func isNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func heightKey(prefix byte, height int32) []byte {
	buf := make([]byte, 5)
	buf[0] = prefix
	binary.BigEndian.PutUint32(buf[1:], uint32(height))
	return buf
}
