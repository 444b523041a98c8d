// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "encoding/binary"

// ChainState is the durable aggregate counter tuple spec §3 names:
// total_tx, total_coin, total_value, total_burned. It is updated
// transactionally alongside the UTXO view by the block connector.
type ChainState struct {
	TotalTx    uint64
	TotalCoin  uint64
	TotalValue uint64
	TotalBurn  uint64
}

// ChainStateStore persists the single current ChainState tuple.
type ChainStateStore struct {
	db *DB
}

var chainStateKey = []byte{prefixChainState}

// Get returns the currently stored ChainState, or the zero value if
// none has ever been written (a fresh chain at genesis).
func (s *ChainStateStore) Get() (ChainState, error) {
	data, err := s.db.ldb.Get(chainStateKey, nil)
	if isNotFound(err) {
		return ChainState{}, nil
	}
	if err != nil {
		return ChainState{}, err
	}
	if len(data) != 32 {
		return ChainState{}, nil
	}
	return ChainState{
		TotalTx:    binary.LittleEndian.Uint64(data[0:8]),
		TotalCoin:  binary.LittleEndian.Uint64(data[8:16]),
		TotalValue: binary.LittleEndian.Uint64(data[16:24]),
		TotalBurn:  binary.LittleEndian.Uint64(data[24:32]),
	}, nil
}

// Put persists cs as the current ChainState.
func (s *ChainStateStore) Put(cs ChainState) error {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(buf[0:8], cs.TotalTx)
	binary.LittleEndian.PutUint64(buf[8:16], cs.TotalCoin)
	binary.LittleEndian.PutUint64(buf[16:24], cs.TotalValue)
	binary.LittleEndian.PutUint64(buf[24:32], cs.TotalBurn)
	return s.db.ldb.Put(chainStateKey, buf, nil)
}
