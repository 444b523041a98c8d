// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// UndoStore persists one opaque undo-record blob per block height,
// matching spec §3's "Undo record" (per-block list of coin/NameState
// deltas, sufficient to reverse a connect). Encoding the record itself
// is the block connector's concern (blockchain package); this store
// only needs to round-trip bytes by height.
type UndoStore struct {
	db *DB
}

// GetUndo returns the undo-record blob stored for height, or nil if
// none was ever recorded there.
func (s *UndoStore) GetUndo(height int32) ([]byte, error) {
	data, err := s.db.ldb.Get(heightKey(prefixUndo, height), nil)
	if isNotFound(err) {
		return nil, nil
	}
	return data, err
}

// PutUndo stores the undo-record blob for height.
func (s *UndoStore) PutUndo(height int32, data []byte) error {
	return s.db.ldb.Put(heightKey(prefixUndo, height), data, nil)
}

// DeleteUndo removes the undo-record blob for height, called once a
// block is far enough behind the tip that it can no longer be
// disconnected in practice (pruning policy is a host concern; this core
// only exposes the primitive).
func (s *UndoStore) DeleteUndo(height int32) error {
	return s.db.ldb.Delete(heightKey(prefixUndo, height), nil)
}
