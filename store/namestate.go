// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"

	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/wire"
)

// NameStateStore implements namestate.Store over a DB.
type NameStateStore struct {
	db *DB
}

func nameKey(nameHash [32]byte) []byte {
	buf := make([]byte, 0, 33)
	buf = append(buf, prefixName)
	return append(buf, nameHash[:]...)
}

// GetState implements namestate.Store.
func (s *NameStateStore) GetState(nameHash [32]byte) (*namestate.State, error) {
	data, err := s.db.ldb.Get(nameKey(nameHash), nil)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeState(data)
}

// PutState implements namestate.Store.
func (s *NameStateStore) PutState(nameHash [32]byte, state *namestate.State) error {
	return s.db.ldb.Put(nameKey(nameHash), EncodeState(state), nil)
}

// DeleteState implements namestate.Store.
func (s *NameStateStore) DeleteState(nameHash [32]byte) error {
	return s.db.ldb.Delete(nameKey(nameHash), nil)
}

// EncodeState serializes a NameState for disk storage. Layout: name
// (varint-prefixed) || name_hash(32) || height(4) || renewal(4) ||
// owner(outpoint, 36) || value(8) || highest(8) || data
// (varint-prefixed) || transfer(4) || transfer_target (address) ||
// revoked(4) || claimed(4) || weak(1) || highest_witness_hash(32).
// Exported so the block connector can reuse the identical layout for a
// name's prior value inside an undo record.
func EncodeState(s *namestate.State) []byte {
	buf := make([]byte, 0, 160)
	buf = appendVarBytes(buf, []byte(s.Name))
	buf = append(buf, s.NameHash[:]...)
	buf = appendInt32(buf, s.Height)
	buf = appendInt32(buf, s.Renewal)
	buf = s.Owner.Encode(buf)
	buf = appendUint64(buf, s.Value)
	buf = appendUint64(buf, s.Highest)
	buf = appendVarBytes(buf, s.Data)
	buf = appendInt32(buf, s.Transfer)
	buf = s.TransferTarget.Encode(buf)
	buf = appendInt32(buf, s.Revoked)
	buf = appendInt32(buf, s.Claimed)
	if s.Weak {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, s.HighestWitnessHash[:]...)
	return buf
}

// DecodeState is the inverse of EncodeState.
func DecodeState(data []byte) (*namestate.State, error) {
	nameBytes, n, err := wire.ReadVarBytes(data, 0)
	if err != nil {
		return nil, err
	}
	pos := n

	s := &namestate.State{Name: string(nameBytes)}
	copy(s.NameHash[:], data[pos:pos+32])
	pos += 32

	h, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Height = int32(h)
	pos += 4

	r, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Renewal = int32(r)
	pos += 4

	owner, n, err := wire.DecodeOutpoint(data, pos)
	if err != nil {
		return nil, err
	}
	s.Owner = owner
	pos += n

	value, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Value = value
	pos += 8

	highest, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Highest = highest
	pos += 8

	nameData, n, err := wire.ReadVarBytes(data, pos)
	if err != nil {
		return nil, err
	}
	s.Data = nameData
	pos += n

	tr, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Transfer = int32(tr)
	pos += 4

	target, n, err := wire.DecodeAddress(data, pos)
	if err != nil {
		return nil, err
	}
	s.TransferTarget = target
	pos += n

	rev, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Revoked = int32(rev)
	pos += 4

	claimed, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	s.Claimed = int32(claimed)
	pos += 4

	s.Weak = pos < len(data) && data[pos] == 1
	pos++

	if pos+32 <= len(data) {
		copy(s.HighestWitnessHash[:], data[pos:pos+32])
	}

	return s, nil
}

func appendVarBytes(buf, b []byte) []byte {
	buf = wire.AppendVarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func appendInt32(buf []byte, v int32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return append(buf, b[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
