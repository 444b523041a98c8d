// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"

	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/wire"
)

// CoinStore implements coinview.Store over a DB.
type CoinStore struct {
	db *DB
}

func coinKey(op wire.Outpoint) []byte {
	buf := make([]byte, 0, 1+wire.OutpointSize)
	buf = append(buf, prefixCoin)
	return op.Encode(buf)
}

// GetCoin implements coinview.Store.
func (s *CoinStore) GetCoin(op wire.Outpoint) (*coinview.Coin, error) {
	data, err := s.db.ldb.Get(coinKey(op), nil)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeCoin(data)
}

// PutCoin implements coinview.Store.
func (s *CoinStore) PutCoin(op wire.Outpoint, coin *coinview.Coin) error {
	return s.db.ldb.Put(coinKey(op), EncodeCoin(coin), nil)
}

// DeleteCoin implements coinview.Store.
func (s *CoinStore) DeleteCoin(op wire.Outpoint) error {
	return s.db.ldb.Delete(coinKey(op), nil)
}

// EncodeCoin serializes a Coin for disk storage: value(8) || address ||
// covenant || height(4) || coinbase(1). Exported so the block connector
// can reuse the identical layout for a coin's prior value inside an undo
// record.
func EncodeCoin(c *coinview.Coin) []byte {
	buf := make([]byte, 0, 64)
	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], c.Value)
	buf = append(buf, v[:]...)
	buf = c.Address.Encode(buf)
	buf = c.Covenant.Encode(buf)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], uint32(c.Height))
	buf = append(buf, h[:]...)
	if c.Coinbase {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// DecodeCoin is the inverse of EncodeCoin.
func DecodeCoin(data []byte) (*coinview.Coin, error) {
	value, err := wire.ReadUint64LE(data, 0)
	if err != nil {
		return nil, err
	}
	pos := 8

	addr, n, err := wire.DecodeAddress(data, pos)
	if err != nil {
		return nil, err
	}
	pos += n

	cov, n, err := wire.DecodeCovenant(data, pos)
	if err != nil {
		return nil, err
	}
	pos += n

	height, err := wire.ReadUint32LE(data, pos)
	if err != nil {
		return nil, err
	}
	pos += 4

	coinbase := pos < len(data) && data[pos] == 1

	return &coinview.Coin{
		Value:    value,
		Address:  addr,
		Covenant: cov,
		Height:   int32(height),
		Coinbase: coinbase,
	}, nil
}
