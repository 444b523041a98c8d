// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/store"
	"github.com/hnscore/hnscore/wire"
)

// treeOverlayUndo captures a name tree overlay entry's value immediately
// before a single block first touched it, so disconnect can restore
// exactly that entry without discarding the rest of the interval's
// staged writes (spec §4.9: "revert tree overlay").
type treeOverlayUndo struct {
	nameHash [32]byte
	hadPrior bool
	prior    []byte
}

// undoRecord is everything disconnect needs to unwind one block, per
// spec §3's "Undo record": the coin and name-state deltas, the tree
// overlay entries the block first touched, whether the block crossed a
// tree commit interval, and the chain-state counters to restore.
type undoRecord struct {
	coins         []coinview.UndoEntry
	names         []namestate.UndoEntry
	treeOverlay   []treeOverlayUndo
	treeCommitted bool
	priorTreeRoot chainhash.Hash
	priorState    store.ChainState
}

// encodeUndoRecord serializes u for UndoStore.PutUndo. The layout is a
// flat sequence of varint-prefixed sections; each entry's "had prior"
// flag is a single byte followed by the prior value's own encoding (coin
// or NameState) when set, nothing otherwise.
func encodeUndoRecord(u *undoRecord) []byte {
	buf := make([]byte, 0, 256)

	buf = wire.AppendVarint(buf, uint64(len(u.coins)))
	for _, e := range u.coins {
		buf = e.Outpoint.Encode(buf)
		if e.Coin == nil {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		encoded := store.EncodeCoin(e.Coin)
		buf = wire.AppendVarint(buf, uint64(len(encoded)))
		buf = append(buf, encoded...)
	}

	buf = wire.AppendVarint(buf, uint64(len(u.names)))
	for _, e := range u.names {
		buf = append(buf, e.NameHash[:]...)
		if e.Prior == nil {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		encoded := store.EncodeState(e.Prior)
		buf = wire.AppendVarint(buf, uint64(len(encoded)))
		buf = append(buf, encoded...)
	}

	buf = wire.AppendVarint(buf, uint64(len(u.treeOverlay)))
	for _, e := range u.treeOverlay {
		buf = append(buf, e.nameHash[:]...)
		if !e.hadPrior {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		buf = wire.AppendVarint(buf, uint64(len(e.prior)))
		buf = append(buf, e.prior...)
	}

	if u.treeCommitted {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, u.priorTreeRoot[:]...)

	var scratch [8]byte
	wire.PutUint64LE(scratch[:], u.priorState.TotalTx)
	buf = append(buf, scratch[:]...)
	wire.PutUint64LE(scratch[:], u.priorState.TotalCoin)
	buf = append(buf, scratch[:]...)
	wire.PutUint64LE(scratch[:], u.priorState.TotalValue)
	buf = append(buf, scratch[:]...)
	wire.PutUint64LE(scratch[:], u.priorState.TotalBurn)
	buf = append(buf, scratch[:]...)

	return buf
}

// decodeUndoRecord is the inverse of encodeUndoRecord.
func decodeUndoRecord(data []byte) (*undoRecord, error) {
	u := &undoRecord{}
	pos := 0

	nCoins, n, err := wire.ReadVarint(data, pos)
	if err != nil {
		return nil, err
	}
	pos += n
	u.coins = make([]coinview.UndoEntry, nCoins)
	for i := range u.coins {
		op, n, err := wire.DecodeOutpoint(data, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		had := data[pos]
		pos++
		var coin *coinview.Coin
		if had == 1 {
			size, n, err := wire.ReadVarint(data, pos)
			if err != nil {
				return nil, err
			}
			pos += n
			coin, err = store.DecodeCoin(data[pos : pos+int(size)])
			if err != nil {
				return nil, err
			}
			pos += int(size)
		}
		u.coins[i] = coinview.UndoEntry{Outpoint: op, Coin: coin}
	}

	nNames, n, err := wire.ReadVarint(data, pos)
	if err != nil {
		return nil, err
	}
	pos += n
	u.names = make([]namestate.UndoEntry, nNames)
	for i := range u.names {
		var nameHash [32]byte
		copy(nameHash[:], data[pos:pos+32])
		pos += 32
		had := data[pos]
		pos++
		var state *namestate.State
		if had == 1 {
			size, n, err := wire.ReadVarint(data, pos)
			if err != nil {
				return nil, err
			}
			pos += n
			state, err = store.DecodeState(data[pos : pos+int(size)])
			if err != nil {
				return nil, err
			}
			pos += int(size)
		}
		u.names[i] = namestate.UndoEntry{NameHash: nameHash, Prior: state}
	}

	nOverlay, n, err := wire.ReadVarint(data, pos)
	if err != nil {
		return nil, err
	}
	pos += n
	u.treeOverlay = make([]treeOverlayUndo, nOverlay)
	for i := range u.treeOverlay {
		var e treeOverlayUndo
		copy(e.nameHash[:], data[pos:pos+32])
		pos += 32
		had := data[pos]
		pos++
		e.hadPrior = had == 1
		if e.hadPrior {
			size, n, err := wire.ReadVarint(data, pos)
			if err != nil {
				return nil, err
			}
			pos += n
			e.prior = append([]byte(nil), data[pos:pos+int(size)]...)
			pos += int(size)
		}
		u.treeOverlay[i] = e
	}

	u.treeCommitted = data[pos] == 1
	pos++
	copy(u.priorTreeRoot[:], data[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize

	totalTx, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	pos += 8
	totalCoin, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	pos += 8
	totalValue, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	pos += 8
	totalBurn, err := wire.ReadUint64LE(data, pos)
	if err != nil {
		return nil, err
	}
	u.priorState = store.ChainState{
		TotalTx:    totalTx,
		TotalCoin:  totalCoin,
		TotalValue: totalValue,
		TotalBurn:  totalBurn,
	}

	return u, nil
}
