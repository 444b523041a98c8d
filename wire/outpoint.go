// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"math"

	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
)

// OutpointSize is the fixed wire size of an Outpoint: a 32-byte hash
// plus a 4-byte little-endian index.
const OutpointSize = chainhash.HashSize + 4

// NullIndex is the index value used by the null outpoint a coinbase
// input's prevout must carry.
const NullIndex = math.MaxUint32

// Outpoint identifies a transaction output: the hash of the transaction
// that created it and its zero-based output index. Two outpoints are
// equal iff both fields are equal.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// IsNull reports whether o is the null outpoint (all-zero hash, max
// index) that every coinbase input's prevout must carry.
func (o Outpoint) IsNull() bool {
	return o.Hash.IsZero() && o.Index == NullIndex
}

// NullOutpoint is the canonical null outpoint value.
var NullOutpoint = Outpoint{Index: NullIndex}

// Encode appends the wire encoding of o to buf.
func (o Outpoint) Encode(buf []byte) []byte {
	buf = append(buf, o.Hash[:]...)
	var idx [4]byte
	PutUint32LE(idx[:], o.Index)
	return append(buf, idx[:]...)
}

// DecodeOutpoint reads an Outpoint from buf at offset, returning the number of
// bytes consumed.
func DecodeOutpoint(buf []byte, offset int) (Outpoint, int, error) {
	if offset+OutpointSize > len(buf) {
		return Outpoint{}, 0, chainerr.Newf(chainerr.ErrDecodeShortRead,
			"outpoint: unexpected end of buffer at offset %d", offset)
	}
	var o Outpoint
	copy(o.Hash[:], buf[offset:offset+chainhash.HashSize])
	idx, err := ReadUint32LE(buf, offset+chainhash.HashSize)
	if err != nil {
		return Outpoint{}, 0, err
	}
	o.Index = idx
	return o, OutpointSize, nil
}
