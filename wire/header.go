// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
)

// BlockHeaderSize is the fixed wire size of a BlockHeader.
const BlockHeaderSize = 204

// BlockHeader is the fixed-size block header. TreeRoot commits to the
// authenticated NameState snapshot at the interval covering this
// height (spec §6); between commit intervals it equals the last
// committed root (spec §4.3).
//
// Layout (204 bytes total):
//
//	version(4) || prevBlock(32) || treeRoot(32) || reservedRoot(32) ||
//	witnessRoot(32) || merkleRoot(32) || time(8) || bits(4) || nonce(4) ||
//	extraNonce(24)
type BlockHeader struct {
	Version      uint32
	PrevBlock    chainhash.Hash
	TreeRoot     chainhash.Hash
	ReservedRoot chainhash.Hash
	WitnessRoot  chainhash.Hash
	MerkleRoot   chainhash.Hash
	Time         uint64
	Bits         uint32
	Nonce        uint32
	ExtraNonce   [24]byte
}

// Encode returns the BlockHeaderSize-byte wire encoding of h.
func (h *BlockHeader) Encode() []byte {
	buf := make([]byte, 0, BlockHeaderSize)
	var v [4]byte
	PutUint32LE(v[:], h.Version)
	buf = append(buf, v[:]...)
	buf = append(buf, h.PrevBlock[:]...)
	buf = append(buf, h.TreeRoot[:]...)
	buf = append(buf, h.ReservedRoot[:]...)
	buf = append(buf, h.WitnessRoot[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	var t [8]byte
	PutUint64LE(t[:], h.Time)
	buf = append(buf, t[:]...)
	var bits [4]byte
	PutUint32LE(bits[:], h.Bits)
	buf = append(buf, bits[:]...)
	var nonce [4]byte
	PutUint32LE(nonce[:], h.Nonce)
	buf = append(buf, nonce[:]...)
	buf = append(buf, h.ExtraNonce[:]...)
	return buf
}

// DecodeBlockHeader reads a fixed BlockHeaderSize-byte BlockHeader from
// buf at offset.
func DecodeBlockHeader(buf []byte, offset int) (*BlockHeader, error) {
	if offset+BlockHeaderSize > len(buf) {
		return nil, chainerr.Newf(chainerr.ErrDecodeShortRead,
			"header: unexpected end of buffer at offset %d", offset)
	}
	h := &BlockHeader{}
	pos := offset

	version, err := ReadUint32LE(buf, pos)
	if err != nil {
		return nil, err
	}
	h.Version = version
	pos += 4

	copy(h.PrevBlock[:], buf[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize
	copy(h.TreeRoot[:], buf[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize
	copy(h.ReservedRoot[:], buf[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize
	copy(h.WitnessRoot[:], buf[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize
	copy(h.MerkleRoot[:], buf[pos:pos+chainhash.HashSize])
	pos += chainhash.HashSize

	t, err := ReadUint64LE(buf, pos)
	if err != nil {
		return nil, err
	}
	h.Time = t
	pos += 8

	bits, err := ReadUint32LE(buf, pos)
	if err != nil {
		return nil, err
	}
	h.Bits = bits
	pos += 4

	nonce, err := ReadUint32LE(buf, pos)
	if err != nil {
		return nil, err
	}
	h.Nonce = nonce
	pos += 4

	copy(h.ExtraNonce[:], buf[pos:pos+24])

	return h, nil
}

// Hash returns the header's identity hash.
func (h *BlockHeader) Hash() chainhash.Hash {
	return chainhash.HashH(h.Encode())
}
