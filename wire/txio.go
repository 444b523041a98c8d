// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/hnscore/hnscore/chainerr"

// Output is a transaction output: a value in base units, a destination
// address and an attached covenant.
type Output struct {
	Value    uint64
	Address  Address
	Covenant Covenant
}

// Encode appends the wire encoding of o to buf: value(8) || address ||
// covenant.
func (o Output) Encode(buf []byte) []byte {
	var v [8]byte
	PutUint64LE(v[:], o.Value)
	buf = append(buf, v[:]...)
	buf = o.Address.Encode(buf)
	buf = o.Covenant.Encode(buf)
	return buf
}

// DecodeOutput reads an Output from buf at offset, returning the number
// of bytes consumed.
func DecodeOutput(buf []byte, offset int) (Output, int, error) {
	value, err := ReadUint64LE(buf, offset)
	if err != nil {
		return Output{}, 0, err
	}
	pos := offset + 8

	addr, n, err := DecodeAddress(buf, pos)
	if err != nil {
		return Output{}, 0, err
	}
	pos += n

	cov, n, err := DecodeCovenant(buf, pos)
	if err != nil {
		return Output{}, 0, err
	}
	pos += n

	return Output{Value: value, Address: addr, Covenant: cov}, pos - offset, nil
}

// Input is a transaction input: the outpoint it spends, its witness
// (carried out-of-band from the non-witness encoding), and a sequence
// number.
type Input struct {
	PrevOutpoint Outpoint
	Witness      [][]byte
	Sequence     uint32
}

// MaxWitnessItemSize bounds a single witness item. Coinbase airdrop/
// claim envelopes are capped at 10000 bytes by spec §4.7; non-coinbase
// witness items (signatures, pubkeys) are far smaller in practice, but
// the codec itself only enforces the generic MaxItemSize — the tighter
// per-context bound is a C7 concern, not a codec one.
const MaxWitnessItemSize = MaxItemSize

// encodeNonWitness appends the non-witness encoding of in to buf:
// outpoint(36) || sequence(4). This is the portion hashed into a tx's
// identity.
func (in Input) encodeNonWitness(buf []byte) []byte {
	buf = in.PrevOutpoint.Encode(buf)
	var seq [4]byte
	PutUint32LE(seq[:], in.Sequence)
	return append(buf, seq[:]...)
}

// encodeWitness appends in's witness encoding to buf: varint(n_items)
// || items(varint-prefixed each).
func (in Input) encodeWitness(buf []byte) []byte {
	buf = AppendVarint(buf, uint64(len(in.Witness)))
	for _, item := range in.Witness {
		buf = appendBytes(buf, item)
	}
	return buf
}

func decodeNonWitnessInput(buf []byte, offset int) (Input, int, error) {
	op, n, err := DecodeOutpoint(buf, offset)
	if err != nil {
		return Input{}, 0, err
	}
	pos := offset + n

	seq, err := ReadUint32LE(buf, pos)
	if err != nil {
		return Input{}, 0, err
	}
	pos += 4

	return Input{PrevOutpoint: op, Sequence: seq}, pos - offset, nil
}

// MaxWitnessItems bounds witness item count the codec will allocate for.
const MaxWitnessItems = 32

func decodeWitness(buf []byte, offset int) ([][]byte, int, error) {
	n, consumed, err := ReadVarint(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	if n > MaxWitnessItems {
		return nil, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"witness: item count %d exceeds max %d", n, MaxWitnessItems)
	}
	pos := offset + consumed

	items := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		item, used, err := readBytes(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		pos += used
	}
	return items, pos - offset, nil
}
