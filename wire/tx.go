// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
)

// Transaction is the codec's in-memory representation of a transaction,
// immutable once constructed per spec §9 ("a Transaction value is
// immutable; a separate TxBuilder holds mutable building state").
//
// Wire layout (spec §6):
//
//	version(4) || varint(n_in) || inputs (non-witness, 40 bytes each) ||
//	varint(n_out) || outputs || locktime(4) || witness_data (trailing)
//
// witness_data is one witness encoding per input, in input order, with
// no count prefix of its own, appended only to the *full* encoding —
// Encode produces it, EncodeNonWitness omits it. Hash() (txid) is always
// computed over the non-witness encoding only.
type Transaction struct {
	Version  uint32
	Inputs   []Input
	Outputs  []Output
	Locktime uint32
}

// IsCoinbase reports whether tx is a coinbase transaction: its first
// input's prevout is null. Per spec §3.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) > 0 && tx.Inputs[0].PrevOutpoint.IsNull()
}

// encodeNonWitness appends the non-witness portion of tx to buf.
func (tx *Transaction) encodeNonWitness(buf []byte) []byte {
	var v [4]byte
	PutUint32LE(v[:], tx.Version)
	buf = append(buf, v[:]...)

	buf = AppendVarint(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = in.encodeNonWitness(buf)
	}

	buf = AppendVarint(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = out.Encode(buf)
	}

	var lt [4]byte
	PutUint32LE(lt[:], tx.Locktime)
	return append(buf, lt[:]...)
}

// encodeWitnessData appends the trailing witness section to buf.
func (tx *Transaction) encodeWitnessData(buf []byte) []byte {
	for _, in := range tx.Inputs {
		buf = in.encodeWitness(buf)
	}
	return buf
}

// EncodeNonWitness returns the non-witness encoding of tx — the bytes
// whose hash is the transaction's identity (txid).
func (tx *Transaction) EncodeNonWitness() []byte {
	return tx.encodeNonWitness(nil)
}

// EncodeWitnessData returns the trailing witness-only encoding of tx.
func (tx *Transaction) EncodeWitnessData() []byte {
	return tx.encodeWitnessData(nil)
}

// Encode returns the full wire encoding of tx: non-witness data followed
// by witness data, per spec §6 ("Witness data trails non-witness data").
func (tx *Transaction) Encode() []byte {
	buf := tx.encodeNonWitness(nil)
	return tx.encodeWitnessData(buf)
}

// Hash returns the transaction's identity hash: blake2b of the
// non-witness encoding (spec §3).
func (tx *Transaction) Hash() chainhash.Hash {
	return chainhash.HashH(tx.EncodeNonWitness())
}

// WitnessHash returns the transaction's witness identity:
// blake2b(tx_root || blake2b(witness_data)), where tx_root is this tx's
// own non-witness hash (the degenerate single-leaf merkle root), per
// spec §3.
func (tx *Transaction) WitnessHash() chainhash.Hash {
	txRoot := tx.Hash()
	witnessDigest := chainhash.HashH(tx.EncodeWitnessData())
	combined := make([]byte, 0, len(txRoot)+len(witnessDigest))
	combined = append(combined, txRoot[:]...)
	combined = append(combined, witnessDigest[:]...)
	return chainhash.HashH(combined)
}

// DecodeTransaction reads a full (non-witness + witness) transaction
// from buf at offset, returning the number of bytes consumed.
func DecodeTransaction(buf []byte, offset int) (*Transaction, int, error) {
	tx, nonWitnessLen, nIn, err := decodeNonWitnessTx(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	pos := offset + nonWitnessLen

	for i := 0; i < nIn; i++ {
		witness, n, err := decodeWitness(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		tx.Inputs[i].Witness = witness
		pos += n
	}

	return tx, pos - offset, nil
}

// MaxInputsOutputs bounds the number of inputs or outputs the codec
// allocates for from a single varint-prefixed count.
const MaxInputsOutputs = 1 << 16

func decodeNonWitnessTx(buf []byte, offset int) (*Transaction, int, int, error) {
	version, err := ReadUint32LE(buf, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	pos := offset + 4

	nIn, consumed, err := ReadVarint(buf, pos)
	if err != nil {
		return nil, 0, 0, err
	}
	if nIn > MaxInputsOutputs {
		return nil, 0, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"tx: input count %d exceeds max %d", nIn, MaxInputsOutputs)
	}
	pos += consumed

	inputs := make([]Input, nIn)
	for i := range inputs {
		in, n, err := decodeNonWitnessInput(buf, pos)
		if err != nil {
			return nil, 0, 0, err
		}
		inputs[i] = in
		pos += n
	}

	nOut, consumed, err := ReadVarint(buf, pos)
	if err != nil {
		return nil, 0, 0, err
	}
	if nOut > MaxInputsOutputs {
		return nil, 0, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"tx: output count %d exceeds max %d", nOut, MaxInputsOutputs)
	}
	pos += consumed

	outputs := make([]Output, nOut)
	for i := range outputs {
		out, n, err := DecodeOutput(buf, pos)
		if err != nil {
			return nil, 0, 0, err
		}
		outputs[i] = out
		pos += n
	}

	locktime, err := ReadUint32LE(buf, pos)
	if err != nil {
		return nil, 0, 0, err
	}
	pos += 4

	tx := &Transaction{
		Version:  version,
		Inputs:   inputs,
		Outputs:  outputs,
		Locktime: locktime,
	}
	return tx, pos - offset, int(nIn), nil
}
