// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/hnscore/hnscore/chainerr"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 32, ^uint64(0)}
	for _, v := range values {
		buf := AppendVarint(nil, v)
		if len(buf) != VarintLen(v) {
			t.Fatalf("VarintLen(%d)=%d but encoded %d bytes", v, VarintLen(v), len(buf))
		}
		got, n, err := ReadVarint(buf, 0)
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", v, err)
		}
		if got != v || n != len(buf) {
			t.Fatalf("ReadVarint round trip mismatch: want %d got %d (n=%d want %d)", v, got, n, len(buf))
		}
	}
}

func TestReadVarintShortBuffer(t *testing.T) {
	_, _, err := ReadVarint([]byte{0x80, 0x80}, 0)
	if !chainerr.Is(err, chainerr.ErrDecodeShortRead) {
		t.Fatalf("expected ErrDecodeShortRead, got %v", err)
	}
}

func TestOutpointRoundTrip(t *testing.T) {
	op := Outpoint{Index: 7}
	op.Hash[0] = 0xAB
	buf := op.Encode(nil)
	if len(buf) != OutpointSize {
		t.Fatalf("unexpected outpoint size %d", len(buf))
	}
	got, n, err := DecodeOutpoint(buf, 0)
	if err != nil {
		t.Fatalf("DecodeOutpoint: %v", err)
	}
	if n != OutpointSize || got != op {
		t.Fatalf("outpoint round trip mismatch: %+v vs %+v", got, op)
	}
}

func TestNullOutpoint(t *testing.T) {
	if !NullOutpoint.IsNull() {
		t.Fatalf("expected NullOutpoint.IsNull()")
	}
	op := Outpoint{Index: 0}
	if op.IsNull() {
		t.Fatalf("did not expect zero-index zero-hash outpoint to be null")
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := Address{Version: 0, Hash: bytes.Repeat([]byte{0x11}, 20)}
	buf := addr.Encode(nil)
	got, n, err := DecodeAddress(buf, 0)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if n != len(buf) || got.Version != addr.Version || !bytes.Equal(got.Hash, addr.Hash) {
		t.Fatalf("address round trip mismatch")
	}
}

func TestUnspendableNulldata(t *testing.T) {
	addr := Address{Version: NulldataVersion, Hash: nil}
	if !addr.IsUnspendable() {
		t.Fatalf("expected nulldata address to be unspendable")
	}
	buf := addr.Encode(nil)
	got, _, err := DecodeAddress(buf, 0)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if !got.IsUnspendable() {
		t.Fatalf("decoded nulldata address should remain unspendable")
	}
}

func TestAddressHashTooShort(t *testing.T) {
	addr := Address{Version: 0, Hash: []byte{0x01}}
	buf := addr.Encode(nil)
	_, _, err := DecodeAddress(buf, 0)
	if !chainerr.Is(err, chainerr.ErrDecodeOutOfRange) {
		t.Fatalf("expected ErrDecodeOutOfRange for short hash, got %v", err)
	}
}

func TestCovenantRoundTrip(t *testing.T) {
	cov := Covenant{
		Type:  CovenantBid,
		Items: [][]byte{{1, 2, 3}, {}, {4}},
	}
	buf := cov.Encode(nil)
	got, n, err := DecodeCovenant(buf, 0)
	if err != nil {
		t.Fatalf("DecodeCovenant: %v", err)
	}
	if n != len(buf) || got.Type != cov.Type || len(got.Items) != len(cov.Items) {
		t.Fatalf("covenant round trip mismatch")
	}
	for i := range cov.Items {
		if !bytes.Equal(got.Items[i], cov.Items[i]) {
			t.Fatalf("covenant item %d mismatch", i)
		}
	}
}

func TestCovenantTypeNames(t *testing.T) {
	if CovenantOpen.String() != "OPEN" {
		t.Fatalf("unexpected String() for CovenantOpen: %s", CovenantOpen.String())
	}
	if !CovenantOpen.IsValid() || !CovenantOpen.IsName() {
		t.Fatalf("CovenantOpen should be valid and name-bearing")
	}
	if CovenantNone.IsName() {
		t.Fatalf("CovenantNone should not be name-bearing")
	}
	var bad CovenantType = 200
	if bad.IsValid() {
		t.Fatalf("expected 200 to be an invalid covenant type")
	}
}

func TestOutputRoundTrip(t *testing.T) {
	out := Output{
		Value:   12345,
		Address: Address{Version: 0, Hash: bytes.Repeat([]byte{0x22}, 20)},
		Covenant: Covenant{
			Type:  CovenantNone,
			Items: nil,
		},
	}
	buf := out.Encode(nil)
	got, n, err := DecodeOutput(buf, 0)
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	if n != len(buf) || got.Value != out.Value {
		t.Fatalf("output round trip mismatch")
	}
}

func buildSampleTx() *Transaction {
	return &Transaction{
		Version: 1,
		Inputs: []Input{
			{
				PrevOutpoint: Outpoint{Index: 0},
				Witness:      [][]byte{{0xde, 0xad}},
				Sequence:     0xffffffff,
			},
		},
		Outputs: []Output{
			{
				Value:   5000,
				Address: Address{Version: 0, Hash: bytes.Repeat([]byte{0x33}, 20)},
				Covenant: Covenant{
					Type:  CovenantNone,
					Items: nil,
				},
			},
		},
		Locktime: 0,
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := buildSampleTx()
	full := tx.Encode()

	got, n, err := DecodeTransaction(full, 0)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if n != len(full) {
		t.Fatalf("consumed %d bytes, want %d", n, len(full))
	}
	if !bytes.Equal(got.Encode(), full) {
		t.Fatalf("re-encoding did not reproduce the original bytes (bijection)")
	}
}

func TestTransactionHashExcludesWitness(t *testing.T) {
	tx := buildSampleTx()
	h1 := tx.Hash()
	tx.Inputs[0].Witness = [][]byte{{0x01, 0x02, 0x03, 0x04}}
	h2 := tx.Hash()
	if h1 != h2 {
		t.Fatalf("txid must not depend on witness data")
	}
	wh1 := tx.WitnessHash()
	tx.Inputs[0].Witness = [][]byte{{0xff}}
	wh2 := tx.WitnessHash()
	if wh1 == wh2 {
		t.Fatalf("witness hash should depend on witness data")
	}
}

func TestIsCoinbase(t *testing.T) {
	tx := buildSampleTx()
	if tx.IsCoinbase() {
		t.Fatalf("sample tx should not be a coinbase")
	}
	tx.Inputs[0].PrevOutpoint = NullOutpoint
	if !tx.IsCoinbase() {
		t.Fatalf("tx with null prevout should be a coinbase")
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	h := &BlockHeader{
		Version: 1,
		Time:    1753920000,
		Bits:    0x1d00ffff,
		Nonce:   42,
	}
	h.PrevBlock[0] = 0x01
	h.TreeRoot[0] = 0x02

	buf := h.Encode()
	if len(buf) != BlockHeaderSize {
		t.Fatalf("unexpected header size %d, want %d", len(buf), BlockHeaderSize)
	}
	got, err := DecodeBlockHeader(buf, 0)
	if err != nil {
		t.Fatalf("DecodeBlockHeader: %v", err)
	}
	if !bytes.Equal(got.Encode(), buf) {
		t.Fatalf("header re-encoding did not reproduce original bytes")
	}
}

func TestBlockHeaderShortBuffer(t *testing.T) {
	_, err := DecodeBlockHeader(make([]byte, BlockHeaderSize-1), 0)
	if !chainerr.Is(err, chainerr.ErrDecodeShortRead) {
		t.Fatalf("expected ErrDecodeShortRead, got %v", err)
	}
}
