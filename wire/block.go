// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
)

// MaxBlockTransactions bounds the number of transactions the codec will
// allocate for from a single varint-prefixed count, guarding against an
// unbounded allocation from a malicious length prefix.
const MaxBlockTransactions = 1 << 20

// Block is a header plus its ordered transaction list. The first
// transaction is always the coinbase, per spec §3.
type Block struct {
	Header       *BlockHeader
	Transactions []*Transaction
}

// Encode returns the full wire encoding of b: header(BlockHeaderSize) ||
// varint(n_tx) || transactions (full encoding, each).
func (b *Block) Encode() []byte {
	buf := make([]byte, 0, BlockHeaderSize+len(b.Transactions)*256)
	buf = append(buf, b.Header.Encode()...)
	buf = AppendVarint(buf, uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		buf = append(buf, tx.Encode()...)
	}
	return buf
}

// TxRoot returns the merkle root of the block's transaction identities
// (non-witness hashes), the value spec §3/§6 commits to the header's
// MerkleRoot field.
func (b *Block) TxRoot() chainhash.Hash {
	hashes := make([]chainhash.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return BuildMerkleRoot(hashes)
}

// WitnessRoot returns the merkle root of each transaction's witness-data
// digest, the value spec §3 names "merkle-of-(witness-data)" and §6
// commits to the header's WitnessRoot field.
func (b *Block) WitnessRoot() chainhash.Hash {
	hashes := make([]chainhash.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = chainhash.HashH(tx.EncodeWitnessData())
	}
	return BuildMerkleRoot(hashes)
}

// Weight returns the block's scaled size, charging witness bytes at 1x
// and non-witness bytes at WitnessScaleFactor, per spec §6's weight
// definition and mirroring the per-tx formula txrules.CheckStructural
// applies to a single transaction.
func (b *Block) Weight(witnessScaleFactor int64) int64 {
	var weight int64
	for _, tx := range b.Transactions {
		nonWitness := int64(len(tx.EncodeNonWitness()))
		full := int64(len(tx.Encode()))
		weight += nonWitness*(witnessScaleFactor-1) + full
	}
	return weight
}

// DecodeBlock reads a full Block from buf at offset, returning the
// number of bytes consumed.
func DecodeBlock(buf []byte, offset int) (*Block, int, error) {
	header, err := DecodeBlockHeader(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	pos := offset + BlockHeaderSize

	n, consumed, err := ReadVarint(buf, pos)
	if err != nil {
		return nil, 0, err
	}
	if n > MaxBlockTransactions {
		return nil, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"block: tx count %d exceeds max %d", n, MaxBlockTransactions)
	}
	pos += consumed

	txs := make([]*Transaction, n)
	for i := range txs {
		tx, used, err := DecodeTransaction(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		txs[i] = tx
		pos += used
	}

	return &Block{Header: header, Transactions: txs}, pos - offset, nil
}
