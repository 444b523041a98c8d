// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nametree

import (
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

// Depth is the number of bits in a name hash key (spec §4.3: "32-byte
// name hash"), and so the number of branch decisions from root to leaf
// in this binary radix trie.
const Depth = 256

// kind tags what a stored node represents. Empty subtrees have no kind
// and no stored node; they are denoted by their emptyHashes value.
type kind uint8

const (
	kindLeaf kind = iota
	kindInternal
)

const (
	leafPrefix     = 0x00
	internalPrefix = 0x01
)

// node is the in-memory representation of one trie node, lazily
// resolved from the backing Store and cached by hash.
type node struct {
	kind kind

	// leaf fields.
	key   [32]byte
	value []byte

	// internal fields: the child hashes are always known (they are
	// exactly what makes this node's own hash verifiable); the child
	// node pointers are populated lazily on resolve.
	left, right       chainhash.Hash
	leftNode          *node
	rightNode         *node
}

// hashLeaf returns the authenticated hash of a leaf storing (key,
// value): H(leafPrefix || key || H(value)).
func hashLeaf(key [32]byte, value []byte) chainhash.Hash {
	valueHash := chainhash.HashH(value)
	buf := make([]byte, 0, 1+32+32)
	buf = append(buf, leafPrefix)
	buf = append(buf, key[:]...)
	buf = append(buf, valueHash[:]...)
	return chainhash.HashH(buf)
}

// hashInternal returns the authenticated hash of an internal node with
// the given child hashes: H(internalPrefix || left || right).
func hashInternal(left, right chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, 1+32+32)
	buf = append(buf, internalPrefix)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.HashH(buf)
}

// emptyHashes[d] is the hash of the empty subtree rooted at depth d (0
// is the tree root, Depth is a missing leaf). It is computed once at
// package init since it depends on nothing but Depth.
var emptyHashes = computeEmptyHashes()

func computeEmptyHashes() []chainhash.Hash {
	h := make([]chainhash.Hash, Depth+1)
	// h[Depth] is the zero hash: "no leaf occupies this path".
	for d := Depth - 1; d >= 0; d-- {
		h[d] = hashInternal(h[d+1], h[d+1])
	}
	return h
}

// EmptyRoot is the root hash of a tree with no entries.
func EmptyRoot() chainhash.Hash {
	return emptyHashes[0]
}

// hash returns n's authenticated hash.
func (n *node) hash() chainhash.Hash {
	if n.kind == kindLeaf {
		return hashLeaf(n.key, n.value)
	}
	return hashInternal(n.left, n.right)
}

// bit returns the bit at the given depth (0-indexed from the most
// significant bit of key[0]) of a 32-byte key: 0 selects the left
// child, 1 the right.
func bit(key [32]byte, depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - uint(depth%8)
	return int((key[byteIdx] >> bitIdx) & 1)
}

// encode appends n's persisted encoding to buf. This differs from n's
// hash preimage: it carries everything needed to reconstruct the node
// (the leaf's full value, not just its hash) rather than just what's
// needed to verify it.
func (n *node) encode(buf []byte) []byte {
	if n.kind == kindLeaf {
		buf = append(buf, leafPrefix)
		buf = append(buf, n.key[:]...)
		buf = wire.AppendVarint(buf, uint64(len(n.value)))
		return append(buf, n.value...)
	}
	buf = append(buf, internalPrefix)
	buf = append(buf, n.left[:]...)
	return append(buf, n.right[:]...)
}

// decodeNode reconstructs a node from its persisted encoding.
func decodeNode(encoded []byte) (*node, error) {
	if len(encoded) < 1 {
		return nil, chainerr.Newf(chainerr.ErrDecodeShortRead, "nametree: empty node encoding")
	}
	switch encoded[0] {
	case leafPrefix:
		if len(encoded) < 1+32 {
			return nil, chainerr.Newf(chainerr.ErrDecodeShortRead, "nametree: truncated leaf node")
		}
		n := &node{kind: kindLeaf}
		copy(n.key[:], encoded[1:33])
		length, consumed, err := wire.ReadVarint(encoded, 33)
		if err != nil {
			return nil, err
		}
		start := 33 + consumed
		end := start + int(length)
		if end > len(encoded) {
			return nil, chainerr.Newf(chainerr.ErrDecodeShortRead, "nametree: truncated leaf value")
		}
		n.value = append([]byte(nil), encoded[start:end]...)
		return n, nil
	case internalPrefix:
		if len(encoded) != 1+32+32 {
			return nil, chainerr.Newf(chainerr.ErrDecodeOutOfRange, "nametree: malformed internal node")
		}
		n := &node{kind: kindInternal}
		copy(n.left[:], encoded[1:33])
		copy(n.right[:], encoded[33:65])
		return n, nil
	default:
		return nil, chainerr.Newf(chainerr.ErrDecodeOutOfRange, "nametree: unknown node tag %d", encoded[0])
	}
}
