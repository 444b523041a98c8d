// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nametree

import "github.com/hnscore/hnscore/chainhash"

// Proof is a self-contained membership or non-membership proof for one
// key against one historical root, independently verifiable without
// access to the trie (spec §4.3: "proof verifies against the published
// root independently of the trie internals").
//
// Siblings holds the sibling hash encountered at each depth walked,
// root-first. Depth equals len(Siblings). Three shapes are possible:
//
//   - Exists: the key is present; Value is its stored value.
//   - HasConflict: the key is absent, and the path instead terminates at
//     a leaf belonging to a different key (ConflictKey/ConflictValue) —
//     proof that this is the only key in that subtree.
//   - Neither: the path terminates in a subtree that is empty outright.
type Proof struct {
	Siblings []chainhash.Hash

	Exists bool
	Value  []byte

	HasConflict   bool
	ConflictKey   [32]byte
	ConflictValue []byte
}

// Proof produces a proof for key against atRoot, per spec §4.3's
// `proof(key, at_root) -> Proof`. atRoot is not checked against the
// retained history window; any root whose nodes are still in the Store
// resolves, and a node missing from the Store fails with
// ErrInvariantViolation.
func (t *Tree) Proof(key [32]byte, atRoot chainhash.Hash) (*Proof, error) {
	p := &Proof{}
	hash := atRoot
	for depth := 0; depth < Depth; depth++ {
		n, err := t.resolve(hash, depth)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return p, nil
		}
		if n.kind == kindLeaf {
			fillLeafOutcome(p, key, n)
			return p, nil
		}
		var sibling chainhash.Hash
		if bit(key, depth) == 0 {
			sibling, hash = n.right, n.left
		} else {
			sibling, hash = n.left, n.right
		}
		p.Siblings = append(p.Siblings, sibling)
	}
	n, err := t.resolve(hash, Depth)
	if err != nil {
		return nil, err
	}
	if n != nil {
		fillLeafOutcome(p, key, n)
	}
	return p, nil
}

func fillLeafOutcome(p *Proof, key [32]byte, n *node) {
	if n.key == key {
		p.Exists = true
		p.Value = append([]byte(nil), n.value...)
		return
	}
	p.HasConflict = true
	p.ConflictKey = n.key
	p.ConflictValue = append([]byte(nil), n.value...)
}

// VerifyProof reports whether proof is a valid membership or
// non-membership proof for key against root, recomputing the root hash
// from proof's leaf outcome and sibling path. It does not touch a Tree
// or Store — per spec §4.3, a proof verifies independently of the trie
// internals.
func VerifyProof(key [32]byte, proof *Proof, root chainhash.Hash) bool {
	depth := len(proof.Siblings)

	var h chainhash.Hash
	switch {
	case proof.Exists:
		h = hashLeaf(key, proof.Value)
	case proof.HasConflict:
		if proof.ConflictKey == key {
			return false
		}
		h = hashLeaf(proof.ConflictKey, proof.ConflictValue)
	default:
		h = emptyHashes[depth]
	}

	for d := depth - 1; d >= 0; d-- {
		sibling := proof.Siblings[d]
		if bit(key, d) == 0 {
			h = hashInternal(h, sibling)
		} else {
			h = hashInternal(sibling, h)
		}
	}
	return h == root
}
