// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nametree implements spec §4.3 (C3): the authenticated name
// tree, a persistent radix-style Merkle trie keyed by 32-byte name hash
// whose value is the encoded NameState. It has no direct teacher
// analogue (the teacher's database/ package was retrieved empty), so
// its node-resolve-then-mutate-then-flush shape instead borrows the
// cache discipline of coinview.Cache/namestate, and the reference shape
// itself is a plain binary radix trie rather than the base-16 trie
// spec §4.3 sketches — an equivalent authenticated structure spec §4.3
// explicitly allows ("Any equivalent authenticated structure with
// per-key proofs is acceptable"), chosen because a binary trie's
// per-level empty-subtree hash table and proof encoding are far simpler
// to get byte-exact than a 16-ary one, at the cost of deeper (256 vs 64
// step) proofs.
package nametree

import (
	"sync"

	"github.com/decred/dcrd/lru"

	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
)

// Tree is the authenticated name tree. A single Tree owns one pending
// overlay (spec §4.3's txn) staged since the last Commit; Commit merges
// it into the persisted trie and advances the committed root.
type Tree struct {
	store Store
	cache *lru.Map[chainhash.Hash, *node]

	mu      sync.RWMutex
	root    chainhash.Hash
	overlay map[[32]byte]*[]byte // nil value = pending remove

	history    []chainhash.Hash // oldest first; bounded to maxHistory
	maxHistory int
}

// NewTree returns a Tree backed by store, with an empty root and an LRU
// of cacheSize resolved nodes. maxHistory bounds how many past committed
// roots Proof can still serve (spec §4.3: "Historical roots for at
// least the last K commits are retained").
func NewTree(store Store, cacheSize uint, maxHistory int) *Tree {
	return &Tree{
		store:      store,
		cache:      lru.NewMap[chainhash.Hash, *node](cacheSize),
		root:       EmptyRoot(),
		overlay:    make(map[[32]byte]*[]byte),
		maxHistory: maxHistory,
	}
}

// Root returns the tree's current committed root.
func (t *Tree) Root() chainhash.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// resolve loads the node with the given hash at the given trie depth,
// consulting the cache before the backing store. It returns nil if hash
// is the empty-subtree hash for that depth.
func (t *Tree) resolve(hash chainhash.Hash, depth int) (*node, error) {
	if hash == emptyHashes[depth] {
		return nil, nil
	}
	if n, ok := t.cache.Get(hash); ok {
		return n, nil
	}
	encoded, err := t.store.GetNode(hash)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, chainerr.Newf(chainerr.ErrInvariantViolation,
			"nametree: node %s missing from store", hash.String())
	}
	n, err := decodeNode(encoded)
	if err != nil {
		return nil, err
	}
	t.cache.Put(hash, n)
	return n, nil
}

// getAt walks the trie rooted at root looking for key, returning the
// stored value or nil if absent.
func (t *Tree) getAt(root chainhash.Hash, key [32]byte) ([]byte, error) {
	hash := root
	for depth := 0; depth < Depth; depth++ {
		n, err := t.resolve(hash, depth)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, nil
		}
		if n.kind == kindLeaf {
			if n.key == key {
				return append([]byte(nil), n.value...), nil
			}
			return nil, nil
		}
		if bit(key, depth) == 0 {
			hash = n.left
		} else {
			hash = n.right
		}
	}
	// depth == Depth: hash now names a leaf-level slot.
	n, err := t.resolve(hash, Depth)
	if err != nil {
		return nil, err
	}
	if n == nil || n.key != key {
		return nil, nil
	}
	return append([]byte(nil), n.value...), nil
}

// Get returns key's value from the committed snapshot, per spec §4.3
// ("get(key) -> Option<Vec<u8>> from the committed snapshot").
func (t *Tree) Get(key [32]byte) ([]byte, error) {
	t.mu.RLock()
	root := t.root
	t.mu.RUnlock()
	return t.getAt(root, key)
}

// GetPending returns key's value consulting this tree's pending overlay
// before the committed snapshot, matching spec §4.3's "reads during
// that window return overlay-then-committed" (the window being between
// commit-interval boundaries).
func (t *Tree) GetPending(key [32]byte) ([]byte, error) {
	t.mu.RLock()
	if v, ok := t.overlay[key]; ok {
		t.mu.RUnlock()
		if v == nil {
			return nil, nil
		}
		return append([]byte(nil), *v...), nil
	}
	root := t.root
	t.mu.RUnlock()
	return t.getAt(root, key)
}

// Insert stages key -> value into the pending overlay (spec §4.3:
// "txn.insert(key, value)").
func (t *Tree) Insert(key [32]byte, value []byte) {
	v := append([]byte(nil), value...)
	t.mu.Lock()
	t.overlay[key] = &v
	t.mu.Unlock()
}

// Remove stages key's removal into the pending overlay (spec §4.3:
// "txn.remove(key)").
func (t *Tree) Remove(key [32]byte) {
	t.mu.Lock()
	t.overlay[key] = nil
	t.mu.Unlock()
}

// OverlaySnapshot returns the currently staged overlay entry for key, if
// any, so a caller can later restore exactly that entry with
// RestoreOverlay. ok is false if key has no staged entry right now (the
// common case: nothing has touched it since the last Commit).
func (t *Tree) OverlaySnapshot(key [32]byte) (value *[]byte, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.overlay[key]
	return v, ok
}

// RestoreOverlay undoes a later Insert/Remove of key by pointing its
// overlay entry back at a value previously captured with
// OverlaySnapshot. hadPrior false removes key from the overlay entirely,
// used by the block connector to revert exactly the keys one block
// touched without discarding the rest of the interval's staged writes.
func (t *Tree) RestoreOverlay(key [32]byte, prior *[]byte, hadPrior bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !hadPrior {
		delete(t.overlay, key)
		return
	}
	t.overlay[key] = prior
}

// DiscardOverlay drops every staged mutation since the last Commit
// without touching the persisted trie, matching spec §4.3's "The
// overlay is dropped entirely on block disconnect within the interval."
func (t *Tree) DiscardOverlay() {
	t.mu.Lock()
	t.overlay = make(map[[32]byte]*[]byte)
	t.mu.Unlock()
}

// PendingLen reports how many keys are currently staged, used by the
// connector to decide whether a commit at this height has any effect
// and by tests asserting overlay state.
func (t *Tree) PendingLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.overlay)
}

// put writes n to the cache and backing store, returning its hash.
func (t *Tree) put(n *node) (chainhash.Hash, error) {
	h := n.hash()
	if err := t.store.PutNode(h, n.encode(nil)); err != nil {
		return chainhash.Hash{}, err
	}
	t.cache.Put(h, n)
	return h, nil
}

// setAt returns the hash of the subtree at depth rooted at hash, after
// setting key's value to value (nil value means removal). It recurses
// to Depth, writing every newly created node to the store as it
// unwinds.
func (t *Tree) setAt(hash chainhash.Hash, depth int, key [32]byte, value *[]byte) (chainhash.Hash, error) {
	if depth == Depth {
		if value == nil {
			return emptyHashes[Depth], nil
		}
		leaf := &node{kind: kindLeaf, key: key, value: *value}
		return t.put(leaf)
	}

	n, err := t.resolve(hash, depth)
	if err != nil {
		return chainhash.Hash{}, err
	}

	if n == nil {
		// Empty subtree: if this is a removal, it's already absent.
		if value == nil {
			return hash, nil
		}
		// Descend to Depth creating a chain of single-child internal
		// nodes down to the new leaf.
		return t.buildPath(depth, key, *value)
	}

	if n.kind == kindLeaf {
		if n.key == key {
			if value == nil {
				return emptyHashes[depth], nil
			}
			leaf := &node{kind: kindLeaf, key: key, value: *value}
			return t.put(leaf)
		}
		if value == nil {
			// Removing a different key than the one occupying this
			// leaf slot: nothing to do.
			return hash, nil
		}
		// Two leaves collide on this path; split by re-inserting the
		// existing leaf alongside the new one from this depth down.
		return t.splitAndInsert(depth, n, key, *value)
	}

	// Internal node: recurse into the side key's bit selects.
	if bit(key, depth) == 0 {
		newLeft, err := t.setAt(n.left, depth+1, key, value)
		if err != nil {
			return chainhash.Hash{}, err
		}
		if newLeft == emptyHashes[depth+1] && n.right == emptyHashes[depth+1] {
			return emptyHashes[depth], nil
		}
		return t.put(&node{kind: kindInternal, left: newLeft, right: n.right})
	}
	newRight, err := t.setAt(n.right, depth+1, key, value)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if n.left == emptyHashes[depth+1] && newRight == emptyHashes[depth+1] {
		return emptyHashes[depth], nil
	}
	return t.put(&node{kind: kindInternal, left: n.left, right: newRight})
}

// buildPath creates the chain of internal nodes from depth down to a
// fresh leaf for (key, value), used when descending into a previously
// empty subtree.
func (t *Tree) buildPath(depth int, key [32]byte, value []byte) (chainhash.Hash, error) {
	if depth == Depth {
		leaf := &node{kind: kindLeaf, key: key, value: value}
		return t.put(leaf)
	}
	childHash, err := t.buildPath(depth+1, key, value)
	if err != nil {
		return chainhash.Hash{}, err
	}
	var n *node
	if bit(key, depth) == 0 {
		n = &node{kind: kindInternal, left: childHash, right: emptyHashes[depth+1]}
	} else {
		n = &node{kind: kindInternal, left: emptyHashes[depth+1], right: childHash}
	}
	return t.put(n)
}

// splitAndInsert handles the one case a binary radix trie must
// specifically construct: inserting newKey at a depth where an existing
// leaf (holding a different key) already occupies the slot. It walks
// both keys' remaining bits downward until they diverge, building a
// chain of internal nodes, then places each leaf in its own branch.
func (t *Tree) splitAndInsert(depth int, existing *node, newKey [32]byte, newValue []byte) (chainhash.Hash, error) {
	if depth == Depth {
		// Keys are identical at full depth; this should not happen
		// since Tree keys are fixed-width and compared in full above,
		// but guard rather than silently drop data.
		return chainhash.Hash{}, chainerr.Newf(chainerr.ErrInvariantViolation,
			"nametree: key collision at maximum depth")
	}
	existingBit := bit(existing.key, depth)
	newBit := bit(newKey, depth)
	if existingBit != newBit {
		existingHash, err := t.put(existing)
		if err != nil {
			return chainhash.Hash{}, err
		}
		newLeafHash, err := t.buildPath(depth+1, newKey, newValue)
		if err != nil {
			return chainhash.Hash{}, err
		}
		if newBit == 0 {
			return t.put(&node{kind: kindInternal, left: newLeafHash, right: existingHash})
		}
		return t.put(&node{kind: kindInternal, left: existingHash, right: newLeafHash})
	}
	childHash, err := t.splitAndInsert(depth+1, existing, newKey, newValue)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if existingBit == 0 {
		return t.put(&node{kind: kindInternal, left: childHash, right: emptyHashes[depth+1]})
	}
	return t.put(&node{kind: kindInternal, left: emptyHashes[depth+1], right: childHash})
}

// Commit merges the pending overlay into the committed tree and returns
// its new root, per spec §4.3. It is idempotent for an empty overlay:
// calling Commit with nothing staged returns the current root without
// touching history.
func (t *Tree) Commit() (chainhash.Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.overlay) == 0 {
		return t.root, nil
	}

	newRoot := t.root
	for key, value := range t.overlay {
		var err error
		newRoot, err = t.setAt(newRoot, 0, key, value)
		if err != nil {
			return chainhash.Hash{}, err
		}
	}

	staged := len(t.overlay)
	t.history = append(t.history, t.root)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
	t.root = newRoot
	t.overlay = make(map[[32]byte]*[]byte)
	log.Debugf("name tree committed %d entries, new root %s", staged, t.root)
	return t.root, nil
}

// RevertToRoot points the tree directly at a prior committed root,
// used by block disconnect when undoing a commit that crossed an
// interval boundary (spec §4.9: "revert a commit by pointing at the
// prior historical root"). root must be one of the values Commit
// previously returned and still within the retained history window, or
// the current root itself.
func (t *Tree) RevertToRoot(root chainhash.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if root == t.root {
		return nil
	}
	for i := len(t.history) - 1; i >= 0; i-- {
		if t.history[i] == root {
			t.root = root
			t.history = t.history[:i]
			return nil
		}
	}
	return chainerr.Newf(chainerr.ErrInvariantViolation,
		"nametree: root %s is not within the retained history window", root.String())
}

// History returns the retained historical committed roots, oldest
// first, not including the current root.
func (t *Tree) History() []chainhash.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]chainhash.Hash, len(t.history))
	copy(out, t.history)
	return out
}
