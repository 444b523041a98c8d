// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nametree

import (
	"bytes"
	"testing"

	"github.com/hnscore/hnscore/chainhash"
)

func testKey(b byte) [32]byte {
	var k [32]byte
	k[0] = b
	k[31] = b ^ 0xff
	return k
}

func TestCommitIdempotentOnEmptyOverlay(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	root := tr.Root()
	if root != EmptyRoot() {
		t.Fatalf("fresh tree root = %s, want empty root", root)
	}
	got, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got != root {
		t.Fatalf("Commit on empty overlay changed root: %s != %s", got, root)
	}
}

func TestInsertGetCommit(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	k := testKey(0x11)

	if v, err := tr.Get(k); err != nil || v != nil {
		t.Fatalf("Get before insert = (%v, %v), want (nil, nil)", v, err)
	}

	tr.Insert(k, []byte("alpha-state"))
	if v, err := tr.Get(k); err != nil || v != nil {
		t.Fatalf("Get before commit should still miss committed snapshot, got (%v, %v)", v, err)
	}
	if v, err := tr.GetPending(k); err != nil || !bytes.Equal(v, []byte("alpha-state")) {
		t.Fatalf("GetPending = (%v, %v), want alpha-state", v, err)
	}

	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if root == EmptyRoot() {
		t.Fatalf("Commit with a staged insert returned the empty root")
	}

	v, err := tr.Get(k)
	if err != nil {
		t.Fatalf("Get after commit: %v", err)
	}
	if !bytes.Equal(v, []byte("alpha-state")) {
		t.Fatalf("Get after commit = %q, want alpha-state", v)
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	k1, k2 := testKey(0x01), testKey(0x02)

	tr.Insert(k1, []byte("one"))
	tr.Insert(k2, []byte("two"))
	if _, err := tr.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tr.Remove(k1)
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit after remove: %v", err)
	}

	if v, err := tr.Get(k1); err != nil || v != nil {
		t.Fatalf("Get(k1) after removal = (%v, %v), want (nil, nil)", v, err)
	}
	v, err := tr.Get(k2)
	if err != nil || !bytes.Equal(v, []byte("two")) {
		t.Fatalf("Get(k2) = (%v, %v), want two", v, err)
	}

	if root == EmptyRoot() {
		t.Fatalf("removing one of two keys should not reproduce the empty root")
	}
}

func TestDiscardOverlay(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	k := testKey(0x33)

	tr.Insert(k, []byte("pending"))
	tr.DiscardOverlay()

	if tr.PendingLen() != 0 {
		t.Fatalf("PendingLen after discard = %d, want 0", tr.PendingLen())
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if root != EmptyRoot() {
		t.Fatalf("Commit after discard produced a non-empty root")
	}
}

func TestRevertToRoot(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	k := testKey(0x44)

	rootBefore := tr.Root()

	tr.Insert(k, []byte("v1"))
	rootAfterFirst, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tr.Insert(k, []byte("v2"))
	if _, err := tr.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := tr.RevertToRoot(rootAfterFirst); err != nil {
		t.Fatalf("RevertToRoot: %v", err)
	}
	v, err := tr.Get(k)
	if err != nil || !bytes.Equal(v, []byte("v1")) {
		t.Fatalf("Get after revert = (%v, %v), want v1", v, err)
	}

	if err := tr.RevertToRoot(rootBefore); err != nil {
		t.Fatalf("RevertToRoot to genesis: %v", err)
	}
	if v, err := tr.Get(k); err != nil || v != nil {
		t.Fatalf("Get after reverting to genesis = (%v, %v), want (nil, nil)", v, err)
	}

	if err := tr.RevertToRoot(chainhash.HashH([]byte("never committed"))); err == nil {
		t.Fatalf("RevertToRoot to an unknown root should fail")
	}
}

func TestProofMembershipAndNonMembership(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 8)
	present := testKey(0x55)
	absent := testKey(0x66)

	tr.Insert(present, []byte("registered"))
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	proof, err := tr.Proof(present, root)
	if err != nil {
		t.Fatalf("Proof(present): %v", err)
	}
	if !proof.Exists || !bytes.Equal(proof.Value, []byte("registered")) {
		t.Fatalf("Proof(present) = %+v, want Exists with value", proof)
	}
	if !VerifyProof(present, proof, root) {
		t.Fatalf("VerifyProof(present) failed against its own root")
	}

	absentProof, err := tr.Proof(absent, root)
	if err != nil {
		t.Fatalf("Proof(absent): %v", err)
	}
	if absentProof.Exists {
		t.Fatalf("Proof(absent) claims existence")
	}
	if !VerifyProof(absent, absentProof, root) {
		t.Fatalf("VerifyProof(absent) failed to verify non-membership")
	}

	// A proof must not verify against an unrelated root.
	if VerifyProof(present, proof, EmptyRoot()) {
		t.Fatalf("VerifyProof(present) incorrectly verified against the empty root")
	}
}

func TestProofAcrossManyKeysStillVerifies(t *testing.T) {
	tr := NewTree(NewMemStore(), 64, 8)
	keys := make([][32]byte, 0, 20)
	for i := byte(0); i < 20; i++ {
		k := chainhash.HashH([]byte{i, i, i})
		keys = append(keys, k)
		tr.Insert(k, []byte{i})
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for i, k := range keys {
		proof, err := tr.Proof(k, root)
		if err != nil {
			t.Fatalf("Proof(%d): %v", i, err)
		}
		if !proof.Exists || len(proof.Value) != 1 || proof.Value[0] != byte(i) {
			t.Fatalf("Proof(%d) = %+v, want single byte %d", i, proof, i)
		}
		if !VerifyProof(k, proof, root) {
			t.Fatalf("VerifyProof(%d) failed", i)
		}
	}
}

func TestHistoryRetentionWindow(t *testing.T) {
	tr := NewTree(NewMemStore(), 16, 2)
	k := testKey(0x77)

	var roots []chainhash.Hash
	for i := 0; i < 4; i++ {
		tr.Insert(k, []byte{byte(i)})
		root, err := tr.Commit()
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		roots = append(roots, root)
	}

	if len(tr.History()) != 2 {
		t.Fatalf("History() length = %d, want 2 (maxHistory)", len(tr.History()))
	}

	// The oldest two roots have fallen out of the retention window.
	if err := tr.RevertToRoot(roots[0]); err == nil {
		t.Fatalf("RevertToRoot to an evicted root should fail")
	}
	if err := tr.RevertToRoot(roots[2]); err != nil {
		t.Fatalf("RevertToRoot to a retained root: %v", err)
	}
}
