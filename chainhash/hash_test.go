// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"bytes"
	"testing"
)

func TestHashFuncs(t *testing.T) {
	in := []byte("handshake")
	h1 := HashH(in)
	h2b := HashB(in)
	if !bytes.Equal(h1[:], h2b) {
		t.Fatalf("HashH/HashB mismatch: %x vs %x", h1, h2b)
	}
	if len(h2b) != HashSize {
		t.Fatalf("unexpected hash size %d", len(h2b))
	}
}

func TestSetBytesRoundTrip(t *testing.T) {
	h := HashH([]byte("name"))
	clone := h.CloneBytes()
	var h2 Hash
	if err := h2.SetBytes(clone); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}
	if h2 != h {
		t.Fatalf("round trip mismatch")
	}
	if err := h2.SetBytes(clone[:10]); err == nil {
		t.Fatalf("expected error for short slice")
	}
}

func TestIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatalf("expected zero hash")
	}
	h = HashH([]byte{1})
	if h.IsZero() {
		t.Fatalf("expected non-zero hash")
	}
}
