// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package namestate

import (
	"testing"

	"github.com/hnscore/hnscore/chaincfg"
)

func TestPhaseAtBoundaries(t *testing.T) {
	p := chaincfg.RegNetParams()
	s := &State{Name: "example", Height: 100}

	openEnd := s.OpenPeriodEnd(p)
	biddingEnd := s.BiddingPeriodEnd(p)
	revealEnd := s.RevealPeriodEnd(p)

	cases := []struct {
		h    int32
		want Phase
	}{
		{100, PhaseOpening},
		{openEnd - 1, PhaseOpening},
		{openEnd, PhaseBidding},
		{biddingEnd - 1, PhaseBidding},
		{biddingEnd, PhaseReveal},
		{revealEnd - 1, PhaseReveal},
		{revealEnd, PhaseClosed},
	}
	for _, c := range cases {
		if got := s.PhaseAt(c.h, p); got != c.want {
			t.Errorf("PhaseAt(%d) = %s, want %s", c.h, got, c.want)
		}
	}
}

func TestPhaseExpiredAfterRenewalWindow(t *testing.T) {
	p := chaincfg.RegNetParams()
	s := &State{Name: "example", Height: 0, Renewal: 0}
	closedHeight := s.RevealPeriodEnd(p)

	if got := s.PhaseAt(closedHeight, p); got != PhaseClosed {
		t.Fatalf("PhaseAt(closedHeight) = %s, want CLOSED", got)
	}

	expiredHeight := s.Renewal + p.RenewalWindow + 1
	if got := s.PhaseAt(expiredHeight, p); got != PhaseExpired {
		t.Fatalf("PhaseAt(expiredHeight) = %s, want EXPIRED", got)
	}
}

func TestPhaseRevokedSticky(t *testing.T) {
	p := chaincfg.RegNetParams()
	s := &State{Name: "example", Height: 0, Revoked: 5}

	if got := s.PhaseAt(5, p); got != PhaseRevoked {
		t.Fatalf("PhaseAt at revocation height = %s, want REVOKED", got)
	}
	if got := s.PhaseAt(100000, p); got != PhaseRevoked {
		t.Fatalf("PhaseAt far future = %s, want REVOKED (sticky)", got)
	}
}

func TestReopenableAfterAuctionMaturity(t *testing.T) {
	p := chaincfg.RegNetParams()
	s := &State{Name: "example", Revoked: 10}

	if s.Reopenable(10, p) {
		t.Fatalf("must not be reopenable immediately at revocation height")
	}
	if !s.Reopenable(10+p.AuctionMaturity, p) {
		t.Fatalf("must be reopenable once AuctionMaturity has elapsed")
	}
}

func TestReopenableWhenExpired(t *testing.T) {
	p := chaincfg.RegNetParams()
	s := &State{Name: "example", Height: 0, Renewal: 0}
	expiredHeight := p.RenewalWindow + 1
	if !s.Reopenable(expiredHeight, p) {
		t.Fatalf("an expired name must be immediately reopenable")
	}
}

func TestViewStageFlushUndoRoundTrip(t *testing.T) {
	store := NewMemStore()
	var nameHash [32]byte
	nameHash[0] = 7

	view := NewView(store)
	fresh := &State{Name: "fresh", NameHash: nameHash, Height: 1}
	if err := view.Stage(nameHash, fresh); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := view.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}

	undo := view.Undo()
	if len(undo) != 1 || undo[0].Prior != nil {
		t.Fatalf("undo = %+v, want one entry with nil prior", undo)
	}

	if err := ApplyUndo(store, undo); err != nil {
		t.Fatalf("ApplyUndo: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store.Len() after ApplyUndo = %d, want 0", store.Len())
	}
}

func TestViewFetchPrefersOverlay(t *testing.T) {
	store := NewMemStore()
	var nameHash [32]byte
	nameHash[1] = 9
	if err := store.PutState(nameHash, &State{Name: "old", Height: 1}); err != nil {
		t.Fatalf("PutState: %v", err)
	}

	view := NewView(store)
	if err := view.Stage(nameHash, &State{Name: "new", Height: 2}); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	got, err := view.Fetch(nameHash)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Height != 2 {
		t.Fatalf("Fetch returned height %d, want 2 (overlay value)", got.Height)
	}
}
