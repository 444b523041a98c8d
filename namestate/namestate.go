// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package namestate implements spec §4.4 (C4): the per-name record and
// its derived auction phase. The record shape and the "meaning depends
// on how far the current height is from a stored height" query pattern
// are grounded on the teacher's blockchain/stakeext.go ticket-lifecycle
// queries (LiveTickets, CheckExpiredTicket).
package namestate

import (
	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

// Phase is a name's auction stage, derived from its NameState and the
// current chain height, per spec §4.4.
type Phase uint8

const (
	PhaseOpening Phase = iota
	PhaseBidding
	PhaseReveal
	PhaseClosed
	PhaseRevoked
	PhaseExpired
)

// String renders the phase name for logging and test failure messages.
func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "OPENING"
	case PhaseBidding:
		return "BIDDING"
	case PhaseReveal:
		return "REVEAL"
	case PhaseClosed:
		return "CLOSED"
	case PhaseRevoked:
		return "REVOKED"
	case PhaseExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// State is the per-name record spec §3 describes. Exactly one State
// exists per name_hash (enforced by the store this package's caller
// uses, not by this type itself).
type State struct {
	Name     string
	NameHash [32]byte

	// Height is the block height at which the auction opened (first
	// OPEN), i.e. spec §4.4's "height".
	Height int32

	// Renewal is the last renewal height; reset by REGISTER and RENEW.
	Renewal int32

	// Owner is the outpoint currently holding the name post-REVEAL.
	Owner wire.Outpoint

	// Value is the winning bid: the second-highest revealed amount
	// under Vickrey semantics, or the sole reveal under the
	// first-price fallback (spec §4.4).
	Value uint64

	// Highest is the highest bid observed. It is intentionally not
	// derivable from public chain data alone until REVEAL — the field
	// exists for the connector's own bookkeeping during the REVEAL
	// phase, not as a value revealed to external readers before then.
	Highest uint64

	// Data is the current resource record payload, set by REGISTER and
	// replaced by UPDATE.
	Data []byte

	// Transfer is the height a TRANSFER was initiated, or 0 if none is
	// pending.
	Transfer int32

	// TransferTarget is the address a pending TRANSFER recorded as its
	// destination; FINALIZE's output must pay it. Zero value when no
	// transfer is pending. Not named as a distinct NameState field in
	// the covenant's own field list, but TRANSFER's covenant carries an
	// address and FINALIZE must check it against something durable.
	TransferTarget wire.Address

	// Revoked is the height revocation occurred, or 0 if the name was
	// never revoked. Sticky: once set, PhaseRevoked is returned
	// regardless of any other field until the name becomes re-openable.
	Revoked int32

	// Claimed is the height a reserved-name CLAIM was finalized, or 0.
	Claimed int32

	// Weak flags a name claimed without a DNSSEC proof.
	Weak bool

	// HighestWitnessHash is the witness-hash txid of the REVEAL output
	// currently recorded as Owner, kept so a later REVEAL tying Highest
	// can apply spec §4.5's tie-break (smaller witness-hash txid wins,
	// then smaller output index) without re-reading the winning tx.
	HighestWitnessHash chainhash.Hash
}

// OpenPeriodEnd is the height at which OPENING gives way to BIDDING.
func (s *State) OpenPeriodEnd(p *chaincfg.Params) int32 {
	return s.Height + p.TreeInterval
}

// BiddingPeriodEnd is the height at which BIDDING gives way to REVEAL.
func (s *State) BiddingPeriodEnd(p *chaincfg.Params) int32 {
	return s.OpenPeriodEnd(p) + p.BiddingPeriod
}

// RevealPeriodEnd is the height at which REVEAL gives way to CLOSED.
func (s *State) RevealPeriodEnd(p *chaincfg.Params) int32 {
	return s.BiddingPeriodEnd(p) + p.RevealPeriod
}

// PhaseAt derives s's auction phase at height h, per spec §4.4's table.
// Revocation is sticky and takes precedence over every other rule.
func (s *State) PhaseAt(h int32, p *chaincfg.Params) Phase {
	if s.Revoked > 0 {
		return PhaseRevoked
	}
	switch {
	case h < s.OpenPeriodEnd(p):
		return PhaseOpening
	case h < s.BiddingPeriodEnd(p):
		return PhaseBidding
	case h < s.RevealPeriodEnd(p):
		return PhaseReveal
	}
	if h-s.Renewal > p.RenewalWindow {
		return PhaseExpired
	}
	return PhaseClosed
}

// Reopenable reports whether a revoked or expired name may accept a
// fresh OPEN at height h (spec §4.5 REVOKE: "re-openable after
// auction_maturity").
func (s *State) Reopenable(h int32, p *chaincfg.Params) bool {
	switch s.PhaseAt(h, p) {
	case PhaseRevoked:
		return h-s.Revoked >= p.AuctionMaturity
	case PhaseExpired:
		return true
	default:
		return false
	}
}

// Stats is the derived view spec §3's `stats` field names; callers
// render it for RPC/debug surfaces rather than storing it.
type Stats struct {
	Phase            Phase
	OpenPeriodEnd    int32
	BiddingPeriodEnd int32
	RevealPeriodEnd  int32
}

// StatsAt computes s's derived Stats at height h.
func (s *State) StatsAt(h int32, p *chaincfg.Params) Stats {
	return Stats{
		Phase:            s.PhaseAt(h, p),
		OpenPeriodEnd:    s.OpenPeriodEnd(p),
		BiddingPeriodEnd: s.BiddingPeriodEnd(p),
		RevealPeriodEnd:  s.RevealPeriodEnd(p),
	}
}

// Clone returns a deep copy of s, used when staging a mutation so the
// original can be restored verbatim by an undo record.
func (s *State) Clone() *State {
	clone := *s
	if s.Data != nil {
		clone.Data = append([]byte(nil), s.Data...)
	}
	return &clone
}
