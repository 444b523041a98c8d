// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package covenant implements spec §4.5 (C5): the covenant state
// machine. Given a tx's spent coin (if any) and an output's covenant,
// it decides validity against the current NameState and the phase
// function of §4.4, and stages the resulting NameState mutation. The
// exhaustive per-type dispatch generalizes the teacher's
// dispatch-by-stake-class shape (blockchain/stakeext.go's
// stake.IsSSGen/IsSSRtx family) from Decred's fixed ticket classes to
// this spec's fixed covenant types, and its error values follow the
// teacher's ruleError(ErrXxx, str) idiom via the chainerr package.
package covenant

import (
	"bytes"

	"github.com/decred/dcrd/container/apbf"
	"golang.org/x/crypto/sha3"

	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/namehash"
	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/wire"
)

// openFilterMaxElements and openFilterFalsePositiveRate size the
// duplicate-open fast-reject filter. A few blocks' worth of OPENs is
// all the filter needs to hold at once, since evalOpen always falls
// back to the authoritative NameState lookup regardless of what the
// filter reports.
const (
	openFilterMaxElements       = 1 << 16
	openFilterFalsePositiveRate = 0.0001
)

// NewOpenFilter returns a fresh age-partitioned bloom filter sized for
// tracking recently opened names, suitable for Context.RecentOpens. A
// caller that never sets it simply records no recent opens; the
// duplicate-open check never depends on the filter.
func NewOpenFilter() *apbf.Filter {
	return apbf.NewFilter(openFilterMaxElements, openFilterFalsePositiveRate)
}

// ClaimData is what the reserved-name registry attests for a CLAIM,
// per spec §4.2's claim_verify(name, proof) -> Result<ClaimData, ClaimErr>.
type ClaimData struct {
	Value  uint64
	Weak   bool
	Height int32
}

// ClaimVerifier is the reserved-name registry collaborator spec §4.2
// and §4.5 CLAIM call out as an external interface point this core only
// calls, never implements. height is the CLAIM's committed height,
// threaded through so the registry's attestation is bound to a single
// height and cannot be replayed verbatim onto a different chain after a
// reorg.
type ClaimVerifier func(name string, height int32, proofHash []byte) (*ClaimData, error)

// RecentBlockChecker reports whether hash names a block within the
// main chain's recent window, backing RENEW's freshness proof (spec
// §4.5 RENEW: "block_hash must reference a recent main-chain block").
type RecentBlockChecker func(hash chainhash.Hash) bool

// Context carries everything a single block's covenant evaluations
// share: the chain parameters, current height, the staged NameState
// session, the external registry collaborator, and the running
// per-block aggregate counters spec §4.5/§4.8 cap.
type Context struct {
	Height      int32
	Params      *chaincfg.Params
	Names       *namestate.View
	ClaimVerify ClaimVerifier
	RecentBlock RecentBlockChecker

	Opens    int
	Updates  int
	Renewals int

	// RecentOpens is an optional filter of recently opened name hashes;
	// evalOpen adds every accepted OPEN's name hash to it. Nil is a valid
	// zero value. evalOpen always performs the authoritative NameState
	// lookup, whatever the filter holds.
	RecentOpens *apbf.Filter
}

// Result is what a single covenant evaluation produces: the amount
// burned (surplus destroyed, e.g. REGISTER under-spend) and the amount
// conjured (new value introduced by CLAIM, added to chain state but not
// to the block's fee total per spec §4.8).
type Result struct {
	Burned   uint64
	Conjured uint64
}

// nameHashArray copies a covenant item into the fixed-size array the
// namestate package keys its store by.
func nameHashArray(item []byte) ([32]byte, error) {
	var h [32]byte
	if len(item) != 32 {
		return h, chainerr.Newf(chainerr.ErrBadItems, "name_hash item is %d bytes, want 32", len(item))
	}
	copy(h[:], item)
	return h, nil
}

// isOwnerCovenant reports whether t is one of the covenant types whose
// output the NameState's Owner outpoint may legally point at, per spec §3's
// invariant: "owner ... references ... a covenant ∈ {REGISTER, UPDATE,
// RENEW, TRANSFER, FINALIZE}".
func isOwnerCovenant(t wire.CovenantType) bool {
	switch t {
	case wire.CovenantRegister, wire.CovenantUpdate, wire.CovenantRenew,
		wire.CovenantTransfer, wire.CovenantFinalize:
		return true
	default:
		return false
	}
}

func equalBytes(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// blind computes spec §4.5's BID commitment: sha3(nonce || value_le8).
func blind(nonce []byte, value uint64) chainhash.Hash {
	var v [8]byte
	wire.PutUint64LE(v[:], value)
	buf := make([]byte, 0, len(nonce)+8)
	buf = append(buf, nonce...)
	buf = append(buf, v[:]...)
	return chainhash.Hash(sha3.Sum256(buf))
}

// Evaluate validates a single input+output covenant pair against the
// current NameState and the block-height phase, per spec §4.5.
// spentCoin is the Coin the input consumed, already fetched by the
// caller via coinview (nil for a coinbase CLAIM, which has no real
// prevout). prevout is the location of the coin being spent (used to
// recognize which REVEAL output a REDEEM targets). outpoint is the
// output's own location, needed to stage Owner/Transfer pointers and
// for the REVEAL tie-break. txWitnessHash is the witness-hash txid of
// the transaction that produced out, used only by REVEAL's tie-break.
func Evaluate(ctx *Context, spentCoin *coinview.Coin, prevout wire.Outpoint, out wire.Output, outpoint wire.Outpoint, txWitnessHash chainhash.Hash) (Result, error) {
	cov := out.Covenant
	if !cov.Type.IsValid() {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "unrecognized covenant type %d", cov.Type)
	}

	switch cov.Type {
	case wire.CovenantNone:
		return evalNone(spentCoin)
	case wire.CovenantClaim:
		return evalClaim(ctx, cov, out, outpoint)
	case wire.CovenantOpen:
		return evalOpen(ctx, cov, outpoint)
	case wire.CovenantBid:
		return evalBid(ctx, cov, spentCoin, out)
	case wire.CovenantReveal:
		return evalReveal(ctx, cov, spentCoin, out, outpoint, txWitnessHash)
	case wire.CovenantRedeem:
		return evalRedeem(ctx, cov, spentCoin, prevout)
	case wire.CovenantRegister:
		return evalRegister(ctx, cov, spentCoin, out, outpoint)
	case wire.CovenantUpdate:
		return evalUpdate(ctx, cov, spentCoin, prevout, out, outpoint)
	case wire.CovenantRenew:
		return evalRenew(ctx, cov, spentCoin, prevout, outpoint)
	case wire.CovenantTransfer:
		return evalTransfer(ctx, cov, spentCoin, prevout, outpoint)
	case wire.CovenantFinalize:
		return evalFinalize(ctx, cov, spentCoin, prevout, out, outpoint)
	case wire.CovenantRevoke:
		return evalRevoke(ctx, cov, spentCoin, prevout)
	default:
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "unhandled covenant type %d", cov.Type)
	}
}

// evalNone validates a plain coin: it must not link to any name. There
// is nothing to stage.
func evalNone(spentCoin *coinview.Coin) (Result, error) {
	if spentCoin != nil && spentCoin.Covenant.Type != wire.CovenantNone {
		return Result{}, chainerr.New(chainerr.ErrBadOwner,
			"NONE output cannot spend a name-linked coin directly; the covenant dispatch for the prevout's own type governs this spend")
	}
	return Result{}, nil
}

// evalClaim validates an airdrop/reserved-name insertion. Only valid in
// a coinbase (txrules.CheckStructural rejects a CLAIM output in any
// other transaction before C8 ever dispatches here); it is verified
// against the reserved-name registry collaborator, with the covenant's
// own height item cross-checked against both the connecting height and
// the registry's own attestation so a CLAIM cannot be replayed onto a
// different point in the chain after a reorg.
func evalClaim(ctx *Context, cov wire.Covenant, out wire.Output, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 5 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "CLAIM wants 5 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	rawName := cov.Items[1]
	canon, err := namehash.Canonicalize(rawName)
	if err != nil {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "CLAIM: invalid name grammar: %v", err)
	}
	if !namehash.MatchesHash(canon, chainhash.Hash(nameHash)) {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "CLAIM: raw_name does not hash to name_hash")
	}
	proofHash := cov.Items[2]
	if len(cov.Items[3]) != 4 {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "CLAIM: height must be 4 bytes")
	}
	heightField, err := wire.ReadUint32LE(cov.Items[3], 0)
	if err != nil {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "CLAIM: bad height field: %v", err)
	}
	if len(cov.Items[4]) != 8 {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "CLAIM fee_field must be 8 bytes")
	}
	feeField, _ := wire.ReadUint64LE(cov.Items[4], 0)

	// The committed height must be the height this CLAIM is actually
	// connecting at: a CLAIM mined at height H and later replayed
	// verbatim onto a sibling chain at height H' fails here before it
	// ever reaches the registry.
	if int32(heightField) != ctx.Height {
		return Result{}, chainerr.Newf(chainerr.ErrClaimInvalid,
			"CLAIM: committed height %d does not match connecting height %d", heightField, ctx.Height)
	}

	existing, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if existing != nil && existing.Revoked == 0 {
		return Result{}, chainerr.New(chainerr.ErrClaimInvalid, "CLAIM: name already has a non-revoked state")
	}

	if ctx.ClaimVerify == nil {
		return Result{}, chainerr.New(chainerr.ErrClaimInvalid, "CLAIM: no reserved-name registry collaborator configured")
	}
	claim, err := ctx.ClaimVerify(string(canon), ctx.Height, proofHash)
	if err != nil || claim == nil {
		return Result{}, chainerr.Newf(chainerr.ErrClaimInvalid, "CLAIM: registry rejected proof: %v", err)
	}
	if claim.Height != ctx.Height {
		return Result{}, chainerr.New(chainerr.ErrClaimInvalid, "CLAIM: registry attestation is bound to a different height")
	}
	if feeField > claim.Value {
		return Result{}, chainerr.New(chainerr.ErrClaimInvalid, "CLAIM: fee_field exceeds attested value")
	}
	wantValue := claim.Value - feeField
	if out.Value != wantValue {
		return Result{}, chainerr.Newf(chainerr.ErrClaimInvalid,
			"CLAIM: output value %d does not equal attested value minus fee %d", out.Value, wantValue)
	}

	state := &namestate.State{
		Name:     string(canon),
		NameHash: nameHash,
		Height:   ctx.Height,
		Renewal:  ctx.Height,
		Owner:    outpoint,
		Value:    out.Value,
		Highest:  out.Value,
		Claimed:  ctx.Height,
		Weak:     claim.Weak,
	}
	if err := ctx.Names.Stage(nameHash, state); err != nil {
		return Result{}, err
	}
	log.Debugf("CLAIM %q at height %d", canon, ctx.Height)
	return Result{Conjured: claim.Value}, nil
}

// evalOpen validates the start of an auction for a name.
func evalOpen(ctx *Context, cov wire.Covenant, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "OPEN wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	rawName := cov.Items[1]

	canon, err := namehash.Canonicalize(rawName)
	if err != nil {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "OPEN: invalid name grammar: %v", err)
	}
	if !namehash.MatchesHash(canon, chainhash.Hash(nameHash)) {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "OPEN: raw_name does not hash to name_hash")
	}

	// The authoritative NameState lookup runs for every OPEN: RecentOpens
	// ages entries out, so its answer alone never decides a duplicate.
	existing, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if existing != nil && !existing.Reopenable(ctx.Height, ctx.Params) {
		log.Debugf("rejecting OPEN for %q at height %d: already has an active NameState", canon, ctx.Height)
		return Result{}, chainerr.New(chainerr.ErrDuplicateOpen, "OPEN: name already has an active NameState")
	}

	if ctx.Opens >= ctx.Params.MaxBlockOpens {
		return Result{}, chainerr.Newf(chainerr.ErrCapExceeded, "OPEN: block already has %d opens, cap is %d", ctx.Opens, ctx.Params.MaxBlockOpens)
	}
	ctx.Opens++
	if ctx.RecentOpens != nil {
		ctx.RecentOpens.Add(nameHash[:])
	}

	state := &namestate.State{
		Name:     string(canon),
		NameHash: nameHash,
		Height:   ctx.Height,
	}
	if err := ctx.Names.Stage(nameHash, state); err != nil {
		return Result{}, err
	}
	log.Debugf("OPEN %q at height %d", canon, ctx.Height)
	return Result{}, nil
}

// evalBid validates a sealed-bid commitment made during BIDDING.
func evalBid(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, out wire.Output) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "BID wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	if len(cov.Items[1]) != chainhash.HashSize {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "BID: blind must be 32 bytes")
	}

	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if state == nil {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "BID: no auction open for this name")
	}
	if state.PhaseAt(ctx.Height, ctx.Params) != namestate.PhaseBidding {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "BID: name is not in BIDDING phase")
	}

	if spentCoin != nil && spentCoin.Covenant.Type != wire.CovenantNone {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "BID: input must be NONE or another coin the bidder owns")
	}
	return Result{}, nil
}

// evalReveal validates spending a BID during REVEAL, updating the
// Vickrey bookkeeping.
func evalReveal(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, out wire.Output, outpoint wire.Outpoint, txWitnessHash chainhash.Hash) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "REVEAL wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	nonce := cov.Items[1]

	if spentCoin == nil || spentCoin.Covenant.Type != wire.CovenantBid {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REVEAL: input must spend a BID output")
	}
	if len(spentCoin.Covenant.Items) != 2 {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "REVEAL: spent BID has malformed items")
	}
	bidBlind := spentCoin.Covenant.Items[1]

	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if state == nil {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "REVEAL: no auction state for this name")
	}
	if state.PhaseAt(ctx.Height, ctx.Params) != namestate.PhaseReveal {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "REVEAL: name is not in REVEAL phase")
	}

	got := blind(nonce, out.Value)
	if !equalBytes(got[:], bidBlind) {
		return Result{}, chainerr.New(chainerr.ErrBadBlind, "REVEAL: sha3(nonce || value) does not match the bid's blind")
	}

	next := state.Clone()
	noOwnerYet := next.Owner == (wire.Outpoint{})
	switch {
	case out.Value > next.Highest || noOwnerYet:
		// New highest bid (or the very first reveal): the prior highest
		// becomes the second-highest (stored Value, Vickrey pricing),
		// the new reveal becomes the owner candidate. First-price
		// fallback is applied below once no second reveal ever arrives.
		if out.Value > next.Highest {
			next.Value = next.Highest
		}
		next.Highest = out.Value
		next.Owner = outpoint
		next.HighestWitnessHash = txWitnessHash
	case out.Value == next.Highest:
		// Tie at the current highest: smaller witness-hash txid wins,
		// then smaller output index (spec §4.5 tie-break). Either way
		// the second price is now pinned at this value.
		next.Value = next.Highest
		if winsTie(txWitnessHash, outpoint, next.HighestWitnessHash, next.Owner) {
			next.Owner = outpoint
			next.HighestWitnessHash = txWitnessHash
		}
	default:
		// A losing reveal below the current highest: it may still raise
		// the stored second-highest price.
		if out.Value > next.Value {
			next.Value = out.Value
		}
	}
	if next.Value == 0 && next.Highest > 0 {
		// Only one reveal has arrived so far: first-price fallback
		// (spec §4.4 "first-price fallback if only one reveal exists").
		next.Value = next.Highest
	}

	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// winsTie reports whether the candidate (txid, outpoint) beats the
// incumbent owner under spec §4.5's REVEAL tie-break: smaller
// witness-hash txid wins, then smaller output index.
func winsTie(candidateWitnessHash chainhash.Hash, candidate wire.Outpoint, incumbentWitnessHash chainhash.Hash, incumbent wire.Outpoint) bool {
	if incumbent == (wire.Outpoint{}) {
		return true
	}
	cmp := bytes.Compare(candidateWitnessHash[:], incumbentWitnessHash[:])
	if cmp != 0 {
		return cmp < 0
	}
	return candidate.Index < incumbent.Index
}

// evalRedeem validates spending a losing REVEAL coin back to a refund
// output; it makes no NameState change.
func evalRedeem(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint) (Result, error) {
	if len(cov.Items) != 1 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "REDEEM wants 1 item, got %d", len(cov.Items))
	}
	if spentCoin == nil || spentCoin.Covenant.Type != wire.CovenantReveal {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REDEEM: input must spend a REVEAL output")
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if state != nil && state.Owner == prevout {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REDEEM: cannot redeem the winning REVEAL")
	}
	return Result{}, nil
}

// evalRegister validates spending the winning REVEAL, writing `data`
// into NameState and burning the surplus of the second-price
// NameState.Value over the REGISTER output's value.
func evalRegister(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, out wire.Output, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "REGISTER wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	data := cov.Items[1]

	if spentCoin == nil || spentCoin.Covenant.Type != wire.CovenantReveal {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REGISTER: input must spend the winning REVEAL")
	}

	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return Result{}, err
	}
	if state == nil {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "REGISTER: no auction state for this name")
	}
	if state.PhaseAt(ctx.Height, ctx.Params) != namestate.PhaseClosed {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "REGISTER: name is not CLOSED")
	}
	if state.Renewal != 0 {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "REGISTER: name already registered; use UPDATE/RENEW")
	}
	if state.Owner == (wire.Outpoint{}) {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REGISTER: no winning REVEAL recorded")
	}

	if out.Value > state.Value {
		return Result{}, chainerr.New(chainerr.ErrBadOwner, "REGISTER: output value exceeds the winning price")
	}
	burned := state.Value - out.Value

	next := state.Clone()
	next.Owner = outpoint
	next.Data = append([]byte(nil), data...)
	next.Renewal = ctx.Height
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{Burned: burned}, nil
}

// evalUpdate validates spending the current owner coin to replace
// `data`.
func evalUpdate(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint, out wire.Output, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "UPDATE wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	data := cov.Items[1]

	state, err := requireOwnerSpend(ctx, nameHash, spentCoin, prevout)
	if err != nil {
		return Result{}, err
	}
	if state.PhaseAt(ctx.Height, ctx.Params) != namestate.PhaseClosed {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "UPDATE: name is not CLOSED")
	}
	if ctx.Updates >= ctx.Params.MaxBlockUpdates {
		return Result{}, chainerr.Newf(chainerr.ErrCapExceeded, "UPDATE: block already has %d updates, cap is %d", ctx.Updates, ctx.Params.MaxBlockUpdates)
	}
	ctx.Updates++

	next := state.Clone()
	next.Owner = outpoint
	next.Data = append([]byte(nil), data...)
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// evalRenew validates spending the owner coin to reset the renewal
// clock, given a freshness proof against a recent main-chain block.
func evalRenew(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "RENEW wants 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	if len(cov.Items[1]) != chainhash.HashSize {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "RENEW: block_hash must be 32 bytes")
	}
	var blockHash chainhash.Hash
	copy(blockHash[:], cov.Items[1])

	state, err := requireOwnerSpend(ctx, nameHash, spentCoin, prevout)
	if err != nil {
		return Result{}, err
	}
	phase := state.PhaseAt(ctx.Height, ctx.Params)
	if phase != namestate.PhaseClosed {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "RENEW: name is not CLOSED")
	}
	if ctx.RecentBlock == nil || !ctx.RecentBlock(blockHash) {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "RENEW: block_hash is not within the main chain's recent window")
	}
	if ctx.Renewals >= ctx.Params.MaxBlockRenewals {
		return Result{}, chainerr.Newf(chainerr.ErrCapExceeded, "RENEW: block already has %d renewals, cap is %d", ctx.Renewals, ctx.Params.MaxBlockRenewals)
	}
	ctx.Renewals++

	next := state.Clone()
	next.Owner = outpoint
	next.Renewal = ctx.Height
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// evalTransfer validates spending the owner coin to record a pending
// ownership transfer.
func evalTransfer(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) != 3 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "TRANSFER wants 3 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	if len(cov.Items[1]) != 1 {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "TRANSFER: address_version must be 1 byte")
	}
	targetVersion := cov.Items[1][0]
	targetHash := cov.Items[2]
	if len(targetHash) < wire.MinAddressHashLen || len(targetHash) > wire.MaxAddressHashLen {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "TRANSFER: address_hash out of range")
	}

	state, err := requireOwnerSpend(ctx, nameHash, spentCoin, prevout)
	if err != nil {
		return Result{}, err
	}
	if state.PhaseAt(ctx.Height, ctx.Params) != namestate.PhaseClosed {
		return Result{}, chainerr.New(chainerr.ErrBadPhase, "TRANSFER: name is not CLOSED")
	}

	next := state.Clone()
	next.Owner = outpoint
	next.Transfer = ctx.Height
	next.TransferTarget = wire.Address{Version: targetVersion, Hash: append([]byte(nil), targetHash...)}
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// evalFinalize validates spending a TRANSFER after its lockup has
// elapsed; the output must pay the recorded target.
func evalFinalize(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint, out wire.Output, outpoint wire.Outpoint) (Result, error) {
	if len(cov.Items) < 2 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "FINALIZE wants at least 2 items, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	rawName := cov.Items[1]
	canon, err := namehash.Canonicalize(rawName)
	if err != nil {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "FINALIZE: invalid name grammar: %v", err)
	}
	if !namehash.MatchesHash(canon, chainhash.Hash(nameHash)) {
		return Result{}, chainerr.New(chainerr.ErrBadItems, "FINALIZE: raw_name does not hash to name_hash")
	}

	state, err := requireOwnerSpend(ctx, nameHash, spentCoin, prevout)
	if err != nil {
		return Result{}, err
	}
	if state.Transfer == 0 {
		return Result{}, chainerr.New(chainerr.ErrTransferNotReady, "FINALIZE: no pending transfer")
	}
	if ctx.Height-state.Transfer < ctx.Params.TransferLockup {
		return Result{}, chainerr.New(chainerr.ErrTransferNotReady, "FINALIZE: transfer lockup has not elapsed")
	}
	if out.Address.Version != state.TransferTarget.Version || !equalBytes(out.Address.Hash, state.TransferTarget.Hash) {
		return Result{}, chainerr.Newf(chainerr.ErrBadOwner,
			"FINALIZE: output pays %s, recorded transfer target is %s", out.Address.String(), state.TransferTarget.String())
	}

	next := state.Clone()
	next.Owner = outpoint
	next.Transfer = 0
	next.TransferTarget = wire.Address{}
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// evalRevoke validates the owner unconditionally revoking the name.
func evalRevoke(ctx *Context, cov wire.Covenant, spentCoin *coinview.Coin, prevout wire.Outpoint) (Result, error) {
	if len(cov.Items) != 1 {
		return Result{}, chainerr.Newf(chainerr.ErrBadItems, "REVOKE wants 1 item, got %d", len(cov.Items))
	}
	nameHash, err := nameHashArray(cov.Items[0])
	if err != nil {
		return Result{}, err
	}
	state, err := requireOwnerSpend(ctx, nameHash, spentCoin, prevout)
	if err != nil {
		return Result{}, err
	}
	if state.Revoked != 0 {
		return Result{}, chainerr.New(chainerr.ErrRevoked, "REVOKE: name is already revoked")
	}

	next := state.Clone()
	next.Revoked = ctx.Height
	if err := ctx.Names.Stage(nameHash, next); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// requireOwnerSpend fetches nameHash's state and validates that
// spentCoin is indeed its current owner coin, per spec §3's owner
// invariant: the input actually being spent (prevout) must be the
// outpoint NameState itself records as Owner, not merely some
// unrelated coin carrying an owner-class covenant type.
func requireOwnerSpend(ctx *Context, nameHash [32]byte, spentCoin *coinview.Coin, prevout wire.Outpoint) (*namestate.State, error) {
	state, err := ctx.Names.Fetch(nameHash)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, chainerr.New(chainerr.ErrBadOwner, "no NameState exists for this name")
	}
	if state.Revoked != 0 {
		return nil, chainerr.New(chainerr.ErrRevoked, "name is revoked")
	}
	if spentCoin == nil || !isOwnerCovenant(spentCoin.Covenant.Type) {
		return nil, chainerr.New(chainerr.ErrBadOwner, "input does not spend an owner-class covenant")
	}
	if state.Owner != prevout {
		return nil, chainerr.New(chainerr.ErrBadOwner, "input does not spend this name's recorded owner coin")
	}
	return state, nil
}
