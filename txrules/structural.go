// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txrules implements spec §4.7 (C7, context-free structural
// checks) and §4.8 (C8, contextual checks). It is the caller that
// drives the covenant package's per-output dispatch, grounded on the
// teacher's blockchain/validate.go split between CheckTransactionSanity
// (no chain state needed) and CheckTransactionInputs (chain state
// needed): C7 mirrors the former, C8 the latter.
package txrules

import (
	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/wire"
)

// MaxClaimWitnessSize bounds a CLAIM/airdrop coinbase witness envelope,
// per spec §4.7.
const MaxClaimWitnessSize = 10000

// covenantItemCounts gives the exact item count spec §4.5 fixes for
// each covenant type, except FINALIZE which is open-ended (at least 2).
// CheckStructural uses this as a cheap context-free pre-check; the
// covenant package re-validates the same bound authoritatively, since a
// transaction can reach C5 through a path that never called C7 (e.g. a
// unit test exercising the covenant package directly).
var covenantItemCounts = map[wire.CovenantType]int{
	wire.CovenantNone:     0,
	wire.CovenantClaim:    5,
	wire.CovenantOpen:     2,
	wire.CovenantBid:      2,
	wire.CovenantReveal:   2,
	wire.CovenantRedeem:   1,
	wire.CovenantRegister: 2,
	wire.CovenantUpdate:   2,
	wire.CovenantRenew:    2,
	wire.CovenantTransfer: 3,
	wire.CovenantRevoke:   1,
}

// CheckStructural validates tx against every rule spec §4.7 describes
// as checkable without reference to chain state: non-empty inputs and
// outputs, size and weight bounds, output value ranges, no duplicate
// prevout, coinbase shape, and covenant argument-count sanity.
func CheckStructural(tx *wire.Transaction, p *chaincfg.Params) error {
	if len(tx.Inputs) == 0 {
		return chainerr.New(chainerr.ErrNoInputs, "transaction has no inputs")
	}
	if len(tx.Outputs) == 0 {
		return chainerr.New(chainerr.ErrNoOutputs, "transaction has no outputs")
	}

	nonWitness := tx.EncodeNonWitness()
	full := tx.Encode()
	if int64(len(full)) > p.MaxTxSize {
		return chainerr.Newf(chainerr.ErrTxTooBig, "transaction size %d exceeds max %d", len(full), p.MaxTxSize)
	}
	weight := int64(len(nonWitness))*(p.WitnessScaleFactor-1) + int64(len(full))
	if weight > p.MaxTxWeight {
		return chainerr.Newf(chainerr.ErrTxWeightTooHigh, "transaction weight %d exceeds max %d", weight, p.MaxTxWeight)
	}

	coinbase := tx.IsCoinbase()
	if coinbase {
		if len(tx.Inputs) != 1 {
			return chainerr.New(chainerr.ErrBadCoinbaseShape, "coinbase must have exactly one input")
		}
		for _, item := range tx.Inputs[0].Witness {
			if len(item) > MaxClaimWitnessSize {
				return chainerr.Newf(chainerr.ErrBadCoinbaseShape,
					"coinbase witness item is %d bytes, exceeds max %d", len(item), MaxClaimWitnessSize)
			}
		}
	} else {
		for i, in := range tx.Inputs {
			if in.PrevOutpoint.IsNull() {
				return chainerr.Newf(chainerr.ErrBadCoinbaseShape, "non-coinbase input %d carries a null prevout", i)
			}
		}
	}

	seen := make(map[wire.Outpoint]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if _, dup := seen[in.PrevOutpoint]; dup {
			return chainerr.Newf(chainerr.ErrDuplicateInput, "duplicate prevout %s:%d", in.PrevOutpoint.Hash.String(), in.PrevOutpoint.Index)
		}
		seen[in.PrevOutpoint] = struct{}{}
	}

	var total uint64
	for i, out := range tx.Outputs {
		if out.Value > uint64(p.MaxMoney) {
			return chainerr.Newf(chainerr.ErrOutputValueRange, "output %d value %d exceeds max money %d", i, out.Value, p.MaxMoney)
		}
		newTotal := total + out.Value
		if newTotal < total || newTotal > uint64(p.MaxMoney) {
			return chainerr.New(chainerr.ErrOutputTotalRange, "sum of output values exceeds max money")
		}
		total = newTotal

		if !coinbase && out.Covenant.Type == wire.CovenantClaim {
			return chainerr.New(chainerr.ErrBadCovenantShape, "CLAIM covenant is only valid in a coinbase transaction")
		}

		if err := checkCovenantShape(out.Covenant); err != nil {
			return err
		}
	}

	return nil
}

// checkCovenantShape validates a single output's covenant against the
// fixed item counts spec §4.5 names, as a cheap pre-check before the
// covenant package's authoritative per-field validation.
func checkCovenantShape(cov wire.Covenant) error {
	if !cov.Type.IsValid() {
		return chainerr.Newf(chainerr.ErrBadCovenantShape, "unrecognized covenant type %d", cov.Type)
	}
	if len(cov.Items) > wire.MaxCovenantItems {
		return chainerr.Newf(chainerr.ErrBadCovenantShape, "covenant carries %d items, exceeds max %d", len(cov.Items), wire.MaxCovenantItems)
	}
	if cov.Type == wire.CovenantFinalize {
		if len(cov.Items) < 2 {
			return chainerr.New(chainerr.ErrBadCovenantShape, "FINALIZE wants at least 2 items")
		}
		return nil
	}
	want, ok := covenantItemCounts[cov.Type]
	if ok && len(cov.Items) != want {
		return chainerr.Newf(chainerr.ErrBadCovenantShape, "%s wants %d items, got %d", cov.Type, want, len(cov.Items))
	}
	return nil
}
