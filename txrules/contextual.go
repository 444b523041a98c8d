// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"github.com/jrick/bitset"

	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/covenant"
	"github.com/hnscore/hnscore/wire"
)

// sigopWeight is the accounting cost charged per covenant output
// towards a block's aggregate sigop budget. Covenant evaluation is
// heavier than a plain value transfer (it touches the name tree and,
// for REVEAL, recomputes a blind), so it is weighted above the
// WitnessScaleFactor-style baseline a NONE output carries; this mirrors
// the teacher's practice of charging stake-class outputs a fixed
// multiple of a regular output's sigop cost (blockchain/stakeext.go's
// treatment of SSGen/SSRtx versus a plain P2PKH spend).
const (
	sigopWeightPlain    = 1
	sigopWeightCovenant = 4
)

// ContextualResult is what CheckContextual reports back to the block
// connector (C9) for a single transaction: the fee it pays, the value
// it conjures into existence (CLAIM only), and the sigop weight it
// contributes to the block's running total.
type ContextualResult struct {
	Fee      uint64
	Conjured uint64
	Burned   uint64
	Sigops   int64

	// InputValue is the sum of every spent input's coin value (0 for a
	// coinbase, which has no real inputs), and OutputValue the sum of
	// every output's value. The block connector differences these
	// across a block to maintain ChainState's running total_coin/
	// total_value counters without re-deriving them from the view.
	InputValue  uint64
	OutputValue uint64

	// CoinsAdded and CoinsRemoved count spendable outputs created and
	// inputs spent, for the same running-counter purpose.
	CoinsAdded   int64
	CoinsRemoved int64

	// MaturedInputs flags, by input index, which inputs passed the
	// coinbase-maturity check (every non-coinbase-spending input counts
	// as trivially matured). Unset for a coinbase transaction, which has
	// no real inputs to spend.
	MaturedInputs bitset.Bytes
}

// CheckContextual implements spec §4.8: fetches and spends every input
// via view, enforces coinbase maturity, dispatches each (input, output)
// pair at the same index to the covenant package, and returns the
// resulting fee/conjured/sigops accounting. ctx.Height must already be
// set to the height tx is being validated for inclusion in; ctx.Opens/
// Updates/Renewals are shared and accumulated across every transaction
// in the block, so the caller constructs one Context per block, not per
// transaction.
func CheckContextual(ctx *covenant.Context, view *coinview.View, tx *wire.Transaction, txWitnessHash chainhash.Hash) (ContextualResult, error) {
	coinbase := tx.IsCoinbase()

	matured := bitset.NewBytes(len(tx.Inputs))
	spentCoins := make([]*coinview.Coin, len(tx.Inputs))
	var inputTotal uint64

	for i, in := range tx.Inputs {
		if coinbase {
			continue
		}
		coin, err := view.Spend(in.PrevOutpoint)
		if err != nil {
			return ContextualResult{}, err
		}
		if coin.Coinbase && ctx.Height-coin.Height < ctx.Params.CoinbaseMaturity {
			return ContextualResult{}, chainerr.Newf(chainerr.ErrImmatureCoinbase,
				"tried to spend coinbase output %s:%d with %d confirmations, %d required",
				in.PrevOutpoint.Hash.String(), in.PrevOutpoint.Index, ctx.Height-coin.Height, ctx.Params.CoinbaseMaturity)
		}
		matured.Set(i)
		spentCoins[i] = coin

		newTotal := inputTotal + coin.Value
		if newTotal < inputTotal {
			return ContextualResult{}, chainerr.New(chainerr.ErrFeeOutOfRange, "sum of input values overflows")
		}
		inputTotal = newTotal
	}

	var outputTotal, conjured, burned uint64
	var sigops int64
	var coinsAdded int64
	for i, out := range tx.Outputs {
		var spentCoin *coinview.Coin
		var prevout wire.Outpoint
		if i < len(tx.Inputs) && !coinbase {
			spentCoin = spentCoins[i]
			prevout = tx.Inputs[i].PrevOutpoint
		}

		outpoint := wire.Outpoint{Hash: tx.Hash(), Index: uint32(i)}
		result, err := covenant.Evaluate(ctx, spentCoin, prevout, out, outpoint, txWitnessHash)
		if err != nil {
			return ContextualResult{}, err
		}
		conjured += result.Conjured
		burned += result.Burned

		if out.Covenant.Type == wire.CovenantNone {
			sigops += sigopWeightPlain
		} else {
			sigops += sigopWeightCovenant
		}

		newTotal := outputTotal + out.Value
		if newTotal < outputTotal {
			return ContextualResult{}, chainerr.New(chainerr.ErrFeeOutOfRange, "sum of output values overflows")
		}
		outputTotal = newTotal

		if !out.Address.IsUnspendable() {
			coinsAdded++
		}
	}

	view.Add(tx, ctx.Height)

	var coinsRemoved int64
	if !coinbase {
		coinsRemoved = int64(len(tx.Inputs))
	}

	if coinbase {
		return ContextualResult{
			Conjured:    conjured,
			Burned:      burned,
			Sigops:      sigops,
			OutputValue: outputTotal,
			CoinsAdded:  coinsAdded,
		}, nil
	}

	available := inputTotal + conjured
	if outputTotal > available {
		return ContextualResult{}, chainerr.Newf(chainerr.ErrInsufficientFee,
			"outputs total %d exceeds inputs plus conjured value %d", outputTotal, available)
	}
	fee := available - outputTotal
	if fee > uint64(ctx.Params.MaxMoney) {
		return ContextualResult{}, chainerr.Newf(chainerr.ErrFeeOutOfRange, "fee %d exceeds max money", fee)
	}

	return ContextualResult{
		Fee:           fee,
		Conjured:      conjured,
		Burned:        burned,
		Sigops:        sigops,
		InputValue:    inputTotal,
		OutputValue:   outputTotal,
		CoinsAdded:    coinsAdded,
		CoinsRemoved:  coinsRemoved,
		MaturedInputs: matured,
	}, nil
}

// CheckBlockSigops reports whether a block's accumulated sigop weight
// stays within the per-block budget spec §4.8 and §6 name
// (max_block_sigops).
func CheckBlockSigops(total int64, p *chaincfg.Params) error {
	if total > p.MaxBlockSigops {
		return chainerr.Newf(chainerr.ErrTooManySigops, "block sigop weight %d exceeds max %d", total, p.MaxBlockSigops)
	}
	return nil
}
