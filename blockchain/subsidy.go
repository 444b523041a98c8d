// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/hnscore/hnscore/chaincfg"

// CalcBlockSubsidy returns the base block reward at height, halving every
// p.HalvingInterval blocks until it reaches zero. This replaces the
// teacher's stake-weighted subsidy split (blockchain's ticket/vote/PoW
// proportional split has no analogue here, since this spec has no
// proof-of-stake component) with the flat halving schedule spec §6 names
// (base_reward, halving_interval).
func CalcBlockSubsidy(height int32, p *chaincfg.Params) int64 {
	if p.HalvingInterval <= 0 {
		return p.BaseReward
	}
	halvings := uint(height) / uint(p.HalvingInterval)
	if halvings >= 64 {
		return 0
	}
	return p.BaseReward >> halvings
}
