// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

// Params groups every constant spec §6's "Configuration (enumerated)"
// lists for one network, following the teacher's per-network Params
// struct literal convention (chaincfg/mainnetparams.go).
type Params struct {
	// Name and Net identify the network for logging/handshake purposes.
	Name string
	Net  uint32

	// Genesis anchors height 0.
	GenesisBlockHeader BlockHeaderTemplate
	GenesisHash        chainhash.Hash

	// PowLimit bounds the difficulty target. This core validates a
	// header's Bits field against it but never searches for a nonce
	// (the PoW inner loop is out of scope per spec §1).
	PowLimit     *big.Int
	PowLimitBits uint32
	PowAveragingWindow int64

	// TreeInterval is the authenticated name tree's commit cadence,
	// in blocks (spec §4.3, §6).
	TreeInterval int32

	// Name auction phase timing, in blocks (spec §4.4, §6).
	BiddingPeriod   int32
	RevealPeriod    int32
	RenewalWindow   int32
	TransferLockup  int32
	AuctionMaturity int32

	// Per-block aggregate caps (spec §4.5, §4.8, §6).
	MaxBlockOpens    int
	MaxBlockUpdates  int
	MaxBlockRenewals int

	// CoinbaseMaturity is the number of confirmations a coinbase output
	// must accumulate before it is spendable (spec §4.8, §6).
	CoinbaseMaturity int32

	// Size/weight/sigop limits (spec §4.7, §4.8, §6).
	MaxTxSize          int64
	MaxTxWeight        int64
	MaxBlockWeight     int64
	MaxBlockSigops     int64
	WitnessScaleFactor int64

	// Monetary limits and subsidy schedule (spec §3, §6).
	MaxMoney        int64
	BaseReward      int64
	HalvingInterval int32

	// TargetTimePerBlock governs timestamp sanity checks on new headers;
	// it does not drive a retarget algorithm here (out of scope).
	TargetTimePerBlock time.Duration
}

// BlockHeaderTemplate is the subset of wire.BlockHeader fields fixed at
// genesis for a given network; the remainder (TreeRoot, MerkleRoot,
// WitnessRoot) are computed from the genesis transaction set.
type BlockHeaderTemplate struct {
	Version      uint32
	Bits         uint32
	Time         uint64
	ReservedRoot chainhash.Hash
}

// Header materializes g into a full wire.BlockHeader given the computed
// roots for the genesis block.
func (g BlockHeaderTemplate) Header(treeRoot, merkleRoot, witnessRoot chainhash.Hash) *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:      g.Version,
		PrevBlock:    chainhash.Hash{},
		TreeRoot:     treeRoot,
		ReservedRoot: g.ReservedRoot,
		WitnessRoot:  witnessRoot,
		MerkleRoot:   merkleRoot,
		Time:         g.Time,
		Bits:         g.Bits,
	}
}

// bigOne is reused by every network's PowLimit construction, matching
// the teacher's chaincfg package-level bigOne helper.
var bigOne = big.NewInt(1)

// MainNetParams returns the consensus parameters for the production
// network.
func MainNetParams() *Params {
	powLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
	return &Params{
		Name: "mainnet",
		Net:  0x48534b00, // "HSK\x00"

		PowLimit:           powLimit,
		PowLimitBits:       bigToCompact(powLimit),
		PowAveragingWindow: 17,
		TargetTimePerBlock: 10 * time.Minute,

		TreeInterval: 36,

		BiddingPeriod:   5 * 36,
		RevealPeriod:    10 * 36,
		RenewalWindow:   52 * 144 * 30,
		TransferLockup:  288,
		AuctionMaturity: 5 * 36,

		MaxBlockOpens:    uint16Cap,
		MaxBlockUpdates:  uint16Cap,
		MaxBlockRenewals: uint16Cap,

		CoinbaseMaturity: 100,

		MaxTxSize:          400000,
		MaxTxWeight:        400000 * 4,
		MaxBlockWeight:     3000000 * 4,
		MaxBlockSigops:     80000,
		WitnessScaleFactor: 4,

		MaxMoney:        int64(2.04e9 * 1e6),
		BaseReward:      2000 * 1e6,
		HalvingInterval: 170000,
	}
}

// uint16Cap is a conservative per-block aggregate cap used where the
// real network value is deliberately generous; kept as a named constant
// rather than a magic number repeated across networks.
const uint16Cap = 500

// TestNetParams returns the consensus parameters for the public test
// network: identical shape to MainNetParams with shorter auction
// timing so conformance tests do not need thousands of blocks.
func TestNetParams() *Params {
	p := MainNetParams()
	p.Name = "testnet"
	p.Net = 0x48534b01
	p.TreeInterval = 8
	p.BiddingPeriod = 2 * 8
	p.RevealPeriod = 2 * 8
	p.RenewalWindow = 4 * 144
	p.TransferLockup = 8
	p.AuctionMaturity = 2 * 8
	p.CoinbaseMaturity = 5
	return p
}

// RegNetParams returns the consensus parameters for a local regression
// test network: the tightest timing that still exercises every phase,
// used by this module's own package tests and by chainbuild.
func RegNetParams() *Params {
	p := MainNetParams()
	p.Name = "regtest"
	p.Net = 0x52454754
	p.TreeInterval = 4
	p.BiddingPeriod = 4
	p.RevealPeriod = 4
	p.RenewalWindow = 40
	p.TransferLockup = 2
	p.AuctionMaturity = 4
	p.CoinbaseMaturity = 2
	p.MaxBlockOpens = 10
	p.MaxBlockUpdates = 10
	p.MaxBlockRenewals = 10
	return p
}

// SimNetParams returns the consensus parameters for a private simulation
// network: wide-open per-block caps and mainnet-length timing, used for
// multi-node integration exercises that still want realistic auction
// pacing, completing the teacher's four-network convention alongside
// MainNetParams, TestNetParams and RegNetParams.
func SimNetParams() *Params {
	p := MainNetParams()
	p.Name = "simnet"
	p.Net = 0x53494d4e
	return p
}

// bigToCompact converts a *big.Int into its compact ("bits") nBits
// representation, matching the teacher's chaincfg helper of the same
// name used throughout mainnetparams.go-style files.
func bigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}
	exponent := uint((n.BitLen() + 7) / 8)
	var mantissa uint32
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0]) << (8 * (3 - exponent))
	} else {
		tn := new(big.Int).Rsh(n, 8*(exponent-3))
		mantissa = uint32(tn.Bits()[0])
	}
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}
	return uint32(exponent<<24) | mantissa
}
