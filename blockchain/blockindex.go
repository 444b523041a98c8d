// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"sync"
	"time"

	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

// medianTimeBlocks is the number of preceding blocks CalcPastMedianTime
// considers, matching the btcd/dcrd-lineage convention of 11.
const medianTimeBlocks = 11

// blockNode represents a block within the tree of potential chains,
// mirroring the teacher's blockNode (blockindex_test.go exercises this
// shape directly): a header plus parent/child graph pointers and the
// cumulative work needed to pick a best chain across a reorg. Unlike the
// teacher, this node also carries the authenticated name tree's root as
// of this height, since the connector needs it to rebuild a commit's
// prior root on disconnect.
type blockNode struct {
	parent   *blockNode
	children []*blockNode

	hash   chainhash.Hash
	height int32
	header wire.BlockHeader

	workSum *big.Int

	// treeRoot is the name tree's committed root covering this height:
	// either the root this block's own commit produced (h % tree_interval
	// == 0) or, between commit intervals, the root inherited from the
	// last block that did commit.
	treeRoot chainhash.Hash
}

// newBlockNode builds a node for header, linking it under parent (nil
// for genesis).
func newBlockNode(header *wire.BlockHeader, parent *blockNode, treeRoot chainhash.Hash) *blockNode {
	n := &blockNode{
		hash:     header.Hash(),
		header:   *header,
		treeRoot: treeRoot,
		workSum:  calcWork(header.Bits),
	}
	if parent != nil {
		n.parent = parent
		n.height = parent.height + 1
		n.workSum = new(big.Int).Add(n.workSum, parent.workSum)
	}
	return n
}

// Ancestor returns the ancestor of n at the given height, or nil if
// height is out of range. It walks the parent chain directly rather than
// consulting a height index, which is adequate for the short walks a
// reorg or median-time calculation needs.
func (n *blockNode) Ancestor(height int32) *blockNode {
	if height < 0 || height > n.height {
		return nil
	}
	node := n
	for node != nil && node.height > height {
		node = node.parent
	}
	return node
}

// RelativeAncestor returns the ancestor distance blocks before n.
func (n *blockNode) RelativeAncestor(distance int32) *blockNode {
	return n.Ancestor(n.height - distance)
}

// CalcPastMedianTime returns the median of the timestamps of the
// medianTimeBlocks blocks ending at and including n, guarding against a
// single miner skewing the timestamp used for phase-boundary comparisons.
func (n *blockNode) CalcPastMedianTime() time.Time {
	timestamps := make([]int64, 0, medianTimeBlocks)
	node := n
	for i := 0; i < medianTimeBlocks && node != nil; i++ {
		timestamps = append(timestamps, int64(node.header.Time))
		node = node.parent
	}

	for i := 1; i < len(timestamps); i++ {
		for j := i; j > 0 && timestamps[j-1] > timestamps[j]; j-- {
			timestamps[j-1], timestamps[j] = timestamps[j], timestamps[j-1]
		}
	}

	return time.Unix(timestamps[len(timestamps)/2], 0)
}

// calcWork converts a header's compact difficulty bits into the amount
// of proof-of-work the block represents, grounded on the teacher's
// blockchain/difficulty.go CalcWork (the PoW search itself is out of
// scope; only the resulting work sum, used to pick a best chain across a
// reorg, matters here).
func calcWork(bits uint32) *big.Int {
	target := compactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	// work = 2^256 / (target + 1)
	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

var (
	bigOne    = big.NewInt(1)
	oneLsh256 = new(big.Int).Lsh(bigOne, 256)
)

// compactToBig is the inverse of chaincfg's bigToCompact, converting a
// block header's nBits-style compact representation back to a full
// target.
func compactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := uint(compact >> 24)

	var n *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		n = big.NewInt(int64(mantissa))
	} else {
		n = big.NewInt(int64(mantissa))
		n.Lsh(n, 8*(exponent-3))
	}
	return n
}

// BlockIndex is the in-memory graph of every known block header, keyed
// by hash, tracking the current best tip by cumulative work. Only the
// connector mutates it; readers take a snapshot of the tip pointer.
type BlockIndex struct {
	mu    sync.RWMutex
	nodes map[chainhash.Hash]*blockNode
	tip   *blockNode
}

// NewBlockIndex returns an empty index with no tip.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{nodes: make(map[chainhash.Hash]*blockNode)}
}

// addNode registers n and links it to its parent's children list.
func (bi *BlockIndex) addNode(n *blockNode) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	bi.nodes[n.hash] = n
	if n.parent != nil {
		n.parent.children = append(n.parent.children, n)
	}
}

// lookupNode returns the node for hash, if known.
func (bi *BlockIndex) lookupNode(hash chainhash.Hash) (*blockNode, bool) {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	n, ok := bi.nodes[hash]
	return n, ok
}

// Tip returns the current best-chain tip, or nil before any block has
// been connected.
func (bi *BlockIndex) Tip() *blockNode {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	return bi.tip
}

func (bi *BlockIndex) setTip(n *blockNode) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	bi.tip = n
}

// findFork returns the most recent common ancestor of a and b, walking
// each back to the lower height before stepping both in lockstep — the
// standard btcd/dcrd reorg fork-point search.
func findFork(a, b *blockNode) *blockNode {
	for a.height > b.height {
		a = a.parent
	}
	for b.height > a.height {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}
