// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/decred/dcrd/container/apbf"

	"github.com/hnscore/hnscore/chaincfg"
	"github.com/hnscore/hnscore/chainerr"
	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/coinview"
	"github.com/hnscore/hnscore/covenant"
	"github.com/hnscore/hnscore/namestate"
	"github.com/hnscore/hnscore/nametree"
	"github.com/hnscore/hnscore/store"
	"github.com/hnscore/hnscore/txrules"
	"github.com/hnscore/hnscore/wire"
)

// UndoStore is the per-height undo-record persistence collaborator the
// connector needs, matching store.UndoStore's method set structurally
// so tests can substitute an in-memory double.
type UndoStore interface {
	GetUndo(height int32) ([]byte, error)
	PutUndo(height int32, data []byte) error
	DeleteUndo(height int32) error
}

// ChainStateStore is the durable ChainState persistence collaborator,
// matching store.ChainStateStore's method set.
type ChainStateStore interface {
	Get() (store.ChainState, error)
	Put(store.ChainState) error
}

// Chain is the block connector (C9): it owns the CoinView cache, the
// NameState store, the authenticated NameTree and the block index, and
// is the sole writer to any of them, per spec §5 ("Only the connector
// writes"). Its shape is grounded on the teacher's BlockChain type
// (blockchain/chain_test.go constructs one over the same
// index+UTXO-cache+notifier trio this module uses), generalized to
// additionally carry the name-state store and name tree this spec adds.
type Chain struct {
	params *chaincfg.Params

	index *BlockIndex

	coins *coinview.Cache
	names namestate.Store
	tree  *nametree.Tree

	undo   UndoStore
	cstate ChainStateStore

	claimVerify covenant.ClaimVerifier
	openFilter  *apbf.Filter

	notify *notifier

	// mu serializes every call into the connector, matching spec §5's
	// "single-threaded cooperative for block validation" scheduling
	// model: at most one Connect/Disconnect runs at a time.
	mu sync.Mutex

	// blocks retains the full body of every block currently reachable
	// from the tip by at least one undo record, so Disconnect and
	// Reorganize can replay a block's transactions without depending on
	// an external block store (out of scope per spec §1). Pruning old
	// entries once their undo record is discarded is a host policy this
	// core does not impose.
	blocks map[chainhash.Hash]*wire.Block

	chainState store.ChainState
}

// NewChain wires together a Chain from its backing collaborators. coins
// must already be constructed over a coinview.Store, tree over a
// nametree.Store; names and undo/cstate persist to the same or a
// different backing store as the caller prefers (store.DB provides all
// of them over one goleveldb instance).
func NewChain(p *chaincfg.Params, coins *coinview.Cache, names namestate.Store, tree *nametree.Tree, undo UndoStore, cstate ChainStateStore, claimVerify covenant.ClaimVerifier) (*Chain, error) {
	cs, err := cstate.Get()
	if err != nil {
		return nil, err
	}
	return &Chain{
		params:      p,
		index:       NewBlockIndex(),
		coins:       coins,
		names:       names,
		tree:        tree,
		undo:        undo,
		cstate:      cstate,
		claimVerify: claimVerify,
		openFilter:  covenant.NewOpenFilter(),
		notify:      newNotifier(),
		blocks:      make(map[chainhash.Hash]*wire.Block),
		chainState:  cs,
	}, nil
}

// Tip reports the current best-chain height and block hash. Height is
// -1 before any block has connected.
func (c *Chain) Tip() (int32, chainhash.Hash) {
	tip := c.index.Tip()
	if tip == nil {
		return -1, chainhash.Hash{}
	}
	return tip.height, tip.hash
}

// TreeRoot reports the name tree's root as of the current tip.
func (c *Chain) TreeRoot() chainhash.Hash {
	tip := c.index.Tip()
	if tip == nil {
		return nametree.EmptyRoot()
	}
	return tip.treeRoot
}

// ChainState returns the current durable aggregate counters.
func (c *Chain) ChainState() store.ChainState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chainState
}

// Subscribe registers a channel that receives every future connect/
// disconnect/reorg Notification, per spec §6's on_connect/on_disconnect/
// on_reorg emitted interfaces.
func (c *Chain) Subscribe(buffer int) <-chan Notification {
	return c.notify.Subscribe(buffer)
}

// recentBlockChecker returns a covenant.RecentBlockChecker testing
// whether hash names an ancestor of parent within the last
// RenewalWindow blocks below height, backing RENEW's freshness proof
// (spec §4.5, open question resolved in DESIGN.md: "within the last
// renewal_window blocks of the main chain at evaluation height").
func (c *Chain) recentBlockChecker(parent *blockNode, height int32) covenant.RecentBlockChecker {
	lowest := height - c.params.RenewalWindow
	if lowest < 0 {
		lowest = 0
	}
	return func(hash chainhash.Hash) bool {
		for node := parent; node != nil && node.height >= lowest; node = node.parent {
			if node.hash == hash {
				return true
			}
		}
		return false
	}
}

// txAccumulator collects the running totals ConnectBlock (and the
// ProposeBlock template assembler, which shares this loop) needs to
// evaluate a candidate block's aggregate caps and subsidy ceiling.
type txAccumulator struct {
	fees, conjured, burned  uint64
	sigops                  int64
	coinsAdded, coinsRemoved int64
	valueAdded, valueRemoved uint64
	coinbaseOutputTotal      uint64
}

// processTransactions runs C7/C8 over every transaction in txs against
// view and ctx, in order, enforcing that only txs[0] may be a coinbase.
func (c *Chain) processTransactions(ctx *covenant.Context, view *coinview.View, txs []*wire.Transaction) (txAccumulator, error) {
	var acc txAccumulator
	for i, tx := range txs {
		isCoinbase := tx.IsCoinbase()
		if i == 0 && !isCoinbase {
			return acc, chainerr.New(chainerr.ErrBadCoinbaseShape, "block's first transaction must be the coinbase")
		}
		if i != 0 && isCoinbase {
			return acc, chainerr.New(chainerr.ErrBadCoinbaseShape, "only the block's first transaction may be a coinbase")
		}

		if err := txrules.CheckStructural(tx, c.params); err != nil {
			return acc, err
		}

		result, err := txrules.CheckContextual(ctx, view, tx, tx.WitnessHash())
		if err != nil {
			return acc, err
		}

		acc.fees += result.Fee
		acc.conjured += result.Conjured
		acc.burned += result.Burned
		acc.sigops += result.Sigops
		acc.coinsAdded += result.CoinsAdded
		acc.coinsRemoved += result.CoinsRemoved
		acc.valueAdded += result.OutputValue
		acc.valueRemoved += result.InputValue
		if isCoinbase {
			acc.coinbaseOutputTotal = result.OutputValue
		}
	}
	return acc, nil
}

// checkAggregates validates a block's sigop, weight and subsidy caps
// given its transaction accumulator, per spec §4.9 step 4.
func (c *Chain) checkAggregates(height int32, block *wire.Block, acc txAccumulator) error {
	if err := txrules.CheckBlockSigops(acc.sigops, c.params); err != nil {
		return err
	}

	weight := block.Weight(c.params.WitnessScaleFactor)
	if weight > c.params.MaxBlockWeight {
		return chainerr.Newf(chainerr.ErrBlockWeightTooHigh, "block weight %d exceeds max %d", weight, c.params.MaxBlockWeight)
	}

	subsidy := CalcBlockSubsidy(height, c.params)
	available := uint64(subsidy) + acc.fees + acc.conjured
	if acc.coinbaseOutputTotal > available {
		return chainerr.Newf(chainerr.ErrBadSubsidy,
			"coinbase pays %d, exceeds subsidy %d plus fees %d plus conjured %d", acc.coinbaseOutputTotal, subsidy, acc.fees, acc.conjured)
	}
	return nil
}

// stageTreeOverlay mirrors every name namesView touched into the name
// tree's own overlay (spec §4.9 step 2), returning the undo entries
// needed to unwind the inserts. It mutates c.tree; callers that decide
// not to keep the result must call revertTreeEntries.
func (c *Chain) stageTreeOverlay(namesView *namestate.View) []treeOverlayUndo {
	var entries []treeOverlayUndo
	for nameHash, state := range namesView.Overlay() {
		prior, hadPrior := c.tree.OverlaySnapshot(nameHash)
		entry := treeOverlayUndo{nameHash: nameHash, hadPrior: hadPrior}
		if hadPrior && prior != nil {
			entry.prior = append([]byte(nil), *prior...)
		}
		entries = append(entries, entry)
		c.tree.Insert(nameHash, store.EncodeState(state))
	}
	return entries
}

// resolveParent looks up block's parent node and the height it would
// connect at, rejecting an unknown or mismatched PrevBlock.
func (c *Chain) resolveParent(block *wire.Block) (*blockNode, int32, error) {
	tip := c.index.Tip()
	if tip == nil {
		if !block.Header.PrevBlock.IsZero() {
			return nil, 0, chainerr.New(chainerr.ErrUnknownParent, "genesis block must carry an all-zero PrevBlock")
		}
		return nil, 0, nil
	}
	if block.Header.PrevBlock != tip.hash {
		return nil, 0, chainerr.Newf(chainerr.ErrUnknownParent,
			"block's PrevBlock %s does not match tip %s", block.Header.PrevBlock.String(), tip.hash.String())
	}
	return tip, tip.height + 1, nil
}

// ConnectBlock implements spec §4.9's six-step algorithm: it validates
// block against the current tip and, on success, atomically advances
// the tip; on any failure every in-memory session is discarded and the
// persistent stores are left exactly as they were.
func (c *Chain) ConnectBlock(block *wire.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectBlockLocked(block)
}

func (c *Chain) connectBlockLocked(block *wire.Block) error {
	parent, height, err := c.resolveParent(block)
	if err != nil {
		return err
	}

	if target := compactToBig(block.Header.Bits); target.Sign() <= 0 || target.Cmp(c.params.PowLimit) > 0 {
		return chainerr.Newf(chainerr.ErrBadProofOfWork,
			"block bits %08x encode a target outside (0, pow limit]", block.Header.Bits)
	}

	if parent != nil {
		medianTime := parent.CalcPastMedianTime()
		if int64(block.Header.Time) <= medianTime.Unix() {
			return chainerr.Newf(chainerr.ErrBadBlockTimestamp,
				"block time %d is not after median past time %d", block.Header.Time, medianTime.Unix())
		}
	}

	if block.TxRoot() != block.Header.MerkleRoot {
		return chainerr.New(chainerr.ErrBadMerkleRoot, "block's transaction merkle root does not match header")
	}
	if block.WitnessRoot() != block.Header.WitnessRoot {
		return chainerr.New(chainerr.ErrBadWitnessRoot, "block's witness root does not match header")
	}

	coinView := c.coins.NewView()
	namesView := namestate.NewView(c.names)
	ctx := &covenant.Context{
		Height:      height,
		Params:      c.params,
		Names:       namesView,
		ClaimVerify: c.claimVerify,
		RecentBlock: c.recentBlockChecker(parent, height),
		RecentOpens: c.openFilter,
	}

	acc, err := c.processTransactions(ctx, coinView, block.Transactions)
	if err != nil {
		coinView.Discard()
		return err
	}

	if err := c.checkAggregates(height, block, acc); err != nil {
		coinView.Discard()
		return err
	}

	// Step 2/5 of spec §4.9: stage every touched name's final state into
	// the tree overlay and decide whether this height crosses a commit
	// interval.
	treeEntries := c.stageTreeOverlay(namesView)

	priorTreeRoot := c.tree.Root()
	treeCommitted := height%c.params.TreeInterval == 0
	newTreeRoot := priorTreeRoot
	if treeCommitted {
		var err error
		newTreeRoot, err = c.tree.Commit()
		if err != nil {
			c.revertTreeEntries(treeEntries)
			coinView.Discard()
			return err
		}
	}

	if newTreeRoot != block.Header.TreeRoot {
		if treeCommitted {
			if err := c.tree.RevertToRoot(priorTreeRoot); err != nil {
				// Invariant violation: the root we just produced via
				// Commit() must still be in history immediately after
				// committing it.
				return chainerr.Newf(chainerr.ErrInvariantViolation, "failed to revert failed tree commit: %v", err)
			}
		} else {
			c.revertTreeEntries(treeEntries)
		}
		coinView.Discard()
		return chainerr.Newf(chainerr.ErrBadTreeRoot,
			"block's tree root %s does not match computed root %s", block.Header.TreeRoot.String(), newTreeRoot.String())
	}

	// Step 6: persist everything atomically. Nothing above this point
	// touched a durable store.
	if err := coinView.Flush(); err != nil {
		return chainerr.Newf(chainerr.ErrInvariantViolation, "failed to flush coin view: %v", err)
	}
	if err := namesView.Flush(); err != nil {
		return chainerr.Newf(chainerr.ErrInvariantViolation, "failed to flush name view: %v", err)
	}

	u := &undoRecord{
		coins:         coinView.Undo(),
		names:         namesView.Undo(),
		treeOverlay:   treeEntries,
		treeCommitted: treeCommitted,
		priorTreeRoot: priorTreeRoot,
		priorState:    c.chainState,
	}
	if err := c.undo.PutUndo(height, encodeUndoRecord(u)); err != nil {
		return chainerr.Newf(chainerr.ErrInvariantViolation, "failed to persist undo record: %v", err)
	}

	c.chainState.TotalTx += uint64(len(block.Transactions))
	c.chainState.TotalCoin = addClampedInt64(c.chainState.TotalCoin, acc.coinsAdded-acc.coinsRemoved)
	c.chainState.TotalValue = addClampedInt64Value(c.chainState.TotalValue, acc.valueAdded, acc.valueRemoved)
	c.chainState.TotalBurn += acc.burned
	if err := c.cstate.Put(c.chainState); err != nil {
		return chainerr.Newf(chainerr.ErrInvariantViolation, "failed to persist chain state: %v", err)
	}

	node := newBlockNode(block.Header, parent, newTreeRoot)
	c.index.addNode(node)
	c.index.setTip(node)
	c.blocks[node.hash] = block

	log.Infof("connected block %s at height %d (%d tx, %d fees)", node.hash, height, len(block.Transactions), acc.fees)
	c.notify.publish(Notification{Type: NtfnConnected, Block: block, Height: height})
	return nil
}

// ProposeBlock assembles a candidate block extending the current tip
// out of txs (txs[0] must be the coinbase), computing the header's
// MerkleRoot/WitnessRoot/TreeRoot the same way ConnectBlock will
// validate them. It runs the full C7/C8/tree-staging pipeline against
// the live state to get byte-exact roots, then unwinds every change
// before returning: nothing durable is left mutated, and in memory only
// the shared recent-opens filter keeps the proposed OPENs' name hashes. This
// mirrors a miner's block-template assembly step, grounded on the
// teacher's getblocktemplate-style separation between proposing a block
// and submitting it for real.
func (c *Chain) ProposeBlock(txs []*wire.Transaction, version uint32, bits uint32, t uint64) (*wire.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.index.Tip()
	var parent *blockNode
	var height int32
	var prevBlock chainhash.Hash
	if tip != nil {
		parent = tip
		height = tip.height + 1
		prevBlock = tip.hash
	}

	coinView := c.coins.NewView()
	namesView := namestate.NewView(c.names)
	ctx := &covenant.Context{
		Height:      height,
		Params:      c.params,
		Names:       namesView,
		ClaimVerify: c.claimVerify,
		RecentBlock: c.recentBlockChecker(parent, height),
		RecentOpens: c.openFilter,
	}

	acc, err := c.processTransactions(ctx, coinView, txs)
	coinView.Discard()
	if err != nil {
		return nil, err
	}

	block := &wire.Block{
		Header: &wire.BlockHeader{
			Version:   version,
			PrevBlock: prevBlock,
			Bits:      bits,
			Time:      t,
		},
		Transactions: txs,
	}
	if err := c.checkAggregates(height, block, acc); err != nil {
		return nil, err
	}

	treeEntries := c.stageTreeOverlay(namesView)
	priorTreeRoot := c.tree.Root()
	treeCommitted := height%c.params.TreeInterval == 0
	newTreeRoot := priorTreeRoot
	if treeCommitted {
		newTreeRoot, err = c.tree.Commit()
		if err != nil {
			c.revertTreeEntries(treeEntries)
			return nil, err
		}
		if err := c.tree.RevertToRoot(priorTreeRoot); err != nil {
			return nil, chainerr.Newf(chainerr.ErrInvariantViolation, "failed to revert dry-run tree commit: %v", err)
		}
	} else {
		c.revertTreeEntries(treeEntries)
	}

	block.Header.TreeRoot = newTreeRoot
	block.Header.MerkleRoot = block.TxRoot()
	block.Header.WitnessRoot = block.WitnessRoot()
	return block, nil
}

// addClampedInt64 applies a signed delta to an unsigned counter,
// clamping at zero rather than wrapping, since total_coin can never
// legitimately go negative but per-block accounting is computed as a
// signed delta.
func addClampedInt64(total uint64, delta int64) uint64 {
	if delta < 0 && uint64(-delta) > total {
		return 0
	}
	return uint64(int64(total) + delta)
}

// addClampedInt64Value applies an add/remove pair to an unsigned running
// total, clamping at zero.
func addClampedInt64Value(total, added, removed uint64) uint64 {
	if removed > total+added {
		return 0
	}
	return total + added - removed
}

// revertTreeEntries undoes a set of tree overlay insertions performed
// earlier in this same (uncommitted) block, used when a later
// validation step fails after the tree was already staged.
func (c *Chain) revertTreeEntries(entries []treeOverlayUndo) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.hadPrior {
			c.tree.RestoreOverlay(e.nameHash, nil, false)
			continue
		}
		prior := append([]byte(nil), e.prior...)
		c.tree.RestoreOverlay(e.nameHash, &prior, true)
	}
}

// DisconnectTip undoes the current tip's block, restoring the CoinView,
// NameState store and NameTree to their state immediately before that
// block connected, per spec §4.9's disconnect mirror.
func (c *Chain) DisconnectTip() (*wire.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnectTipLocked()
}

func (c *Chain) disconnectTipLocked() (*wire.Block, error) {
	tip := c.index.Tip()
	if tip == nil {
		return nil, chainerr.New(chainerr.ErrInvariantViolation, "no block to disconnect")
	}
	block, ok := c.blocks[tip.hash]
	if !ok {
		return nil, chainerr.Newf(chainerr.ErrInvariantViolation, "block body for tip %s is not retained", tip.hash.String())
	}

	data, err := c.undo.GetUndo(tip.height)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, chainerr.Newf(chainerr.ErrNoUndoRecord, "no undo record for height %d", tip.height)
	}
	u, err := decodeUndoRecord(data)
	if err != nil {
		return nil, err
	}

	if err := c.coins.ApplyUndo(u.coins); err != nil {
		return nil, err
	}
	if err := namestate.ApplyUndo(c.names, u.names); err != nil {
		return nil, err
	}

	if u.treeCommitted {
		if err := c.tree.RevertToRoot(u.priorTreeRoot); err != nil {
			return nil, err
		}
	} else {
		c.revertTreeEntries(u.treeOverlay)
	}

	if err := c.undo.DeleteUndo(tip.height); err != nil {
		return nil, err
	}
	c.chainState = u.priorState
	if err := c.cstate.Put(c.chainState); err != nil {
		return nil, err
	}

	delete(c.blocks, tip.hash)
	c.index.setTip(tip.parent)

	log.Infof("disconnected block %s at height %d", tip.hash, tip.height)
	c.notify.publish(Notification{Type: NtfnDisconnected, Block: block, Height: tip.height})
	return block, nil
}

// Reorganize switches the active chain onto a winning branch, per spec
// §4.9/§5: "disconnect N blocks ... then connect M blocks" and "a
// disconnect event per block is emitted before any connect". branch is
// the winning branch's blocks in order, starting immediately after the
// fork point; branch[0].Header.PrevBlock must name a block still known
// to the index (an ancestor of the current tip, or the current tip
// itself for a simple extension).
func (c *Chain) Reorganize(branch []*wire.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(branch) == 0 {
		return chainerr.New(chainerr.ErrInvariantViolation, "reorganize called with an empty branch")
	}
	oldTip := c.index.Tip()
	if oldTip == nil {
		return chainerr.New(chainerr.ErrInvariantViolation, "cannot reorganize an empty chain")
	}
	fork, ok := c.index.lookupNode(branch[0].Header.PrevBlock)
	if !ok {
		return chainerr.New(chainerr.ErrUnknownParent, "reorganize branch does not attach to a known block")
	}

	for c.index.Tip().height > fork.height {
		if _, err := c.disconnectTipLocked(); err != nil {
			return err
		}
	}

	if fork.hash != oldTip.hash {
		winningTip := branch[len(branch)-1].Header.Hash()
		log.Warnf("reorganizing from %s to %s via fork point %s", oldTip.hash, winningTip, fork.hash)
		c.notify.publish(Notification{
			Type:       NtfnReorg,
			LosingTip:  oldTip.hash,
			WinningTip: winningTip,
		})
	}

	for _, block := range branch {
		if err := c.ConnectBlockUnlocked(block); err != nil {
			return err
		}
	}
	return nil
}

// ConnectBlockUnlocked runs ConnectBlock's body without taking c.mu,
// for use by callers (Reorganize) that already hold it.
func (c *Chain) ConnectBlockUnlocked(block *wire.Block) error {
	return c.connectBlockLocked(block)
}
