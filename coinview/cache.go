// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"sync"

	"github.com/decred/dcrd/lru"

	"github.com/hnscore/hnscore/wire"
)

// Cache is the long-lived coin cache shared by the whole chain,
// mirroring the teacher's b.utxoCache field (blockchain/stakeext.go
// calls b.utxoCache.FetchEntry/.Amount/.ScriptVersion directly). Callers
// open a per-block *View session against it with NewView, validate a
// block's transactions against that view, then either Flush or discard
// the session.
type Cache struct {
	mu             sync.RWMutex
	store          Store
	entries        *lru.Map[wire.Outpoint, *Coin]
	indexAddresses bool
	addrIndex      map[string]map[wire.Outpoint]struct{}
}

// NewCache returns a Cache backed by store with an LRU of the given
// size. When indexAddresses is true, the cache additionally maintains
// an address_hash -> Set<Outpoint> index (spec §4.6) to serve
// wallet-facing queries.
func NewCache(store Store, size uint, indexAddresses bool) *Cache {
	c := &Cache{
		store:          store,
		entries:        lru.NewMap[wire.Outpoint, *Coin](size),
		indexAddresses: indexAddresses,
	}
	if indexAddresses {
		c.addrIndex = make(map[string]map[wire.Outpoint]struct{})
	}
	return c
}

// fetch consults the cache then the backing store, populating the cache
// on a store hit. It never consults an in-flight View's overlay; callers
// go through View.Fetch for that.
func (c *Cache) fetch(outpoint wire.Outpoint) (*Coin, error) {
	c.mu.RLock()
	if coin, ok := c.entries.Get(outpoint); ok {
		c.mu.RUnlock()
		if coin == nil {
			return nil, nil
		}
		return coin.Clone(), nil
	}
	c.mu.RUnlock()

	coin, err := c.store.GetCoin(outpoint)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries.Put(outpoint, coin)
	c.mu.Unlock()
	if coin == nil {
		return nil, nil
	}
	return coin.Clone(), nil
}

func addrKey(addr wire.Address) string {
	buf := make([]byte, 0, 1+len(addr.Hash))
	buf = append(buf, addr.Version)
	buf = append(buf, addr.Hash...)
	return string(buf)
}

func (c *Cache) indexAdd(outpoint wire.Outpoint, addr wire.Address) {
	if !c.indexAddresses {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := addrKey(addr)
	set, ok := c.addrIndex[key]
	if !ok {
		set = make(map[wire.Outpoint]struct{})
		c.addrIndex[key] = set
	}
	set[outpoint] = struct{}{}
}

func (c *Cache) indexRemove(outpoint wire.Outpoint, addr wire.Address) {
	if !c.indexAddresses {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := addrKey(addr)
	if set, ok := c.addrIndex[key]; ok {
		delete(set, outpoint)
		if len(set) == 0 {
			delete(c.addrIndex, key)
		}
	}
}

// Outpoints returns every currently-unspent outpoint known to pay addr.
// Only populated when the cache was constructed with indexAddresses.
func (c *Cache) Outpoints(addr wire.Address) []wire.Outpoint {
	if !c.indexAddresses {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.addrIndex[addrKey(addr)]
	out := make([]wire.Outpoint, 0, len(set))
	for op := range set {
		out = append(out, op)
	}
	return out
}

// commit applies a View's accumulated add/remove operations to the
// cache and backing store. Called once per connected block.
func (c *Cache) commit(v *View) error {
	c.mu.Lock()
	for outpoint, coin := range v.added {
		c.entries.Put(outpoint, coin)
	}
	for outpoint := range v.removedFromStore {
		c.entries.Put(outpoint, nil)
	}
	c.mu.Unlock()

	for outpoint, coin := range v.added {
		if err := c.store.PutCoin(outpoint, coin); err != nil {
			return err
		}
		c.indexAdd(outpoint, coin.Address)
	}
	for outpoint, priorCoin := range v.removedFromStore {
		if err := c.store.DeleteCoin(outpoint); err != nil {
			return err
		}
		if priorCoin != nil {
			c.indexRemove(outpoint, priorCoin.Address)
		}
	}
	log.Debugf("coin cache flush: %d added, %d removed", len(v.added), len(v.removedFromStore))
	return nil
}
