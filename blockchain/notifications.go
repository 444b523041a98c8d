// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/hnscore/hnscore/chainhash"
	"github.com/hnscore/hnscore/wire"
)

// NtfnType identifies the kind of event a Notification carries, replacing
// the teacher's callback-shaped NtfnCallback with a typed event channel
// per spec §6/§9.
type NtfnType int

const (
	// NtfnConnected fires once a block has been fully applied and the
	// tip advanced to it.
	NtfnConnected NtfnType = iota
	// NtfnDisconnected fires once a block has been unwound from the tip.
	NtfnDisconnected
	// NtfnReorg fires once, after every disconnect of the losing branch
	// and before the first connect of the winning branch (spec §5: "a
	// disconnect event per block is emitted before any connect").
	NtfnReorg
)

// Notification is a single chain event, matching spec §6's
// on_connect/on_disconnect/on_reorg emitted interfaces.
type Notification struct {
	Type NtfnType

	// Block and Height are set for NtfnConnected and NtfnDisconnected.
	Block  *wire.Block
	Height int32

	// LosingTip and WinningTip are set for NtfnReorg.
	LosingTip  chainhash.Hash
	WinningTip chainhash.Hash
}

// notifier fans a Notification out to every subscriber without blocking
// the connector on a slow or absent reader: each send is non-blocking,
// and a Notification that does not fit in a subscriber's buffered
// channel is dropped for that subscriber and logged. This mirrors the
// teacher's NtfnCallback dispatch but replaces the callback with a
// channel per spec §9's "typed event channel" phrasing.
type notifier struct {
	mu   sync.Mutex
	subs []chan Notification
}

func newNotifier() *notifier {
	return &notifier{}
}

// Subscribe registers a new channel that receives every future
// Notification, buffered to hold buffer pending events. The connector
// never blocks on a subscriber that falls behind: while the channel is
// full, each new Notification is dropped for that subscriber.
func (n *notifier) Subscribe(buffer int) <-chan Notification {
	ch := make(chan Notification, buffer)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

func (n *notifier) publish(ntfn Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ntfn:
		default:
			log.Warnf("dropped notification %v: subscriber channel full", ntfn.Type)
		}
	}
}
