// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package namestate

// UndoEntry is one reversible NameState mutation a View session
// performed. A nil State means the name had no prior record (it was
// created during this session) and must be deleted on disconnect.
type UndoEntry struct {
	NameHash [32]byte
	Prior    *State
}

// View is a per-block working set over a Store: fetch-on-miss reads
// layered over a session overlay, staged writes, and undo-log
// generation, mirroring coinview.View's shape (spec §4.9 step 2: "stage
// a NameState mutation").
type View struct {
	store Store

	overlay map[[32]byte]*State
	undo    []UndoEntry
	seen    map[[32]byte]struct{}
}

// NewView opens a fresh per-block session against store.
func NewView(store Store) *View {
	return &View{
		store:   store,
		overlay: make(map[[32]byte]*State),
		seen:    make(map[[32]byte]struct{}),
	}
}

// Fetch returns the name's current record, consulting this session's
// overlay before falling through to the backing store.
func (v *View) Fetch(nameHash [32]byte) (*State, error) {
	if s, ok := v.overlay[nameHash]; ok {
		return s, nil
	}
	return v.store.GetState(nameHash)
}

// Stage records that nameHash's record is now next, recording the prior
// value (nil if it's a fresh name) in the undo log the first time this
// session touches that name.
func (v *View) Stage(nameHash [32]byte, next *State) error {
	if _, already := v.seen[nameHash]; !already {
		prior, err := v.store.GetState(nameHash)
		if err != nil {
			return err
		}
		v.undo = append(v.undo, UndoEntry{NameHash: nameHash, Prior: prior})
		v.seen[nameHash] = struct{}{}
	}
	v.overlay[nameHash] = next
	return nil
}

// Undo returns this session's accumulated undo log in application
// order.
func (v *View) Undo() []UndoEntry {
	return v.undo
}

// Overlay returns this session's staged name -> state mutations, keyed
// by name hash, so the block connector can mirror each one into the
// name tree's own pending overlay (spec §4.9 step 2).
func (v *View) Overlay() map[[32]byte]*State {
	return v.overlay
}

// Flush persists every staged mutation to the backing store.
func (v *View) Flush() error {
	for nameHash, state := range v.overlay {
		if err := v.store.PutState(nameHash, state); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops this session's overlay without touching the store.
func (v *View) Discard() {
	v.overlay = nil
	v.undo = nil
	v.seen = nil
}

// ApplyUndo reverses an undo log against store, used by block
// disconnect. Entries are applied in reverse order.
func ApplyUndo(store Store, entries []UndoEntry) error {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Prior == nil {
			if err := store.DeleteState(e.NameHash); err != nil {
				return err
			}
			continue
		}
		if err := store.PutState(e.NameHash, e.Prior); err != nil {
			return err
		}
	}
	return nil
}
