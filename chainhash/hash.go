// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type shared by every
// consensus-critical structure in this module (outpoints, transactions,
// block headers, name-tree nodes) along with the blake2b helpers used to
// produce them.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the number of bytes in the hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified
// a hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the consensus structures (outpoints, tx
// identities, block headers and name-tree nodes) and is the output of
// Blake2b-256.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the conventional big-endian display used by the teacher
// repo's chainhash package.
func (h Hash) String() string {
	hexBytes := make([]byte, HashSize*2)
	hex.Encode(hexBytes, h[:])
	reversed := make([]byte, HashSize*2)
	for i := 0; i < HashSize*2; i += 2 {
		reversed[HashSize*2-2-i] = hexBytes[i]
		reversed[HashSize*2-1-i] = hexBytes[i+1]
	}
	return string(reversed)
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// CloneBytes returns a newly allocated slice that contains a copy of the
// hash. Hashes embedded in decoded structures must be copied, never
// aliased, per the codec's canonicalization rule.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned
// if the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// HashB calculates blake2b-256(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	h := blake2b.Sum256(b)
	return h[:]
}

// HashH calculates blake2b-256(b) and returns the resulting bytes as a
// Hash.
func HashH(b []byte) Hash {
	return Hash(blake2b.Sum256(b))
}
