// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package namehash implements spec §4.2: label canonicalization and the
// SHA3-256 hash that keys both the authenticated name tree and the
// covenant rule table. The API shape follows the teacher's small
// pure-function packages wrapping a crypto primitive (dcrutil/wif.go,
// exccutil/hash160.go's Hash160).
package namehash

import (
	"bytes"
	"errors"

	"golang.org/x/crypto/sha3"

	"github.com/hnscore/hnscore/chainhash"
)

// MaxLabelLen is the maximum length of a raw label, per spec §4.2.
const MaxLabelLen = 63

// Grammar errors returned by Canonicalize.
var (
	ErrEmptyLabel     = errors.New("namehash: label is empty")
	ErrLabelTooLong   = errors.New("namehash: label exceeds 63 bytes")
	ErrInvalidChar    = errors.New("namehash: label contains a disallowed character")
	ErrDotAtEdge      = errors.New("namehash: label starts or ends with a dot")
	ErrAdjacentDots   = errors.New("namehash: label contains adjacent dots")
	ErrDashAtEdge     = errors.New("namehash: label starts or ends with - or _")
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isLowerAlpha(b byte) bool { return b >= 'a' && b <= 'z' }
func isUpperAlpha(b byte) bool { return b >= 'A' && b <= 'Z' }

// Canonicalize validates label against spec §4.2's grammar (1-63 bytes
// of [0-9a-z], interior [-_], interior single non-adjacent non-edge
// [.]), lowercasing uppercase ASCII input before returning it. It always
// returns a newly allocated slice, even when label is already canonical
// and lowercase.
func Canonicalize(label []byte) ([]byte, error) {
	n := len(label)
	if n == 0 {
		return nil, ErrEmptyLabel
	}
	if n > MaxLabelLen {
		return nil, ErrLabelTooLong
	}

	out := make([]byte, n)
	for i, b := range label {
		switch {
		case isDigit(b) || isLowerAlpha(b):
			out[i] = b
		case isUpperAlpha(b):
			out[i] = b + ('a' - 'A')
		case b == '-' || b == '_':
			if i == 0 || i == n-1 {
				return nil, ErrDashAtEdge
			}
			out[i] = b
		case b == '.':
			if i == 0 || i == n-1 {
				return nil, ErrDotAtEdge
			}
			if label[i-1] == '.' {
				return nil, ErrAdjacentDots
			}
			out[i] = b
		default:
			return nil, ErrInvalidChar
		}
	}
	return out, nil
}

// Hash returns the 32-byte name-tree key for a canonical label:
// SHA3-256(label_bytes), per spec §4.2. Callers must pass a label that
// has already gone through Canonicalize.
func Hash(canonicalLabel []byte) chainhash.Hash {
	return chainhash.Hash(sha3.Sum256(canonicalLabel))
}

// HashLabel canonicalizes and hashes label in one step, the common case
// at the C5/C8 call sites.
func HashLabel(label []byte) (chainhash.Hash, []byte, error) {
	canon, err := Canonicalize(label)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}
	return Hash(canon), canon, nil
}

// MatchesHash reports whether label (already canonical) hashes to want,
// used by C5 to verify an OPEN's embedded raw_name against its
// accompanying name_hash.
func MatchesHash(canonicalLabel []byte, want chainhash.Hash) bool {
	got := Hash(canonicalLabel)
	return bytes.Equal(got[:], want[:])
}
