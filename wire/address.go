// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"strconv"

	"github.com/EXCCoin/base58"

	"github.com/hnscore/hnscore/chainerr"
)

// NulldataVersion is the address version that marks an output
// unspendable ("nulldata"), per spec §3: version == 31 with an empty or
// short hash.
const NulldataVersion = 31

// MinAddressHashLen and MaxAddressHashLen bound a well-formed address
// hash, per spec §3 ("2..=40 bytes").
const (
	MinAddressHashLen = 2
	MaxAddressHashLen = 40
)

// Address is a version-tagged opaque hash, following the spec's generic
// (version, hash) address model rather than any one chain's specific
// encoding. String() renders it for logs only; consensus code never
// compares on the string form.
type Address struct {
	Version uint8
	Hash    []byte
}

// IsUnspendable reports whether addr marks an unspendable nulldata
// output: version 31 with an empty or short hash.
func (a Address) IsUnspendable() bool {
	return a.Version == NulldataVersion && len(a.Hash) < MinAddressHashLen
}

// String renders addr for debugging/log output as "version:base58hash".
// It is not a consensus-meaningful encoding; consensus code never
// compares on the string form.
func (a Address) String() string {
	return strconv.Itoa(int(a.Version)) + ":" + base58.Encode(a.Hash)
}

// Encode appends the wire encoding of a to buf: version(1) ||
// varint(len) || hash.
func (a Address) Encode(buf []byte) []byte {
	buf = append(buf, a.Version)
	return appendBytes(buf, a.Hash)
}

// DecodeAddress reads an Address from buf at offset, returning the
// number of bytes consumed. The hash length is validated against
// spec §3's 2..=40 byte bound unless the address is the unspendable
// nulldata marker (version 31, short/empty hash is explicitly allowed
// there).
func DecodeAddress(buf []byte, offset int) (Address, int, error) {
	if offset+1 > len(buf) {
		return Address{}, 0, chainerr.Newf(chainerr.ErrDecodeShortRead,
			"address: unexpected end of buffer at offset %d", offset)
	}
	version := buf[offset]
	hashBytes, consumed, err := readBytes(buf, offset+1)
	if err != nil {
		return Address{}, 0, err
	}
	addr := Address{Version: version, Hash: hashBytes}
	if version != NulldataVersion && (len(hashBytes) < MinAddressHashLen || len(hashBytes) > MaxAddressHashLen) {
		return Address{}, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"address: hash length %d out of range at offset %d", len(hashBytes), offset)
	}
	if len(hashBytes) > MaxAddressHashLen {
		return Address{}, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"address: hash length %d exceeds max %d", len(hashBytes), MaxAddressHashLen)
	}
	return addr, 1 + consumed, nil
}
