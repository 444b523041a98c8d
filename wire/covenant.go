// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/hnscore/hnscore/chainerr"

// CovenantType tags the variant carried by an output, per spec §4.5.
type CovenantType uint8

// The exhaustive set of covenant types this core recognizes.
const (
	CovenantNone CovenantType = iota
	CovenantClaim
	CovenantOpen
	CovenantBid
	CovenantReveal
	CovenantRedeem
	CovenantRegister
	CovenantUpdate
	CovenantRenew
	CovenantTransfer
	CovenantFinalize
	CovenantRevoke

	// covenantTypeCount is a sentinel equal to one past the last valid
	// type, used for range validation.
	covenantTypeCount
)

func (t CovenantType) String() string {
	switch t {
	case CovenantNone:
		return "NONE"
	case CovenantClaim:
		return "CLAIM"
	case CovenantOpen:
		return "OPEN"
	case CovenantBid:
		return "BID"
	case CovenantReveal:
		return "REVEAL"
	case CovenantRedeem:
		return "REDEEM"
	case CovenantRegister:
		return "REGISTER"
	case CovenantUpdate:
		return "UPDATE"
	case CovenantRenew:
		return "RENEW"
	case CovenantTransfer:
		return "TRANSFER"
	case CovenantFinalize:
		return "FINALIZE"
	case CovenantRevoke:
		return "REVOKE"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether t is one of the exhaustive recognized types.
func (t CovenantType) IsValid() bool {
	return t < covenantTypeCount
}

// IsName reports whether t is a covenant type whose first item is
// always a name hash, per spec §4.5 ("item[0] is always name_hash
// (absent for NONE)").
func (t CovenantType) IsName() bool {
	return t != CovenantNone
}

// Covenant is the tagged variant attached to an output: a type plus an
// ordered list of opaque byte-string items. The codec treats items as
// opaque; C5 validates per-type argument counts and shapes.
type Covenant struct {
	Type  CovenantType
	Items [][]byte
}

// NameHash returns the covenant's first item, which is always the name
// hash for every type except NONE. Callers must not call this on a NONE
// covenant.
func (c Covenant) NameHash() []byte {
	if len(c.Items) == 0 {
		return nil
	}
	return c.Items[0]
}

// Encode appends the wire encoding of c to buf: type(1) ||
// varint(n_items) || items(varint-prefixed each).
func (c Covenant) Encode(buf []byte) []byte {
	buf = append(buf, byte(c.Type))
	buf = AppendVarint(buf, uint64(len(c.Items)))
	for _, item := range c.Items {
		buf = appendBytes(buf, item)
	}
	return buf
}

// MaxCovenantItems bounds the number of items a single covenant may
// carry, guarding against unbounded allocation from a malicious length
// prefix; no defined covenant type needs more than a handful.
const MaxCovenantItems = 32

// DecodeCovenant reads a Covenant from buf at offset, returning the
// number of bytes consumed.
func DecodeCovenant(buf []byte, offset int) (Covenant, int, error) {
	if offset+1 > len(buf) {
		return Covenant{}, 0, chainerr.Newf(chainerr.ErrDecodeShortRead,
			"covenant: unexpected end of buffer at offset %d", offset)
	}
	typ := CovenantType(buf[offset])
	pos := offset + 1

	n, consumed, err := ReadVarint(buf, pos)
	if err != nil {
		return Covenant{}, 0, err
	}
	if n > MaxCovenantItems {
		return Covenant{}, 0, chainerr.Newf(chainerr.ErrDecodeOutOfRange,
			"covenant: item count %d exceeds max %d", n, MaxCovenantItems)
	}
	pos += consumed

	items := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		item, used, err := readBytes(buf, pos)
		if err != nil {
			return Covenant{}, 0, err
		}
		items = append(items, item)
		pos += used
	}

	return Covenant{Type: typ, Items: items}, pos - offset, nil
}
