// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the byte-exact, fixed-layout (de)serialization
// of the primitives named in spec §6: varints, hashes, outpoints,
// addresses, covenants, transactions and block headers. Every Decode
// fails with a chainerr.RuleError of class ClassDecode on a short
// buffer or an out-of-range field;
// every Encode is infallible given a value that was itself validly
// constructed. Re-encoding a decoded value always reproduces the exact
// input bytes (bijection), matching the teacher's wire package
// discipline of explicit Read*/Write* pairs per type.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/hnscore/hnscore/chainerr"
)

// MaxVarintLen is the maximum number of bytes a varint can occupy in this
// codec: 10 bytes covers a full 64-bit value at 7 bits per byte.
const MaxVarintLen = 10

// decodeErr builds the ClassDecode error the codec returns for any
// malformed input, carrying the byte offset at which decoding failed.
func decodeErr(kind chainerr.ErrorKind, offset int, reason string) error {
	return chainerr.Newf(kind, "%s (offset %d)", reason, offset)
}

// PutVarint writes v into buf as an unsigned LEB128 varint and returns
// the number of bytes written. buf must have at least MaxVarintLen bytes
// of capacity.
func PutVarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// AppendVarint appends the LEB128 encoding of v to buf and returns the
// extended slice.
func AppendVarint(buf []byte, v uint64) []byte {
	var scratch [MaxVarintLen]byte
	n := PutVarint(scratch[:], v)
	return append(buf, scratch[:n]...)
}

// VarintLen returns the number of bytes PutVarint would write for v.
func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVarint decodes an unsigned LEB128 varint starting at offset in buf
// and returns its value along with the number of bytes consumed. It fails
// if buf is exhausted before a terminating byte is found, if decoding
// would overflow 64 bits, or if the encoding is not the minimal one
// PutVarint produces.
func ReadVarint(buf []byte, offset int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < MaxVarintLen; i++ {
		if offset+i >= len(buf) {
			return 0, 0, decodeErr(chainerr.ErrDecodeShortRead, offset+i, "varint: unexpected end of buffer")
		}
		b := buf[offset+i]
		if i == MaxVarintLen-1 && b > 1 {
			return 0, 0, decodeErr(chainerr.ErrDecodeOutOfRange, offset, "varint: exceeds 64 bits")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, 0, decodeErr(chainerr.ErrDecodeOutOfRange, offset, "varint: non-minimal encoding")
			}
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, decodeErr(chainerr.ErrDecodeOutOfRange, offset, "varint: exceeds 64 bits")
}

// PutUint32LE writes v to buf in little-endian order.
func PutUint32LE(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }

// PutUint64LE writes v to buf in little-endian order.
func PutUint64LE(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }

// ReadUint32LE decodes a little-endian uint32 at offset in buf.
func ReadUint32LE(buf []byte, offset int) (uint32, error) {
	if offset+4 > len(buf) {
		return 0, decodeErr(chainerr.ErrDecodeShortRead, offset, "uint32: unexpected end of buffer")
	}
	return binary.LittleEndian.Uint32(buf[offset : offset+4]), nil
}

// ReadUint64LE decodes a little-endian uint64 at offset in buf.
func ReadUint64LE(buf []byte, offset int) (uint64, error) {
	if offset+8 > len(buf) {
		return 0, decodeErr(chainerr.ErrDecodeShortRead, offset, "uint64: unexpected end of buffer")
	}
	return binary.LittleEndian.Uint64(buf[offset : offset+8]), nil
}

// MaxItemSize bounds the length of any single varint-prefixed byte
// string accepted by this codec (witness items, covenant items, name
// data). It is deliberately generous; C7 enforces the tighter per-field
// limits spec §4.7 requires.
const MaxItemSize = 1 << 20

// ReadVarBytes decodes a varint-prefixed byte string starting at
// offset, returning a freshly allocated copy and the number of bytes
// consumed. Exported for callers outside this package (e.g. store) that
// persist structures using this codec's varint-prefixed-bytes
// convention without going through a whole wire type.
func ReadVarBytes(buf []byte, offset int) ([]byte, int, error) {
	return readBytes(buf, offset)
}

// readBytes decodes a varint-prefixed byte string starting at offset,
// returning a freshly allocated copy (never aliasing buf) and the number
// of bytes consumed.
func readBytes(buf []byte, offset int) ([]byte, int, error) {
	n, consumed, err := ReadVarint(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	if n > MaxItemSize {
		return nil, 0, decodeErr(chainerr.ErrDecodeOutOfRange, offset, fmt.Sprintf("item length %d exceeds max %d", n, MaxItemSize))
	}
	start := offset + consumed
	end := start + int(n)
	if end > len(buf) || end < start {
		return nil, 0, decodeErr(chainerr.ErrDecodeShortRead, start, "item: unexpected end of buffer")
	}
	out := make([]byte, n)
	copy(out, buf[start:end])
	return out, consumed + int(n), nil
}

// appendBytes appends b to buf as a varint-prefixed byte string.
func appendBytes(buf []byte, b []byte) []byte {
	buf = AppendVarint(buf, uint64(len(b)))
	return append(buf, b...)
}
