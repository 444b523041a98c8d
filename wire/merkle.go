// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/hnscore/hnscore/chainhash"

// hashMerkleBranches concatenates left and right and hashes the result,
// the single combining step a merkle tree repeats at every level.
func hashMerkleBranches(left, right chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.HashH(buf[:])
}

// BuildMerkleRoot computes the root of a merkle tree over leaves, in the
// btcd/dcrd-lineage convention (a lone leaf at any level is duplicated
// against itself rather than promoted unhashed). An empty leaf set
// returns the zero hash.
func BuildMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			next[i] = hashMerkleBranches(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}
