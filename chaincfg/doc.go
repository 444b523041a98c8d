// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the consensus-parameter enumeration from
// spec §6 ("Configuration (enumerated)") as a single Params struct
// literal per network, mirroring the teacher's
// chaincfg/mainnetparams.go convention. Per spec.md's Non-goal of
// "human-readable configuration", there is no config-file format here —
// only code-constructed network parameter sets.
package chaincfg
