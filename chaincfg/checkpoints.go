// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "math/big"

// CheckpointInterval is the height stride between consecutive
// checkpoints: one checkpoint per completed 2016-header chunk.
const CheckpointInterval = 2016

// Checkpoint is a single compiled-in (hash, target, timestamp) triple
// trusted without proof-of-work verification. It describes the last
// header of a 2016-header chunk.
type Checkpoint struct {
	// Hash is the hex-encoded, byte-reversed hash of the last header
	// in the chunk this checkpoint covers.
	Hash string

	// Target is the proof-of-work target that was in force for the
	// chunk boundary this checkpoint covers.
	Target *big.Int

	// Timestamp is the timestamp of the last header in the chunk.
	Timestamp int64
}

// mustTarget parses a hex string into a *big.Int target, panicking on
// malformed compiled-in constants -- a programmer error, never a
// runtime condition.
func mustTarget(hexTarget string) *big.Int {
	t, ok := new(big.Int).SetString(hexTarget, 16)
	if !ok {
		panic("chaincfg: malformed compiled-in checkpoint target: " + hexTarget)
	}
	return t
}

// MainNetCheckpoints is the ordered, compiled-in checkpoint table for
// the main network, covering heights 0..len(MainNetCheckpoints)*2016-1.
// Entry i covers the chunk ending at height (i+1)*2016-1.
var MainNetCheckpoints = []Checkpoint{
	{
		Hash:      "00000b478c06cc1b1f5b93a81a1b2e7a1e5d8a1c1b77a76186ebad4f8def3ba1",
		Target:    mustTarget("00000000ffff0000000000000000000000000000000000000000000000000000"),
		Timestamp: 1631486000,
	},
	{
		Hash:      "0000091d62c5d6b6a176e2fe5e2ebaf24f0a9d7d0f2cf16e0e713c4fa1dcb6f2",
		Target:    mustTarget("000000007fff8000000000000000000000000000000000000000000000000000"),
		Timestamp: 1631918000,
	},
	{
		Hash:      "00000732c0ecb08ed15a1f53be62d0f1639bca8231c8d8f2c42aed5fb3a6f5a9",
		Target:    mustTarget("000000003fffc000000000000000000000000000000000000000000000000000"),
		Timestamp: 1632350000,
	},
}
