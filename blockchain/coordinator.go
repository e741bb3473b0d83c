// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the multi-algorithm header verifier
// and fork-aware header store: the windowed retarget engine, header
// and chunk verification, the per-chain flat file store, the fork
// registry, and the Coordinator that ties them together for a
// network-facing caller. The header codec and proof-of-work dispatch
// live in the wire and chainhash packages.
package blockchain

import (
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/shieldnetwork/shieldheaders/chaincfg"
	"github.com/shieldnetwork/shieldheaders/chainhash"
	"github.com/shieldnetwork/shieldheaders/wire"
)

// Coordinator is the network-facing entry point: it owns a Registry
// and translates peer-supplied headers/chunks into verified,
// persisted chain state. Nothing below the Coordinator knows anything
// about where headers came from.
type Coordinator struct {
	reg    *Registry
	params *chaincfg.Params
}

// NewCoordinator builds a Coordinator over a fresh Registry rooted at
// headersDir, loading any fork chains already present on disk.
func NewCoordinator(params *chaincfg.Params, headersDir string) (*Coordinator, error) {
	reg, err := NewRegistry(params, headersDir)
	if err != nil {
		return nil, err
	}
	return &Coordinator{reg: reg, params: params}, nil
}

// Height returns the main chain's current tip height.
func (co *Coordinator) Height() int32 { return co.reg.Main().Height() }

// ReadHeader reads a header at height from the main chain.
func (co *Coordinator) ReadHeader(height int32) (*wire.BlockHeader, error) {
	return co.reg.Main().ReadHeader(height)
}

// CheckHeader returns any chain on which h is already known: one
// whose stored hash at h.Height equals h's own linkage hash.
func (co *Coordinator) CheckHeader(h *wire.BlockHeader) (*Chain, error) {
	want, err := wire.HashHeader(h)
	if err != nil {
		return nil, err
	}
	for _, c := range co.reg.Chains() {
		got, err := c.GetHash(h.Height)
		if err != nil {
			return nil, err
		}
		if got == want {
			return c, nil
		}
	}
	return nil, nil
}

// CanConnect returns any chain whose tip a header could extend:
// height-1 equals that chain's current height (when checkHeight is
// set) and that chain's hash at height-1 equals the header's declared
// predecessor. Height 0 is matched against the compiled-in genesis
// hash instead of a stored predecessor, behind the same height gate as
// every other header.
func (co *Coordinator) CanConnect(h *wire.BlockHeader, checkHeight bool) (*Chain, error) {
	genesisMatch := false
	if h.Height == 0 {
		hash, err := wire.HashHeader(h)
		if err != nil {
			return nil, err
		}
		genesis, err := chainhash.NewHashFromStr(co.params.Genesis)
		if err != nil {
			return nil, err
		}
		genesisMatch = hash == *genesis
	}

	for _, c := range co.reg.Chains() {
		if checkHeight && c.Height() != h.Height-1 {
			continue
		}
		if h.Height == 0 {
			if genesisMatch {
				return c, nil
			}
			continue
		}
		prev, err := c.GetHash(h.Height - 1)
		if err != nil {
			return nil, err
		}
		if prev == h.PrevBlock {
			return c, nil
		}
	}
	return nil, nil
}

// Fork creates a new chain branching off parent at header's height.
func (co *Coordinator) Fork(parent *Chain, header *wire.BlockHeader) (*Chain, error) {
	return co.reg.Fork(parent, header)
}

// SaveHeader appends header to c and runs the promotion check.
func (co *Coordinator) SaveHeader(c *Chain, header *wire.BlockHeader) error {
	return c.SaveHeader(header)
}

// ConnectChunk decodes a hex-encoded 2016-header chunk, verifies it
// against c, and only then persists it: any error during decode or
// verification leaves c's file bytewise unchanged. An ordinary
// rejection (bad hex, broken linkage, bad bits, failed PoW) reports
// (false, nil). ErrStateLost is fatal and is always returned rather
// than folded into an ordinary false, so a caller can detect it with
// errors.Is(err, RuleError{ErrorCode: ErrStateLost}).
func (co *Coordinator) ConnectChunk(c *Chain, index int32, hexdata string) (bool, error) {
	data, err := hex.DecodeString(hexdata)
	if err != nil {
		flog.Debugf("ConnectChunk %d: bad hex: %v", index, err)
		return false, nil
	}

	prev, err := c.GetHash(index*2016 - 1)
	if err != nil {
		if isStateLost(err) {
			return false, err
		}
		flog.Debugf("ConnectChunk %d: resolving predecessor hash: %v", index, err)
		return false, nil
	}

	if err := VerifyChunk(c, co.params, co.reg, index, data, prev); err != nil {
		if isStateLost(err) {
			return false, err
		}
		flog.Debugf("ConnectChunk %d: %v", index, err)
		return false, nil
	}

	if err := c.SaveChunk(index, data); err != nil {
		if isStateLost(err) {
			return false, err
		}
		flog.Errorf("ConnectChunk %d: save failed after successful verification: %v", index, err)
		return false, nil
	}
	return true, nil
}

// isStateLost reports whether err is (or wraps) the fatal
// ErrStateLost condition: the entire headers directory has gone
// missing out from under the store.
func isStateLost(err error) bool {
	return errors.Is(err, RuleError{ErrorCode: ErrStateLost})
}

// CheckpointEntry is one emitted row of GetCheckpoints: the hash,
// target, and timestamp at a completed chunk's final height.
type CheckpointEntry struct {
	Hash      chainhash.Hash
	Target    *big.Int
	Timestamp int64
}

// GetCheckpoints emits one entry per completed chunk below the main
// chain's tip: the hash, retarget target, and timestamp at each
// chunk's final height.
func (co *Coordinator) GetCheckpoints() ([]CheckpointEntry, error) {
	main := co.reg.Main()
	height := main.Height()
	n := height / 2016

	entries := make([]CheckpointEntry, 0, n)
	for index := int32(0); index < n; index++ {
		last := (index+1)*2016 - 1
		hash, err := main.GetHash(last)
		if err != nil {
			return nil, err
		}
		target, err := GetTargetV1(main, index)
		if err != nil {
			return nil, err
		}
		ts, _, err := main.Timestamp(last)
		if err != nil {
			return nil, err
		}
		entries = append(entries, CheckpointEntry{Hash: hash, Target: target, Timestamp: ts})
	}
	return entries, nil
}
