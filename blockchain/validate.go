// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/shieldnetwork/shieldheaders/chaincfg"
	"github.com/shieldnetwork/shieldheaders/chainhash"
	"github.com/shieldnetwork/shieldheaders/wire"
)

// powSeenRecorder is the narrow slice of Registry that VerifyHeader
// needs for the PoW dedup cache; it lets this file avoid depending on
// Registry's full surface.
type powSeenRecorder interface {
	poWAlreadyChecked(h chainhash.Hash) bool
	recordPoWChecked(h chainhash.Hash)
}

// VerifyHeader checks a single header's linkage, declared bits, and
// (where checked) proof-of-work against an already-computed target.
// On testnet, verification stops after the linkage check and the
// header is accepted.
func VerifyHeader(h *wire.BlockHeader, prevHash chainhash.Hash, target *big.Int, params *chaincfg.Params, seen powSeenRecorder) error {
	if h.PrevBlock != prevHash {
		return ruleError(ErrLinkage, "header at height %d: prev_block_hash mismatch", h.Height)
	}
	if params.Testnet {
		return nil
	}

	wantBits := TargetToBits(target)
	if wantBits != h.Bits {
		return ruleError(ErrBits, "header at height %d: bits %#x disagrees with recomputed target (wants %#x)",
			h.Height, h.Bits, wantBits)
	}

	if !h.PoWChecked() {
		flog.Warnf("header at height %d: algorithm tag %s is not proof-of-work checked", h.Height, h.AlgoTag())
		return nil
	}

	// The dedup key is sha256d of the raw header bytes: cheap to
	// compute, unlike the scrypt/blake2s evaluation it lets us skip.
	key := chainhash.DoubleHashH(h.Bytes())
	if seen != nil && seen.poWAlreadyChecked(key) {
		return nil
	}

	pow, err := wire.PoWHash(h)
	if err != nil {
		return ruleError(ErrDecode, "header at height %d: %v", h.Height, err)
	}
	if chainhash.HashToBig(pow).Cmp(target) >= 0 {
		return ruleError(ErrPoW, "header at height %d: proof-of-work hash does not beat target", h.Height)
	}
	if seen != nil {
		seen.recordPoWChecked(key)
	}
	return nil
}

// VerifyChunk verifies an entire 2016-header chunk in order, threading
// the running linkage hash and recomputing each header's target from
// the chunk's own bytes plus whatever ancestor context c provides. It
// returns the first verification error encountered; the caller is
// responsible for leaving storage untouched on failure.
func VerifyChunk(c chunkReader, params *chaincfg.Params, seen powSeenRecorder, index int32, data []byte, prevHash chainhash.Hash) error {
	if len(data)%wire.HeaderSize != 0 {
		return ruleError(ErrDecode, "chunk %d: length %d is not a multiple of %d", index, len(data), wire.HeaderSize)
	}
	n := len(data) / wire.HeaderSize
	prev := prevHash

	for i := 0; i < n; i++ {
		h, err := decodeFromChunk(data, i, index*2016+int32(i))
		if err != nil {
			return err
		}
		target, err := GetTarget(c, data, i, index)
		if err != nil {
			return err
		}
		if err := VerifyHeader(h, prev, target, params, seen); err != nil {
			return err
		}
		prev, err = wire.HashHeader(h)
		if err != nil {
			return ruleError(ErrDecode, "header at height %d: %v", h.Height, err)
		}
	}
	return nil
}
