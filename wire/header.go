// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the 80-byte block header wire format and
// the algorithm-tag bits packed into its version field.
package wire

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/shieldnetwork/shieldheaders/chainhash"
)

// HeaderSize is the number of bytes a serialized header occupies on
// the wire and on disk: nothing more, nothing less, no framing.
const HeaderSize = 80

// AlgoTag identifies the proof-of-work algorithm selected by bits
// 11..14 of a header's version field.
type AlgoTag uint32

// algoTagMask isolates bits 11..14 of the version field.
const algoTagMask uint32 = 0xF << 11

// Recognized algorithm tags. Groestl, X17, Lyra and X16s are carried
// for completeness of the tag space but have no PoW verification
// wired to them, matching the upstream behavior this store preserves
// (see BlockHeader.PoWChecked).
const (
	AlgoScrypt  AlgoTag = 1 << 11
	AlgoGroestl AlgoTag = 2 << 11
	AlgoX17     AlgoTag = 3 << 11
	AlgoBlake   AlgoTag = 4 << 11
	AlgoLyra    AlgoTag = 10 << 11
	AlgoX16s    AlgoTag = 11 << 11
)

// String returns a human-readable algorithm name for logging.
func (a AlgoTag) String() string {
	switch a {
	case AlgoScrypt:
		return "scrypt"
	case AlgoGroestl:
		return "groestl"
	case AlgoX17:
		return "x17"
	case AlgoBlake:
		return "blake"
	case AlgoLyra:
		return "lyra"
	case AlgoX16s:
		return "x16s"
	default:
		return "unknown"
	}
}

// BlockHeader is the 80-byte SHIELD-family block header.
type BlockHeader struct {
	// Version encodes the protocol version in its low bits and the
	// proof-of-work algorithm tag in bits 11..14.
	Version uint32

	// PrevBlock is the hash of the previous header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot is the merkle root of the block's transactions.
	MerkleRoot chainhash.Hash

	// Timestamp is the time the block was declared solved.
	Timestamp time.Time

	// Bits is the compact target representation.
	Bits uint32

	// Nonce is the miner-chosen nonce.
	Nonce uint32

	// Height is derived at decode time from the caller's knowledge of
	// chain position; it is never present on the wire.
	Height int32
}

// AlgoTag returns the proof-of-work algorithm tag encoded in Version.
func (h *BlockHeader) AlgoTag() AlgoTag {
	return AlgoTag(h.Version & algoTagMask)
}

// PoWChecked reports whether this header's algorithm tag is one whose
// proof of work is actually verified against the target: only scrypt
// and blake are checked, every other tag (including unassigned ones)
// is accepted on linkage and bits alone.
func (h *BlockHeader) PoWChecked() bool {
	tag := h.AlgoTag()
	return tag == AlgoScrypt || tag == AlgoBlake
}

// Serialize writes the 80-byte wire encoding of h to b, which must be
// at least HeaderSize bytes long.
func (h *BlockHeader) Serialize(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("wire: serialize buffer too small: %d bytes", len(b))
	}
	binary.LittleEndian.PutUint32(b[0:4], h.Version)
	copy(b[4:36], h.PrevBlock[:])
	copy(b[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(b[68:72], uint32(h.Timestamp.Unix()))
	binary.LittleEndian.PutUint32(b[72:76], h.Bits)
	binary.LittleEndian.PutUint32(b[76:80], h.Nonce)
	return nil
}

// Bytes returns the 80-byte wire encoding of h as a new slice.
func (h *BlockHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	_ = h.Serialize(b)
	return b
}

// DeserializeHeader decodes an 80-byte wire header from b, stamping
// the result with the given logical height. It fails if len(b) != 80.
func DeserializeHeader(b []byte, height int32) (*BlockHeader, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("wire: invalid header length: %d", len(b))
	}
	h := &BlockHeader{Height: height}
	h.Version = binary.LittleEndian.Uint32(b[0:4])
	copy(h.PrevBlock[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = time.Unix(int64(binary.LittleEndian.Uint32(b[68:72])), 0).UTC()
	h.Bits = binary.LittleEndian.Uint32(b[72:76])
	h.Nonce = binary.LittleEndian.Uint32(b[76:80])
	return h, nil
}

// IsZero reports whether b is the all-zero sentinel used by the chain
// store to mark an absent header slot.
func IsZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// HashHeader computes the linkage hash of h: the hash used to link
// headers together and to answer GetHash. It is always the scrypt
// digest of the serialized header regardless of the header's own
// algorithm tag.
func HashHeader(h *BlockHeader) (chainhash.Hash, error) {
	return chainhash.ScryptPoWHash(h.Bytes())
}

// PoWHash computes the algorithm-dependent proof-of-work digest that
// must satisfy the target: blake2s for the blake tag, scrypt for
// every other tag.
func PoWHash(h *BlockHeader) (chainhash.Hash, error) {
	if h.AlgoTag() == AlgoBlake {
		return chainhash.Blake2sPoWHash(h.Bytes())
	}
	return chainhash.ScryptPoWHash(h.Bytes())
}
