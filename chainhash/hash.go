// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 256-bit hash type and the PoW/linkage
// hash primitives used to verify headers. The digest algorithms
// themselves (scrypt, blake2s, sha256d) come from their libraries;
// this package only wires the header bytes into them and exposes the
// big-endian-displayed, little-endian-on-the-wire convention the rest
// of the chain uses.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/scrypt"
)

// HashSize is the size, in bytes, of a hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error condition indicating that a
// string passed to NewHashFromStr does not have the right number of
// characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the header fields and as the return value
// of the digest functions below. It equals the number of bytes used
// in the SHIELD/Bitcoin proof-of-work hash.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the convention used when displaying a Bitcoin-family
// block hash.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < HashSize/2; i++ {
		reversed[i], reversed[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// IsZero reports whether the hash is the all-zero sentinel used to
// mark an absent header slot on disk.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// CloneBytes returns a copy of the bytes backing the hash.
func (h Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// NewHashFromStr creates a Hash from a big-endian hash string.  The
// string should be the hexadecimal string of a byte-reversed hash,
// but any missing characters result in zero padding at the end of
// the Hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-reversed hexadecimal string encoding of a
// Hash to a destination.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversed Hash
	_, err := hex.Decode(reversed[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	for i, b := range reversed[:HashSize/2] {
		dst[i], dst[HashSize-1-i] = reversed[HashSize-1-i], b
	}
	return nil
}

// DoubleHashH computes sha256(sha256(b)) and returns the resulting
// bytes as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// ScryptPoWHash computes the scrypt_1024_1_1_80 proof-of-work digest
// of the serialized header bytes b, as used by the scrypt algorithm
// tag and by linkage hashing.
func ScryptPoWHash(b []byte) (Hash, error) {
	digest, err := scrypt.Key(b, b, 1024, 1, 1, HashSize)
	if err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], digest)
	return h, nil
}

// HashToBig converts a Hash into a big.Int usable for PoW comparisons.
// The hash is stored internally in the same reversed byte order sha256d
// produces; this reverses it to the big-endian order a proof-of-work
// target comparison requires.
func HashToBig(h Hash) *big.Int {
	var buf Hash
	for i, b := range h {
		buf[HashSize-1-i] = b
	}
	return new(big.Int).SetBytes(buf[:])
}

// Blake2sPoWHash computes the blake2s-256 proof-of-work digest of the
// serialized header bytes b, as used by the blake algorithm tag.
func Blake2sPoWHash(b []byte) (Hash, error) {
	digest := blake2s.Sum256(b)
	return Hash(digest), nil
}
