// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/shieldnetwork/shieldheaders/chainhash"
)

// TestHeaderSerializeRoundTrip checks that deserializing a serialized
// header yields the original header back.
func TestHeaderSerializeRoundTrip(t *testing.T) {
	h := &BlockHeader{
		Version:    uint32(AlgoScrypt) | 4,
		Timestamp:  time.Unix(1_600_000_000, 0).UTC(),
		Bits:       0x1d00ffff,
		Nonce:      123456,
		PrevBlock:  hashOfByte(0xaa),
		MerkleRoot: hashOfByte(0xbb),
	}

	buf := h.Bytes()
	if len(buf) != HeaderSize {
		t.Fatalf("serialized header is %d bytes, want %d", len(buf), HeaderSize)
	}

	got, err := DeserializeHeader(buf, 42)
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	got.Height = 0 // Height isn't part of the wire round trip.

	want := *h
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("round trip mismatch:\ngot:  %s\nwant: %s",
			spew.Sdump(got), spew.Sdump(want))
	}
}

func TestDeserializeHeaderRejectsWrongLength(t *testing.T) {
	_, err := DeserializeHeader(make([]byte, 79), 0)
	if err == nil {
		t.Fatal("expected error for short header, got nil")
	}
	_, err = DeserializeHeader(make([]byte, 81), 0)
	if err == nil {
		t.Fatal("expected error for long header, got nil")
	}
}

func TestAlgoTagExtraction(t *testing.T) {
	tests := []struct {
		version uint32
		want    AlgoTag
	}{
		{0, 0},
		{uint32(AlgoScrypt), AlgoScrypt},
		{uint32(AlgoBlake) | 7, AlgoBlake},
		{uint32(AlgoGroestl) | 0xFFFF0000, AlgoGroestl},
	}
	for _, tt := range tests {
		h := &BlockHeader{Version: tt.version}
		if got := h.AlgoTag(); got != tt.want {
			t.Errorf("version %#x: AlgoTag() = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestPoWCheckedOnlyScryptAndBlake(t *testing.T) {
	checked := []AlgoTag{AlgoScrypt, AlgoBlake}
	unchecked := []AlgoTag{AlgoGroestl, AlgoX17, AlgoLyra, AlgoX16s, 0}

	for _, tag := range checked {
		h := &BlockHeader{Version: uint32(tag)}
		if !h.PoWChecked() {
			t.Errorf("tag %v: expected PoWChecked() == true", tag)
		}
	}
	for _, tag := range unchecked {
		h := &BlockHeader{Version: uint32(tag)}
		if h.PoWChecked() {
			t.Errorf("tag %v: expected PoWChecked() == false", tag)
		}
	}
}

func TestHashHeaderIsAlwaysScrypt(t *testing.T) {
	for _, tag := range []AlgoTag{AlgoScrypt, AlgoBlake, AlgoGroestl} {
		h := &BlockHeader{Version: uint32(tag), Timestamp: time.Unix(0, 0)}
		linkage, err := HashHeader(h)
		if err != nil {
			t.Fatalf("HashHeader: %v", err)
		}
		direct, err := chainhash.ScryptPoWHash(h.Bytes())
		if err != nil {
			t.Fatalf("ScryptPoWHash: %v", err)
		}
		if linkage != direct {
			t.Fatalf("tag %v: linkage hash should match the scrypt digest of the header", tag)
		}
	}
}

func hashOfByte(b byte) (h chainhash.Hash) {
	for i := range h {
		h[i] = b
	}
	return h
}
