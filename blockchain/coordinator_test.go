// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shieldnetwork/shieldheaders/chaincfg"
	"github.com/shieldnetwork/shieldheaders/chainhash"
	"github.com/shieldnetwork/shieldheaders/wire"
	"github.com/stretchr/testify/require"
)

// testParams builds a testnet-flavored parameter set rooted at a
// freshly-minted genesis header, so fixtures don't depend on any real
// mainnet constant: bits/PoW checks are skipped on testnet, letting
// these tests exercise linkage, storage, and fork/swap mechanics
// without mining real headers.
func testParams(t *testing.T) (*chaincfg.Params, *wire.BlockHeader) {
	t.Helper()

	genesis := &wire.BlockHeader{
		Version:    uint32(wire.AlgoScrypt),
		Timestamp:  time.Unix(1_600_000_000, 0).UTC(),
		Bits:       0x1d00ffff,
		Nonce:      1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: chainhash.Hash{},
		Height:     0,
	}
	hash, err := wire.HashHeader(genesis)
	require.NoError(t, err)

	return &chaincfg.Params{
		Name:        "regtest",
		Genesis:     hash.String(),
		Checkpoints: nil,
		Testnet:     true,
	}, genesis
}

// headerAfter builds a single header extending prev at the given height.
func headerAfter(prev *wire.BlockHeader, prevHash chainhash.Hash, height int32, nonce uint32) *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:    uint32(wire.AlgoScrypt),
		Timestamp:  prev.Timestamp.Add(225 * time.Second),
		Bits:       prev.Bits,
		Nonce:      nonce,
		PrevBlock:  prevHash,
		MerkleRoot: chainhash.Hash{},
		Height:     height,
	}
}

func TestCanConnectGenesis(t *testing.T) {
	t.Parallel()

	params, genesis := testParams(t)
	dir := t.TempDir()
	co, err := NewCoordinator(params, dir)
	require.NoError(t, err)

	chain, err := co.CanConnect(genesis, true)
	require.NoError(t, err)
	require.NotNil(t, chain)
	require.True(t, chain.IsMain())
}

func TestCanConnectGenesisRespectsHeightGate(t *testing.T) {
	t.Parallel()

	params, genesis := testParams(t)
	dir := t.TempDir()
	co, err := NewCoordinator(params, dir)
	require.NoError(t, err)

	main := co.reg.Main()
	require.NoError(t, main.SaveHeader(genesis))

	genesisHash, err := wire.HashHeader(genesis)
	require.NoError(t, err)
	require.NoError(t, main.SaveHeader(headerAfter(genesis, genesisHash, 1, 3)))

	// With the chain already advanced, a resent genesis header no
	// longer extends any tip.
	chain, err := co.CanConnect(genesis, true)
	require.NoError(t, err)
	require.Nil(t, chain)

	// Without the height gate it still matches on the genesis hash.
	chain, err = co.CanConnect(genesis, false)
	require.NoError(t, err)
	require.NotNil(t, chain)
}

func TestSaveHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	params, genesis := testParams(t)
	dir := t.TempDir()
	co, err := NewCoordinator(params, dir)
	require.NoError(t, err)

	main := co.reg.Main()
	require.NoError(t, main.SaveHeader(genesis))

	genesisHash, err := wire.HashHeader(genesis)
	require.NoError(t, err)
	h1 := headerAfter(genesis, genesisHash, 1, 7)
	require.NoError(t, main.SaveHeader(h1))

	require.Equal(t, int32(1), main.Height())

	got, err := main.ReadHeader(1)
	require.NoError(t, err)
	require.Equal(t, h1.Height, got.Height)
	require.Equal(t, h1.Nonce, got.Nonce)
	require.Equal(t, h1.PrevBlock, got.PrevBlock)
}

func TestConnectChunkAllOrNothing(t *testing.T) {
	t.Parallel()

	params, genesis := testParams(t)
	dir := t.TempDir()
	co, err := NewCoordinator(params, dir)
	require.NoError(t, err)

	main := co.reg.Main()
	require.NoError(t, main.SaveHeader(genesis))

	genesisHash, err := wire.HashHeader(genesis)
	require.NoError(t, err)

	good1 := headerAfter(genesis, genesisHash, 1, 1)
	h1hash, err := wire.HashHeader(good1)
	require.NoError(t, err)
	good2 := headerAfter(good1, h1hash, 2, 2)

	var buf []byte
	buf = append(buf, good1.Bytes()...)
	buf = append(buf, good2.Bytes()...)
	hexdata := hex.EncodeToString(buf)

	ok, err := co.ConnectChunk(main, 0, hexdata)
	require.NoError(t, err)
	require.False(t, ok, "chunk 0 whose first slot holds the height-1 header must not connect: slot 0 must link to the zero hash")

	// Rebuild starting from the genesis header so the chunk's first
	// header links to the zero hash at height -1, as slot 0 of chunk 0
	// must.
	buf = append(append([]byte{}, genesis.Bytes()...), good1.Bytes()...)
	buf = append(buf, good2.Bytes()...)

	// Reset to a fresh coordinator sharing the same directory semantics
	// but starting from an empty chain, so index 0 means height 0.
	dir2 := t.TempDir()
	co2, err := NewCoordinator(params, dir2)
	require.NoError(t, err)
	main2 := co2.reg.Main()

	ok, err = co2.ConnectChunk(main2, 0, hex.EncodeToString(buf))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(2), main2.Height())

	// Corrupt header index 2's linkage and confirm the whole chunk is
	// rejected with storage left untouched.
	before, err := os.ReadFile(filepath.Join(dir2, "blockchain_headers"))
	require.NoError(t, err)

	bad2 := headerAfter(good1, chainhash.Hash{0xff}, 2, 99) // wrong prev hash
	badBuf := append(append([]byte{}, genesis.Bytes()...), good1.Bytes()...)
	badBuf = append(badBuf, bad2.Bytes()...)

	ok, err = co2.ConnectChunk(main2, 0, hex.EncodeToString(badBuf))
	require.NoError(t, err)
	require.False(t, ok)

	after, err := os.ReadFile(filepath.Join(dir2, "blockchain_headers"))
	require.NoError(t, err)
	require.Equal(t, before, after, "a failed ConnectChunk must leave the file bytewise unchanged")
	require.Equal(t, int32(2), main2.Height())
}

func TestForkAndSwapPromotion(t *testing.T) {
	t.Parallel()

	params, genesis := testParams(t)
	dir := t.TempDir()
	co, err := NewCoordinator(params, dir)
	require.NoError(t, err)

	main := co.reg.Main()
	require.NoError(t, main.SaveHeader(genesis))

	prev := genesis
	prevHash, err := wire.HashHeader(genesis)
	require.NoError(t, err)
	for h := int32(1); h <= 5; h++ {
		hdr := headerAfter(prev, prevHash, h, uint32(h))
		require.NoError(t, main.SaveHeader(hdr))
		prevHash, err = wire.HashHeader(hdr)
		require.NoError(t, err)
		prev = hdr
	}
	require.Equal(t, int32(5), main.Height())

	// Fork off height 3 with a competing header, then extend the fork
	// past the main chain's tip to trigger promotion.
	h3, err := main.ReadHeader(3)
	require.NoError(t, err)
	h3Hash, err := wire.HashHeader(h3)
	require.NoError(t, err)

	forkHead := headerAfter(h3, h3Hash, 4, 1000)
	forkChain, err := co.Fork(main, forkHead)
	require.NoError(t, err)
	require.False(t, forkChain.IsMain())

	forkHeadHash, err := wire.HashHeader(forkHead)
	require.NoError(t, err)
	forkTip := headerAfter(forkHead, forkHeadHash, 5, 1001)
	require.NoError(t, forkChain.SaveHeader(forkTip))
	fh, err := wire.HashHeader(forkTip)
	require.NoError(t, err)
	forkTip2 := headerAfter(forkTip, fh, 6, 1002)
	require.NoError(t, forkChain.SaveHeader(forkTip2))

	// Fork now has heights 4..6 (size 3) versus the parent's branch from
	// height 4 onward, which only has heights 4..5 (size 2): promotion
	// should have occurred.
	newMain := co.reg.Main()
	require.Equal(t, int32(6), newMain.Height())

	gotTip, err := newMain.ReadHeader(6)
	require.NoError(t, err)
	require.Equal(t, forkTip2.Nonce, gotTip.Nonce)
}
