// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/shieldnetwork/shieldheaders/wire"
	"github.com/stretchr/testify/require"
)

// TestBitsTargetRoundTrip checks TargetToBits(BitsToTarget(b)) == b
// for representable bits values.
func TestBitsTargetRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []uint32{0x1d00ffff, 0x1b0404cb, 0x1c012345, 0x03008000, 0x1e7fffff}
	for _, bits := range cases {
		target, err := BitsToTarget(bits)
		require.NoErrorf(t, err, "bits %#x", bits)
		got := TargetToBits(target)
		require.Equalf(t, bits, got, "round trip for bits %#x", bits)
	}
}

func TestBitsToTargetRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := BitsToTarget(0x02ffffff)
	require.Error(t, err)

	_, err = BitsToTarget(0x1f00ffff)
	require.Error(t, err)

	_, err = BitsToTarget(0x1d00007f)
	require.Error(t, err)
}

func TestGetMaxClockDrift(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(7200), GetMaxClockDrift(0))
	require.Equal(t, int64(7200), GetMaxClockDrift(659999))
	require.Equal(t, int64(600), GetMaxClockDrift(660000))
	require.Equal(t, int64(7200), GetMaxClockDrift(800001))
	require.Equal(t, int64(7200), GetMaxClockDrift(817499))
	require.Equal(t, int64(600), GetMaxClockDrift(817500))
}

// fakeChunkReader is a minimal chunkReader used to exercise GetTargetV1
// in isolation from the on-disk chain store.
type fakeChunkReader struct {
	headers     map[int32]*fakeHeader
	checkpoints map[int32]*big.Int
	isTestnet   bool
}

type fakeHeader struct {
	timestamp int64
	bits      uint32
}

func (f *fakeChunkReader) ReadHeader(height int32) (*wire.BlockHeader, error) {
	h, ok := f.headers[height]
	if !ok {
		return nil, nil
	}
	return &wire.BlockHeader{
		Version:   uint32(wire.AlgoScrypt),
		Timestamp: time.Unix(h.timestamp, 0).UTC(),
		Bits:      h.bits,
		Height:    height,
	}, nil
}
func (f *fakeChunkReader) Timestamp(height int32) (int64, bool, error) {
	h, ok := f.headers[height]
	if !ok {
		return 0, false, nil
	}
	return h.timestamp, true, nil
}
func (f *fakeChunkReader) checkpointTarget(index int32) (*big.Int, bool) {
	t, ok := f.checkpoints[index]
	return t, ok
}
func (f *fakeChunkReader) testnet() bool { return f.isTestnet }

// TestGetTargetLegacyFallbackUsesRawHeight pins the windowed retarget's
// fallback behavior: when the walk back exhausts before collecting a
// full same-algorithm window, the legacy retarget is consulted with the
// raw height, not a chunk index.
func TestGetTargetLegacyFallbackUsesRawHeight(t *testing.T) {
	t.Parallel()

	h := &wire.BlockHeader{
		Version:   uint32(wire.AlgoScrypt),
		Timestamp: time.Unix(1_600_000_000, 0).UTC(),
		Bits:      0x1d00ffff,
	}
	data := make([]byte, 51*wire.HeaderSize)
	copy(data[50*wire.HeaderSize:], h.Bytes())

	// Height 50 is below the retarget floor, so the fallback fires, and
	// its checkpoint lookup must be keyed by 50 itself.
	want := big.NewInt(123456)
	f := &fakeChunkReader{checkpoints: map[int32]*big.Int{50: want}}
	got, err := GetTarget(f, data, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(want))
}

// TestGetTargetV1Retarget checks the legacy retarget arithmetic for a
// chunk past the checkpoint table: an actual timespan equal to the
// target timespan leaves the target unchanged.
func TestGetTargetV1Retarget(t *testing.T) {
	t.Parallel()

	const targetTimespan = 84 * 3600
	f := &fakeChunkReader{headers: map[int32]*fakeHeader{
		2015: {timestamp: 1_600_000_000},
		4031: {timestamp: 1_600_000_000 + targetTimespan, bits: 0x1d00ffff},
	}}
	got, err := GetTargetV1(f, 1)
	require.NoError(t, err)

	want, err := BitsToTarget(0x1d00ffff)
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(want))
}

// TestGetTargetV1FirstChunkUsesGenesisTimestamp pins the index-0 edge:
// the first retarget spans from the genesis header's timestamp, and an
// implausibly short actual timespan clamps to a quarter of the target
// timespan.
func TestGetTargetV1FirstChunkUsesGenesisTimestamp(t *testing.T) {
	t.Parallel()

	const targetTimespan = 84 * 3600
	f := &fakeChunkReader{headers: map[int32]*fakeHeader{
		0:    {timestamp: 1_600_000_000},
		2015: {timestamp: 1_600_000_000 + targetTimespan/8, bits: 0x1d00ffff},
	}}
	got, err := GetTargetV1(f, 0)
	require.NoError(t, err)

	base, err := BitsToTarget(0x1d00ffff)
	require.NoError(t, err)
	want := new(big.Int).Div(base, big.NewInt(4))
	require.Equal(t, 0, got.Cmp(want))
}

func TestGetTargetV1SeedAndTestnet(t *testing.T) {
	t.Parallel()

	f := &fakeChunkReader{isTestnet: true}
	target, err := GetTargetV1(f, 5)
	require.NoError(t, err)
	require.Equal(t, int64(0), target.Int64())

	f2 := &fakeChunkReader{}
	target, err = GetTargetV1(f2, -1)
	require.NoError(t, err)
	require.Equal(t, 0, target.Cmp(v1InitialTarget))
}
