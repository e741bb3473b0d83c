// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"

	"github.com/shieldnetwork/shieldheaders/wire"
)

// MaxTarget is the loosest target the legacy retarget path will ever
// return.
var MaxTarget = mustBigHex("00000FFFFF000000000000000000000000000000000000000000000000000000")

// v1InitialTarget is the target GetTargetV1 returns for index -1, the
// one-time seed used before any chunk has completed.
var v1InitialTarget = mustBigHex("00000FFFF0000000000000000000000000000000000000000000000000000000")

func mustBigHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("blockchain: malformed compiled-in hex constant: " + s)
	}
	return n
}

// BitsToTarget expands a compact bits encoding to its full 256-bit
// target.
func BitsToTarget(bits uint32) (*big.Int, error) {
	n := (bits >> 24) & 0xff
	base := bits & 0xffffff

	if n < 0x03 || n > 0x1e {
		return nil, ruleError(ErrDecode, "bits exponent %#x out of range [0x03, 0x1e]", n)
	}
	if base < 0x8000 || base > 0x7fffff {
		return nil, ruleError(ErrDecode, "bits mantissa %#x out of range [0x8000, 0x7fffff]", base)
	}

	target := new(big.Int).SetUint64(uint64(base))
	target.Lsh(target, uint(8*(n-3)))
	return target, nil
}

// TargetToBits compresses a 256-bit target to its compact bits
// encoding. Note the validation in BitsToTarget rejects a bits
// exponent above 0x1e, so a target whose compact form needs a larger
// exponent does not survive BitsToTarget(TargetToBits(t)); MaxTarget
// encodes as 0x1e0fffff and is accepted. The asymmetry is
// long-standing consensus behavior and is kept.
func TargetToBits(target *big.Int) uint32 {
	// Pad to a full 32-byte (64 hex char) representation, drop the top
	// byte unconditionally, then strip further leading zero byte
	// pairs. Every real target is far below 2^248, so the dropped top
	// byte is always zero.
	hexStr := fmt.Sprintf("%064x", target)[2:]
	for len(hexStr) > 6 && hexStr[:2] == "00" {
		hexStr = hexStr[2:]
	}

	n := uint32(len(hexStr) / 2)
	base, _ := new(big.Int).SetString(hexStr[:6], 16)
	baseVal := base.Uint64()

	if baseVal >= 0x800000 {
		n++
		baseVal >>= 8
	}
	return n<<24 | uint32(baseVal)
}

// GetMaxClockDrift returns the future-time-limit, in seconds, allowed
// for a header at the given height. The wider windows correspond to
// height ranges where the network historically tolerated more skew.
func GetMaxClockDrift(height int32) int64 {
	if height < 660000 || (height > 800000 && height < 817500) {
		return 2 * 60 * 60
	}
	return 10 * 60
}

// Retarget tuning constants.
const (
	targetSpacing    = 225
	targetWindowSize = 60
	retargetFloor    = 100
)

// windowHeader is the slice of header state the retarget window
// needs: enough to group by algorithm and diff successive timestamps.
type windowHeader struct {
	timestamp int64
	bits      uint32
	algo      int
}

// algoGroupID maps a header's algorithm tag to the grouping id used to
// find same-algorithm ancestors for the retarget window. Any tag not
// in the table groups with scrypt.
func algoGroupID(h *wire.BlockHeader) int {
	switch h.AlgoTag() {
	case wire.AlgoScrypt:
		return 0
	case wire.AlgoX17:
		return 1
	case wire.AlgoLyra:
		return 2
	case wire.AlgoBlake:
		return 3
	case wire.AlgoGroestl:
		return 4
	case wire.AlgoX16s:
		return 5
	default:
		return 0
	}
}

// chunkReader is the only access into chain history the target engine
// needs; the chain store satisfies it.
type chunkReader interface {
	ReadHeader(height int32) (*wire.BlockHeader, error)
	Timestamp(height int32) (int64, bool, error)
	checkpointTarget(index int32) (*big.Int, bool)
	testnet() bool
}

// GetTarget computes the required target for the header at logical
// height chunkIndex*2016+i using a dark-gravity-style sliding window
// over the most recent same-algorithm ancestors. chunkData is the
// batch of headers currently being verified (not yet persisted); c is
// consulted only for heights below the chunk's start.
func GetTarget(c chunkReader, chunkData []byte, i int, chunkIndex int32) (*big.Int, error) {
	height := chunkIndex*2016 + int32(i)
	cur, err := decodeFromChunk(chunkData, i, height)
	if err != nil {
		return nil, err
	}
	algo := algoGroupID(cur)

	ftl := GetMaxClockDrift(height)
	k := big.NewInt(targetWindowSize * (targetWindowSize + 1) * targetSpacing / 2)

	var sameAlgo []windowHeader
	cc := int64(height) - 1
	for cc > retargetFloor && len(sameAlgo) <= targetWindowSize {
		var wh windowHeader
		if int32(cc) >= chunkIndex*2016 {
			idx := int(int32(cc) - chunkIndex*2016)
			hdr, err := decodeFromChunk(chunkData, idx, int32(cc))
			if err != nil {
				return nil, err
			}
			wh = windowHeader{timestamp: hdr.Timestamp.Unix(), bits: hdr.Bits, algo: algoGroupID(hdr)}
		} else {
			hdr, err := c.ReadHeader(int32(cc))
			if err != nil {
				return nil, err
			}
			if hdr == nil {
				return nil, ruleError(ErrMissingHeader, "no header at height %d for retarget window", cc)
			}
			wh = windowHeader{timestamp: hdr.Timestamp.Unix(), bits: hdr.Bits, algo: algoGroupID(hdr)}
		}
		if wh.algo == algo {
			sameAlgo = append(sameAlgo, wh)
		}
		cc--
	}

	if cc <= retargetFloor {
		// The legacy path is handed the raw height, not a chunk
		// index. GetTargetV1 treats its argument as a chunk index, so
		// past the checkpoint table this rarely lands on a real chunk
		// boundary; consensus-critical behavior, kept as is.
		return GetTargetV1(c, height)
	}

	n := targetWindowSize
	t := big.NewInt(0)
	sumTarget := new(big.Rat).SetInt64(0)
	kN := new(big.Int).Mul(k, big.NewInt(int64(n)))
	j := int64(0)
	for idx := n; idx >= 1; idx-- {
		solvetime := sameAlgo[idx-1].timestamp - sameAlgo[idx].timestamp
		if solvetime < -ftl {
			solvetime = -ftl
		}
		if solvetime > 6*targetSpacing {
			solvetime = 6 * targetSpacing
		}
		j++
		t.Add(t, big.NewInt(solvetime*j))

		target, err := BitsToTarget(sameAlgo[idx-1].bits)
		if err != nil {
			return nil, err
		}
		term := new(big.Rat).SetFrac(target, kN)
		sumTarget.Add(sumTarget, term)
	}

	floor := new(big.Int).Div(k, big.NewInt(10))
	if t.Cmp(floor) < 0 {
		t.Set(floor)
	}

	result := new(big.Rat).Mul(new(big.Rat).SetInt(t), sumTarget)
	next := new(big.Int).Quo(result.Num(), result.Denom())
	return next, nil
}

// GetTargetV1 is the legacy, chunk-boundary retarget, used as a
// fallback when fewer than targetWindowSize+1 same-algorithm
// ancestors exist back to the retarget floor, and directly for any
// chunk covered by the compiled-in checkpoint table.
func GetTargetV1(c chunkReader, index int32) (*big.Int, error) {
	if c.testnet() {
		return big.NewInt(0), nil
	}
	if index == -1 {
		return new(big.Int).Set(v1InitialTarget), nil
	}
	if target, ok := c.checkpointTarget(index); ok {
		return target, nil
	}

	firstHeight := index*2016 - 1
	if index == 0 {
		firstHeight = 0
	}
	firstTS, ok, err := c.Timestamp(firstHeight)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ruleError(ErrMissingHeader, "missing timestamp at height %d", firstHeight)
	}

	last, err := c.ReadHeader(index*2016 + 2015)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, ruleError(ErrMissingHeader, "missing header at height %d", index*2016+2015)
	}

	target, err := BitsToTarget(last.Bits)
	if err != nil {
		return nil, err
	}

	const targetTimespan = 84 * 3600
	actual := last.Timestamp.Unix() - firstTS
	if actual < targetTimespan/4 {
		actual = targetTimespan / 4
	}
	if actual > targetTimespan*4 {
		actual = targetTimespan * 4
	}

	newTarget := new(big.Int).Mul(target, big.NewInt(actual))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))
	if newTarget.Cmp(MaxTarget) > 0 {
		newTarget.Set(MaxTarget)
	}
	return newTarget, nil
}

// decodeFromChunk decodes the header at slot i of an in-flight chunk
// buffer, stamping it with the given logical height.
func decodeFromChunk(data []byte, i int, height int32) (*wire.BlockHeader, error) {
	start := i * wire.HeaderSize
	end := start + wire.HeaderSize
	if start < 0 || end > len(data) {
		return nil, ruleError(ErrDecode, "chunk slot %d out of range", i)
	}
	return wire.DeserializeHeader(data[start:end], height)
}
