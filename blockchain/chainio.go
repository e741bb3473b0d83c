// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shieldnetwork/shieldheaders/chaincfg"
	"github.com/shieldnetwork/shieldheaders/chainhash"
	"github.com/shieldnetwork/shieldheaders/wire"
)

// noParent marks a chain with no parent: the main chain.
const noParent int32 = -1

// Chain is a single branch's flat, offset-addressed header file: a
// contiguous run of 80-byte headers, keyed by height through its
// checkpoint and size.
type Chain struct {
	reg        *Registry
	checkpoint int32
	parentID   int32

	mu   sync.Mutex
	size int32

	// catchUp is an advisory identifier of whatever is currently
	// extending this chain; it is never consulted by this package,
	// only reported. It is not a lock.
	catchUp string
}

// Checkpoint returns the height of the first header stored by c.
func (c *Chain) Checkpoint() int32 { return c.checkpoint }

// IsMain reports whether c is the main chain.
func (c *Chain) IsMain() bool { return c.parentID == noParent }

// SetCatchUp records the advisory identifier of whatever network
// interface is currently extending this chain.
func (c *Chain) SetCatchUp(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catchUp = id
}

// CatchUp returns the advisory identifier set by SetCatchUp.
func (c *Chain) CatchUp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catchUp
}

// path returns the on-disk path for c: blockchain_headers for the main
// chain, forks/fork_<parent>_<checkpoint> for a fork.
func (c *Chain) path() string {
	if c.IsMain() {
		return filepath.Join(c.reg.headersDir, "blockchain_headers")
	}
	return filepath.Join(c.reg.headersDir, "forks", fmt.Sprintf("fork_%d_%d", c.parentID, c.checkpoint))
}

// parent resolves c's parent through the registry, not an owning
// pointer, so identity swaps don't leave stale references behind.
func (c *Chain) parent() *Chain {
	if c.IsMain() {
		return nil
	}
	return c.reg.chain(c.parentID)
}

// Size returns the number of headers physically in c's file.
func (c *Chain) Size() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Height is the logical height of the last header in c.
func (c *Chain) Height() int32 {
	return c.checkpoint + c.Size() - 1
}

// updateSize recomputes c.size from the file on disk. Caller must
// hold c.mu.
func (c *Chain) updateSize() error {
	info, err := os.Stat(c.path())
	if err != nil {
		if os.IsNotExist(err) {
			c.size = 0
			return nil
		}
		return err
	}
	c.size = int32(info.Size() / wire.HeaderSize)
	return nil
}

// assertFileAvailable distinguishes a missing headers file while the
// directory still exists (ErrStateCorrupt) from the entire headers
// directory having gone missing (ErrStateLost).
func (c *Chain) assertFileAvailable() error {
	if _, err := os.Stat(c.path()); err == nil {
		return nil
	}
	if _, err := os.Stat(c.reg.headersDir); os.IsNotExist(err) {
		return ruleError(ErrStateLost, "headers directory %q no longer exists", c.reg.headersDir)
	}
	return ruleError(ErrStateCorrupt, "headers file missing at %q but directory is present", c.path())
}

// write overwrites c's file at offset with data, truncating the file
// there first when truncate is true and offset isn't already the
// current end of file, then fsyncs so the bytes are durable before
// the call returns.
func (c *Chain) write(data []byte, offset int64, truncate bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.assertFileAvailable(); err != nil {
		return err
	}

	f, err := os.OpenFile(c.path(), os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if truncate && offset != int64(c.size)*wire.HeaderSize {
		if err := f.Truncate(offset); err != nil {
			return err
		}
	}
	if _, err := f.WriteAt(data, offset); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return c.updateSize()
}

// ensureFile creates an empty headers file for c if one does not
// exist yet, so the first write finds a file to open.
func (c *Chain) ensureFile() error {
	dir := filepath.Dir(c.path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.path(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// ReadHeader reads the header at the given logical height, delegating
// to the parent chain for heights below c's checkpoint. It returns
// (nil, nil) for an absent (all-zero) slot or a height past c's
// current tip.
func (c *Chain) ReadHeader(height int32) (*wire.BlockHeader, error) {
	if height < 0 {
		return nil, nil
	}
	if height < c.checkpoint {
		p := c.parent()
		if p == nil {
			return nil, AssertError("chain below checkpoint has no parent")
		}
		return p.ReadHeader(height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if height > c.checkpoint+c.size-1 {
		return nil, nil
	}
	if err := c.assertFileAvailable(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	delta := int64(height-c.checkpoint) * wire.HeaderSize
	buf := make([]byte, wire.HeaderSize)
	n, err := f.ReadAt(buf, delta)
	if err != nil && n != wire.HeaderSize {
		return nil, fmt.Errorf("blockchain: short header read at height %d: %d bytes: %w", height, n, err)
	}
	if wire.IsZero(buf) {
		return nil, nil
	}
	return wire.DeserializeHeader(buf, height)
}

// SaveHeader appends a single header to c. The header's height must
// equal c.checkpoint+c.Size() exactly; after a successful write,
// SaveHeader attempts to promote c over its parent.
func (c *Chain) SaveHeader(h *wire.BlockHeader) error {
	delta := h.Height - c.checkpoint
	if delta != c.Size() {
		return AssertError(fmt.Sprintf("SaveHeader: height %d is not the next slot (delta %d != size %d)",
			h.Height, delta, c.Size()))
	}
	if err := c.write(h.Bytes(), int64(delta)*wire.HeaderSize, true); err != nil {
		return err
	}
	return c.swapWithParent()
}

// SaveChunk writes a batch of already-verified headers to c at the
// chunk's offset, trimming any leading bytes that fall before c's
// checkpoint, and skips truncating while the chunk is still covered
// by the checkpoint table. It then attempts to promote c over its
// parent.
func (c *Chain) SaveChunk(index int32, data []byte) error {
	d := (int64(index)*2016 - int64(c.checkpoint)) * wire.HeaderSize
	if d < 0 {
		trim := -d
		if trim > int64(len(data)) {
			trim = int64(len(data))
		}
		data = data[trim:]
		d = 0
	}
	truncate := int(index) >= len(c.reg.params.Checkpoints)
	if err := c.write(data, d, truncate); err != nil {
		return err
	}
	return c.swapWithParent()
}

// GetHash answers the linkage hash for a height: the zero sentinel
// for -1, the compiled-in genesis for 0, the checkpoint table's hash
// for any stride-2016 boundary below the checkpoint floor, and
// otherwise the stored header's own hash.
func (c *Chain) GetHash(height int32) (chainhash.Hash, error) {
	switch {
	case height == -1:
		return chainhash.Hash{}, nil
	case height == 0:
		h, err := chainhash.NewHashFromStr(c.reg.params.Genesis)
		if err != nil {
			return chainhash.Hash{}, err
		}
		return *h, nil
	}

	if int(height) < len(c.reg.params.Checkpoints)*chaincfg.CheckpointInterval {
		if (height+1)%chaincfg.CheckpointInterval != 0 {
			return chainhash.Hash{}, AssertError(fmt.Sprintf(
				"height %d below checkpoint floor is not a chunk boundary", height))
		}
		index := height / chaincfg.CheckpointInterval
		h, err := chainhash.NewHashFromStr(c.reg.params.Checkpoints[index].Hash)
		if err != nil {
			return chainhash.Hash{}, err
		}
		return *h, nil
	}

	hdr, err := c.ReadHeader(height)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if hdr == nil {
		return chainhash.Hash{}, nil
	}
	return wire.HashHeader(hdr)
}

// Timestamp answers the timestamp at height, from the checkpoint
// table when height lands on a checkpointed chunk boundary and from
// the stored header otherwise. The legacy retarget needs this because
// the header just before a chunk boundary may only exist as a
// checkpoint triple.
func (c *Chain) Timestamp(height int32) (int64, bool, error) {
	if int(height) < len(c.reg.params.Checkpoints)*chaincfg.CheckpointInterval &&
		(height+1)%chaincfg.CheckpointInterval == 0 {
		return c.reg.params.Checkpoints[height/chaincfg.CheckpointInterval].Timestamp, true, nil
	}
	hdr, err := c.ReadHeader(height)
	if err != nil {
		return 0, false, err
	}
	if hdr == nil {
		return 0, false, nil
	}
	return hdr.Timestamp.Unix(), true, nil
}

// checkpointTarget implements chunkReader: it answers the compiled-in
// target for a chunk index, if that chunk is covered by the table.
func (c *Chain) checkpointTarget(index int32) (*big.Int, bool) {
	if index < 0 || int(index) >= len(c.reg.params.Checkpoints) {
		return nil, false
	}
	return c.reg.params.Checkpoints[index].Target, true
}

// testnet implements chunkReader.
func (c *Chain) testnet() bool { return c.reg.params.Testnet }

// MaxChild returns the checkpoint of c's highest-rooted child, if
// any: a chain that has itself been forked reports its best
// descendant's branch point rather than its own.
func (c *Chain) MaxChild() (int32, bool) {
	best, found := int32(0), false
	for _, ch := range c.reg.Chains() {
		if ch.parentID != c.checkpoint {
			continue
		}
		if !found || ch.checkpoint > best {
			best, found = ch.checkpoint, true
		}
	}
	return best, found
}

// EffectiveCheckpoint is c's own checkpoint unless it has a child, in
// which case it is its highest-rooted child's checkpoint.
func (c *Chain) EffectiveCheckpoint() int32 {
	if mc, ok := c.MaxChild(); ok {
		return mc
	}
	return c.checkpoint
}

// BranchSize is the number of headers between c's effective checkpoint
// and its tip, inclusive.
func (c *Chain) BranchSize() int32 {
	return c.Height() - c.EffectiveCheckpoint() + 1
}

// Name derives a short display identifier for c from the hash at its
// effective checkpoint, stripping leading zero hex digits and
// truncating to 10 characters.
func (c *Chain) Name() (string, error) {
	hash, err := c.GetHash(c.EffectiveCheckpoint())
	if err != nil {
		return "", err
	}
	s := strings.TrimLeft(hash.String(), "0")
	if len(s) > 10 {
		s = s[:10]
	}
	return s, nil
}
