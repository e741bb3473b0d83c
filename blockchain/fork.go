// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/decred/dcrd/lru"
	"github.com/shieldnetwork/shieldheaders/chaincfg"
	"github.com/shieldnetwork/shieldheaders/chainhash"
	log "github.com/shieldnetwork/shieldheaders/log"
	"github.com/shieldnetwork/shieldheaders/wire"
)

var flog = log.Disabled

// UseLogger directs the blockchain package's log output at logger.
func UseLogger(logger log.Logger) { flog = logger }

// forkFileRE matches the on-disk naming for a fork's headers file,
// "fork_<parent_checkpoint>_<checkpoint>".
var forkFileRE = regexp.MustCompile(`^fork_(-?\d+)_(\d+)$`)

// Registry is the process-wide, mutex-guarded set of chains: it owns
// every Chain and is the sole path by which one chain resolves
// another (parent lookups are by registry key, never a direct
// pointer, to avoid ownership cycles across swaps).
type Registry struct {
	mu     sync.Mutex
	chains map[int32]*Chain

	params     *chaincfg.Params
	headersDir string

	// powSeen deduplicates proof-of-work verification across repeated
	// or overlapping chunks: once a header has been checked against
	// its target, a retransmit of the same bytes need not pay for
	// another scrypt/blake2s evaluation. Bounded so a long sync can't
	// grow it without limit.
	powSeen lru.Cache
}

// NewRegistry creates a registry rooted at a single main chain
// (checkpoint 0, no parent), reading its current size from
// headersDir/blockchain_headers if present.
func NewRegistry(params *chaincfg.Params, headersDir string) (*Registry, error) {
	reg := &Registry{
		chains:     make(map[int32]*Chain),
		params:     params,
		headersDir: headersDir,
		powSeen:    lru.NewCache(4096),
	}
	main := &Chain{reg: reg, checkpoint: 0, parentID: noParent}
	if err := main.ensureFile(); err != nil {
		return nil, err
	}
	main.mu.Lock()
	err := main.updateSize()
	main.mu.Unlock()
	if err != nil {
		return nil, err
	}
	reg.chains[0] = main

	if err := reg.loadForks(); err != nil {
		return nil, err
	}
	return reg, nil
}

// loadForks scans headers_dir/forks at startup and registers every
// well-formed fork file found there. The registry is always
// re-derivable from whatever fork files are left on disk, which is
// also what bounds the damage of a crash mid-swap.
func (r *Registry) loadForks() error {
	dir := filepath.Join(r.headersDir, "forks")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	type found struct {
		parentID, checkpoint int32
	}
	var discovered []found
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := forkFileRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		p, err := strconv.ParseInt(m[1], 10, 32)
		if err != nil {
			continue
		}
		cp, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			continue
		}
		discovered = append(discovered, found{int32(p), int32(cp)})
	}
	// Register in ascending checkpoint order so that by the time a
	// fork's own children are scanned, their parent already resolves.
	sort.Slice(discovered, func(i, j int) bool { return discovered[i].checkpoint < discovered[j].checkpoint })

	for _, f := range discovered {
		parent, ok := r.chains[f.parentID]
		if !ok {
			flog.Warnf("ignoring orphaned fork file fork_%d_%d: no chain with checkpoint %d",
				f.parentID, f.checkpoint, f.parentID)
			continue
		}
		c := &Chain{reg: r, checkpoint: f.checkpoint, parentID: f.parentID}
		c.mu.Lock()
		err := c.updateSize()
		c.mu.Unlock()
		if err != nil {
			return err
		}

		// A fork file is only trusted if its first header still links
		// to the claimed parent; stale files left behind by past swaps
		// or crashes are dropped, not fatal.
		first, err := c.ReadHeader(f.checkpoint)
		if err != nil || first == nil {
			flog.Warnf("ignoring fork file fork_%d_%d: cannot read first header: %v",
				f.parentID, f.checkpoint, err)
			continue
		}
		prev, err := parent.GetHash(f.checkpoint - 1)
		if err != nil || prev != first.PrevBlock {
			flog.Warnf("ignoring fork file fork_%d_%d: does not connect to parent at height %d",
				f.parentID, f.checkpoint, f.checkpoint-1)
			continue
		}

		r.chains[f.checkpoint] = c
		flog.Infof("loaded fork chain: checkpoint=%d parent=%d size=%d", f.checkpoint, f.parentID, c.Size())
	}
	return nil
}

// Main returns the main chain (registry key 0).
func (r *Registry) Main() *Chain {
	return r.chain(0)
}

// chain looks a chain up by its registry key (its checkpoint).
func (r *Registry) chain(checkpoint int32) *Chain {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chains[checkpoint]
}

// Chains returns a snapshot slice of every registered chain.
func (r *Registry) Chains() []*Chain {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	return out
}

// Fork creates a new chain rooted at header's height, branching off
// parent, and immediately records header as its first entry. The new
// chain is not added to the registry until its file write has
// succeeded.
func (r *Registry) Fork(parent *Chain, header *wire.BlockHeader) (*Chain, error) {
	child := &Chain{reg: r, checkpoint: header.Height, parentID: parent.checkpoint}
	if err := child.ensureFile(); err != nil {
		return nil, err
	}
	if err := child.SaveHeader(header); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.chains[child.checkpoint] = child
	r.mu.Unlock()
	flog.Infof("forked chain at height %d from parent checkpoint %d", header.Height, parent.checkpoint)
	return child, nil
}

// recordPoWChecked marks h as already verified against some target so
// a repeat chunk need not recompute the hash.
func (r *Registry) recordPoWChecked(h chainhash.Hash) { r.powSeen.Add(h) }

// poWAlreadyChecked reports whether h has already passed a proof-of-work
// check during this process's lifetime.
func (r *Registry) poWAlreadyChecked(h chainhash.Hash) bool { return r.powSeen.Contains(h) }

// swapWithParent promotes c over its parent once c's branch is longer
// than the parent's own branch past the fork point. It is invoked
// after any write that extends a non-main chain. Lock order is the
// registry, then c, then its parent; holding the registry lock
// serializes swaps, so concurrent swaps on different branches cannot
// cycle.
func (c *Chain) swapWithParent() error {
	if c.IsMain() {
		return nil
	}

	r := c.reg
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := r.chains[c.parentID]
	if parent == nil {
		return AssertError("swapWithParent: parent not found in registry")
	}

	// The registry lock is already held, so no other swap can run
	// concurrently; the child/parent pair order below cannot cycle.
	c.mu.Lock()
	defer c.mu.Unlock()
	parent.mu.Lock()
	defer parent.mu.Unlock()

	parentBranchSize := parent.checkpoint + parent.size - c.checkpoint
	if parentBranchSize >= c.size {
		return nil
	}

	oldPaths := make(map[int32]string, len(r.chains))
	for cp, ch := range r.chains {
		oldPaths[cp] = ch.path()
	}

	childBytes, err := readFileRange(c.path(), 0, int64(c.size)*wire.HeaderSize)
	if err != nil {
		return err
	}
	parentSliceOffset := int64(c.checkpoint-parent.checkpoint) * wire.HeaderSize
	parentSlice, err := readFileRange(parent.path(), parentSliceOffset, int64(parentBranchSize)*wire.HeaderSize)
	if err != nil {
		return err
	}

	if err := overwriteFile(c.path(), parentSlice); err != nil {
		return err
	}
	if err := overwriteFileAt(parent.path(), parentSliceOffset, childBytes); err != nil {
		return err
	}

	c.checkpoint, parent.checkpoint = parent.checkpoint, c.checkpoint
	c.parentID, parent.parentID = parent.parentID, c.parentID

	// Sizes are re-derived from the files just written rather than
	// hand-carried, since c and parent each now own whichever physical
	// file their swapped (parent_id, checkpoint) resolves to.
	if err := c.updateSize(); err != nil {
		return err
	}
	if err := parent.updateSize(); err != nil {
		return err
	}

	// Any other chain whose path encodes (parent_id, checkpoint)
	// through the swapped pair now resolves to a different path; move
	// its file to match before the registry is re-keyed.
	for cp, ch := range r.chains {
		if ch == c || ch == parent {
			continue
		}
		if ch.path() != oldPaths[cp] {
			if err := os.Rename(oldPaths[cp], ch.path()); err != nil {
				return err
			}
		}
	}

	rekeyed := make(map[int32]*Chain, len(r.chains))
	for _, ch := range r.chains {
		rekeyed[ch.checkpoint] = ch
	}
	r.chains = rekeyed

	flog.Infof("swapped fork checkpoint=%d with parent checkpoint=%d", c.checkpoint, parent.checkpoint)
	return nil
}

func readFileRange(path string, offset, length int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func overwriteFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Truncate(int64(len(data))); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return f.Sync()
}

func overwriteFileAt(path string, offset int64, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Truncate(offset + int64(len(data))); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, offset); err != nil {
		return err
	}
	return f.Sync()
}
