// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg groups the network-specific constants the header
// verifier needs: the genesis hash, the checkpoint table, and the
// testnet switch that disables proof-of-work checking.
package chaincfg

// Params groups the parameters for a single SHIELD-family network.
type Params struct {
	// Name is a human-readable network name, used in log lines.
	Name string

	// Genesis is the compiled-in hex hash of height 0.
	Genesis string

	// Checkpoints is the compiled-in, stride-2016 checkpoint table.
	Checkpoints []Checkpoint

	// Testnet disables proof-of-work and bits verification entirely;
	// only linkage is still checked.
	Testnet bool
}

// MainNetParams are the parameters for the main SHIELD-family network.
var MainNetParams = Params{
	Name:        "mainnet",
	Genesis:     GenesisHash,
	Checkpoints: MainNetCheckpoints,
	Testnet:     false,
}

// TestNetParams are the parameters for the test network: no
// checkpoint table, and header verification stops after the linkage
// check.
var TestNetParams = Params{
	Name:        "testnet",
	Genesis:     GenesisHash,
	Checkpoints: nil,
	Testnet:     true,
}
