// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// GenesisHash is the compiled-in hex string for the hash of the
// height-0 header, carried by both built-in networks' Params. The
// hash lookup for height 0 answers from Params.Genesis rather than
// from any chain's file.
const GenesisHash = "c3474fa0b6c00824b01ce630d03f4ba49e11ced6373164b38ed2741dcd90ba84"
