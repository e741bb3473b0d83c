// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command headersd is a thin process that owns a header store and
// reports its tip; the peer-facing network loop that actually feeds
// it chunks lives outside this repository.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shieldnetwork/shieldheaders/blockchain"
	"github.com/shieldnetwork/shieldheaders/chaincfg"
	flog "github.com/shieldnetwork/shieldheaders/log"
)

var logger *flog.SLogger

func realMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rotator, err := flog.NewRotatingWriter(filepath.Join(cfg.LogDir, defaultLogFilename), 10)
	if err != nil {
		return fmt.Errorf("starting log rotator: %w", err)
	}
	defer rotator.Close()

	handler := flog.NewDefaultHandler(rotator)
	root := flog.NewSLogger(handler)
	root.SetLevel(parseLevel(cfg.Debug))
	logger = root.Subsystem("HDRD")
	blockchain.UseLogger(root.Subsystem("CHAN"))

	params := &chaincfg.MainNetParams
	if cfg.TestNet {
		params = &chaincfg.TestNetParams
	}

	coord, err := blockchain.NewCoordinator(params, cfg.HeadersDir)
	if err != nil {
		return fmt.Errorf("initializing header store: %w", err)
	}

	logger.Infof("network %s, headers dir %s, tip height %d", params.Name, cfg.HeadersDir, coord.Height())
	return nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
