// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	log "github.com/shieldnetwork/shieldheaders/log"
)

const defaultLogFilename = "headersd.log"

var (
	defaultHomeDir    = filepath.Join(os.Getenv("HOME"), ".shieldheaders")
	defaultHeadersDir = filepath.Join(defaultHomeDir, "headers")
	defaultLogDir     = filepath.Join(defaultHomeDir, "logs")
)

// config defines the configuration options for headersd, parsed from
// the command line with jessevdk/go-flags, matching the option-struct
// style the daemon's own client tooling uses.
type config struct {
	HeadersDir string `long:"headersdir" description:"Directory holding blockchain_headers and forks/"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	TestNet    bool   `long:"testnet" description:"Use the test network"`
	Debug      string `short:"d" long:"debuglevel" description:"Logging level: trace, debug, info, warn, error, critical, off" default:"info"`
}

// loadConfig parses command-line flags into a config, applying the
// same home-directory defaulting convention as the daemon.
func loadConfig() (*config, error) {
	cfg := config{
		HeadersDir: defaultHeadersDir,
		LogDir:     defaultLogDir,
		Debug:      "info",
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}

	if err := os.MkdirAll(cfg.HeadersDir, 0o755); err != nil {
		return nil, fmt.Errorf("headersdir: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("logdir: %w", err)
	}
	return &cfg, nil
}

// parseLevel maps the config's debug-level string to a flog.Level,
// falling back to info on anything unrecognized.
func parseLevel(s string) log.Level {
	lvl, ok := log.LevelFromString(s)
	if !ok {
		return log.LevelInfo
	}
	return lvl
}
