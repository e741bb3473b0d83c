// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package flog defines the leveled, subsystem-style logger used
// throughout shieldheaders.  Packages that log declare a package-level
// variable of type Logger, defaulting to Disabled, and the
// entry point rebinds it to a real backend at startup.
package flog

import (
	"log/slog"
	"strings"
)

// Level is the level at which a logger is configured.  All messages
// sent to a Logger are filtered by comparing their individual levels
// to the current Level of the Logger.
type Level uint32

// Level constants, ordered from most to least verbose.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelStrs maps a Level to the string used when formatting log
// records.
var levelStrs = [...]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
	LevelOff:      "OFF",
}

// String returns the tag associated with the Level.
func (l Level) String() string {
	if l >= Level(len(levelStrs)) {
		return "???"
	}
	return levelStrs[l]
}

// LevelFromString returns a level based on the input string s.  If
// the input can't be interpreted as a valid log level, the info level
// and false is returned.
func LevelFromString(s string) (l Level, ok bool) {
	switch strings.ToLower(s) {
	case "trace", "trc":
		return LevelTrace, true
	case "debug", "dbg":
		return LevelDebug, true
	case "info", "inf":
		return LevelInfo, true
	case "warn", "wrn":
		return LevelWarn, true
	case "error", "err":
		return LevelError, true
	case "critical", "crt":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// slog uses some pre-defined level integers, so the handler needs to
// translate between flog.Level and slog.Level when it calls into the
// standard library logger.
const (
	slogLevelTrace    slog.Level = -5
	slogLevelCritical slog.Level = 9
	slogLevelOff      slog.Level = 10
)

// toSlogLevel converts a flog.Level to the associated slog.Level.
func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelCritical:
		return slogLevelCritical
	default:
		return slogLevelOff
	}
}
