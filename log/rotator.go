// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flog

import (
	"io"
	"os"

	"github.com/jrick/logrotate/rotator"
)

// NewRotatingWriter opens (creating if necessary) a rotating log file
// at logPath, capped at maxRolls historical files.  It writes to both
// the rotator and stdout so a long-running process attached to a
// terminal still shows its output.
func NewRotatingWriter(logPath string, maxRolls int) (io.WriteCloser, error) {
	r, err := rotator.New(logPath, 10*1024, false, maxRolls)
	if err != nil {
		return nil, err
	}
	return &teeCloser{r: r}, nil
}

// teeCloser duplicates writes to stdout and the rotator, closing only
// the rotator on Close.
type teeCloser struct {
	r *rotator.Rotator
}

func (t *teeCloser) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	return t.r.Write(p)
}

func (t *teeCloser) Close() error {
	return t.r.Close()
}
