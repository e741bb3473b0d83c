// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Logger is the interface each subsystem package logs through.  It is
// deliberately small: subsystems never format their own timestamps or
// choose their own output, that is the backend's job.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})

	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Critical(args ...interface{})

	Level() Level
	SetLevel(level Level)
}

// Disabled is a Logger that throws all log messages away.  It is the
// zero-value logger every package binds to until the entry point
// installs a real backend.
var Disabled Logger = &disabledLogger{}

type disabledLogger struct{}

func (disabledLogger) Tracef(string, ...interface{})    {}
func (disabledLogger) Debugf(string, ...interface{})    {}
func (disabledLogger) Infof(string, ...interface{})     {}
func (disabledLogger) Warnf(string, ...interface{})     {}
func (disabledLogger) Errorf(string, ...interface{})    {}
func (disabledLogger) Criticalf(string, ...interface{}) {}
func (disabledLogger) Trace(...interface{})             {}
func (disabledLogger) Debug(...interface{})             {}
func (disabledLogger) Info(...interface{})              {}
func (disabledLogger) Warn(...interface{})              {}
func (disabledLogger) Error(...interface{})             {}
func (disabledLogger) Critical(...interface{})          {}
func (disabledLogger) Level() Level                     { return LevelOff }
func (disabledLogger) SetLevel(Level)                   {}

// HandlerOption configures a DefaultHandler.
type HandlerOption func(*DefaultHandler)

// WithTimeSource overrides the clock used to stamp log lines; tests
// use this to get deterministic output.
func WithTimeSource(now func() time.Time) HandlerOption {
	return func(h *DefaultHandler) { h.now = now }
}

// WithNoTimestamp omits the timestamp column entirely.
func WithNoTimestamp() HandlerOption {
	return func(h *DefaultHandler) { h.noTimestamp = true }
}

// DefaultHandler is an slog.Handler that renders
// "<time> [<level>] <subsystem>: <msg>" lines, matching the format
// long used by btcsuite-derived loggers.
type DefaultHandler struct {
	w           io.Writer
	level       *Level
	now         func() time.Time
	noTimestamp bool
	subsystem   string
}

// NewDefaultHandler builds a DefaultHandler writing to w.
func NewDefaultHandler(w io.Writer, opts ...HandlerOption) *DefaultHandler {
	lvl := LevelInfo
	h := &DefaultHandler{
		w:     w,
		level: &lvl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Level reports the handler's current minimum level.
func (h *DefaultHandler) Level() Level { return *h.level }

// Enabled implements slog.Handler.
func (h *DefaultHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= toSlogLevel(*h.level)
}

// Handle implements slog.Handler.
func (h *DefaultHandler) Handle(_ context.Context, r slog.Record) error {
	lvl := fromSlogLevel(r.Level)
	if !h.noTimestamp {
		fmt.Fprintf(h.w, "%s ", h.now().Format("2006-01-02 15:04:05.000"))
	}
	fmt.Fprintf(h.w, "[%s] ", lvl)
	if h.subsystem != "" {
		fmt.Fprintf(h.w, "%s: ", h.subsystem)
	}
	fmt.Fprintln(h.w, r.Message)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *DefaultHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler; it is used to stamp the
// subsystem tag onto the handler's copy.
func (h *DefaultHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.subsystem = name
	return &cp
}

// fromSlogLevel converts an slog.Level back to the nearest flog.Level.
func fromSlogLevel(l slog.Level) Level {
	switch {
	case l <= slogLevelTrace:
		return LevelTrace
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarn
	case l < slogLevelCritical:
		return LevelError
	case l < slogLevelOff:
		return LevelCritical
	default:
		return LevelOff
	}
}

// SLogger adapts an slog.Logger built on a DefaultHandler to the
// Logger interface.
type SLogger struct {
	handler *DefaultHandler
	sl      *slog.Logger
}

// NewSLogger returns a Logger backed by handler.
func NewSLogger(handler *DefaultHandler) *SLogger {
	return &SLogger{handler: handler, sl: slog.New(handler)}
}

// Subsystem returns a copy of l tagged with the given subsystem name,
// the way the entry point hands each package its own named logger.
func (l *SLogger) Subsystem(name string) *SLogger {
	return &SLogger{
		handler: l.handler,
		sl:      slog.New(l.handler.WithGroup(name)),
	}
}

func (l *SLogger) log(level slog.Level, msg string) {
	l.sl.Log(context.Background(), level, msg)
}

func (l *SLogger) Tracef(format string, args ...interface{}) {
	l.log(slogLevelTrace, fmt.Sprintf(format, args...))
}
func (l *SLogger) Debugf(format string, args ...interface{}) {
	l.log(slog.LevelDebug, fmt.Sprintf(format, args...))
}
func (l *SLogger) Infof(format string, args ...interface{}) {
	l.log(slog.LevelInfo, fmt.Sprintf(format, args...))
}
func (l *SLogger) Warnf(format string, args ...interface{}) {
	l.log(slog.LevelWarn, fmt.Sprintf(format, args...))
}
func (l *SLogger) Errorf(format string, args ...interface{}) {
	l.log(slog.LevelError, fmt.Sprintf(format, args...))
}
func (l *SLogger) Criticalf(format string, args ...interface{}) {
	l.log(slogLevelCritical, fmt.Sprintf(format, args...))
}

func (l *SLogger) Trace(args ...interface{})    { l.log(slogLevelTrace, fmt.Sprint(args...)) }
func (l *SLogger) Debug(args ...interface{})    { l.log(slog.LevelDebug, fmt.Sprint(args...)) }
func (l *SLogger) Info(args ...interface{})     { l.log(slog.LevelInfo, fmt.Sprint(args...)) }
func (l *SLogger) Warn(args ...interface{})     { l.log(slog.LevelWarn, fmt.Sprint(args...)) }
func (l *SLogger) Error(args ...interface{})    { l.log(slog.LevelError, fmt.Sprint(args...)) }
func (l *SLogger) Critical(args ...interface{}) { l.log(slogLevelCritical, fmt.Sprint(args...)) }

func (l *SLogger) Level() Level         { return l.handler.Level() }
func (l *SLogger) SetLevel(level Level) { *l.handler.level = level }
