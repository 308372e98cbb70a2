// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Package level loggers are created at init time, before the command line
// is parsed, so they forward to the root handler lazily.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger is the logging interface used across the node.
type Logger = ethlog.Logger

// Legacy verbosity levels, as accepted by the --verbosity flags.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Levels re-exported for handler construction.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// FromLegacyLevel converts a 0-5 verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	if lvl < LegacyLevelCrit {
		lvl = LegacyLevelCrit
	}
	if lvl > LegacyLevelTrace {
		lvl = LegacyLevelTrace
	}
	return ethlog.FromLegacyLevel(lvl)
}

// WithContext returns a logger carrying the given context that writes through
// whatever root handler is installed at the time of the call.
func WithContext(ctx ...any) Logger {
	return ethlog.NewLogger(&rootHandler{}).With(ctx...)
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return ethlog.NewLogger(h)
}

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// SetDefault sets the root logger.
func SetDefault(l Logger) {
	ethlog.SetDefault(l)
}

// NewTerminalHandler returns a human readable handler filtering below lvl.
func NewTerminalHandler(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor)
}

// NewJSONHandler returns a json handler filtering below lvl.
func NewJSONHandler(w io.Writer, lvl slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, lvl)
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// Trace logs at the trace level with the root logger.
func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }

// Debug logs at the debug level with the root logger.
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }

// Info logs at the info level with the root logger.
func Info(msg string, ctx ...any) { ethlog.Root().Info(msg, ctx...) }

// Warn logs at the warn level with the root logger.
func Warn(msg string, ctx ...any) { ethlog.Root().Warn(msg, ctx...) }

// Error logs at the error level with the root logger.
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// rootHandler resolves the root handler on every call and replays the
// attributes and groups added to it.
type rootHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *rootHandler) resolve() slog.Handler {
	inner := ethlog.Root().Handler()
	for _, op := range h.ops {
		inner = op(inner)
	}
	return inner
}

func (h *rootHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.resolve().Enabled(ctx, lvl)
}

func (h *rootHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *rootHandler) with(op func(slog.Handler) slog.Handler) *rootHandler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	return &rootHandler{ops: append(ops, op)}
}

func (h *rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *rootHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}
