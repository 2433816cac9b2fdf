// Copyright 2025 The levm-go Authors
// This file is part of the levm-go library.
//
// The levm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The levm-go library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the levm-go library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the structured logging front-end used across the
// engine. Context is passed as alternating key/value pairs.
package log

import (
	"context"
	"os"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// LevelTrace sits below slog's built-in levels; the interpreter uses it for
// per-call diagnostics that are too chatty for Debug.
const LevelTrace = slog.Level(-8)

var root atomic.Pointer[Logger]

func init() {
	SetDefault(NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Logger writes key/value records to an underlying slog handler.
type Logger struct {
	inner *slog.Logger
}

// NewLogger returns a Logger backed by the given handler.
func NewLogger(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the process-wide root logger.
func SetDefault(l *Logger) {
	root.Store(l)
}

// Root returns the process-wide root logger.
func Root() *Logger {
	return root.Load()
}

// New returns a child logger with the given context attached to every record.
func (l *Logger) New(ctx ...interface{}) *Logger {
	return &Logger{inner: l.inner.With(ctx...)}
}

func (l *Logger) write(level slog.Level, msg string, ctx []interface{}) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, ctx...)
}

// Trace logs at the trace level.
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LevelTrace, msg, ctx) }

// Debug logs at the debug level.
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(slog.LevelDebug, msg, ctx) }

// Info logs at the info level.
func (l *Logger) Info(msg string, ctx ...interface{}) { l.write(slog.LevelInfo, msg, ctx) }

// Warn logs at the warn level.
func (l *Logger) Warn(msg string, ctx ...interface{}) { l.write(slog.LevelWarn, msg, ctx) }

// Error logs at the error level.
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(slog.LevelError, msg, ctx) }

// Trace logs to the root logger at the trace level.
func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }

// Debug logs to the root logger at the debug level.
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }

// Info logs to the root logger at the info level.
func Info(msg string, ctx ...interface{}) { Root().Info(msg, ctx...) }

// Warn logs to the root logger at the warn level.
func Warn(msg string, ctx ...interface{}) { Root().Warn(msg, ctx...) }

// Error logs to the root logger at the error level.
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }
