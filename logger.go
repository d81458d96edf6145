// logger.go: Producer façade
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import "fmt"

// Logger is the per-call producer API of a Pipeline. Loggers are cheap
// values; Named and Back return modified copies and never touch the
// original, so a Logger may be shared between goroutines.
//
// Every call resolves its sequence number first. A suppressed call returns
// before the clock, the stack or the message formatting are touched.
type Logger struct {
	p      *Pipeline
	thread string
	back   int
}

// Named returns a copy whose records carry name as the thread name.
// Spaces are replaced so the text format stays parseable.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.thread = sanitizeName(name)
	return &c
}

// Back returns a copy that attributes records n frames further up the
// stack, for wrappers around the logger.
func (l *Logger) Back(n int) *Logger {
	c := *l
	if n > 0 {
		c.back += n
	}
	return &c
}

// Pipeline returns the pipeline l writes to.
func (l *Logger) Pipeline() *Pipeline { return l.p }

// Enabled reports whether a record at level would currently be emitted.
func (l *Logger) Enabled(level Level) bool {
	return level.valid() && l.p.seq.Enabled(level)
}

func (l *Logger) Debug(msg string)   { l.log(LevelDebug, msg) }
func (l *Logger) Info(msg string)    { l.log(LevelInfo, msg) }
func (l *Logger) Warning(msg string) { l.log(LevelWarning, msg) }
func (l *Logger) Error(msg string)   { l.log(LevelError, msg) }

// Test logs at test level. With debug on, the record is also written to
// the quick stream, which is not ordered with the primary stream.
func (l *Logger) Test(msg string) { l.log(LevelTest, msg) }

func (l *Logger) Debugf(format string, args ...any)   { l.logf(LevelDebug, format, args) }
func (l *Logger) Infof(format string, args ...any)    { l.logf(LevelInfo, format, args) }
func (l *Logger) Warningf(format string, args ...any) { l.logf(LevelWarning, format, args) }
func (l *Logger) Errorf(format string, args ...any)   { l.logf(LevelError, format, args) }
func (l *Logger) Testf(format string, args ...any)    { l.logf(LevelTest, format, args) }

// Log emits msg at an arbitrary level.
func (l *Logger) Log(level Level, msg string) { l.log(level, msg) }

// LogAt emits msg attributed to c instead of the calling frame.
func (l *Logger) LogAt(level Level, c Caller, msg string) {
	seq := l.p.seq.Next(level)
	if seq == 0 {
		return
	}
	l.p.emit(level, seq, l.thread, c, msg)
}

// log and logf must be called directly from an exported method: the
// caller lookup skips exactly that frame.
func (l *Logger) log(level Level, msg string) {
	seq := l.p.seq.Next(level)
	if seq == 0 {
		return
	}
	l.p.emit(level, seq, l.thread, callerAt(2+l.back), msg)
}

func (l *Logger) logf(level Level, format string, args []any) {
	seq := l.p.seq.Next(level)
	if seq == 0 {
		return
	}
	l.p.emit(level, seq, l.thread, callerAt(2+l.back), fmt.Sprintf(format, args...))
}

func sanitizeName(name string) string {
	if name == "" {
		return DefaultThreadName
	}
	b := []byte(name)
	for i, c := range b {
		if c == ' ' || c == '[' || c == ']' || c == '\n' {
			b[i] = '_'
		}
	}
	return string(b)
}
