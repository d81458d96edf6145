// slog_test.go: log/slog bridge tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestSlogLevel(t *testing.T) {
	tests := map[slog.Level]Level{
		slog.LevelDebug - 4: LevelDebug,
		slog.LevelDebug:     LevelDebug,
		slog.LevelInfo:      LevelInfo,
		slog.LevelInfo + 2:  LevelInfo,
		slog.LevelWarn:      LevelWarning,
		slog.LevelError:     LevelError,
		slog.LevelError + 4: LevelError,
	}
	for in, want := range tests {
		if got := SlogLevel(in); got != want {
			t.Errorf("SlogLevel(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSlogHandler(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	h := NewSlogHandler(p, "http")

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled under an info threshold")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn disabled under an info threshold")
	}

	logger := slog.New(h)
	_, file, line, _ := runtime.Caller(0)
	logger.With("k", "v").WithGroup("g").Info("hello", "n", 1)
	logger.Debug("hidden")
	logger.Error("quoted", "err", "disk full", "empty", "", slog.Group("req", "id", 7), slog.Duration("took", 2*time.Second))

	recs := closeAndRead(t, p)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	if recs[0].Message != "hello k=v g.n=1" {
		t.Errorf("message = %q", recs[0].Message)
	}
	if recs[0].ThreadName != "http" || recs[0].Level != LevelInfo {
		t.Errorf("thread = %q, level = %v", recs[0].ThreadName, recs[0].Level)
	}
	if recs[0].File != filepath.Base(file) || recs[0].Line != line+1 {
		t.Errorf("caller = %s:%d, want %s:%d", recs[0].File, recs[0].Line, filepath.Base(file), line+1)
	}

	want := `quoted err="disk full" empty="" req.id=7 took=2s`
	if recs[1].Message != want || recs[1].Level != LevelError {
		t.Errorf("message = %q, want %q", recs[1].Message, want)
	}
}

func TestSlogHandler_NoopDerivations(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	h := NewSlogHandler(p, "x")
	if h.WithAttrs(nil) != slog.Handler(h) || h.WithGroup("") != slog.Handler(h) {
		t.Error("empty WithAttrs/WithGroup must return the receiver")
	}
}
