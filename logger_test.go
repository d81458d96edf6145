// logger_test.go: Producer API tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"path/filepath"
	"runtime"
	"testing"
)

// closeAndRead shuts p down and returns every record of the primary file.
func closeAndRead(t *testing.T, p *Pipeline) []*Record {
	t.Helper()
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return parseLines(t, readLines(t, p.cfg.primaryPath(0)))
}

func logVia(l *Logger, msg string) {
	l.Back(1).Info(msg)
}

func TestLogger_CallerAttribution(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	log := p.Logger()

	_, file, line, _ := runtime.Caller(0)
	log.Info("direct")
	log.Infof("formatted %d", 1)
	logVia(log, "wrapped")

	recs := closeAndRead(t, p)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if rec.File != filepath.Base(file) {
			t.Errorf("record %d file = %q, want %q", i, rec.File, filepath.Base(file))
		}
		if rec.Line != line+1+i {
			t.Errorf("record %d line = %d, want %d", i, rec.Line, line+1+i)
		}
		if rec.Func != "github.com/pingseran/eplog.TestLogger_CallerAttribution" {
			t.Errorf("record %d func = %q", i, rec.Func)
		}
	}
	if recs[1].Message != "formatted 1" {
		t.Errorf("message = %q", recs[1].Message)
	}
}

func TestCallerAt(t *testing.T) {
	_, file, line, _ := runtime.Caller(0)
	c := CallerAt(0)
	if c.File != file || c.Line != line+1 {
		t.Errorf("CallerAt(0) = %s:%d, want %s:%d", c.File, c.Line, file, line+1)
	}
	if got := callerFromPC(0); got.File != "???" || got.Func != "???" {
		t.Errorf("callerFromPC(0) = %+v", got)
	}
}

func TestLogger_LogAt(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	p.Logger().LogAt(LevelWarning, Caller{File: "/srv/app/handler.go", Line: 9, Func: "app.serve"}, "explicit")

	recs := closeAndRead(t, p)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.File != "handler.go" || rec.Line != 9 || rec.Func != "app.serve" || rec.Level != LevelWarning {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestLogger_Named(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	root := p.Logger()
	root.Named("worker 1[x]").Error("boom")
	root.Named("").Error("unnamed")
	root.Error("root")

	recs := closeAndRead(t, p)
	want := []string{"worker_1_x_", DefaultThreadName, DefaultThreadName}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, rec := range recs {
		if rec.ThreadName != want[i] {
			t.Errorf("record %d thread = %q, want %q", i, rec.ThreadName, want[i])
		}
	}
}

func TestLogger_LevelMethods(t *testing.T) {
	cfg := testConfig(t)
	cfg.Level = "none"
	p := newTestPipeline(t, cfg)
	log := p.Logger()

	log.Log(LevelNone, "none")
	log.Debug("d")
	log.Warningf("w%d", 1)
	log.Errorf("e%d", 1)
	log.Testf("t%d", 1)
	log.Log(Level(8), "invalid")

	recs := closeAndRead(t, p)
	want := []Level{LevelNone, LevelDebug, LevelWarning, LevelError, LevelTest}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, rec := range recs {
		if rec.Level != want[i] || rec.Seq != 1 {
			t.Errorf("record %d = %v seq %d, want %v seq 1", i, rec.Level, rec.Seq, want[i])
		}
	}
	if !log.Enabled(LevelNone) || log.Enabled(Level(8)) {
		t.Error("Enabled disagrees with threshold none")
	}
}
