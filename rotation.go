// rotation.go: Log streams, numbered rotation and file operations
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

const (
	fileRetryCount = 3
	fileRetryDelay = 10 * time.Millisecond
)

// stream is one output file. Owned by the writer goroutine.
type stream struct {
	name   string // "primary" or "quick", used in error reports
	path   string
	file   *os.File // nil while closed or disabled
	size   int64
	opened bool // separator already written for this run
	failed bool // last open failed; writes are discarded until retried
}

// primaryPath returns {dir}/{prefix}.{index}.log.
func (c *Config) primaryPath(index int) string {
	return filepath.Join(c.Dir, c.Prefix+"."+strconv.Itoa(index)+".log")
}

func (c *Config) quickPath() string {
	return filepath.Join(c.Dir, c.Prefix+".quick.log")
}

// open opens the stream for append, creating the directory if needed.
// A failure disables the stream until retry clears it; the caller keeps
// running.
func (w *writer) open(s *stream) bool {
	if s.file != nil {
		return true
	}
	if s.failed {
		return false
	}

	if dir := filepath.Dir(s.path); dir != "." {
		err := RetryFileOperation(func() error {
			return os.MkdirAll(dir, 0750)
		}, fileRetryCount, fileRetryDelay)
		if err != nil {
			s.failed = true
			w.report(s.name+"_mkdir", fmt.Errorf("failed to create log directory %q: %w", dir, err))
			return false
		}
	}

	var file *os.File
	err := RetryFileOperation(func() error {
		var err error
		file, err = os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, w.cfg.FileMode) // #nosec G304 -- path built from configured dir and sanitized prefix
		return err
	}, fileRetryCount, fileRetryDelay)
	if err != nil {
		s.failed = true
		w.report(s.name+"_open", fmt.Errorf("failed to open log file %q: %w", s.path, err))
		return false
	}

	s.size = 0
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		s.size = info.Size()
	}
	s.file = file

	if !s.opened {
		s.opened = true
		if n := w.cfg.SeparatorLines; n > 0 {
			w.writeRaw(s, []byte(strings.Repeat("\n", n)))
		}
	}
	return true
}

// retry lets a disabled stream attempt to open again on its next write.
func (s *stream) retry() {
	s.failed = false
}

// close syncs and closes the stream's handle, if any.
func (w *writer) close(s *stream) {
	if s.file == nil {
		return
	}
	if err := s.file.Sync(); err != nil {
		w.report(s.name+"_sync", err)
	}
	if err := s.file.Close(); err != nil {
		w.report(s.name+"_close", err)
	}
	s.file = nil
}

// writeRaw writes b to s, opening it on demand. Errors are reported and
// the bytes are discarded. A disabled stream discards without touching the
// filesystem.
func (w *writer) writeRaw(s *stream, b []byte) bool {
	if s.file == nil && !w.open(s) {
		return false
	}
	n, err := s.file.Write(b)
	if n > 0 {
		s.size += int64(n)
	}
	if err != nil {
		w.report(s.name+"_write", err)
		return false
	}
	return true
}

// shouldRotate reports whether the primary has reached the size threshold.
func (w *writer) shouldRotate() bool {
	return w.cfg.rotateBytes > 0 && w.primary.size >= w.cfg.rotateBytes
}

// refreshSize re-reads the primary size from disk so growth from outside
// this pipeline also counts.
func (w *writer) refreshSize() {
	if w.primary.file == nil {
		return
	}
	if info, err := w.primary.file.Stat(); err == nil {
		w.primary.size = info.Size()
	}
}

// rotate closes every open handle, shifts the numbered files up by one and
// reopens a fresh primary. The quick stream keeps its single file.
func (w *writer) rotate() {
	w.close(w.primary)
	w.close(w.quick)

	n := w.cfg.Retention
	if n <= 1 {
		w.removeIndex(0)
	} else {
		for i := n - 2; i >= 0; i-- {
			w.shiftIndex(i)
		}
		if w.cfg.Compress {
			w.compressFile(w.cfg.primaryPath(1))
		}
	}

	w.stats.rotations.Add(1)
	w.primary.size = 0
	w.primary.retry()
	w.quick.retry()
	w.open(w.primary)
}

// shiftIndex moves {prefix}.{i}.log (or its .gz) to index i+1, deleting
// whatever occupies the destination first.
func (w *writer) shiftIndex(i int) {
	src := w.cfg.primaryPath(i)
	dst := w.cfg.primaryPath(i + 1)

	for _, ext := range []string{"", ".gz"} {
		if _, err := os.Stat(src + ext); err != nil {
			continue
		}
		removeQuietly(dst)
		removeQuietly(dst + ".gz")
		err := RetryFileOperation(func() error {
			return os.Rename(src+ext, dst+ext)
		}, fileRetryCount, fileRetryDelay)
		if err != nil {
			w.report("rotate_rename", fmt.Errorf("failed to rename %s: %w", filepath.Base(src+ext), err))
		}
	}
}

func (w *writer) removeIndex(i int) {
	p := w.cfg.primaryPath(i)
	for _, name := range []string{p, p + ".gz"} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			w.report("rotate_remove", err)
		}
	}
}

func removeQuietly(name string) {
	_ = os.Remove(name) // Ignore: destination may not exist
}

// compressFile gzips filename into filename.gz through a temporary file so
// a crash never leaves a truncated archive in place.
func (w *writer) compressFile(filename string) {
	source, err := os.Open(filename) // #nosec G304 -- rotated file path built by the writer
	if err != nil {
		if !os.IsNotExist(err) {
			w.report("compress_open", err)
		}
		return
	}
	defer source.Close()

	compressedName := filename + ".gz"
	tempName := compressedName + ".tmp"

	target, err := os.OpenFile(tempName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.cfg.FileMode) // #nosec G304 -- internally generated
	if err != nil {
		w.report("compress_create", err)
		return
	}

	gz := gzip.NewWriter(target)
	if _, err = io.Copy(gz, source); err == nil {
		err = gz.Close()
	}
	if err == nil {
		err = target.Close()
	} else {
		_ = target.Close() // Ignore close error during cleanup
	}
	if err != nil {
		_ = os.Remove(tempName) // Ignore remove error during cleanup
		w.report("compress_write", err)
		return
	}

	if err := os.Rename(tempName, compressedName); err != nil {
		_ = os.Remove(tempName)
		w.report("compress_rename", fmt.Errorf("failed to rename %s to %s: %w", tempName, compressedName, err))
		return
	}

	_ = source.Close()
	if err := os.Remove(filename); err != nil {
		w.report("compress_cleanup", err)
	}
}
