// writer.go: Background writer draining the queues to disk
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"fmt"
	"time"

	"github.com/agilira/go-timecache"
)

// writer is the single consumer of both queues and the only owner of the
// log files.
type writer struct {
	p       *Pipeline
	cfg     *Config
	queue   *dualQueue
	stats   *counters
	clock   *timecache.TimeCache
	primary *stream
	quick   *stream

	buf       []byte
	lastCheck time.Time
}

func newWriter(p *Pipeline) *writer {
	return &writer{
		p:       p,
		cfg:     &p.cfg,
		queue:   p.queue,
		stats:   &p.stats,
		clock:   timecache.NewWithResolution(time.Millisecond),
		primary: &stream{name: "primary", path: p.cfg.primaryPath(0)},
		quick:   &stream{name: "quick", path: p.cfg.quickPath()},
		buf:     make([]byte, 0, 4096),
	}
}

// report forwards a discarded error to the configured callback.
func (w *writer) report(operation string, err error) {
	if err == nil {
		return
	}
	w.stats.writeErrors.Add(1)
	if cb := w.cfg.ErrorCallback; cb != nil {
		cb(operation, err)
	}
}

// run is the writer loop. It returns once shutdown has been requested and
// either both queues are empty or the grace deadline has passed.
func (w *writer) run() {
	defer close(w.p.done)
	defer w.clock.Stop()

	w.lastCheck = w.clock.CachedTime()
	for {
		if w.p.closing.Load() && (w.queue.empty() || w.pastDeadline()) {
			break
		}

		if w.p.rotateReq.Swap(false) {
			w.rotate()
		}
		if now := w.clock.CachedTime(); now.Sub(w.lastCheck) >= w.cfg.RotateCheckInterval {
			w.lastCheck = now
			w.primary.retry()
			w.quick.retry()
			w.refreshSize()
			if w.shouldRotate() {
				w.rotate()
			}
		}

		w.drain(w.queue.quick, w.quick)
		if w.drain(w.queue.normal, w.primary) == 0 && !w.p.closing.Load() {
			w.queue.wait(w.cfg.IdleWait)
		}
	}

	w.finish()
}

// pastDeadline reports whether the shutdown grace period is over.
func (w *writer) pastDeadline() bool {
	return time.Now().UnixNano() >= w.p.deadline.Load()
}

// drain writes every available record of rb to s and returns the count.
func (w *writer) drain(rb *ringBuffer, s *stream) int {
	n := 0
	for {
		if w.p.closing.Load() && w.pastDeadline() {
			return n
		}
		rec, ok := rb.pop()
		if !ok {
			return n
		}
		w.write(s, rec)
		n++
	}
}

// write serializes rec onto s. A full primary is rotated before the write,
// so {prefix}.0.log always holds the newest records.
func (w *writer) write(s *stream, rec *Record) {
	if s == w.primary && w.shouldRotate() {
		w.rotate()
	}
	w.buf = rec.encode(w.buf[:0], w.cfg.Format)
	if w.writeRaw(s, w.buf) {
		w.stats.written.Add(1)
	}
}

// finish reports undelivered records and closes every file.
func (w *writer) finish() {
	if left := w.queue.normal.len(); left > 0 {
		w.writeLossRecord(left)
	}
	w.close(w.primary)
	w.close(w.quick)
}

// writeLossRecord writes one error-level record counting the normal-queue
// records abandoned at shutdown. It honours the current threshold.
func (w *writer) writeLossRecord(left int) {
	seq := w.p.seq.Next(LevelError)
	if seq == 0 {
		return
	}
	w.stats.constructed.Add(1)
	rec := w.p.newRecord(LevelError, seq, DefaultThreadName, callerAt(0),
		fmt.Sprintf("%d records were not written", left))
	w.buf = rec.encode(w.buf[:0], w.cfg.Format)
	if w.writeRaw(w.primary, w.buf) {
		w.stats.written.Add(1)
	}
}
