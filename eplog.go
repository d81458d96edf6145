// eplog.go: Public API - asynchronous structured-log pipeline
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/go-errors"
)

// Pipeline accepts records from any number of goroutines and persists them
// from a single background writer. Producers never block: a full queue
// drops the record.
//
// Basic usage:
//
//	cfg := eplog.DefaultConfig()
//	cfg.Dir = "/var/log/myapp"
//	p, err := eplog.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	log := p.Logger()
//	log.Info("service started")
//	log.Named("worker-1").Warningf("retrying %s", job)
type Pipeline struct {
	cfg   Config
	seq   *Sequencer
	queue *dualQueue
	id    identity
	stats counters

	debug     atomic.Bool
	closing   atomic.Bool
	deadline  atomic.Int64 // unix nanos, valid once closing is set
	rotateReq atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}

	watchMu sync.Mutex
	watcher *argus.Watcher
}

// counters back Stats. Every field is updated atomically.
type counters struct {
	constructed atomic.Uint64
	enqueued    atomic.Uint64
	dropped     atomic.Uint64
	written     atomic.Uint64
	writeErrors atomic.Uint64
	rotations   atomic.Uint64
}

// New validates cfg and returns a Pipeline. No file is touched and no
// goroutine is started until the first record is handed off.
func New(cfg Config) (*Pipeline, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:   cfg,
		seq:   NewSequencer(cfg.threshold),
		queue: newDualQueue(cfg.QueueCapacity),
		id:    newIdentity(cfg),
		done:  make(chan struct{}),
	}
	p.debug.Store(cfg.Debug)
	return p, nil
}

// Logger returns a producer bound to p, named DefaultThreadName.
func (p *Pipeline) Logger() *Logger {
	return &Logger{p: p, thread: DefaultThreadName}
}

// RawLog hands off a record built elsewhere, e.g. replayed from a file.
// The record is written as given, sequence included, but only when its
// level passes the current threshold. It reports whether the record was
// queued. rec must not be modified afterwards.
func (p *Pipeline) RawLog(rec *Record) bool {
	if rec == nil || !rec.Level.valid() || !p.seq.Enabled(rec.Level) {
		return false
	}
	return p.handoff(rec)
}

// NextSeq reserves the next sequence number for level, or returns 0 when
// level is suppressed. Use it to build records passed to RawLog.
func (p *Pipeline) NextSeq(level Level) uint64 {
	return p.seq.Next(level)
}

// SetThreshold changes the minimum level. It applies to the next call.
func (p *Pipeline) SetThreshold(level Level) {
	p.seq.SetThreshold(level)
}

// Threshold returns the current minimum level.
func (p *Pipeline) Threshold() Level {
	return p.seq.Threshold()
}

// SetDebug toggles the quick stream for test-level records. Turning it on
// also lowers the threshold to Debug; turning it off leaves the threshold
// as it is.
func (p *Pipeline) SetDebug(on bool) {
	p.debug.Store(on)
	if on {
		p.seq.SetThreshold(LevelDebug)
	}
}

// Debug reports whether test-level records are mirrored to the quick stream.
func (p *Pipeline) Debug() bool {
	return p.debug.Load()
}

// Config returns the resolved configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Rotate asks the writer to rotate on its next cycle regardless of size.
func (p *Pipeline) Rotate() error {
	if p.closing.Load() {
		return errors.New(ErrCodeClosed, "pipeline is shut down")
	}
	p.rotateReq.Store(true)
	p.startOnce.Do(p.startWriter)
	p.queue.wake()
	return nil
}

// newRecord stamps a record with time, thread and identity.
func (p *Pipeline) newRecord(level Level, seq uint64, thread string, c Caller, msg string) *Record {
	return &Record{
		Time:        time.Now(),
		Seq:         seq,
		Level:       level,
		NodeID:      p.id.nodeID,
		NodeName:    p.id.nodeName,
		PID:         p.id.pid,
		ProcessName: p.id.processName,
		TID:         threadID(),
		ThreadName:  thread,
		File:        c.File,
		Line:        c.Line,
		Func:        c.Func,
		Message:     msg,
	}
}

// emit builds a record for an already sequenced call and hands it off.
func (p *Pipeline) emit(level Level, seq uint64, thread string, c Caller, msg string) {
	p.stats.constructed.Add(1)
	p.handoff(p.newRecord(level, seq, thread, c, msg))
}

// handoff queues rec without blocking. Test-level records are also sent to
// the quick queue while debug is on.
func (p *Pipeline) handoff(rec *Record) bool {
	if p.closing.Load() {
		p.drop()
		return false
	}
	return p.enqueue(rec)
}

// enqueue starts the writer on first use and pushes rec. closing is read
// again after startOnce: a Shutdown that won startOnce has already set it,
// and no writer will ever drain the queue.
func (p *Pipeline) enqueue(rec *Record) bool {
	p.startOnce.Do(p.startWriter)
	if p.closing.Load() {
		p.drop()
		return false
	}

	if rec.Level == LevelTest && p.debug.Load() {
		p.push(p.queue.pushQuick, rec)
	}
	return p.push(p.queue.pushNormal, rec)
}

func (p *Pipeline) push(push func(*Record) bool, rec *Record) bool {
	if !push(rec) {
		p.drop()
		return false
	}
	p.stats.enqueued.Add(1)
	return true
}

// drop is the only place a discarded record is counted.
func (p *Pipeline) drop() {
	p.stats.dropped.Add(1)
}

func (p *Pipeline) startWriter() {
	go newWriter(p).run()
}

// Shutdown stops accepting records and lets the writer drain for up to
// Config.Grace. It blocks until the writer has closed its files or ctx is
// done. Records still queued when the grace period ends are lost; their
// count is written as a final error record. Safe to call more than once.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.deadline.Store(time.Now().Add(p.cfg.Grace).UnixNano())
		p.closing.Store(true)
		// After closing is set, so a concurrent WatchConfig either
		// installs before this stop or sees closing and stops itself.
		p.stopWatch()
		// Never started: nothing was queued and no file is open.
		p.startOnce.Do(func() { close(p.done) })
		p.queue.wake()
	})

	select {
	case <-p.done:
		return nil
	default:
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown without a caller deadline.
func (p *Pipeline) Close() error {
	return p.Shutdown(context.Background())
}

// Done is closed once the writer has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	Constructed    uint64 `json:"constructed"`     // records built by loggers
	Enqueued       uint64 `json:"enqueued"`        // successful queue pushes
	Dropped        uint64 `json:"dropped"`         // pushes refused: queue full or shut down
	Written        uint64 `json:"written"`         // records written to a file
	WriteErrors    uint64 `json:"write_errors"`    // I/O errors reported by the writer
	Rotations      uint64 `json:"rotations"`       // completed rotations
	QuickFill      int    `json:"quick_fill"`      // records waiting in the quick queue
	NormalFill     int    `json:"normal_fill"`     // records waiting in the normal queue
	QueueCapacity  int    `json:"queue_capacity"`  // capacity of each queue
	Threshold      Level  `json:"threshold"`       // current minimum level
	RotateBytes    int64  `json:"rotate_bytes"`    // configured rotation threshold
	RetentionCount int    `json:"retention_count"` // configured retention
}

// Stats returns current counters. Safe to call concurrently.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Constructed:    p.stats.constructed.Load(),
		Enqueued:       p.stats.enqueued.Load(),
		Dropped:        p.stats.dropped.Load(),
		Written:        p.stats.written.Load(),
		WriteErrors:    p.stats.writeErrors.Load(),
		Rotations:      p.stats.rotations.Load(),
		QuickFill:      p.queue.quick.len(),
		NormalFill:     p.queue.normal.len(),
		QueueCapacity:  p.queue.normal.capacity(),
		Threshold:      p.seq.Threshold(),
		RotateBytes:    p.cfg.rotateBytes,
		RetentionCount: p.cfg.Retention,
	}
}
