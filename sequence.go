// sequence.go: Per-level sequence counters and threshold filtering
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import "sync/atomic"

// Sequencer hands out per-level sequence numbers and doubles as the level
// filter. It is safe for concurrent use; every operation is a single atomic.
type Sequencer struct {
	threshold atomic.Int32
	counters  [numLevels]atomic.Uint64
}

// NewSequencer returns a Sequencer with the given minimum level.
func NewSequencer(threshold Level) *Sequencer {
	s := &Sequencer{}
	s.threshold.Store(int32(threshold))
	return s
}

// Next returns 0 when level is below the current threshold, meaning the
// caller must not log. Otherwise it returns the next sequence number for
// level, starting at 1. The threshold is re-read on every call.
func (s *Sequencer) Next(level Level) uint64 {
	if !s.Enabled(level) || !level.valid() {
		return 0
	}
	return s.counters[level].Add(1)
}

// Enabled reports whether level passes the current threshold.
func (s *Sequencer) Enabled(level Level) bool {
	return int32(level) >= s.threshold.Load()
}

// Threshold returns the current minimum level.
func (s *Sequencer) Threshold() Level {
	return Level(s.threshold.Load())
}

// SetThreshold changes the minimum level for subsequent calls.
func (s *Sequencer) SetThreshold(level Level) {
	s.threshold.Store(int32(level))
}

// Last returns the most recently issued sequence number for level.
func (s *Sequencer) Last(level Level) uint64 {
	if !level.valid() {
		return 0
	}
	return s.counters[level].Load()
}
