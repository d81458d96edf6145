// sequence_test.go: Sequence generator tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"sync"
	"testing"

	"github.com/agilira/go-errors"
)

func TestSequencer_ConcurrentUniqueness(t *testing.T) {
	const goroutines, perGoroutine = 16, 1000
	s := NewSequencer(LevelDebug)

	results := make([][]uint64, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				results[g] = append(results[g], s.Next(LevelInfo))
			}
		}(g)
	}
	wg.Wait()

	seen := make(map[uint64]bool, goroutines*perGoroutine)
	for _, r := range results {
		prev := uint64(0)
		for _, v := range r {
			if v <= prev {
				t.Fatalf("sequence not increasing within a goroutine: %d after %d", v, prev)
			}
			if seen[v] {
				t.Fatalf("duplicate sequence %d", v)
			}
			seen[v] = true
			prev = v
		}
	}
	for v := uint64(1); v <= goroutines*perGoroutine; v++ {
		if !seen[v] {
			t.Fatalf("missing sequence %d", v)
		}
	}
}

func TestSequencer_PerLevelCounters(t *testing.T) {
	s := NewSequencer(LevelNone)
	for i := 0; i < 3; i++ {
		s.Next(LevelInfo)
	}
	if got := s.Next(LevelError); got != 1 {
		t.Errorf("first error sequence = %d, want 1", got)
	}
	if got := s.Next(LevelInfo); got != 4 {
		t.Errorf("fourth info sequence = %d, want 4", got)
	}
	if s.Last(LevelInfo) != 4 || s.Last(LevelDebug) != 0 {
		t.Errorf("Last: info=%d debug=%d", s.Last(LevelInfo), s.Last(LevelDebug))
	}
}

func TestSequencer_Threshold(t *testing.T) {
	s := NewSequencer(LevelWarning)
	tests := []struct {
		level   Level
		enabled bool
	}{
		{LevelNone, false},
		{LevelDebug, false},
		{LevelInfo, false},
		{LevelWarning, true},
		{LevelError, true},
		{LevelTest, true},
	}
	for _, tt := range tests {
		got := s.Next(tt.level)
		if (got != 0) != tt.enabled {
			t.Errorf("Next(%v) = %d, enabled want %v", tt.level, got, tt.enabled)
		}
	}

	s.SetThreshold(LevelOff)
	if s.Next(LevelTest) != 0 {
		t.Error("LevelOff must suppress every level")
	}
	if s.Next(Level(7)) != 0 || s.Next(Level(-1)) != 0 {
		t.Error("invalid levels must never be sequenced")
	}
	s.SetThreshold(LevelNone)
	if s.Threshold() != LevelNone || s.Next(LevelNone) == 0 {
		t.Error("threshold change not applied")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"I", LevelInfo},
		{"warn", LevelWarning},
		{" Warning ", LevelWarning},
		{"4", LevelError},
		{"t", LevelTest},
		{"off", LevelOff},
		{"NONE", LevelNone},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); !errors.HasCode(err, ErrCodeInvalidLevel) {
		t.Errorf("ParseLevel(%q) = %v, want an invalid level error", "verbose", err)
	}
	for l := LevelNone; l <= LevelTest; l++ {
		back, ok := levelFromCode(l.String())
		if !ok || back != l {
			t.Errorf("level code %q does not map back to %v", l.String(), l)
		}
	}
}
