// level.go: Severity levels
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// Level is the severity of a record. Levels are totally ordered; a record is
// emitted only when its level is at or above the pipeline threshold.
type Level int32

const (
	LevelNone    Level = 0
	LevelDebug   Level = 1
	LevelInfo    Level = 2
	LevelWarning Level = 3
	LevelError   Level = 4
	LevelTest    Level = 5

	// LevelOff is only meaningful as a threshold: it suppresses every level.
	LevelOff Level = 10
)

// numLevels sizes the per-level counter table (LevelNone..LevelTest).
const numLevels = int(LevelTest) + 1

// String returns the single-letter code used in the text line format.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "N"
	case LevelDebug:
		return "D"
	case LevelInfo:
		return "I"
	case LevelWarning:
		return "W"
	case LevelError:
		return "E"
	case LevelTest:
		return "T"
	case LevelOff:
		return "F"
	default:
		return fmt.Sprintf("L%d", int32(l))
	}
}

// Name returns the long, human readable level name.
func (l Level) Name() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelTest:
		return "TEST"
	case LevelOff:
		return "OFF"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

// valid reports whether l is a level a record may carry.
func (l Level) valid() bool {
	return l >= LevelNone && l <= LevelTest
}

// ParseLevel accepts long names ("warning", "warn"), single-letter codes
// ("W") and numeric values ("3"), case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NONE", "0":
		return LevelNone, nil
	case "D", "DEBUG", "1":
		return LevelDebug, nil
	case "I", "INFO", "2":
		return LevelInfo, nil
	case "W", "WARN", "WARNING", "3":
		return LevelWarning, nil
	case "E", "ERROR", "4":
		return LevelError, nil
	case "T", "TEST", "5":
		return LevelTest, nil
	case "F", "OFF", "10":
		return LevelOff, nil
	}
	return LevelNone, errors.New(ErrCodeInvalidLevel, "unknown level").WithContext("level", s)
}

// levelFromCode maps the single-letter code back to a Level.
func levelFromCode(code string) (Level, bool) {
	if len(code) != 1 {
		return LevelNone, false
	}
	l, err := ParseLevel(code)
	if err != nil {
		return LevelNone, false
	}
	return l, true
}
