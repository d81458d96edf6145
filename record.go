// record.go: Log record and its text / JSON-line encodings
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agilira/go-errors"
)

// Record is one log event. Once handed to a Pipeline it must not be mutated.
type Record struct {
	Time        time.Time `json:"ts"`
	Seq         uint64    `json:"seq"`
	Level       Level     `json:"level"`
	NodeID      uint64    `json:"nid"`
	NodeName    string    `json:"nname"`
	PID         int       `json:"pid"`
	ProcessName string    `json:"pname"`
	TID         int       `json:"tid"`
	ThreadName  string    `json:"tname"`
	File        string    `json:"file"`
	Line        int       `json:"lineno"`
	Func        string    `json:"func"`
	Message     string    `json:"message"`
}

// Format selects the on-disk encoding of records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// AppendText appends the fixed text line for r, newline included:
//
//	[20250102.030405.123456      7][I][0242ac110002   1234   1235][node proc main][main.go:42 main.main]message
func (r *Record) AppendText(buf []byte) []byte {
	t := r.Time.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	buf = append(buf, '[')
	buf = appendPadded(buf, int64(year), 4, '0')
	buf = appendPadded(buf, int64(month), 2, '0')
	buf = appendPadded(buf, int64(day), 2, '0')
	buf = append(buf, '.')
	buf = appendPadded(buf, int64(hour), 2, '0')
	buf = appendPadded(buf, int64(minute), 2, '0')
	buf = appendPadded(buf, int64(sec), 2, '0')
	buf = append(buf, '.')
	buf = appendPadded(buf, int64(t.Nanosecond()/1000), 6, '0')
	buf = append(buf, ' ')
	buf = appendPaddedUint(buf, r.Seq, 6)
	buf = append(buf, "]["...)
	buf = append(buf, r.Level.String()...)
	buf = append(buf, "]["...)
	buf = appendHex12(buf, r.NodeID)
	buf = append(buf, ' ')
	buf = appendPadded(buf, int64(r.PID), 6, ' ')
	buf = append(buf, ' ')
	buf = appendPadded(buf, int64(r.TID), 6, ' ')
	buf = append(buf, "]["...)
	buf = append(buf, r.NodeName...)
	buf = append(buf, ' ')
	buf = append(buf, r.ProcessName...)
	buf = append(buf, ' ')
	buf = append(buf, r.ThreadName...)
	buf = append(buf, "]["...)
	buf = append(buf, path.Base(r.File)...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(r.Line), 10)
	buf = append(buf, ' ')
	buf = append(buf, r.Func...)
	buf = append(buf, ']')
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')
	return buf
}

// AppendJSON appends r as a single JSON object followed by a newline.
// Non-ASCII text is written as-is (UTF-8), not \u-escaped.
func (r *Record) AppendJSON(buf []byte) []byte {
	buf = append(buf, `{"ts":`...)
	buf = appendEpochMicros(buf, r.Time)
	buf = append(buf, `,"seq":`...)
	buf = strconv.AppendUint(buf, r.Seq, 10)
	buf = append(buf, `,"level":`...)
	buf = strconv.AppendInt(buf, int64(r.Level), 10)
	buf = append(buf, `,"nid":`...)
	buf = strconv.AppendUint(buf, r.NodeID, 10)
	buf = append(buf, `,"nname":`...)
	buf = appendJSONString(buf, r.NodeName)
	buf = append(buf, `,"pid":`...)
	buf = strconv.AppendInt(buf, int64(r.PID), 10)
	buf = append(buf, `,"pname":`...)
	buf = appendJSONString(buf, r.ProcessName)
	buf = append(buf, `,"tid":`...)
	buf = strconv.AppendInt(buf, int64(r.TID), 10)
	buf = append(buf, `,"tname":`...)
	buf = appendJSONString(buf, r.ThreadName)
	buf = append(buf, `,"file":`...)
	buf = appendJSONString(buf, r.File)
	buf = append(buf, `,"lineno":`...)
	buf = strconv.AppendInt(buf, int64(r.Line), 10)
	buf = append(buf, `,"func":`...)
	buf = appendJSONString(buf, r.Func)
	buf = append(buf, `,"message":`...)
	buf = appendJSONString(buf, r.Message)
	buf = append(buf, '}', '\n')
	return buf
}

// String returns the text line without the trailing newline.
func (r *Record) String() string {
	b := r.AppendText(make([]byte, 0, 128+len(r.Message)))
	return string(b[:len(b)-1])
}

// encode appends r using format f.
func (r *Record) encode(buf []byte, f Format) []byte {
	if f == FormatJSON {
		return r.AppendJSON(buf)
	}
	return r.AppendText(buf)
}

// ParseTextLine parses one line produced by AppendText. Bracketed fields are
// matched with nesting, so function names such as "pkg.F[...]" survive; node,
// process and thread names must not contain spaces to be split back apart.
// File holds only the base name, as that is all the line carries.
func ParseTextLine(line string) (*Record, error) {
	r, err := parseTextLine(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeParse, "malformed text log line")
	}
	return r, nil
}

func parseTextLine(line string) (*Record, error) {
	var groups [5]string
	rest := line
	for i := range groups {
		g, tail, ok := cutGroup(rest)
		if !ok {
			return nil, fmt.Errorf("malformed log line: field %d", i+1)
		}
		groups[i] = g
		rest = tail
	}

	r := &Record{Message: rest}

	// [YYYYMMDD.HHMMSS.uuuuuu seq]
	tsField, seqField, ok := strings.Cut(groups[0], " ")
	if !ok {
		return nil, fmt.Errorf("malformed timestamp field %q", groups[0])
	}
	ts, err := time.ParseInLocation("20060102.150405.000000", tsField, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("malformed timestamp %q: %w", tsField, err)
	}
	r.Time = ts
	if r.Seq, err = strconv.ParseUint(strings.TrimSpace(seqField), 10, 64); err != nil {
		return nil, fmt.Errorf("malformed sequence %q: %w", seqField, err)
	}

	level, ok := levelFromCode(groups[1])
	if !ok {
		return nil, fmt.Errorf("unknown level code %q", groups[1])
	}
	r.Level = level

	ids := strings.Fields(groups[2])
	if len(ids) != 3 {
		return nil, fmt.Errorf("malformed id field %q", groups[2])
	}
	if r.NodeID, err = strconv.ParseUint(ids[0], 16, 64); err != nil {
		return nil, fmt.Errorf("malformed node id %q: %w", ids[0], err)
	}
	if r.PID, err = strconv.Atoi(ids[1]); err != nil {
		return nil, fmt.Errorf("malformed pid %q: %w", ids[1], err)
	}
	if r.TID, err = strconv.Atoi(ids[2]); err != nil {
		return nil, fmt.Errorf("malformed tid %q: %w", ids[2], err)
	}

	names := strings.SplitN(groups[3], " ", 3)
	if len(names) == 3 {
		r.NodeName, r.ProcessName, r.ThreadName = names[0], names[1], names[2]
	}

	loc, fn, _ := strings.Cut(groups[4], " ")
	r.Func = fn
	if i := strings.LastIndexByte(loc, ':'); i >= 0 {
		r.File = loc[:i]
		r.Line, _ = strconv.Atoi(loc[i+1:])
	} else {
		r.File = loc
	}

	return r, nil
}

// cutGroup splits "[inner]rest" honouring nested brackets inside inner.
func cutGroup(s string) (inner, rest string, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", s, false
}

// appendPadded appends v right-aligned in a field of width, padded with pad.
func appendPadded(buf []byte, v int64, width int, pad byte) []byte {
	var tmp [20]byte
	digits := strconv.AppendInt(tmp[:0], v, 10)
	for i := len(digits); i < width; i++ {
		buf = append(buf, pad)
	}
	return append(buf, digits...)
}

func appendPaddedUint(buf []byte, v uint64, width int) []byte {
	var tmp [20]byte
	digits := strconv.AppendUint(tmp[:0], v, 10)
	for i := len(digits); i < width; i++ {
		buf = append(buf, ' ')
	}
	return append(buf, digits...)
}

func appendHex12(buf []byte, v uint64) []byte {
	var tmp [16]byte
	digits := strconv.AppendUint(tmp[:0], v, 16)
	for i := len(digits); i < 12; i++ {
		buf = append(buf, '0')
	}
	return append(buf, digits...)
}

// appendEpochMicros writes t as seconds since the epoch with six decimals.
func appendEpochMicros(buf []byte, t time.Time) []byte {
	us := t.UnixMicro()
	sec, frac := us/1_000_000, us%1_000_000
	if frac < 0 {
		sec--
		frac += 1_000_000
	}
	buf = strconv.AppendInt(buf, sec, 10)
	buf = append(buf, '.')
	return appendPadded(buf, frac, 6, '0')
}

// parseEpochMicros is the inverse of appendEpochMicros. It works on the
// decimal text directly so no precision is lost through float64.
func parseEpochMicros(s string) (time.Time, error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	if len(fracPart) > 6 {
		fracPart = fracPart[:6]
	}
	var us int64
	if fracPart != "" {
		us, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
		}
		for i := len(fracPart); i < 6; i++ {
			us *= 10
		}
	}
	return time.UnixMicro(sec*1_000_000 + us), nil
}

const hexDigits = "0123456789abcdef"

// appendJSONString appends s as a quoted JSON string.
func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c == '\n':
				buf = append(buf, '\\', 'n')
			case c == '\r':
				buf = append(buf, '\\', 'r')
			case c == '\t':
				buf = append(buf, '\\', 't')
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			default:
				buf = append(buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, `�`...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
