// replay.go: Reading persisted logs back into records
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/agilira/go-errors"
	"github.com/valyala/fastjson"
)

// maxLineSize bounds a single log line read by Replay and ScanLines.
const maxLineSize = 1 << 20

var jsonParsers fastjson.ParserPool

// ParseJSONLine parses one line produced by AppendJSON.
func ParseJSONLine(line []byte) (*Record, error) {
	p := jsonParsers.Get()
	defer jsonParsers.Put(p)

	v, err := p.ParseBytes(line)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeParse, "malformed JSON log line")
	}
	if v.Type() != fastjson.TypeObject {
		return nil, errors.New(ErrCodeParse, "JSON log line is not an object")
	}

	ts := v.Get("ts")
	if ts == nil || ts.Type() != fastjson.TypeNumber {
		return nil, errors.New(ErrCodeParse, "JSON log line has no numeric ts")
	}
	t, err := parseEpochMicros(ts.String())
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeParse, "malformed ts")
	}

	level := Level(v.GetInt("level"))
	if !level.valid() {
		return nil, errors.New(ErrCodeParse, "JSON log line has an unknown level").WithContext("level", int(level))
	}

	return &Record{
		Time:        t,
		Seq:         v.GetUint64("seq"),
		Level:       level,
		NodeID:      v.GetUint64("nid"),
		NodeName:    string(v.GetStringBytes("nname")),
		PID:         v.GetInt("pid"),
		ProcessName: string(v.GetStringBytes("pname")),
		TID:         v.GetInt("tid"),
		ThreadName:  string(v.GetStringBytes("tname")),
		File:        string(v.GetStringBytes("file")),
		Line:        v.GetInt("lineno"),
		Func:        string(v.GetStringBytes("func")),
		Message:     string(v.GetStringBytes("message")),
	}, nil
}

// ParseLine parses a text or JSON-line record, picked by its first byte.
func ParseLine(line []byte) (*Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) > 0 && line[0] == '{' {
		return ParseJSONLine(line)
	}
	return ParseTextLine(string(line))
}

// ScanLines calls fn for every non-blank line of r with its 1-based line
// number. Blank lines are run separators and are skipped. fn returning an
// error stops the scan with that error.
func ScanLines(ctx context.Context, r io.Reader, fn func(lineNo int, line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReplayResult counts what Replay did with the lines it read.
type ReplayResult struct {
	Queued     int // handed to the pipeline
	Suppressed int // below the threshold, or refused by a full queue
}

// Replay reads text or JSON-line logs from r and feeds every record to
// p.RawLog, so the pipeline's current threshold still applies. Records keep
// their original sequence numbers and identity. Replay stops at the first
// malformed line.
func Replay(ctx context.Context, r io.Reader, p *Pipeline) (ReplayResult, error) {
	var res ReplayResult
	err := ScanLines(ctx, r, func(lineNo int, line []byte) error {
		rec, err := ParseLine(line)
		if err != nil {
			return errors.Wrap(err, ErrCodeParse, fmt.Sprintf("replay failed at line %d", lineNo)).WithContext("line", lineNo)
		}
		if p.RawLog(rec) {
			res.Queued++
		} else {
			res.Suppressed++
		}
		return nil
	})
	return res, err
}
