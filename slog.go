// slog.go: log/slog bridge
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// SlogHandler routes log/slog records into a Pipeline. Attributes are
// appended to the message as key=value pairs; the call site comes from the
// slog record's PC.
//
//	slog.SetDefault(slog.New(eplog.NewSlogHandler(p, "http")))
type SlogHandler struct {
	log    *Logger
	attrs  string // preformatted WithAttrs pairs
	groups string // dotted prefix from WithGroup
}

// NewSlogHandler returns a handler writing to p under the given thread name.
func NewSlogHandler(p *Pipeline, thread string) *SlogHandler {
	return &SlogHandler{log: p.Logger().Named(thread)}
}

// SlogLevel maps a slog level onto the nearest pipeline level.
func SlogLevel(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	default:
		return LevelError
	}
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.log.Enabled(SlogLevel(level))
}

func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	level := SlogLevel(r.Level)
	if !h.log.Enabled(level) {
		return nil
	}

	buf := messagePool.Get()
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.groups, a)
		return true
	})
	msg := string(buf)
	messagePool.Put(buf)

	h.log.LogAt(level, callerFromPC(r.PC), msg)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf []byte
	for _, a := range attrs {
		buf = appendAttr(buf, h.groups, a)
	}
	h2 := *h
	h2.attrs += string(buf)
	return &h2
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups += name + "."
	return &h2
}

// appendAttr appends " key=value", flattening groups into dotted keys.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return buf
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

var _ slog.Handler = (*SlogHandler)(nil)
