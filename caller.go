// caller.go: Call-site attribution
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import "runtime"

// Caller identifies a source location. Wrappers that already know the
// location to attribute (a replayed record, a slog PC) pass it explicitly
// through Logger.LogAt instead of relying on stack depth.
type Caller struct {
	File string
	Line int
	Func string
}

// CallerAt resolves the caller skip frames above the function calling
// CallerAt. CallerAt(0) is that function's own call site.
func CallerAt(skip int) Caller {
	return callerAt(skip + 1)
}

// callerAt walks skip frames above its caller.
func callerAt(skip int) Caller {
	var pcs [1]uintptr
	// +2: runtime.Callers and callerAt itself
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return Caller{File: "???", Func: "???"}
	}
	return callerFromPC(pcs[0])
}

// callerFromPC resolves a return PC as captured by runtime.Callers.
func callerFromPC(pc uintptr) Caller {
	if pc == 0 {
		return Caller{File: "???", Func: "???"}
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	c := Caller{File: f.File, Line: f.Line, Func: f.Function}
	if c.File == "" {
		c.File = "???"
	}
	if c.Func == "" {
		c.Func = "???"
	}
	return c
}
