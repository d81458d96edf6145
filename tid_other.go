// tid_other.go: Thread id fallback
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !windows

package eplog

import "os"

// threadID falls back to the process id where no portable thread id call
// exists.
func threadID() int {
	return os.Getpid()
}
