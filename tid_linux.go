// tid_linux.go: OS thread id on Linux
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

package eplog

import "golang.org/x/sys/unix"

// threadID returns the id of the OS thread currently running the goroutine.
func threadID() int {
	return unix.Gettid()
}
