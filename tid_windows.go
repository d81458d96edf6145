// tid_windows.go: OS thread id on Windows
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build windows

package eplog

import "golang.org/x/sys/windows"

func threadID() int {
	return int(windows.GetCurrentThreadId())
}
