// process.go: Node and process identity stamped on every record
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultThreadName names loggers that were never given a name.
const DefaultThreadName = "main"

// identity is resolved once per pipeline and never changes afterwards.
type identity struct {
	nodeID      uint64
	nodeName    string
	pid         int
	processName string
}

func newIdentity(cfg Config) identity {
	id := identity{
		nodeID:      nodeID(),
		nodeName:    cfg.NodeName,
		pid:         os.Getpid(),
		processName: cfg.ProcessName,
	}
	if id.nodeName == "" {
		id.nodeName = hostName()
	}
	if id.processName == "" {
		id.processName = processName()
	}
	return id
}

// nodeID returns the 48-bit node id used by version 1 UUIDs: a hardware
// address when one is available, otherwise a random value fixed for the
// life of the process.
func nodeID() uint64 {
	var id uint64
	for _, b := range uuid.NodeID() {
		id = id<<8 | uint64(b)
	}
	return id & 0xffffffffffff
}

func hostName() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	// Names are space separated in the text format.
	return strings.ReplaceAll(h, " ", "_")
}

func processName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "unknown"
	}
	name := strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	return strings.ReplaceAll(name, " ", "_")
}
