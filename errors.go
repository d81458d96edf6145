// errors.go: Error codes returned by configuration and parsing
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import "github.com/agilira/go-errors"

// Error codes carried by errors returned from New, LoadConfig, WatchConfig
// and the line parsers. Test them with errors.HasCode.
const (
	ErrCodeInvalidConfig errors.ErrorCode = "EPLOG_INVALID_CONFIG"
	ErrCodeConfigLoad    errors.ErrorCode = "EPLOG_CONFIG_LOAD"
	ErrCodeInvalidLevel  errors.ErrorCode = "EPLOG_INVALID_LEVEL"
	ErrCodeInvalidFormat errors.ErrorCode = "EPLOG_INVALID_FORMAT"
	ErrCodeParse         errors.ErrorCode = "EPLOG_PARSE"
	ErrCodeWatch         errors.ErrorCode = "EPLOG_WATCH"
	ErrCodeClosed        errors.ErrorCode = "EPLOG_CLOSED"
)

// ErrorCallback receives I/O failures the writer would otherwise discard.
// operation names the failing step, e.g. "primary_write" or "rotate_rename".
type ErrorCallback func(operation string, err error)
