// config.go: Pipeline configuration and parsing utilities
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Defaults applied by DefaultConfig and to zero fields in New.
const (
	DefaultDir                 = "./log"
	DefaultPrefix              = "ep"
	DefaultRotateSize          = "10MB"
	DefaultRetention           = 10
	DefaultRotateCheckInterval = 60 * time.Second
	DefaultIdleWait            = time.Second
	DefaultGrace               = time.Second
	DefaultSeparatorLines      = 10
	DefaultFileMode            = os.FileMode(0644)
)

// envPrefix is the environment override prefix used by LoadConfig.
const envPrefix = "EPLOG"

// Config configures a Pipeline. Zero fields take the documented default.
type Config struct {
	// Dir is the directory holding the log files. Created if absent.
	Dir string `mapstructure:"dir" json:"dir"`

	// Prefix names the files: {prefix}.0.log, {prefix}.quick.log, ...
	Prefix string `mapstructure:"prefix" json:"prefix"`

	// RotateSize is the primary file size that triggers rotation, e.g. "10MB".
	// "0" disables size based rotation.
	RotateSize string `mapstructure:"rotate_size" json:"rotate_size"`

	// Retention is the number of numbered files kept, primary included.
	Retention int `mapstructure:"retention" json:"retention"`

	// Level is the minimum severity ("debug", "I", "3", ...).
	// Empty means Info, or Debug when Debug is set.
	Level string `mapstructure:"level" json:"level"`

	// Debug enables the quick stream for test-level records.
	Debug bool `mapstructure:"debug" json:"debug"`

	// Format is "text" (default) or "json".
	Format Format `mapstructure:"format" json:"format"`

	// QueueCapacity bounds each of the quick and normal queues.
	QueueCapacity int `mapstructure:"queue_capacity" json:"queue_capacity"`

	RotateCheckInterval time.Duration `mapstructure:"rotate_check_interval" json:"rotate_check_interval"`

	// IdleWait bounds how long the writer sleeps on an empty queue.
	IdleWait time.Duration `mapstructure:"idle_wait" json:"idle_wait"`

	// Grace is how long Shutdown lets the writer keep draining.
	Grace time.Duration `mapstructure:"grace" json:"grace"`

	// SeparatorLines blank lines are written when a stream is first opened
	// by this pipeline. Negative disables the separator.
	SeparatorLines int `mapstructure:"separator_lines" json:"separator_lines"`

	// Compress gzips {prefix}.1.log after each rotation.
	Compress bool `mapstructure:"compress" json:"compress"`

	ProcessName string      `mapstructure:"process_name" json:"process_name"`
	NodeName    string      `mapstructure:"node_name" json:"node_name"`
	FileMode    os.FileMode `mapstructure:"file_mode" json:"file_mode"`

	// ErrorCallback is an optional function called when I/O errors occur.
	ErrorCallback ErrorCallback `mapstructure:"-" json:"-"`

	// resolved by normalize
	rotateBytes int64
	threshold   Level
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Dir:                 DefaultDir,
		Prefix:              DefaultPrefix,
		RotateSize:          DefaultRotateSize,
		Retention:           DefaultRetention,
		Format:              FormatText,
		QueueCapacity:       DefaultQueueCapacity,
		RotateCheckInterval: DefaultRotateCheckInterval,
		IdleWait:            DefaultIdleWait,
		Grace:               DefaultGrace,
		SeparatorLines:      DefaultSeparatorLines,
		FileMode:            DefaultFileMode,
	}
}

// normalize fills defaults, validates and resolves derived values.
func (c Config) normalize() (Config, error) {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if err := ValidatePathLength(c.Dir); err != nil {
		return c, errors.Wrap(err, ErrCodeInvalidConfig, "invalid log directory").WithContext("dir", c.Dir)
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	c.Prefix = SanitizeFilename(c.Prefix)
	if strings.ContainsAny(c.Prefix, `/\`) {
		return c, errors.New(ErrCodeInvalidConfig, "prefix must not contain path separators").WithContext("prefix", c.Prefix)
	}

	if c.RotateSize == "" {
		c.RotateSize = DefaultRotateSize
	}
	size, err := ParseSize(c.RotateSize)
	if err != nil || size < 0 {
		if err == nil {
			err = fmt.Errorf("negative size")
		}
		return c, errors.Wrap(err, ErrCodeInvalidConfig, "invalid rotate_size").WithContext("rotate_size", c.RotateSize)
	}
	c.rotateBytes = size

	switch {
	case c.Retention == 0:
		c.Retention = DefaultRetention
	case c.Retention < 0:
		return c, errors.New(ErrCodeInvalidConfig, "retention must be positive").WithContext("retention", c.Retention)
	}

	c.threshold = LevelInfo
	if c.Debug {
		c.threshold = LevelDebug
	}
	if c.Level != "" {
		lvl, err := ParseLevel(c.Level)
		if err != nil {
			return c, errors.Wrap(err, ErrCodeInvalidLevel, "invalid level").WithContext("level", c.Level)
		}
		c.threshold = lvl
	}

	switch Format(strings.ToLower(string(c.Format))) {
	case "", FormatText:
		c.Format = FormatText
	case FormatJSON:
		c.Format = FormatJSON
	default:
		return c, errors.New(ErrCodeInvalidFormat, "format must be text or json").WithContext("format", string(c.Format))
	}

	switch {
	case c.QueueCapacity == 0:
		c.QueueCapacity = DefaultQueueCapacity
	case c.QueueCapacity < 0:
		return c, errors.New(ErrCodeInvalidConfig, "queue_capacity must be positive").WithContext("queue_capacity", c.QueueCapacity)
	}

	if c.RotateCheckInterval <= 0 {
		c.RotateCheckInterval = DefaultRotateCheckInterval
	}
	if c.IdleWait <= 0 {
		c.IdleWait = DefaultIdleWait
	}
	if c.Grace <= 0 {
		c.Grace = DefaultGrace
	}
	if c.SeparatorLines == 0 {
		c.SeparatorLines = DefaultSeparatorLines
	}
	if c.FileMode == 0 {
		c.FileMode = DefaultFileMode
	}
	return c, nil
}

// LoadConfig reads a YAML, TOML or JSON file (chosen by extension) on top
// of DefaultConfig. Environment variables prefixed EPLOG_ override file
// values, e.g. EPLOG_LEVEL=debug or EPLOG_ROTATE_SIZE=1MB. An empty path
// loads defaults and environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("dir", def.Dir)
	v.SetDefault("prefix", def.Prefix)
	v.SetDefault("rotate_size", def.RotateSize)
	v.SetDefault("retention", def.Retention)
	v.SetDefault("level", "")
	v.SetDefault("debug", false)
	v.SetDefault("format", string(def.Format))
	v.SetDefault("queue_capacity", def.QueueCapacity)
	v.SetDefault("rotate_check_interval", def.RotateCheckInterval)
	v.SetDefault("idle_wait", def.IdleWait)
	v.SetDefault("grace", def.Grace)
	v.SetDefault("separator_lines", def.SeparatorLines)
	v.SetDefault("compress", false)
	v.SetDefault("process_name", "")
	v.SetDefault("node_name", "")
	v.SetDefault("file_mode", uint32(def.FileMode))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return def, errors.Wrap(err, ErrCodeConfigLoad, "failed to read config file").WithContext("path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationHook)); err != nil {
		return def, errors.Wrap(err, ErrCodeConfigLoad, "failed to decode config").WithContext("path", path)
	}

	if _, err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationHook decodes duration strings with ParseDuration so "1d" works too.
var durationHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != durationType {
		return data, nil
	}
	s, _ := data.(string)
	if s == "" {
		return time.Duration(0), nil
	}
	return ParseDuration(s)
}

// ParseSize converts size strings like "100MB", "1GB" to bytes
// Supports case-insensitive input and single-letter units (K, M, G, T)
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Handle plain numbers (bytes)
	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		return val, nil
	}

	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64
	var numStr string

	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-1]
	default:
		return 0, fmt.Errorf("unknown size suffix in %q (supported: B, KB/K, MB/M, GB/G)", s)
	}

	val, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number in %q: %v", s, err)
	}

	result := val * multiplier
	if val > 0 && result/multiplier != val {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return result, nil
}

// ParseDuration converts duration strings like "7d", "24h" to time.Duration
// Supports Go durations plus d (day) and w (week)
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	s = strings.ToLower(s)

	var multiplier time.Duration
	var numStr string

	switch {
	case strings.HasSuffix(s, "d"):
		multiplier = 24 * time.Hour
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "w"):
		multiplier = 7 * 24 * time.Hour
		numStr = s[:len(s)-1]
	default:
		return 0, fmt.Errorf("unknown duration suffix in %q", s)
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration number in %q: %v", s, err)
	}

	return time.Duration(val) * multiplier, nil
}

// SanitizeFilename removes or replaces invalid characters for cross-platform compatibility
func SanitizeFilename(filename string) string {
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*"}
		result := filename
		for _, char := range invalidChars {
			result = strings.ReplaceAll(result, char, "_")
		}

		var sanitized strings.Builder
		for _, r := range result {
			if r >= 32 {
				sanitized.WriteRune(r)
			} else {
				sanitized.WriteRune('_')
			}
		}
		return sanitized.String()
	}

	// Unix-like systems only reject NUL
	return strings.ReplaceAll(filename, "\x00", "_")
}

// ValidatePathLength checks if the path length is within OS limits
func ValidatePathLength(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %v", err)
	}

	limit := 4096
	if runtime.GOOS == "windows" {
		limit = 260
	}
	if len(absPath) > limit {
		return fmt.Errorf("path too long: %d characters (limit: %d)", len(absPath), limit)
	}
	return nil
}

// RetryFileOperation runs operation up to retryCount times, sleeping
// retryDelay between attempts. Transient failures from antivirus scanners,
// network shares and overlay filesystems usually clear within a retry.
func RetryFileOperation(operation func() error, retryCount int, retryDelay time.Duration) error {
	if retryCount <= 0 {
		retryCount = 3
	}
	if retryDelay <= 0 {
		retryDelay = 10 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < retryCount; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		// On the last attempt, don't wait - fail fast
		if i < retryCount-1 {
			time.Sleep(retryDelay)
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", retryCount, lastErr)
}
