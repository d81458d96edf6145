// hotreload.go: Runtime level/debug changes from a watched config file
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/go-errors"
)

// DefaultWatchInterval is the config file poll period used by WatchConfig.
const DefaultWatchInterval = 2 * time.Second

// WatchConfig polls the config file at path and re-applies its level and
// debug keys whenever it changes. Every other key is fixed for the life of
// the pipeline. Reload failures go to the ErrorCallback as "config_reload"
// and leave the current settings in place. Calling WatchConfig again
// replaces the previous watch. The watch ends at Shutdown.
func (p *Pipeline) WatchConfig(path string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	if p.closing.Load() {
		return errors.New(ErrCodeClosed, "pipeline is shut down")
	}

	w := argus.New(argus.Config{PollInterval: interval})
	err := w.Watch(path, func(event argus.ChangeEvent) {
		if event.IsDelete {
			return
		}
		p.ReloadConfig(path)
	})
	if err != nil {
		return errors.Wrap(err, ErrCodeWatch, "failed to watch config file").WithContext("path", path)
	}
	if err := w.Start(); err != nil {
		return errors.Wrap(err, ErrCodeWatch, "failed to start config watcher").WithContext("path", path)
	}

	p.watchMu.Lock()
	if p.closing.Load() {
		p.watchMu.Unlock()
		_ = w.Stop() // Ignore: never installed
		return errors.New(ErrCodeClosed, "pipeline is shut down")
	}
	prev := p.watcher
	p.watcher = w
	p.watchMu.Unlock()
	if prev != nil {
		_ = prev.Stop() // Ignore: replaced watcher
	}
	return nil
}

// ReloadConfig loads path and applies its level and debug keys. It is what
// WatchConfig runs on every change.
func (p *Pipeline) ReloadConfig(path string) error {
	cfg, err := LoadConfig(path)
	if err == nil {
		cfg, err = cfg.normalize()
	}
	if err != nil {
		if cb := p.cfg.ErrorCallback; cb != nil {
			cb("config_reload", err)
		}
		return err
	}
	// An explicit level in the file wins over the debug default, as in New.
	p.debug.Store(cfg.Debug)
	p.SetThreshold(cfg.threshold)
	return nil
}

func (p *Pipeline) stopWatch() {
	p.watchMu.Lock()
	w := p.watcher
	p.watcher = nil
	p.watchMu.Unlock()
	if w != nil {
		_ = w.Stop() // Ignore: shutting down
	}
}
