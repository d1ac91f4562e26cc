// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the configuration file and invokes onChange with the
// freshly loaded configuration whenever it is rewritten. Reload errors
// are delivered to onError (which may be nil) and the previous
// configuration stays in effect.
//
// The parent directory is watched rather than the file itself, so
// editors that replace the file via rename are still observed. The
// returned stop function releases the watcher.
func Watch(path string, onChange func(*Config), onError func(error)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
