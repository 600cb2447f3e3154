// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package watch re-runs a callback when a Markdown file or directory
// changes on disk. Bursts of events (editors often write, chmod and rename
// in quick succession) are coalesced by a debounce timer.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls fn once immediately and again after every change to path,
// until ctx is cancelled. When path is a file only that file counts; the
// parent directory is watched so editors that replace the file on save are
// still seen. When path is a directory, any file in it counts except
// hidden, swap and backup files. Errors from fn are logged and watching
// continues.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func() error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	dir, target := abs, ""
	if !fi.IsDir() {
		dir, target = filepath.Dir(abs), abs
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	run := func() {
		if err := fn(); err != nil {
			slog.Warn("watch callback failed", "path", path, "error", err)
		}
	}
	run()

	changed, trigger := debouncer(debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(ev, target) {
				slog.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-changed:
			run()
		}
	}
}

// relevant reports whether ev should trigger the callback. target is the
// watched file, or "" when a whole directory is watched.
func relevant(ev fsnotify.Event, target string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if target != "" {
		return filepath.Clean(ev.Name) == target
	}
	return !Ignored(ev.Name)
}

// Ignored reports whether name is a hidden, swap or backup file that never
// triggers a re-render.
func Ignored(name string) bool {
	base := filepath.Base(name)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "4913" // vim's write-permission probe
}

// debouncer returns a channel that receives once per burst of trigger calls,
// after d has passed without another call.
func debouncer(d time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	ch := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		})
	}
	return ch, trigger
}
