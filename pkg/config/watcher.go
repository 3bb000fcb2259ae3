package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configReloadDebounce is how long WatchConfig waits after the last
// write/create event on a watched file before signaling a reload.
// Editors that save atomically (vim, nano) emit a burst of events per
// save; without debouncing that burst would trigger several reloads
// in a row.
const configReloadDebounce = 500 * time.Millisecond

// WatchConfig watches config.json/system.json (or whichever files are
// passed) for changes and returns a channel that receives a signal
// once per debounced burst of writes. main.go's runCore loop selects
// on this channel to tear down and rebuild the core with the new
// configuration. The watcher goroutine exits when ctx is canceled.
func WatchConfig(ctx context.Context, files ...string) <-chan struct{} {
	reloadCh := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("failed to create config file watcher", "error", err)
		return reloadCh
	}

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("could not resolve absolute path for watched config file", "file", file)
			continue
		}
		if err := watcher.Add(absPath); err != nil {
			slog.Warn("could not watch config file", "file", file, "error", err)
		} else {
			slog.Debug("watching configuration file for changes", "file", file)
		}
	}

	go runWatchLoop(ctx, watcher, reloadCh)

	return reloadCh
}

// runWatchLoop drains fsnotify events until ctx is canceled, debouncing
// write/create bursts into a single non-blocking send on reloadCh.
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, reloadCh chan<- struct{}) {
	defer watcher.Close()
	defer close(reloadCh)

	var pending *time.Timer
	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			name := event.Name
			pending = time.AfterFunc(configReloadDebounce, func() {
				slog.Info("configuration file changed, signaling reload", "file", name)
				signalReload(reloadCh)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}

// signalReload sends on reloadCh without blocking; a pending,
// not-yet-consumed reload signal already covers this one.
func signalReload(reloadCh chan<- struct{}) {
	select {
	case reloadCh <- struct{}{}:
	default:
	}
}
