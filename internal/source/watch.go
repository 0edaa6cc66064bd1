package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is how long a file must stay quiet before it is reloaded
const DefaultReloadDelay = 200 * time.Millisecond

// ErrFileRemoved is reported when the watched index file is deleted
var ErrFileRemoved = errors.New("watched path source was removed")

// WatchOptions configures Watch
type WatchOptions struct {
	Delay   time.Duration
	OnError func(error)
	Logger  *slog.Logger
}

// Watch reloads the index file at path whenever it changes and hands the new
// paths to onChange. Bursts of events within Delay produce one reload. It
// blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func([]string), opts WatchOptions) error {
	if opts.Delay <= 0 {
		opts.Delay = DefaultReloadDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OnError == nil {
		opts.OnError = func(err error) {
			opts.Logger.Warn("path source watch error", "path", path, "error", err)
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so atomic renames are seen
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		paths, err := LoadPaths(ctx, absPath, nil)
		if err != nil {
			if ctx.Err() == nil {
				opts.OnError(err)
			}
			return
		}
		opts.Logger.Info("path source reloaded", "path", path, "count", len(paths))
		onChange(paths)
	}
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(opts.Delay, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	target := filepath.Base(absPath)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				opts.OnError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				trigger()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			opts.OnError(err)
		}
	}
}
