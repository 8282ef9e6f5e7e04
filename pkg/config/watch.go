package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDebounce absorbs the burst of events editors produce for a single save.
const reloadDebounce = 100 * time.Millisecond

// Watch calls fn with the reloaded configuration every time the file at path
// changes to valid, different content. It blocks until ctx is done and returns
// nil in that case. Invalid content is skipped and the previous configuration
// stays in effect.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	return WatchWithLogger(ctx, path, nil, fn)
}

// WatchWithLogger is Watch reporting reload failures to log. log may be nil.
func WatchWithLogger(ctx context.Context, path string, log *zerolog.Logger, fn func(*Config)) error {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "config").Str("path", path).Logger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	r := &reloader{path: abs, log: l, fn: fn}
	if data, err := os.ReadFile(abs); err == nil {
		r.lastHash = xxhash.Sum64(data)
	}

	var (
		timerMu sync.Mutex
		pending *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if pending != nil && pending.Stop() {
			r.wg.Done()
		}
		timerMu.Unlock()
		r.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher for %s closed", abs)
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			l.Debug().Stringer("op", ev.Op).Msg("config change detected")

			timerMu.Lock()
			if pending != nil && pending.Stop() {
				r.wg.Done()
			}
			r.wg.Add(1)
			pending = time.AfterFunc(reloadDebounce, r.reload)
			timerMu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher for %s closed", abs)
			}
			l.Warn().Err(err).Msg("config watch error")
		}
	}
}

// reloader parses the file and publishes it when its content changed.
type reloader struct {
	path string
	log  zerolog.Logger
	fn   func(*Config)
	wg   sync.WaitGroup

	mu       sync.Mutex
	lastHash uint64
}

func (r *reloader) reload() {
	defer r.wg.Done()

	// Serializes reloads so fn never runs concurrently with itself.
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		r.log.Warn().Err(err).Msg("config reload failed")
		return
	}

	sum := xxhash.Sum64(data)
	if sum == r.lastHash {
		return
	}

	cfg, err := Parse(data)
	if err != nil {
		r.log.Warn().Err(err).Msg("invalid config ignored")
		return
	}
	r.lastHash = sum

	r.log.Info().Msg("config reloaded")
	r.fn(cfg)
}
