package models

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to model files. Events are debounced per file,
// since exporters tend to write in several bursts.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *log.Logger
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]bool
	timers map[string]*time.Timer
	done   chan struct{}
}

// NewWatcher creates a watcher with the given debounce interval.
func NewWatcher(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:  w,
		logger:   logger,
		debounce: debounce,
		files:    make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Add watches files. The parent directory is watched rather than the file
// itself, so editors that replace the file on save are still seen.
func (w *Watcher) Add(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make(map[string]bool)
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	return nil
}

// Start delivers changed paths to fn from a background goroutine until
// Close is called. fn must not block.
func (w *Watcher) Start(fn func(path string)) {
	go func() {
		for {
			select {
			case <-w.done:
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.changed(ev.Name, fn)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "err", err)
			}
		}
	}()
}

func (w *Watcher) changed(path string, fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil || !w.files[abs] {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
		default:
			w.logger.Debug("model changed", "path", abs)
			fn(abs)
		}
	})
}

// Close stops the watcher and any pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
