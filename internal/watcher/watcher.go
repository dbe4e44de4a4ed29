// Package watcher reports debounced changes to a content source file.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/pubsub"
)

// DefaultDebounce coalesces bursts of writes (editor saves, SQLite WAL
// checkpoints) into one notification.
const DefaultDebounce = 250 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns a config for path with the default debounce.
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce}
}

// Watcher publishes a pubsub.ChangedEvent carrying the watched path after
// the file (or its SQLite sidecars) settles.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	names     map[string]struct{}
	debounce  time.Duration
	broker    *pubsub.Broker[string]
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a watcher. Start must be called to begin watching.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher: empty path")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	base := filepath.Base(cfg.Path)
	return &Watcher{
		fsWatcher: fsw,
		path:      cfg.Path,
		names: map[string]struct{}{
			base:              {},
			base + "-wal":     {},
			base + "-journal": {},
		},
		debounce: cfg.Debounce,
		broker:   pubsub.NewBroker[string](),
		done:     make(chan struct{}),
	}, nil
}

// Broker returns the broker change events are published on.
func (w *Watcher) Broker() *pubsub.Broker[string] {
	return w.broker
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Start watches the file's directory, which survives editors that replace
// the file by rename.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Info(log.CatWatcher, "Watching", "path", w.path, "debounce", w.debounce)

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher, closes the broker and waits for the loop.
// Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if pending {
				pending = false
				log.Debug(log.CatWatcher, "Change detected", "path", w.path)
				w.broker.Publish(pubsub.ChangedEvent, w.path)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err, "path", w.path)
			w.broker.Publish(pubsub.FailedEvent, err.Error())

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// isRelevantEvent reports whether event touches the watched file.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	_, ok := w.names[filepath.Base(event.Name)]
	return ok
}
