// Package watch re-triggers a mirror run when the downloads config file
// changes on disk.
//
// The watcher monitors the file's parent directory rather than the file
// itself, because editors typically save via write-to-temp-and-rename,
// which replaces the watched inode. Rapid event bursts from a single save
// are batched with a debounce window.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config holds configuration for the watcher.
type Config struct {
	// DebounceInterval is how long to wait after the last event before
	// firing the callback. This batches rapid updates together.
	DebounceInterval time.Duration

	// Logger for watcher activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 250 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[watch] ", log.LstdFlags),
	}
}

// Watcher watches a single file and invokes a callback, debounced, when it
// changes.
type Watcher struct {
	path    string // absolute path of the watched file
	config  *Config
	watcher *fsnotify.Watcher

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a watcher for the file at path. The watcher must be started
// with Start() before it fires.
func New(path string, config *Config) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if config == nil {
		config = DefaultConfig()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:    abs,
		config:  config,
		watcher: fsw,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. onChange is called from the watcher's goroutine
// after each debounced batch of changes; it should return before the next
// change is expected, or changes will queue behind it.
func (w *Watcher) Start(onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.loop(onChange)

	return nil
}

// Stop stops watching and blocks until the event goroutine has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

// loop converts fsnotify events on the watched file into debounced
// callback invocations.
func (w *Watcher) loop(onChange func()) {
	defer w.wg.Done()

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.config.DebounceInterval)
				fire = debounce.C
			} else {
				debounce.Reset(w.config.DebounceInterval)
			}

		case <-fire:
			w.config.Logger.Printf("%s changed", w.path)
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.config.Logger.Printf("watch error: %v", err)
		}
	}
}

// matches reports whether the event concerns the watched file with an
// operation that can change its content. Chmod is ignored.
func (w *Watcher) matches(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
