// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     watch
// Description: Debounced file system watcher for source and catalog files
// Author:      Mike Stoffels
// Created:     2025-02-15
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/msto63/robolang/pkg/core/logging"
)

// Op is the kind of change reported to the handler
type Op int

const (
	// Changed means the file was created or written
	Changed Op = iota
	// Removed means the file was removed or renamed away
	Removed
)

func (o Op) String() string {
	if o == Removed {
		return "removed"
	}
	return "changed"
}

// Event is a debounced change of one file
type Event struct {
	Path string
	Op   Op
}

// Handler receives debounced events on the watcher goroutine
type Handler func(Event)

// Options configures a watcher
type Options struct {
	// Extensions limits events to files with these suffixes. Empty accepts all.
	Extensions []string

	// Debounce is the quiet period after the last event of a file before
	// the handler runs. Editors often write a file in several steps.
	Debounce time.Duration
}

// Watcher delivers debounced file events to a handler
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	opts    Options
	handler Handler
	files   map[string]bool // explicitly watched files
	dirs    map[string]bool // explicitly watched directories
	logger  *logging.Logger
	fired   chan string
	done    chan struct{}
	timers  map[string]*time.Timer
	lastOp  map[string]Op
	running bool
}

// New creates a watcher. Add paths before or after calling Run.
func New(opts Options, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher: fw,
		opts:    opts,
		handler: handler,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		logger:  logging.New("watch"),
		fired:   make(chan string, 16),
		done:    make(chan struct{}),
		timers:  make(map[string]*time.Timer),
		lastOp:  make(map[string]Op),
	}, nil
}

// Add watches a file or a directory. Directories are watched non-recursively;
// for a file its parent directory is watched and events are filtered to it.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	dir := abs
	w.mu.Lock()
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	w.mu.Unlock()

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.logger.Debug("Watching path", "path", abs)
	return nil
}

// Run processes events until ctx is cancelled. A watcher runs only once;
// its resources are released when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watch: Run called twice")
	}
	w.running = true
	w.mu.Unlock()

	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Stopping file watcher (context cancelled)")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.accepts(event.Name) {
				continue
			}
			w.schedule(event)

		case path := <-w.fired:
			w.mu.Lock()
			op := w.lastOp[path]
			delete(w.timers, path)
			delete(w.lastOp, path)
			w.mu.Unlock()

			w.handler(Event{Path: path, Op: op})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// schedule restarts the debounce timer of the event's file
func (w *Watcher) schedule(event fsnotify.Event) {
	var op Op
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create || event.Op&fsnotify.Write == fsnotify.Write:
		op = Changed
	case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
		op = Removed
	default:
		return
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastOp[path] = op
	if t, ok := w.timers[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.fired <- path:
		case <-w.done:
		}
	})
}

// accepts filters events to explicitly watched files or to files with a
// wanted extension inside watched directories
func (w *Watcher) accepts(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	explicit := w.files[abs]
	inDir := w.dirs[filepath.Dir(abs)]
	w.mu.Unlock()

	if explicit {
		return true
	}
	if !inDir {
		return false
	}
	return HasExtension(abs, w.opts.Extensions)
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	close(w.done)
	w.watcher.Close()
}

// HasExtension reports whether path ends with one of exts. An empty list
// accepts every path.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
