package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the memory sources with fsnotify, falling back to polling.
type Watcher struct {
	scope     *scope
	opts      Options
	debouncer *Debouncer
	fsWatcher *fsnotify.Watcher
	errors    chan error
	stopCh    chan struct{}

	mu      sync.Mutex
	stopped bool
	watched map[string]bool
}

// New creates a watcher for roots, which may be directories or single files
// and need not exist yet.
func New(roots []string, opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()
	sc, err := newScope(roots, opts)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		scope:     sc,
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		watched:   make(map[string]bool),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			w.fsWatcher = fsw
		} else {
			slog.Warn("fsnotify_unavailable", slog.String("error", err.Error()))
		}
	}
	return w, nil
}

// Mode returns "fsnotify" or "polling".
func (w *Watcher) Mode() string {
	if w.fsWatcher != nil {
		return "fsnotify"
	}
	return "polling"
}

// Start watches until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	slog.Debug("watch_started",
		slog.String("mode", w.Mode()),
		slog.Int("dirs", len(w.scope.dirs)),
		slog.Int("files", len(w.scope.files)))

	if w.fsWatcher == nil {
		return w.poll(ctx)
	}

	for _, dir := range w.scope.dirs {
		w.watchPath(dir)
	}
	for file := range w.scope.files {
		w.watchPath(filepath.Dir(file))
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// watchPath registers path, or its nearest existing ancestor when path does
// not exist yet so that its creation is noticed.
func (w *Watcher) watchPath(path string) {
	for {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}

	wanted, recursive := w.scope.wantsDir(path)
	if !wanted {
		return
	}
	if !recursive {
		w.add(path)
		return
	}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if wanted, _ := w.scope.wantsDir(p); !wanted {
			return filepath.SkipDir
		}
		w.add(p)
		return nil
	})
}

func (w *Watcher) add(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.watched[dir] {
		return
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		slog.Warn("watch_add_failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	w.watched[dir] = true
}

func (w *Watcher) handle(event fsnotify.Event) {
	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			w.watchPath(event.Name)
			// A root may have appeared below the new directory.
			for _, dir := range w.scope.dirs {
				if !within(event.Name, dir) {
					continue
				}
				w.watchPath(dir)
				if _, err := os.Stat(dir); err == nil {
					w.debouncer.Add(FileEvent{Path: dir, Operation: OpCreate, IsDir: true, Timestamp: time.Now()})
				}
			}
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	if !w.scope.covers(event.Name) {
		return
	}
	w.debouncer.Add(FileEvent{
		Path:      event.Name,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

func (w *Watcher) emitError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// Events returns debounced batches. It is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors. It is closed by Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases resources. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	close(w.errors)
	return nil
}
