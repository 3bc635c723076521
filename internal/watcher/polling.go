package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

type fileState struct {
	modTime time.Time
	size    int64
	isDir   bool
}

type snapshot map[string]fileState

// snapshot records every covered path under the roots.
func (s *scope) snapshot() snapshot {
	snap := make(snapshot)
	record := func(path string, info fs.FileInfo) {
		if s.covers(path) {
			snap[path] = fileState{modTime: info.ModTime(), size: info.Size(), isDir: info.IsDir()}
		}
	}

	for file := range s.files {
		if info, err := os.Stat(file); err == nil {
			record(file, info)
		}
	}
	for _, dir := range s.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() && path != dir && hiddenBelow(dir, path) {
				return filepath.SkipDir
			}
			if info, err := d.Info(); err == nil {
				record(path, info)
			}
			return nil
		})
	}
	return snap
}

// diff lists the changes from prev to cur.
func diff(prev, cur snapshot, now time.Time) []FileEvent {
	var events []FileEvent
	for path, st := range cur {
		old, ok := prev[path]
		switch {
		case !ok:
			events = append(events, FileEvent{Path: path, Operation: OpCreate, IsDir: st.isDir, Timestamp: now})
		case !st.isDir && (old.size != st.size || !old.modTime.Equal(st.modTime)):
			events = append(events, FileEvent{Path: path, Operation: OpModify, Timestamp: now})
		}
	}
	for path, st := range prev {
		if _, ok := cur[path]; !ok {
			events = append(events, FileEvent{Path: path, Operation: OpDelete, IsDir: st.isDir, Timestamp: now})
		}
	}
	return events
}

// poll rescans the roots every PollInterval.
func (w *Watcher) poll(ctx context.Context) error {
	prev := w.scope.snapshot()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case now := <-ticker.C:
			cur := w.scope.snapshot()
			for _, ev := range diff(prev, cur, now) {
				w.debouncer.Add(ev)
			}
			prev = cur
		}
	}
}
