// Package watcher reports changes to the memory sources so the index can be
// rebuilt while `memex index --watch` runs.
//
// fsnotify is used where available, with polling as a fallback for file
// systems that do not deliver events (network mounts, some sync folders).
// Events are debounced into batches, and editor scratch files as well as the
// index artifact itself are ignored.
//
//	w, err := watcher.New(sources.Roots(), watcher.Options{ArtifactPath: path})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go func() { _ = w.Start(ctx) }()
//	for batch := range w.Events() {
//	    // rebuild
//	}
package watcher
