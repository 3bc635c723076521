package watcher

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a change to a file under one of the watched roots.
type FileEvent struct {
	// Path is absolute.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// DefaultIgnorePatterns match editor and OS scratch files by base name.
var DefaultIgnorePatterns = []string{
	"*.swp", "*.swx", "*~", ".#*", "#*#", "*.tmp", ".DS_Store",
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is how long the sources must be quiet before a batch
	// is emitted. Default: 500ms
	DebounceWindow time.Duration

	// PollInterval is the scan interval in polling mode. Default: 5s
	PollInterval time.Duration

	// EventBufferSize is the number of batches buffered. Default: 16
	EventBufferSize int

	// IgnorePatterns are glob patterns matched against base names, in
	// addition to DefaultIgnorePatterns.
	IgnorePatterns []string

	// ArtifactPath is the index file; it and its lock and temp files never
	// produce events.
	ArtifactPath string

	// ForcePolling skips fsnotify.
	ForcePolling bool
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  500 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// compileIgnores compiles the default and extra ignore patterns.
func compileIgnores(extra []string) ([]glob.Glob, error) {
	patterns := append(append([]string{}, DefaultIgnorePatterns...), extra...)
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
