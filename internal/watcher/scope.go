package watcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Aman-CERP/memex/internal/index"
)

// scope decides which paths belong to the watched sources.
type scope struct {
	dirs     []string
	files    map[string]bool
	ignores  []glob.Glob
	artifact string
}

func newScope(roots []string, opts Options) (*scope, error) {
	ignores, err := compileIgnores(opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	s := &scope{files: make(map[string]bool), ignores: ignores, artifact: opts.ArtifactPath}
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if isFileRoot(abs) {
			s.files[abs] = true
		} else {
			s.dirs = append(s.dirs, abs)
		}
	}
	return s, nil
}

// isFileRoot reports whether root names a single file (a tacit document).
// Missing roots are judged by their extension.
func isFileRoot(path string) bool {
	if info, err := os.Stat(path); err == nil {
		return !info.IsDir()
	}
	return filepath.Ext(path) != ""
}

// covers reports whether a change at path can affect the index.
func (s *scope) covers(path string) bool {
	if s.ignored(path) {
		return false
	}
	if s.files[path] {
		return true
	}
	for _, dir := range s.dirs {
		if path == dir || within(dir, path) {
			return !hiddenBelow(dir, path)
		}
	}
	return false
}

// wantsDir reports whether dir must be watched: it lies inside a directory
// root, or is an ancestor through which a root may still appear.
func (s *scope) wantsDir(dir string) (wanted, recursive bool) {
	for _, root := range s.dirs {
		if dir == root || within(root, dir) {
			return !hiddenBelow(root, dir), true
		}
		if within(dir, root) {
			wanted = true
		}
	}
	for file := range s.files {
		if within(dir, file) {
			wanted = true
		}
	}
	return wanted, false
}

func (s *scope) ignored(path string) bool {
	if index.IsArtifactFile(path, s.artifact) {
		return true
	}
	name := filepath.Base(path)
	for _, g := range s.ignores {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hiddenBelow reports whether any component of path below root starts with
// a dot (.git, .obsidian and the like).
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
