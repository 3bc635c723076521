package collect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Aman-CERP/memex/internal/memory"
)

// DefaultToolsPattern matches SKILL.md at any depth, including the tools root itself.
const DefaultToolsPattern = "{SKILL.md,**/SKILL.md}"

// ToolsCategory is the category of every tools entry.
const ToolsCategory = "skill"

// ToolsCollector indexes tool documentation files found anywhere under a root.
type ToolsCollector struct {
	root    string
	pattern string
	matcher glob.Glob
}

// NewToolsCollector creates a tools collector.
// pattern is matched against slash-separated paths relative to root; empty means DefaultToolsPattern.
func NewToolsCollector(root, pattern string) (*ToolsCollector, error) {
	if pattern == "" {
		pattern = DefaultToolsPattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid tools pattern %q: %w", pattern, err)
	}
	return &ToolsCollector{root: root, pattern: pattern, matcher: g}, nil
}

// Layer implements Collector.
func (c *ToolsCollector) Layer() memory.Layer {
	return memory.LayerTools
}

// Collect implements Collector.
func (c *ToolsCollector) Collect(ctx context.Context) (*Result, error) {
	res := newResult(memory.LayerTools)
	if !dirExists(c.root) {
		return res, nil
	}

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			res.warn(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if !c.matches(path) {
			return nil
		}

		content, readErr := readDocument(path)
		if readErr != nil {
			res.warn(path, readErr)
			return nil
		}
		if strings.TrimSpace(content) == "" {
			return nil
		}
		res.add(&memory.Entry{
			ID:       memory.GenerateID(content, path),
			Content:  content,
			Source:   path,
			Layer:    memory.LayerTools,
			Category: ToolsCategory,
		})
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return res, ctx.Err()
	}

	slog.Debug("collector_finished",
		slog.String("layer", string(memory.LayerTools)),
		slog.String("pattern", c.pattern),
		slog.Int("entries", len(res.Entries)))
	return res, nil
}

// Files implements Collector.
func (c *ToolsCollector) Files(ctx context.Context) ([]string, error) {
	if !dirExists(c.root) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && c.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return files, nil
}

// matches applies the pattern to path relative to the root.
func (c *ToolsCollector) matches(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	return err == nil && c.matcher.Match(filepath.ToSlash(rel))
}
