package collect

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/memex/internal/memory"
)

// DailyCollector indexes day-named notes (YYYY-MM-DD*.md) section by section.
type DailyCollector struct {
	dir      string
	minChars int
}

// NewDailyCollector creates a collector over the markdown files directly inside dir.
func NewDailyCollector(dir string) *DailyCollector {
	return &DailyCollector{dir: dir, minChars: DailyMinSectionChars}
}

// Layer implements Collector.
func (c *DailyCollector) Layer() memory.Layer {
	return memory.LayerDaily
}

// Collect implements Collector.
func (c *DailyCollector) Collect(ctx context.Context) (*Result, error) {
	res := newResult(memory.LayerDaily)
	if !dirExists(c.dir) {
		return res, nil
	}

	files, err := ListNotes(c.dir)
	if err != nil {
		res.warn(c.dir, err)
		return res, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		content, err := readDocument(path)
		if err != nil {
			res.warn(path, err)
			continue
		}

		date := DateFromFilename(filepath.Base(path))
		for _, section := range SplitSections(content) {
			if charCount(section) < c.minChars {
				continue
			}
			res.add(&memory.Entry{
				ID:        memory.GenerateID(section, path),
				Content:   section,
				Source:    path,
				Layer:     memory.LayerDaily,
				Timestamp: date,
				Category:  ExtractCategory(section),
			})
		}
	}

	slog.Debug("collector_finished",
		slog.String("layer", string(memory.LayerDaily)),
		slog.Int("files", len(files)),
		slog.Int("entries", len(res.Entries)))
	return res, nil
}

// Files implements Collector.
func (c *DailyCollector) Files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := ListNotes(c.dir)
	if err != nil {
		return nil, nil
	}
	return files, nil
}

// ListNotes returns the *.md files directly inside dir, sorted by name.
func ListNotes(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, de.Name()))
	}
	return files, nil
}
