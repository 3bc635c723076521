package collect

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/memex/internal/memory"
)

// TacitCollector indexes a fixed set of long-lived documents section by section.
// Tacit documents are not date-stamped.
type TacitCollector struct {
	files    []string
	minChars int
}

// NewTacitCollector creates a collector over the given documents.
// Missing documents are skipped silently.
func NewTacitCollector(files []string) *TacitCollector {
	return &TacitCollector{files: files, minChars: TacitMinSectionChars}
}

// Layer implements Collector.
func (c *TacitCollector) Layer() memory.Layer {
	return memory.LayerTacit
}

// Collect implements Collector.
func (c *TacitCollector) Collect(ctx context.Context) (*Result, error) {
	res := newResult(memory.LayerTacit)

	for _, path := range c.files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !fileExists(path) {
			continue
		}

		content, err := readDocument(path)
		if err != nil {
			res.warn(path, err)
			continue
		}

		for _, section := range SplitSections(content) {
			if charCount(section) < c.minChars {
				continue
			}
			res.add(&memory.Entry{
				ID:       memory.GenerateID(section, path),
				Content:  section,
				Source:   path,
				Layer:    memory.LayerTacit,
				Category: ExtractCategory(section),
			})
		}
	}

	slog.Debug("collector_finished",
		slog.String("layer", string(memory.LayerTacit)),
		slog.Int("entries", len(res.Entries)))
	return res, nil
}

// Files implements Collector.
func (c *TacitCollector) Files(ctx context.Context) ([]string, error) {
	var files []string
	for _, path := range c.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fileExists(path) {
			files = append(files, path)
		}
	}
	return files, nil
}
