package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Aman-CERP/memex/internal/memory"
)

// AreaTypes is the fixed taxonomy walked by the knowledge-graph collector.
var AreaTypes = []string{"people", "companies", "projects", "skills", "workflows"}

// Knowledge-graph document names inside an entity directory.
const (
	SummaryFileName = "summary.md"
	FactsFileName   = "items.json"
)

// DefaultFactCategory is used for fact records without a category.
const DefaultFactCategory = "fact"

// GraphCollector indexes entity summaries and fact lists under root/<area>/<entity>/.
type GraphCollector struct {
	root string
	loc  *time.Location
}

// NewGraphCollector creates a knowledge-graph collector rooted at root.
func NewGraphCollector(root string) *GraphCollector {
	return &GraphCollector{root: root, loc: time.Local}
}

// WithLocation sets the zone used to render numeric fact timestamps as dates.
func (c *GraphCollector) WithLocation(loc *time.Location) *GraphCollector {
	if loc != nil {
		c.loc = loc
	}
	return c
}

// Layer implements Collector.
func (c *GraphCollector) Layer() memory.Layer {
	return memory.LayerKnowledgeGraph
}

// Collect implements Collector.
func (c *GraphCollector) Collect(ctx context.Context) (*Result, error) {
	res := newResult(memory.LayerKnowledgeGraph)
	if !dirExists(c.root) {
		return res, nil
	}

	for _, area := range AreaTypes {
		areaDir := filepath.Join(c.root, area)
		if !dirExists(areaDir) {
			continue
		}

		entities, err := entityDirs(areaDir)
		if err != nil {
			res.warn(areaDir, err)
			continue
		}

		for _, entityDir := range entities {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			entity := filepath.Base(entityDir)
			c.collectSummary(res, area, entity, filepath.Join(entityDir, SummaryFileName))
			c.collectFacts(res, entity, filepath.Join(entityDir, FactsFileName))
		}
	}

	slog.Debug("collector_finished",
		slog.String("layer", string(memory.LayerKnowledgeGraph)),
		slog.Int("entries", len(res.Entries)))
	return res, nil
}

// Files implements Collector.
func (c *GraphCollector) Files(ctx context.Context) ([]string, error) {
	var files []string
	for _, area := range AreaTypes {
		entities, err := entityDirs(filepath.Join(c.root, area))
		if err != nil {
			continue
		}
		for _, entityDir := range entities {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, name := range []string{SummaryFileName, FactsFileName} {
				if path := filepath.Join(entityDir, name); fileExists(path) {
					files = append(files, path)
				}
			}
		}
	}
	return files, nil
}

func (c *GraphCollector) collectSummary(res *Result, area, entity, path string) {
	if !fileExists(path) {
		return
	}
	content, err := readDocument(path)
	if err != nil {
		res.warn(path, err)
		return
	}
	if strings.TrimSpace(content) == "" {
		return
	}
	res.add(&memory.Entry{
		ID:       memory.GenerateID(content, path),
		Content:  content,
		Source:   path,
		Layer:    memory.LayerKnowledgeGraph,
		Entity:   entity,
		Category: "summary:" + area,
	})
}

func (c *GraphCollector) collectFacts(res *Result, entity, path string) {
	if !fileExists(path) {
		return
	}
	list, err := ReadFactList(path)
	if err != nil {
		res.warn(path, err)
		return
	}

	for _, rec := range list.Facts() {
		id := rec.ID
		if id == "" {
			id = memory.GenerateID(rec.Fact, path)
		}
		category := rec.Category
		if category == "" {
			category = DefaultFactCategory
		}
		var timestamp string
		if !rec.Timestamp.IsZero() {
			timestamp = rec.Timestamp.Day(c.loc)
		}
		res.add(&memory.Entry{
			ID:        id,
			Content:   rec.Fact,
			Source:    path,
			Layer:     memory.LayerKnowledgeGraph,
			Timestamp: timestamp,
			Entity:    entity,
			Category:  category,
		})
	}
}

// ReadFactList reads and decodes an items.json file.
func ReadFactList(path string) (*FactList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	list, err := DecodeFactList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return list, nil
}

// entityDirs lists the subdirectories of an area directory, sorted by name.
func entityDirs(areaDir string) ([]string, error) {
	des, err := os.ReadDir(areaDir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, de := range des {
		if de.IsDir() {
			dirs = append(dirs, filepath.Join(areaDir, de.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
