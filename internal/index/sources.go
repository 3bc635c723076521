package index

import (
	"time"

	"github.com/Aman-CERP/memex/internal/collect"
)

// Sources locates the documents of every memory layer.
type Sources struct {
	// DailyDir holds the day-named notes.
	DailyDir string

	// TacitFiles are the long-lived workspace documents.
	TacitFiles []string

	// KnowledgeGraphDir is the root of the <area>/<entity>/ tree.
	KnowledgeGraphDir string

	// ToolsDir is searched recursively for tool documentation.
	ToolsDir string

	// ToolsPattern selects tool documents; empty means collect.DefaultToolsPattern.
	ToolsPattern string

	// Location renders numeric fact timestamps as dates. Nil means time.Local.
	Location *time.Location
}

// Collectors returns one collector per layer in build order:
// daily, tacit, knowledge graph, tools.
func (s Sources) Collectors() ([]collect.Collector, error) {
	tools, err := collect.NewToolsCollector(s.ToolsDir, s.ToolsPattern)
	if err != nil {
		return nil, err
	}
	return []collect.Collector{
		collect.NewDailyCollector(s.DailyDir),
		collect.NewTacitCollector(s.TacitFiles),
		collect.NewGraphCollector(s.KnowledgeGraphDir).WithLocation(s.Location),
		tools,
	}, nil
}

// Roots returns the directories and files whose changes affect the index.
func (s Sources) Roots() []string {
	roots := []string{s.DailyDir, s.KnowledgeGraphDir, s.ToolsDir}
	return append(roots, s.TacitFiles...)
}
