package output

import (
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/memex/internal/memory"
	"github.com/Aman-CERP/memex/internal/search"
)

var layerIcons = map[memory.Layer]string{
	memory.LayerDaily:          "📅",
	memory.LayerTacit:          "🧠",
	memory.LayerKnowledgeGraph: "🕸️",
	memory.LayerTools:          "🛠️",
}

func layerIcon(l memory.Layer) string {
	if icon, ok := layerIcons[l]; ok {
		return icon
	}
	return "📝"
}

// Results renders search or lookup results in the given format.
func (w *Writer) Results(results []*search.Result, format Format) error {
	switch format {
	case FormatJSON:
		if results == nil {
			results = []*search.Result{}
		}
		return w.JSON(results)
	case FormatIndex:
		w.index(results)
	default:
		w.full(results)
	}
	return nil
}

func (w *Writer) full(results []*search.Result) {
	if len(results) == 0 {
		w.Error("No memories found.")
		return
	}

	w.printf("%s\n\n", w.styles.Header.Render(pluralize(len(results), "relevant memory", "relevant memories")))
	for i, r := range results {
		w.printf("%d. [%s %s] %s\n", i+1, layerIcon(r.Metadata.Layer), w.styles.layer(r.Metadata.Layer), preview(r.Content, 100))
		w.printf("   %s %s %s %s\n",
			w.styles.Label.Render("ID:"), w.styles.ID.Render(r.ID),
			w.styles.Label.Render("| Source:"), filepath.Base(r.Metadata.Source))
		if r.Metadata.Timestamp != "" {
			w.printf("   %s %s\n", w.styles.Label.Render("Date:"), r.Metadata.Timestamp)
		}
		if r.Metadata.Entity != "" {
			w.printf("   %s %s\n", w.styles.Label.Render("Entity:"), r.Metadata.Entity)
		}
		w.printf("   %s %s\n\n", w.styles.Label.Render("Relevance:"), w.styles.Relevance.Render(formatRelevance(r.Relevance)))
	}
	w.printf("💡 Cite by ID: %s\n", results[0].DisplayID())
}

func (w *Writer) index(results []*search.Result) {
	if len(results) == 0 {
		w.Error("No memories found.")
		return
	}

	w.printf("%s\n\n", w.styles.Header.Render(pluralize(len(results), "result", "results")+" (IDs only)"))
	ids := make([]string, 0, len(results))
	for i, r := range results {
		w.printf("%d. [%s] %s\n", i+1, layerIcon(r.Metadata.Layer), preview(r.Content, 80))
		w.printf("   %s %s\n", w.styles.Label.Render("ID:"), w.styles.ID.Render(r.ID))
		ids = append(ids, r.ID)
	}
	if len(ids) > 3 {
		ids = ids[:3]
	}
	w.printf("\n💡 Get full details: memex get %s\n", strings.Join(ids, ","))
}
