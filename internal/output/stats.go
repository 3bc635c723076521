package output

import (
	"fmt"

	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/memory"
	"github.com/Aman-CERP/memex/internal/search"
	"github.com/Aman-CERP/memex/internal/telemetry"
)

// BuildReport summarizes an index build.
func (w *Writer) BuildReport(r *index.BuildReport) {
	for _, warn := range r.Warnings {
		w.Warning(warn.String())
	}
	if r.Count == 0 {
		w.Warning("No entries to index")
		return
	}

	for _, l := range memory.Layers {
		w.Statusf(layerIcon(l), "%-16s %d entries", l, r.Layers[l])
	}
	if len(r.DuplicateIDs) > 0 {
		w.Warningf("%d duplicate ids (identical content in one source)", len(r.DuplicateIDs))
	}
	w.Successf("Indexed %s in %s", pluralize(r.Count, "memory", "memories"), formatDuration(r.Duration))
	w.Status("", fmt.Sprintf("Vocabulary size: %d", r.Vocabulary))
}

// StatsReport is what `memex stats` shows.
type StatsReport struct {
	Index     *search.Stats          `json:"index"`
	Freshness *index.FreshnessResult `json:"-"`
	Stale     []string               `json:"stale_sources,omitempty"`
	Telemetry *telemetry.Snapshot    `json:"telemetry,omitempty"`
}

// Stats renders index statistics, freshness and query telemetry.
func (w *Writer) Stats(r *StatsReport, asJSON bool) error {
	if r.Freshness != nil && r.Stale == nil {
		for _, d := range r.Freshness.Drift {
			r.Stale = append(r.Stale, d.Type.String()+" "+d.Source)
		}
	}
	if asJSON {
		return w.JSON(r)
	}

	w.printf("%s\n", w.styles.Header.Render("Index"))
	w.printf("  %s %s\n", w.styles.Label.Render("Artifact:  "), r.Index.ArtifactPath)
	w.printf("  %s %s\n", w.styles.Label.Render("Built:     "), r.Index.IndexedAt)
	w.printf("  %s %d\n", w.styles.Label.Render("Entries:   "), r.Index.Entries)
	w.printf("  %s %d\n", w.styles.Label.Render("Vocabulary:"), r.Index.Vocabulary)
	for _, l := range memory.Layers {
		w.printf("    %s %-16s %d\n", layerIcon(l), w.styles.layer(l), r.Index.Layers[l])
	}

	if r.Freshness != nil {
		w.Newline()
		if len(r.Stale) == 0 {
			w.Successf("Index is up to date (%d sources checked)", r.Freshness.Checked)
		} else {
			w.Warningf("Index is stale: %d changed sources (run memex index)", len(r.Stale))
			for _, s := range r.Stale {
				w.Status("", w.styles.Dim.Render(s))
			}
		}
	}

	if t := r.Telemetry; t != nil {
		w.Newline()
		w.printf("%s %s\n", w.styles.Header.Render("Queries"), w.styles.Label.Render(t.From+" → "+t.To))
		w.printf("  %s %d (%d unique)\n", w.styles.Label.Render("Total:      "), t.TotalQueries, t.UniqueQueryCount)
		for _, kind := range []telemetry.QueryKind{telemetry.KindSearch, telemetry.KindLookup, telemetry.KindTimeline} {
			w.printf("    %-10s %d\n", kind, t.KindCounts[kind])
		}
		w.printf("  %s %d (%.1f%%)\n", w.styles.Label.Render("Zero result:"), t.ZeroResultCount, t.ZeroResultPercentage())
		w.printf("  %s %.1f%%\n", w.styles.Label.Render("Repeats:    "), t.ExactRepeatRate()*100)
		w.printf("  %s", w.styles.Label.Render("Latency:    "))
		for _, b := range telemetry.LatencyBuckets {
			w.printf(" %s=%d", b, t.LatencyDistribution[b])
		}
		w.Newline()
		if len(t.TopTerms) > 0 {
			w.printf("  %s", w.styles.Label.Render("Top terms:  "))
			for i, tc := range t.TopTerms {
				if i > 0 {
					w.printf(",")
				}
				w.printf(" %s (%d)", tc.Term, tc.Count)
			}
			w.Newline()
		}
		for _, q := range t.ZeroResultQueries {
			w.Status("", w.styles.Dim.Render("no results: "+q))
		}
	}
	return nil
}
