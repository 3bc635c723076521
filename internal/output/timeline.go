package output

import (
	"github.com/Aman-CERP/memex/internal/timeline"
)

// Timeline renders a timeline as JSON or grouped by day.
func (w *Writer) Timeline(res *timeline.Result, asJSON bool) error {
	if asJSON {
		if res.Events == nil {
			res.Events = []timeline.Event{}
		}
		return w.JSON(res)
	}

	w.rule()
	w.printf("%s\n", w.styles.Header.Render("📅  TIMELINE: "+res.Window.Start+" → "+res.Window.End))
	w.printf("    Window: %dh before, %dh after\n", res.Window.HoursBefore, res.Window.HoursAfter)
	w.rule()

	if res.Anchor != nil {
		w.printf("\n🎯  ANCHOR POINT: %s\n", w.styles.ID.Render(res.Anchor.DisplayID()))
		w.printf("    %s\n", preview(res.Anchor.Content, 120))
	}

	if len(res.Events) == 0 {
		w.Newline()
		w.Warning("No events found in this time window")
		w.Newline()
		return nil
	}

	w.printf("\n📊  %s:\n", pluralize(len(res.Events), "EVENT", "EVENTS"))
	for _, day := range res.Days() {
		date := day.Date
		if date == "" {
			date = "undated"
		}
		w.printf("\n  ▸ %s\n", w.styles.Header.Render(date))
		for _, ev := range day.Events {
			icon := "📝"
			if ev.Type == timeline.EventKnowledgeGraph {
				icon = "🧠"
			}
			line := "  " + icon + " " + preview(ev.Text, 70)
			if ev.Entity != "" {
				line += " " + w.styles.Label.Render("["+ev.Entity+"]")
			}
			w.printf("%s\n", line)
		}
	}
	w.Newline()
	w.rule()
	return nil
}
