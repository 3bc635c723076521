package timeline

import (
	"bufio"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Aman-CERP/memex/internal/collect"
)

// gather collects daily and knowledge-graph events and orders them by time.
func (e *Engine) gather(ctx context.Context, w Window) ([]Event, error) {
	daily, err := e.dailyEvents(ctx, w)
	if err != nil {
		return nil, err
	}
	facts, err := e.factEvents(ctx, w)
	if err != nil {
		return nil, err
	}
	events := append(daily, facts...)
	sortEvents(events)
	return events, nil
}

// dailyEvents turns every "##" line of in-window daily notes into an event.
// Only files named exactly YYYY-MM-DD.md take part.
func (e *Engine) dailyEvents(ctx context.Context, w Window) ([]Event, error) {
	if e.config.DailyDir == "" {
		return nil, nil
	}
	files, err := collect.ListNotes(e.config.DailyDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("timeline_daily_dir_unreadable",
				slog.String("path", e.config.DailyDir),
				slog.String("error", err.Error()))
		}
		return nil, nil
	}

	var events []Event
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day := strings.TrimSuffix(filepath.Base(path), ".md")
		at, err := time.ParseInLocation(dateLayout, day, e.config.Location)
		if err != nil || len(day) != len(dateLayout) || !w.containsDay(day) {
			continue
		}

		headlines, err := readHeadlines(path)
		if err != nil {
			slog.Warn("timeline_document_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		for _, h := range headlines {
			events = append(events, Event{
				Date:   day,
				Type:   EventDailyNote,
				Text:   h,
				Source: path,
				at:     at,
				dated:  true,
			})
		}
	}
	return events, nil
}

// readHeadlines returns the "##"-prefixed lines of a file with '#' and spaces trimmed.
func readHeadlines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var headlines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(line, "##") {
			headlines = append(headlines, strings.Trim(line, "# "))
		}
	}
	return headlines, scanner.Err()
}

// factEvents reads fact lists modified inside the window, taking the trailing
// facts of each. Events are dated by the facts' own timestamps.
func (e *Engine) factEvents(ctx context.Context, w Window) ([]Event, error) {
	root := e.config.KnowledgeGraphDir
	if root == "" {
		return nil, nil
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	var events []Event
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || d.IsDir() || d.Name() != collect.FactsFileName {
			return nil
		}
		info, err := d.Info()
		if err != nil || !w.containsInstant(info.ModTime()) {
			return nil
		}

		list, err := collect.ReadFactList(path)
		if err != nil {
			slog.Warn("timeline_document_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		facts := list.Facts()
		if len(facts) > e.config.FactsPerFile {
			facts = facts[len(facts)-e.config.FactsPerFile:]
		}

		entity := filepath.Base(filepath.Dir(path))
		for _, rec := range facts {
			ev := Event{
				Date:   rec.Timestamp.Day(e.config.Location),
				Type:   EventKnowledgeGraph,
				Text:   rec.Fact,
				Source: path,
				Entity: entity,
			}
			ev.at, ev.dated = rec.Timestamp.Instant(e.config.Location)
			events = append(events, ev)
		}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return events, nil
}

// sortEvents orders events by instant. Undated events come first; ties keep gathering order.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.dated != b.dated {
			return !a.dated
		}
		return a.at.Before(b.at)
	})
}
