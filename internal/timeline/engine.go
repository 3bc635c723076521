package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aman-CERP/memex/internal/collect"
	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/search"
	"github.com/Aman-CERP/memex/internal/telemetry"
)

const dateLayout = collect.DateLayout

// MaxWindowHours bounds --before and --after (about a century).
const MaxWindowHours = 100 * 366 * 24

// Searcher resolves id and query anchors.
type Searcher interface {
	Lookup(ctx context.Context, id string) (*search.Result, error)
	Search(ctx context.Context, query string, opts search.Options) ([]*search.Result, error)
}

// Config configures the timeline engine.
type Config struct {
	// DailyDir holds the day-named notes scanned for headlines.
	DailyDir string

	// KnowledgeGraphDir is walked for fact lists.
	KnowledgeGraphDir string

	// FactsPerFile is how many trailing facts of a recently modified fact list
	// become events; 0 means DefaultFactsPerFile.
	FactsPerFile int

	// Location interprets zone-less dates. Nil means time.Local.
	Location *time.Location
}

// Engine builds timelines.
type Engine struct {
	config   Config
	searcher Searcher
	recorder search.Recorder
}

// Option configures the timeline engine.
type Option func(*Engine)

// WithRecorder records one telemetry event per timeline.
func WithRecorder(r search.Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// NewEngine creates a timeline engine.
func NewEngine(cfg Config, searcher Searcher, opts ...Option) (*Engine, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if cfg.FactsPerFile <= 0 {
		cfg.FactsPerFile = DefaultFactsPerFile
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	e := &Engine{config: cfg, searcher: searcher}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Timeline resolves anchor and gathers every event within
// [anchor-hoursBefore, anchor+hoursAfter], ordered by time.
func (e *Engine) Timeline(ctx context.Context, anchor Anchor, hoursBefore, hoursAfter int) (*Result, error) {
	start := time.Now()

	if anchor.IsZero() {
		return nil, mxerrors.New(mxerrors.ErrCodeInvalidInput, "an id, date or query anchor is required", nil).
			WithSuggestion("Try: --date YYYY-MM-DD or --query 'search term'")
	}
	if hoursBefore < 0 || hoursAfter < 0 {
		return nil, mxerrors.New(mxerrors.ErrCodeInvalidInput,
			fmt.Sprintf("window hours must not be negative (before=%d, after=%d)", hoursBefore, hoursAfter), nil)
	}
	if hoursBefore > MaxWindowHours || hoursAfter > MaxWindowHours {
		return nil, mxerrors.New(mxerrors.ErrCodeInvalidInput,
			fmt.Sprintf("window hours must be at most %d (before=%d, after=%d)", MaxWindowHours, hoursBefore, hoursAfter), nil)
	}

	at, entry, err := e.resolve(ctx, anchor)
	if err != nil {
		return nil, err
	}

	window := newWindow(at, hoursBefore, hoursAfter)
	events, err := e.gather(ctx, window)
	if err != nil {
		return nil, err
	}

	slog.Debug("timeline_built",
		slog.String("anchor", anchor.String()),
		slog.String("start", window.Start),
		slog.String("end", window.End),
		slog.Int("events", len(events)))

	if e.recorder != nil {
		ev := telemetry.QueryEvent{
			Query:       anchor.String(),
			Kind:        telemetry.KindTimeline,
			ResultCount: len(events),
			Latency:     time.Since(start),
			Timestamp:   start,
		}
		if recErr := e.recorder.Record(ctx, ev); recErr != nil {
			slog.Warn("telemetry_record_failed", slog.String("error", recErr.Error()))
		}
	}

	return &Result{Anchor: entry, Window: window, Events: events}, nil
}

// resolve returns the anchor instant and, for id and query anchors, the entry it came from.
func (e *Engine) resolve(ctx context.Context, anchor Anchor) (time.Time, *search.Result, error) {
	switch {
	case strings.TrimSpace(anchor.ID) != "":
		entry, err := e.searcher.Lookup(ctx, anchor.ID)
		if err != nil {
			if errors.Is(err, mxerrors.ErrEntryNotFound) {
				return time.Time{}, nil, unresolved(fmt.Sprintf("no entry with id %s", anchor.ID), err)
			}
			return time.Time{}, nil, err
		}
		at, ok := e.entryDay(entry)
		if !ok {
			return time.Time{}, nil, unresolved(fmt.Sprintf("entry %s has no date", entry.ID), nil)
		}
		return at, entry, nil

	case strings.TrimSpace(anchor.Date) != "":
		at, err := collect.ParseDateTime(anchor.Date, e.config.Location)
		if err != nil {
			return time.Time{}, nil, mxerrors.New(mxerrors.ErrCodeInvalidDate,
				fmt.Sprintf("invalid date %q", anchor.Date), err).
				WithSuggestion("Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
		}
		return at, nil, nil

	default:
		results, err := e.searcher.Search(ctx, anchor.Query, search.Options{Limit: 1})
		if err != nil {
			return time.Time{}, nil, err
		}
		if len(results) == 0 {
			return time.Time{}, nil, unresolved(fmt.Sprintf("no entry matches %q", anchor.Query), nil)
		}
		at, ok := e.entryDay(results[0])
		if !ok {
			return time.Time{}, nil, unresolved(fmt.Sprintf("best match for %q has no date", anchor.Query), nil)
		}
		return at, results[0], nil
	}
}

// entryDay parses a day-granularity entry timestamp as local midnight.
func (e *Engine) entryDay(r *search.Result) (time.Time, bool) {
	ts := r.Metadata.Timestamp
	if len(ts) != len(dateLayout) {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(dateLayout, ts, e.config.Location)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func unresolved(message string, cause error) error {
	return mxerrors.New(mxerrors.ErrCodeAnchorUnresolved, message, cause).
		WithSuggestion("Try: --date YYYY-MM-DD or --query 'search term'")
}
