package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/memex/internal/config"
	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/search"
	"github.com/Aman-CERP/memex/internal/telemetry"
	"github.com/Aman-CERP/memex/internal/timeline"
)

// app wires the engines for one command invocation.
type app struct {
	cfg      *config.Config
	builder  *index.Builder
	engine   *search.Engine
	timeline *timeline.Engine
	recorder *telemetry.SQLiteRecorder
}

// newApp builds the index builder, search and timeline engines from config.
// Telemetry that cannot be opened is skipped with a warning.
func newApp(g *globals) (*app, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}

	sources := cfg.Sources()
	collectors, err := sources.Collectors()
	if err != nil {
		return nil, err
	}

	builder, err := index.NewBuilder(index.BuilderConfig{
		ArtifactPath: cfg.ArtifactPath(),
		Vectorizer:   cfg.VectorizerConfig(),
	}, index.BuilderDependencies{Collectors: collectors})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, builder: builder}

	var searchOpts []search.EngineOption
	var timelineOpts []timeline.Option
	if cfg.Telemetry.Enabled {
		rec, err := telemetry.Open(cfg.TelemetryPath())
		if err != nil {
			slog.Warn("telemetry_unavailable", slog.String("path", cfg.TelemetryPath()), slog.String("error", err.Error()))
		} else {
			a.recorder = rec
			searchOpts = append(searchOpts, search.WithRecorder(rec))
			timelineOpts = append(timelineOpts, timeline.WithRecorder(rec))
		}
	}

	a.engine, err = search.NewEngine(search.EngineConfig{
		ArtifactPath: cfg.ArtifactPath(),
		CacheSize:    cfg.Search.CacheSize,
	}, builder, searchOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create search engine: %w", err)
	}

	a.timeline, err = timeline.NewEngine(timeline.Config{
		DailyDir:          sources.DailyDir,
		KnowledgeGraphDir: sources.KnowledgeGraphDir,
		FactsPerFile:      cfg.Timeline.FactsPerFile,
		Location:          sources.Location,
	}, a.engine, timelineOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create timeline engine: %w", err)
	}
	return a, nil
}

// Close releases the telemetry database.
func (a *app) Close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			slog.Debug("telemetry_close_failed", slog.String("error", err.Error()))
		}
		a.recorder = nil
	}
}
