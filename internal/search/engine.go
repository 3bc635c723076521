// Package search answers ranked queries and id lookups against the memex index.
package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/memory"
	"github.com/Aman-CERP/memex/internal/store"
	"github.com/Aman-CERP/memex/internal/telemetry"
)

// IndexBuilder rebuilds the index artifact.
type IndexBuilder interface {
	Build(ctx context.Context) (*index.BuildReport, error)
	Vectorizer() *store.Vectorizer
}

// Recorder receives one event per query.
type Recorder interface {
	Record(ctx context.Context, event telemetry.QueryEvent) error
}

// EngineConfig configures the engine.
type EngineConfig struct {
	// ArtifactPath is the index artifact to load.
	ArtifactPath string

	// CacheSize is the number of query vectors kept; 0 means DefaultQueryCacheSize.
	CacheSize int
}

// Engine is a handle over one loaded index. The index is loaded on first use
// and built once if the artifact is missing, stale or corrupt.
type Engine struct {
	config     EngineConfig
	builder    IndexBuilder
	vectorizer *store.Vectorizer
	recorder   Recorder
	cache      *queryCache

	mu       sync.RWMutex
	artifact *store.Artifact
}

// EngineOption configures the search engine.
type EngineOption func(*Engine)

// WithRecorder sets an optional query recorder for telemetry.
// Recorder failures are logged and never returned to callers.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig, builder IndexBuilder, opts ...EngineOption) (*Engine, error) {
	if builder == nil {
		return nil, fmt.Errorf("index builder is required")
	}
	if cfg.ArtifactPath == "" {
		return nil, fmt.Errorf("artifact path is required")
	}

	e := &Engine{
		config:     cfg,
		builder:    builder,
		vectorizer: builder.Vectorizer(),
		cache:      newQueryCache(cfg.CacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search ranks every entry by cosine similarity to query and returns up to
// opts.Limit entries passing the filters, most relevant first. Ties keep
// index order. Filters apply in ranked order, so results are the same as
// filtering the full ranking.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]*Result, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, mxerrors.New(mxerrors.ErrCodeQueryEmpty, "query must not be empty", nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	a, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	q := e.cache.vector(a.Model, query, func(s string) store.SparseVector {
		return e.vectorizer.Transform(a.Model, s)
	})
	scores := a.Matrix.Similarities(q)

	filters := buildFilters(opts)
	results := make([]*Result, 0, opts.Limit)
	for _, i := range rank(scores) {
		entry := a.Entries[i]
		if !matchesAllFilters(entry, filters) {
			continue
		}
		results = append(results, NewResult(entry, scores[i]))
		if len(results) >= opts.Limit {
			break
		}
	}

	e.record(ctx, telemetry.QueryEvent{
		Query:       query,
		Kind:        telemetry.KindSearch,
		Layer:       string(opts.Layer),
		ResultCount: len(results),
		Latency:     time.Since(start),
		Timestamp:   start,
	}, results)
	return results, nil
}

// rank returns row indices ordered by descending score; equal scores keep index order.
func rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order
}

// GetByIDs returns every entry whose id is in ids, with relevance 1.0, in index order.
// Ids may carry the "mem-" citation prefix. Unknown ids are ignored.
func (e *Engine) GetByIDs(ctx context.Context, ids []string) ([]*Result, error) {
	start := time.Now()
	a, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[memory.StripDisplayPrefix(strings.TrimSpace(id))] = struct{}{}
	}

	var results []*Result
	for _, entry := range a.Entries {
		if _, ok := wanted[entry.ID]; ok {
			results = append(results, NewResult(entry, 1.0))
		}
	}

	e.record(ctx, telemetry.QueryEvent{
		Query:       strings.Join(ids, ","),
		Kind:        telemetry.KindLookup,
		ResultCount: len(results),
		Latency:     time.Since(start),
		Timestamp:   start,
	}, results)
	return results, nil
}

// Lookup returns the first entry with the given id. A leading "mem-" citation
// prefix is accepted.
func (e *Engine) Lookup(ctx context.Context, id string) (*Result, error) {
	id = memory.StripDisplayPrefix(id)
	if id == "" {
		return nil, mxerrors.New(mxerrors.ErrCodeInvalidInput, "id must not be empty", nil)
	}
	results, err := e.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, mxerrors.New(mxerrors.ErrCodeEntryNotFound, fmt.Sprintf("no entry with id %s", id), nil)
	}
	return results[0], nil
}

// Stats describes the loaded index, loading or building it if needed.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	a, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{
		Entries:      len(a.Entries),
		Layers:       make(map[memory.Layer]int),
		Vocabulary:   a.Model.Size(),
		IndexedAt:    a.IndexedAt.Format(time.RFC3339),
		ArtifactPath: e.config.ArtifactPath,
	}
	for _, entry := range a.Entries {
		st.Layers[entry.Layer]++
	}
	return st, nil
}

// Artifact returns the loaded index, loading or building it if needed.
func (e *Engine) Artifact(ctx context.Context) (*store.Artifact, error) {
	return e.load(ctx)
}

// Reload discards the loaded index and loads the artifact again.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	e.artifact = nil
	e.cache.purge()
	e.mu.Unlock()

	_, err := e.load(ctx)
	return err
}

// load returns the loaded artifact, loading or building it on first use.
func (e *Engine) load(ctx context.Context) (*store.Artifact, error) {
	e.mu.RLock()
	a := e.artifact
	e.mu.RUnlock()
	if a != nil {
		return a, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.artifact != nil {
		return e.artifact, nil
	}

	a, err := store.LoadArtifact(ctx, e.config.ArtifactPath, e.vectorizer.Config())
	if err != nil {
		reason, rebuild := rebuildReason(err)
		if !rebuild {
			return nil, err
		}
		slog.Info("index_rebuild_required",
			slog.String("reason", reason),
			slog.String("path", e.config.ArtifactPath))

		report, buildErr := e.builder.Build(ctx)
		if buildErr != nil {
			return nil, buildErr
		}
		if report.Count == 0 {
			return nil, mxerrors.New(mxerrors.ErrCodeIndexEmpty, "no memories found to index", nil).
				WithSuggestion("Add notes to the daily directory or check MEMEX_WORKSPACE")
		}
		a = report.Artifact
	}

	e.artifact = a
	e.cache.purge()
	return a, nil
}

// rebuildReason reports whether a load failure is repaired by rebuilding.
func rebuildReason(err error) (string, bool) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "missing", true
	case errors.Is(err, mxerrors.ErrStaleIndex):
		return "stale", true
	case errors.Is(err, mxerrors.ErrCorruptIndex):
		slog.Warn("index_corrupt", slog.String("error", err.Error()))
		return "corrupt", true
	default:
		return "", false
	}
}

func (e *Engine) record(ctx context.Context, event telemetry.QueryEvent, results []*Result) {
	if e.recorder == nil {
		return
	}
	if len(results) > 0 {
		event.TopRelevance = results[0].Relevance
	}
	if err := e.recorder.Record(ctx, event); err != nil {
		slog.Warn("telemetry_record_failed", slog.String("error", err.Error()))
	}
}
