// Package index builds the searchable memex index from every memory layer.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aman-CERP/memex/internal/collect"
	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/memory"
	"github.com/Aman-CERP/memex/internal/store"
)

// BuilderConfig configures index builds.
type BuilderConfig struct {
	// ArtifactPath is where the index artifact is written.
	ArtifactPath string

	// Vectorizer holds the TF-IDF hyperparameters.
	Vectorizer store.VectorizerConfig
}

// BuilderDependencies contains the injected dependencies for Builder.
type BuilderDependencies struct {
	// Collectors produce the entries, in build order (required).
	Collectors []collect.Collector

	// Analyzer tokenizes text. If nil, one is constructed.
	Analyzer *store.Analyzer
}

// BuildReport describes the outcome of a build.
type BuildReport struct {
	// Count is the number of indexed entries. Zero means nothing was persisted.
	Count int

	// Layers is the number of entries per layer.
	Layers map[memory.Layer]int

	// Vocabulary is the number of terms in the fitted model.
	Vocabulary int

	// Warnings lists documents skipped because they failed to load.
	Warnings []collect.Warning

	// DuplicateIDs lists ids produced by more than one entry.
	DuplicateIDs []string

	// Duration is the total build time.
	Duration time.Duration

	// ArtifactPath is where the artifact was written, if anything was.
	ArtifactPath string

	// Artifact is the persisted index, nil when Count is zero.
	Artifact *store.Artifact
}

// Builder rebuilds the index from scratch on every call to Build.
type Builder struct {
	config     BuilderConfig
	collectors []collect.Collector
	vectorizer *store.Vectorizer
	now        func() time.Time
}

// NewBuilder creates a Builder.
// If no analyzer is injected and none can be constructed, the error is
// ErrAnalyzerUnavailable with remediation text.
func NewBuilder(cfg BuilderConfig, deps BuilderDependencies) (*Builder, error) {
	if len(deps.Collectors) == 0 {
		return nil, fmt.Errorf("at least one collector is required")
	}
	if cfg.ArtifactPath == "" {
		return nil, fmt.Errorf("artifact path is required")
	}

	analyzer := deps.Analyzer
	if analyzer == nil {
		var err error
		analyzer, err = NewAnalyzer()
		if err != nil {
			return nil, err
		}
	}

	return &Builder{
		config:     cfg,
		collectors: deps.Collectors,
		vectorizer: store.NewVectorizer(analyzer, cfg.Vectorizer),
		now:        time.Now,
	}, nil
}

// NewAnalyzer constructs the text analyzer, mapping failure to ErrAnalyzerUnavailable.
func NewAnalyzer() (*store.Analyzer, error) {
	a, err := store.NewAnalyzer()
	if err != nil {
		return nil, mxerrors.New(mxerrors.ErrCodeAnalyzerUnavailable, "text analyzer could not be constructed", err).
			WithSuggestion("Reinstall memex; the bleve analysis components it was built with are missing")
	}
	return a, nil
}

// Vectorizer returns the vectorizer used to fit the index.
func (b *Builder) Vectorizer() *store.Vectorizer {
	return b.vectorizer
}

// Build collects every layer, fits the vectorizer and persists the artifact.
//
// An empty aggregate yields Count 0 and persists nothing. If pruning leaves an
// empty vocabulary the build fails and nothing is persisted.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	start := time.Now()
	report := &BuildReport{Layers: make(map[memory.Layer]int)}

	var entries []*memory.Entry
	for _, c := range b.collectors {
		res, err := c.Collect(ctx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, res.Entries...)
		report.Warnings = append(report.Warnings, res.Warnings...)
		report.Layers[c.Layer()] += len(res.Entries)
	}
	report.DuplicateIDs = duplicateIDs(entries)

	if len(entries) == 0 {
		report.Duration = time.Since(start)
		slog.Info("index_build_empty", slog.Int("warnings", len(report.Warnings)))
		return report, nil
	}

	model, matrix, err := b.vectorizer.Fit(store.Corpus(entries))
	if err != nil {
		if errors.Is(err, store.ErrEmptyVocabulary) {
			return report, mxerrors.New(mxerrors.ErrCodeIndexFailed, err.Error(), err).
				WithDetail("entries", fmt.Sprint(len(entries))).
				WithSuggestion("Add more varied notes; terms present in nearly every entry are ignored")
		}
		return report, mxerrors.New(mxerrors.ErrCodeIndexFailed, "fit vectorizer", err)
	}

	artifact := &store.Artifact{
		Version:   store.ArtifactVersion,
		Entries:   entries,
		Model:     model,
		Matrix:    matrix,
		IndexedAt: b.now(),
	}
	if err := store.SaveArtifact(ctx, b.config.ArtifactPath, artifact); err != nil {
		return report, err
	}

	report.Count = len(entries)
	report.Vocabulary = model.Size()
	report.ArtifactPath = b.config.ArtifactPath
	report.Artifact = artifact
	report.Duration = time.Since(start)

	slog.Info("index_build_complete",
		slog.Int("entries", report.Count),
		slog.Int("vocabulary", report.Vocabulary),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int("duplicate_ids", len(report.DuplicateIDs)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// duplicateIDs returns ids shared by more than one entry, in first-seen order.
func duplicateIDs(entries []*memory.Entry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		seen[e.ID]++
		if seen[e.ID] == 2 {
			dups = append(dups, e.ID)
			slog.Warn("index_duplicate_id",
				slog.String("id", e.ID),
				slog.String("source", e.Source))
		}
	}
	return dups
}
