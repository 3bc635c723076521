package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Aman-CERP/memex/internal/store"
)

// DriftType categorizes how a source differs from the indexed state.
type DriftType int

const (
	// DriftModified indicates a source changed after the index was built.
	DriftModified DriftType = iota
	// DriftRemoved indicates an indexed source no longer exists.
	DriftRemoved
)

// String returns a human-readable description of the drift type.
func (t DriftType) String() string {
	switch t {
	case DriftModified:
		return "modified"
	case DriftRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Drift is one source that is out of date in the index.
type Drift struct {
	Type   DriftType
	Source string
}

// FreshnessResult contains the outcome of a freshness check.
type FreshnessResult struct {
	// Checked is the number of source files inspected.
	Checked int
	// Drift lists out-of-date sources, sorted by path.
	Drift []Drift
	// Duration is how long the check took.
	Duration time.Duration
}

// Stale reports whether the index no longer reflects its sources.
func (r *FreshnessResult) Stale() bool {
	return len(r.Drift) > 0
}

// CheckFreshness compares the documents the collectors read against the
// artifact stored at artifactPath. Documents modified after the artifact's
// build time are reported as modified; entry sources that no longer exist as
// removed. Other files under the source roots and the artifact's own files
// are ignored.
func CheckFreshness(ctx context.Context, sources Sources, artifactPath string, a *store.Artifact) (*FreshnessResult, error) {
	start := time.Now()
	result := &FreshnessResult{}

	collectors, err := sources.Collectors()
	if err != nil {
		return nil, err
	}
	for _, c := range collectors {
		files, err := c.Files(ctx)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if IsArtifactFile(path, artifactPath) {
				continue
			}
			info, statErr := os.Stat(path)
			if statErr != nil {
				continue
			}
			result.Checked++
			if info.ModTime().After(a.IndexedAt) {
				result.Drift = append(result.Drift, Drift{Type: DriftModified, Source: path})
			}
		}
	}

	seen := make(map[string]bool)
	for _, e := range a.Entries {
		if seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		if _, err := os.Stat(e.Source); os.IsNotExist(err) {
			result.Drift = append(result.Drift, Drift{Type: DriftRemoved, Source: e.Source})
		}
	}

	sort.SliceStable(result.Drift, func(i, j int) bool {
		return result.Drift[i].Source < result.Drift[j].Source
	})
	result.Duration = time.Since(start)

	if result.Stale() {
		slog.Debug("index_drift_detected",
			slog.Int("checked", result.Checked),
			slog.Int("drift", len(result.Drift)))
	}
	return result, nil
}

// IsArtifactFile reports whether path is the artifact, its lock file, or a
// temporary file written while replacing it.
func IsArtifactFile(path, artifactPath string) bool {
	if artifactPath == "" || filepath.Dir(path) != filepath.Dir(artifactPath) {
		return false
	}
	base := filepath.Base(artifactPath)
	name := filepath.Base(path)
	return strings.HasPrefix(name, base) || strings.HasPrefix(name, "."+base)
}
