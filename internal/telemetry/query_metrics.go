// Package telemetry records local query telemetry for memex.
// All telemetry data is stored locally - no external reporting.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// Query Kinds
// =============================================================================

// QueryKind classifies what a recorded query was used for.
type QueryKind string

const (
	KindSearch   QueryKind = "search"
	KindLookup   QueryKind = "lookup"
	KindTimeline QueryKind = "timeline"
)

// =============================================================================
// Latency Buckets
// =============================================================================

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyBuckets lists the buckets from fastest to slowest.
var LatencyBuckets = []LatencyBucket{BucketP10, BucketP50, BucketP100, BucketP500, BucketP1000}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// =============================================================================
// Query Event
// =============================================================================

// QueryEvent represents a single query for telemetry recording.
type QueryEvent struct {
	Query        string
	Kind         QueryKind
	Layer        string
	ResultCount  int
	TopRelevance float64
	Latency      time.Duration
	Timestamp    time.Time
}

// IsZeroResult returns true if this query returned no results.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// day returns the event's local calendar day, defaulting to today.
func (e QueryEvent) day() string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format("2006-01-02")
}

// =============================================================================
// Term Extraction
// =============================================================================

// ExtractTerms extracts searchable terms from a query string.
// Terms are lowercased and filtered to minimum length 3.
func ExtractTerms(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var terms []string
	for _, w := range strings.Fields(query) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}

	if len(terms) == 0 {
		return nil
	}
	return terms
}

// hashQuery creates a normalized hash of the query for repetition detection.
func hashQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:16])
}

// =============================================================================
// Snapshot
// =============================================================================

// TermCount represents a term and its frequency count.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is an aggregate view of recorded queries over a date range.
type Snapshot struct {
	From                string                  `json:"from"`
	To                  string                  `json:"to"`
	KindCounts          map[QueryKind]int64     `json:"kind_counts"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalQueries        int64                   `json:"total_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	ExactRepeatCount    int64                   `json:"exact_repeat_count"`
	UniqueQueryCount    int64                   `json:"unique_query_count"`
}

// ZeroResultPercentage returns the percentage of zero-result queries.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// ExactRepeatRate returns the fraction of queries that repeated an earlier one.
func (s *Snapshot) ExactRepeatRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ExactRepeatCount) / float64(s.TotalQueries)
}
