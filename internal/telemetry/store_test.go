package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 1, 6, 12, 0, 0, 0, time.Local)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "telemetry", "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func record(t *testing.T, r *SQLiteRecorder, ev QueryEvent) {
	t.Helper()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = day
	}
	require.NoError(t, r.Record(context.Background(), ev))
}

func snapshot(t *testing.T, r *SQLiteRecorder) *Snapshot {
	t.Helper()
	s, err := r.Snapshot(context.Background(), "2026-01-01", "2026-01-31", 0)
	require.NoError(t, err)
	return s
}

func TestLatencyToBucket(t *testing.T) {
	tests := []struct {
		latency  time.Duration
		expected LatencyBucket
	}{
		{5 * time.Millisecond, BucketP10},
		{9 * time.Millisecond, BucketP10},
		{10 * time.Millisecond, BucketP50},
		{49 * time.Millisecond, BucketP50},
		{50 * time.Millisecond, BucketP100},
		{99 * time.Millisecond, BucketP100},
		{100 * time.Millisecond, BucketP500},
		{499 * time.Millisecond, BucketP500},
		{500 * time.Millisecond, BucketP1000},
		{5 * time.Second, BucketP1000},
	}

	for _, tt := range tests {
		t.Run(tt.latency.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, LatencyToBucket(tt.latency))
		})
	}
}

func TestExtractTerms(t *testing.T) {
	assert.Equal(t, []string{"ingestion", "service"}, ExtractTerms("  Ingestion SERVICE "))
	assert.Equal(t, []string{"bug"}, ExtractTerms("a bug in it"))
	assert.Nil(t, ExtractTerms("   "))
	assert.Nil(t, ExtractTerms("a b"))
}

func TestSQLiteRecorder_CountsKindsAndLatency(t *testing.T) {
	r := openTestRecorder(t)

	record(t, r, QueryEvent{Query: "deployment plan", Kind: KindSearch, ResultCount: 5, Latency: 5 * time.Millisecond})
	record(t, r, QueryEvent{Query: "ramen", Kind: KindSearch, ResultCount: 1, Latency: 25 * time.Millisecond})
	record(t, r, QueryEvent{Query: "1a2b3c4d5e6f", Kind: KindLookup, ResultCount: 1, Latency: 200 * time.Millisecond})

	s := snapshot(t, r)
	assert.Equal(t, int64(3), s.TotalQueries)
	assert.Equal(t, int64(2), s.KindCounts[KindSearch])
	assert.Equal(t, int64(1), s.KindCounts[KindLookup])
	assert.Equal(t, int64(1), s.LatencyDistribution[BucketP10])
	assert.Equal(t, int64(1), s.LatencyDistribution[BucketP50])
	assert.Equal(t, int64(1), s.LatencyDistribution[BucketP500])
}

func TestSQLiteRecorder_TopTerms(t *testing.T) {
	r := openTestRecorder(t)

	record(t, r, QueryEvent{Query: "error handling", Kind: KindSearch, ResultCount: 5})
	record(t, r, QueryEvent{Query: "error retry", Kind: KindSearch, ResultCount: 3})
	record(t, r, QueryEvent{Query: "error backoff", Kind: KindSearch, ResultCount: 2})
	record(t, r, QueryEvent{Query: "retry backoff", Kind: KindSearch, ResultCount: 1})
	record(t, r, QueryEvent{Query: "abcdefabcdef", Kind: KindLookup, ResultCount: 1})

	s := snapshot(t, r)
	require.NotEmpty(t, s.TopTerms)
	assert.Equal(t, TermCount{Term: "error", Count: 3}, s.TopTerms[0])
	for _, tc := range s.TopTerms {
		assert.NotEqual(t, "abcdefabcdef", tc.Term, "lookups do not contribute terms")
	}

	limited, err := r.Snapshot(context.Background(), "2026-01-01", "2026-01-31", 2)
	require.NoError(t, err)
	assert.Len(t, limited.TopTerms, 2)
}

func TestSQLiteRecorder_ZeroResults(t *testing.T) {
	r := openTestRecorder(t)

	record(t, r, QueryEvent{Query: "nonexistent topic", Kind: KindSearch, ResultCount: 0})
	record(t, r, QueryEvent{Query: "found something", Kind: KindSearch, ResultCount: 5})
	record(t, r, QueryEvent{Query: "another miss", Kind: KindSearch, ResultCount: 0})

	s := snapshot(t, r)
	assert.Equal(t, []string{"another miss", "nonexistent topic"}, s.ZeroResultQueries)
	assert.Equal(t, int64(2), s.ZeroResultCount)
	assert.InDelta(t, 66.67, s.ZeroResultPercentage(), 0.01)
}

func TestSQLiteRecorder_ZeroResultsAreBounded(t *testing.T) {
	r := openTestRecorder(t)

	for i := 0; i < ZeroResultCapacity+5; i++ {
		record(t, r, QueryEvent{Query: fmt.Sprintf("miss %d", i), Kind: KindSearch})
	}

	s := snapshot(t, r)
	assert.Len(t, s.ZeroResultQueries, ZeroResultCapacity)
	assert.Equal(t, fmt.Sprintf("miss %d", ZeroResultCapacity+4), s.ZeroResultQueries[0])
}

func TestSQLiteRecorder_Repetition(t *testing.T) {
	r := openTestRecorder(t)

	record(t, r, QueryEvent{Query: "Deployment plan", Kind: KindSearch, ResultCount: 1})
	record(t, r, QueryEvent{Query: "deployment plan ", Kind: KindSearch, ResultCount: 1})
	record(t, r, QueryEvent{Query: "ramen", Kind: KindSearch, ResultCount: 1})

	s := snapshot(t, r)
	assert.Equal(t, int64(1), s.ExactRepeatCount)
	assert.Equal(t, int64(2), s.UniqueQueryCount)
	assert.InDelta(t, 1.0/3.0, s.ExactRepeatRate(), 1e-9)
}

func TestSQLiteRecorder_DateRange(t *testing.T) {
	r := openTestRecorder(t)

	record(t, r, QueryEvent{Query: "january", Kind: KindSearch, ResultCount: 1})
	record(t, r, QueryEvent{Query: "february", Kind: KindSearch, ResultCount: 1,
		Timestamp: time.Date(2026, 2, 3, 9, 0, 0, 0, time.Local)})

	s := snapshot(t, r)
	assert.Equal(t, int64(1), s.TotalQueries)

	feb, err := r.Snapshot(context.Background(), "2026-02-01", "2026-02-28", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), feb.TotalQueries)
	assert.Equal(t, int64(1), feb.KindCounts[KindSearch])
}

func TestSQLiteRecorder_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Path())
	require.NoError(t, r.Record(context.Background(), QueryEvent{Query: "ramen", Kind: KindSearch, ResultCount: 1, Timestamp: day}))
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()
	s, err := r.Snapshot(context.Background(), "2026-01-06", "2026-01-06", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.TotalQueries)
}

func TestNewSQLiteRecorder_SharedDB(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	defer db.Close()

	r, err := NewSQLiteRecorder(db)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// Close leaves a caller-owned database usable
	require.NoError(t, db.Ping())

	_, err = NewSQLiteRecorder(nil)
	assert.Error(t, err)
}

func TestSnapshot_EmptyRates(t *testing.T) {
	s := &Snapshot{}
	assert.Equal(t, 0.0, s.ZeroResultPercentage())
	assert.Equal(t, 0.0, s.ExactRepeatRate())
}
