package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ZeroResultCapacity is the number of zero-result queries kept.
const ZeroResultCapacity = 100

// DefaultTopTerms is the number of terms returned in a snapshot.
const DefaultTopTerms = 10

// SQLiteRecorder writes query events through to a local SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	path   string
	ownsDB bool
}

// Open opens (creating if needed) the telemetry database at path.
func Open(path string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}

	// modernc.org/sqlite is pure Go, no cgo
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	r, err := NewSQLiteRecorder(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.path = path
	r.ownsDB = true
	return r, nil
}

// NewSQLiteRecorder wraps an open database, creating the telemetry tables if needed.
// The caller keeps ownership of db.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := InitSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteRecorder{db: db}, nil
}

// InitSchema creates the telemetry tables if they don't exist.
func InitSchema(db *sql.DB) error {
	schema := `
	-- Query kind frequency (aggregated daily)
	CREATE TABLE IF NOT EXISTS query_kind_stats (
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, kind)
	);

	-- Query terms (with frequency count)
	CREATE TABLE IF NOT EXISTS query_terms (
		term TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_query_terms_count ON query_terms(count DESC);

	-- Zero-result queries (circular buffer)
	CREATE TABLE IF NOT EXISTS zero_result_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		date TEXT NOT NULL
	);

	-- Latency histogram (buckets: <10ms, 10-50ms, 50-100ms, 100-500ms, >500ms)
	CREATE TABLE IF NOT EXISTS query_latency_stats (
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);

	-- Distinct queries, for repetition tracking
	CREATE TABLE IF NOT EXISTS query_hashes (
		hash TEXT PRIMARY KEY,
		seen INTEGER NOT NULL DEFAULT 1,
		date TEXT NOT NULL
	);

	-- Repeats of an earlier query (aggregated daily)
	CREATE TABLE IF NOT EXISTS query_repeat_stats (
		date TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// Path returns the database file, or "" when the recorder wraps a caller's database.
func (r *SQLiteRecorder) Path() string {
	return r.path
}

// Record writes one event in a single transaction.
func (r *SQLiteRecorder) Record(ctx context.Context, ev QueryEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	date := ev.day()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO query_kind_stats (date, kind, count) VALUES (?, ?, 1)
		ON CONFLICT(date, kind) DO UPDATE SET count = count + 1
	`, date, string(ev.Kind)); err != nil {
		return fmt.Errorf("insert query kind count: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO query_latency_stats (date, bucket, count) VALUES (?, ?, 1)
		ON CONFLICT(date, bucket) DO UPDATE SET count = count + 1
	`, date, string(LatencyToBucket(ev.Latency))); err != nil {
		return fmt.Errorf("insert latency count: %w", err)
	}

	// Lookups are id lists, not vocabulary
	if ev.Kind != KindLookup {
		for _, term := range ExtractTerms(ev.Query) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO query_terms (term, count, last_seen) VALUES (?, 1, CURRENT_TIMESTAMP)
				ON CONFLICT(term) DO UPDATE SET count = count + 1, last_seen = CURRENT_TIMESTAMP
			`, term); err != nil {
				return fmt.Errorf("upsert term count: %w", err)
			}
		}
	}

	if err := recordRepeat(ctx, tx, hashQuery(ev.Query), date); err != nil {
		return err
	}

	if ev.IsZeroResult() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO zero_result_queries (query, date) VALUES (?, ?)
		`, ev.Query, date); err != nil {
			return fmt.Errorf("insert zero-result query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM zero_result_queries
			WHERE id NOT IN (
				SELECT id FROM zero_result_queries ORDER BY id DESC LIMIT ?
			)
		`, ZeroResultCapacity); err != nil {
			return fmt.Errorf("trim zero-result queries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func recordRepeat(ctx context.Context, tx *sql.Tx, hash, date string) error {
	var seen int
	err := tx.QueryRowContext(ctx, `SELECT seen FROM query_hashes WHERE hash = ?`, hash).Scan(&seen)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `INSERT INTO query_hashes (hash, seen, date) VALUES (?, 1, ?)`, hash, date); err != nil {
			return fmt.Errorf("insert query hash: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("query hash: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE query_hashes SET seen = seen + 1 WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("update query hash: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO query_repeat_stats (date, count) VALUES (?, 1)
		ON CONFLICT(date) DO UPDATE SET count = count + 1
	`, date); err != nil {
		return fmt.Errorf("insert repeat count: %w", err)
	}
	return nil
}

// Snapshot aggregates the events recorded between from and to (YYYY-MM-DD, inclusive).
// topN bounds the term list; 0 means DefaultTopTerms.
func (r *SQLiteRecorder) Snapshot(ctx context.Context, from, to string, topN int) (*Snapshot, error) {
	if topN <= 0 {
		topN = DefaultTopTerms
	}
	s := &Snapshot{
		From:                from,
		To:                  to,
		KindCounts:          make(map[QueryKind]int64),
		LatencyDistribution: make(map[LatencyBucket]int64),
	}

	kinds, err := r.sumByKey(ctx, `
		SELECT kind, SUM(count) FROM query_kind_stats
		WHERE date >= ? AND date <= ? GROUP BY kind
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query kind counts: %w", err)
	}
	for k, v := range kinds {
		s.KindCounts[QueryKind(k)] = v
		s.TotalQueries += v
	}

	latencies, err := r.sumByKey(ctx, `
		SELECT bucket, SUM(count) FROM query_latency_stats
		WHERE date >= ? AND date <= ? GROUP BY bucket
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query latency counts: %w", err)
	}
	for k, v := range latencies {
		s.LatencyDistribution[LatencyBucket(k)] = v
	}

	if s.TopTerms, err = r.topTerms(ctx, topN); err != nil {
		return nil, err
	}
	if s.ZeroResultQueries, err = r.zeroResults(ctx, from, to); err != nil {
		return nil, err
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM zero_result_queries WHERE date >= ? AND date <= ?
	`, from, to).Scan(&s.ZeroResultCount); err != nil {
		return nil, fmt.Errorf("count zero-result queries: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM query_repeat_stats WHERE date >= ? AND date <= ?
	`, from, to).Scan(&s.ExactRepeatCount); err != nil {
		return nil, fmt.Errorf("count repeats: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM query_hashes WHERE date >= ? AND date <= ?
	`, from, to).Scan(&s.UniqueQueryCount); err != nil {
		return nil, fmt.Errorf("count unique queries: %w", err)
	}

	return s, nil
}

func (r *SQLiteRecorder) sumByKey(ctx context.Context, query string, args ...any) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out[key] = count
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) topTerms(ctx context.Context, limit int) ([]TermCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT term, count FROM query_terms ORDER BY count DESC, term ASC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top terms: %w", err)
	}
	defer rows.Close()

	var terms []TermCount
	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		terms = append(terms, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return terms, nil
}

// zeroResults returns the most recent zero-result queries, newest first.
func (r *SQLiteRecorder) zeroResults(ctx context.Context, from, to string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT query FROM zero_result_queries
		WHERE date >= ? AND date <= ?
		ORDER BY id DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query zero-result queries: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Close releases the database if the recorder opened it.
func (r *SQLiteRecorder) Close() error {
	if !r.ownsDB {
		return nil
	}
	return r.db.Close()
}
