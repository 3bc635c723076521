package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestDefaultLogPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := DefaultLogPath()
	if filepath.Base(path) != LogFileName {
		t.Errorf("DefaultLogPath should end with %s, got: %s", LogFileName, path)
	}
	if !strings.Contains(path, filepath.Join(".memex", "logs")) {
		t.Errorf("DefaultLogPath should live under .memex/logs, got: %s", path)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got: %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected rotation defaults: %d MB, %d files", cfg.MaxSizeMB, cfg.MaxFiles)
	}
	if DebugConfig().Level != "debug" {
		t.Errorf("expected debug level for DebugConfig")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetup_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "memex.log")

	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Debug("index_built", slog.Int("entries", 6))
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"index_built"`) || !strings.Contains(string(data), `"entries":6`) {
		t.Errorf("expected JSON record, got: %s", data)
	}
}

func TestSetup_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memex.log")

	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	cleanup()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "quiet") {
		t.Error("info record should have been filtered")
	}
	if !strings.Contains(string(data), "loud") {
		t.Error("warn record missing")
	}
}

func TestFanout_SendsToEnabledHandlers(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	logger := slog.New(h).With(slog.String("cmd", "search"))

	logger.Debug("cache_miss")
	logger.Warn("telemetry_record_failed")

	if !strings.Contains(debugBuf.String(), "cache_miss") || !strings.Contains(debugBuf.String(), "telemetry_record_failed") {
		t.Errorf("debug handler missing records: %s", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "cache_miss") {
		t.Errorf("warn handler got debug record: %s", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "cmd=search") {
		t.Errorf("attrs not propagated: %s", warnBuf.String())
	}
}

func TestFindLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := FindLogFile(""); err == nil {
		t.Error("expected error when no log exists")
	}
	if _, err := FindLogFile("/nonexistent/memex.log"); err == nil {
		t.Error("expected error for missing explicit path")
	}

	if err := EnsureLogDir(); err != nil {
		t.Fatalf("EnsureLogDir: %v", err)
	}
	if err := os.WriteFile(DefaultLogPath(), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindLogFile("")
	if err != nil || got != DefaultLogPath() {
		t.Errorf("FindLogFile() = %q, %v", got, err)
	}
}

func TestRotatingWriter_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memex.log")
	w, err := NewRotatingWriter(path, 1, 2)
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	w.SetSyncEachWrite(false)
	// Force tiny files.
	w.maxSize = 100

	line := []byte(strings.Repeat("x", 60) + "\n")
	for i := 0; i < 6; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	files := RotatedFiles(path, 5)
	if len(files) != 3 {
		t.Fatalf("expected current plus 2 rotated files, got %v", files)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("rotation should not keep more than maxFiles")
	}
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func record(ts time.Time, level, msg string) string {
	return fmt.Sprintf(`{"time":%q,"level":%q,"msg":%q,"query":"standup"}`, ts.Format(time.RFC3339Nano), level, msg)
}

func TestViewer_TailFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memex.log")
	base := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	writeLines(t, path,
		record(base, "DEBUG", "cache_miss"),
		record(base.Add(time.Second), "INFO", "index_built"),
		"not json",
		record(base.Add(2*time.Second), "WARN", "index_stale"),
	)

	v := NewViewer(ViewerConfig{Level: "info", NoColor: true}, &bytes.Buffer{})
	entries, err := v.Tail(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Unparseable lines are kept as raw text.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Msg != "index_built" || entries[1].IsValid || entries[2].Msg != "index_stale" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	v = NewViewer(ViewerConfig{Pattern: regexp.MustCompile("stale")}, &bytes.Buffer{})
	entries, _ = v.Tail(path, 10)
	if len(entries) != 1 {
		t.Errorf("pattern filter: expected 1 entry, got %d", len(entries))
	}

	v = NewViewer(ViewerConfig{}, &bytes.Buffer{})
	entries, _ = v.Tail(path, 2)
	if len(entries) != 2 || entries[1].Msg != "index_stale" {
		t.Errorf("tail 2: got %+v", entries)
	}
}

func TestViewer_TailFilesMergesByTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memex.log")
	base := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	writeLines(t, path+".1", record(base, "INFO", "first"))
	writeLines(t, path, record(base.Add(time.Minute), "INFO", "second"))

	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})
	entries, err := v.TailFiles(RotatedFiles(path, 5), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Msg != "first" || entries[1].Msg != "second" {
		t.Errorf("unexpected order: %+v", entries)
	}
}

func TestViewer_FormatEntry(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})
	entry := parseLine(record(time.Date(2026, 1, 31, 9, 5, 7, 0, time.UTC), "INFO", "search_done"))

	got := v.FormatEntry(entry)
	want := "09:05:07.000 INFO  search_done query=standup"
	if got != want {
		t.Errorf("FormatEntry() = %q, want %q", got, want)
	}
	if v.FormatEntry(LogEntry{Raw: "plain"}) != "plain" {
		t.Error("invalid entries should render raw")
	}
}

func TestViewer_Follow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memex.log")
	writeLines(t, path, record(time.Now(), "INFO", "old"))

	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()

	// Give Follow time to seek to the end.
	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(record(time.Now(), "INFO", "new") + "\n")
	_ = f.Close()

	select {
	case e := <-entries:
		if e.Msg != "new" {
			t.Errorf("expected appended entry, got %q", e.Msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for followed entry")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Follow returned %v", err)
	}
}
