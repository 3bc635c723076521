// Package collect turns raw memory documents into index entries, one collector per layer.
//
// Collectors are best-effort: a document that cannot be read or parsed is recorded
// as a Warning on the Result and skipped, and collection continues with the next
// document. Only context cancellation aborts a collector.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/Aman-CERP/memex/internal/memory"
)

// Collector produces the entries of a single layer.
type Collector interface {
	// Layer returns the layer every produced entry belongs to.
	Layer() memory.Layer

	// Collect reads the layer's documents and returns their entries.
	// The returned error is non-nil only when ctx is cancelled.
	Collect(ctx context.Context) (*Result, error)

	// Files lists the documents Collect would read, without reading them.
	// The returned error is non-nil only when ctx is cancelled.
	Files(ctx context.Context) ([]string, error)
}

// Warning records a document that contributed nothing because it failed to load.
type Warning struct {
	Source string
	Err    error
}

// String formats the warning for display.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Source, w.Err)
}

// Result is the outcome of one collector run.
type Result struct {
	Layer    memory.Layer
	Entries  []*memory.Entry
	Warnings []Warning
}

func newResult(layer memory.Layer) *Result {
	return &Result{Layer: layer}
}

// warn records and logs a per-document failure.
func (r *Result) warn(source string, err error) {
	slog.Warn("collector_document_failed",
		slog.String("layer", string(r.Layer)),
		slog.String("source", source),
		slog.String("error", err.Error()))
	r.Warnings = append(r.Warnings, Warning{Source: source, Err: err})
}

func (r *Result) add(e *memory.Entry) {
	r.Entries = append(r.Entries, e)
}

// readDocument reads a UTF-8 text document.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid UTF-8 content")
	}
	return string(data), nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
