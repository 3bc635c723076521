// Package output renders memex results, timelines and statistics for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects how results are rendered.
type Format string

const (
	// FormatFull shows content previews with source, date and relevance.
	FormatFull Format = "full"
	// FormatIndex shows ids with a short preview for progressive disclosure.
	FormatIndex Format = "index"
	// FormatJSON emits the result objects as JSON.
	FormatJSON Format = "json"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatFull, nil
	case FormatFull, FormatIndex, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: full, index, json)", s)
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer, styled when out is a color-capable terminal.
func New(out io.Writer) *Writer {
	return &Writer{out: out, styles: GetStyles(!ColorEnabled(out))}
}

// NewPlain creates a Writer that never emits ANSI codes.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: NoColorStyles()}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", w.styles.Error.Render(msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (w *Writer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

func (w *Writer) rule() {
	w.printf("%s\n", w.styles.Rule.Render(strings.Repeat("=", 70)))
}

// preview flattens s onto one line and cuts it to n runes, appending "..."
// when something was cut.
func preview(s string, n int) string {
	flat := strings.Join(strings.Fields(s), " ")
	r := []rune(flat)
	if len(r) <= n {
		return flat
	}
	return string(r[:n]) + "..."
}
