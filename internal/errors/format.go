package errors

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI renders err for the terminal as "Error:", an optional
// "Hint:" and the code. Plain errors are reported as internal.
// With verbose, details and the cause chain follow.
func FormatForCLI(err error, verbose bool) string {
	if err == nil {
		return ""
	}

	me, ok := as(err)
	if !ok {
		me = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", me.Message)
	if me.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", me.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", me.Code)

	if !verbose {
		return sb.String()
	}
	for _, k := range sortedKeys(me.Details) {
		fmt.Fprintf(&sb, "  %s: %s\n", k, me.Details[k])
	}
	for cause := me.Cause; cause != nil; {
		fmt.Fprintf(&sb, "  Cause: %s\n", cause.Error())
		next, ok := cause.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cause = next.Unwrap()
	}
	return sb.String()
}

// LogAttrs returns slog attributes describing err.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	me, ok := as(err)
	if !ok {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", me.Code),
		slog.String("error", me.Message),
		slog.String("category", string(me.Category)),
		slog.Bool("retryable", me.Retryable),
	}
	if me.Cause != nil {
		attrs = append(attrs, slog.String("cause", me.Cause.Error()))
	}
	for _, k := range sortedKeys(me.Details) {
		attrs = append(attrs, slog.String("detail_"+k, me.Details[k]))
	}
	return attrs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
