package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newWorkspace creates a populated workspace and isolates config, home and telemetry.
func newWorkspace(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"MEMEX_WORKSPACE", "MEMEX_DAILY_DIR", "MEMEX_TOOLS_DIR", "MEMEX_INDEX_PATH", "MEMEX_LOG_LEVEL", "MEMEX_TELEMETRY", "MEMEX_MAX_FEATURES"} {
		t.Setenv(key, "")
	}

	ws := t.TempDir()
	t.Setenv("MEMEX_KNOWLEDGE_GRAPH_DIR", filepath.Join(ws, "life", "areas"))
	t.Setenv("MEMEX_TELEMETRY_PATH", filepath.Join(home, "telemetry.db"))

	writeFile(t, filepath.Join(ws, "memory", "2026-01-30.md"),
		"## Discussed deployment plan\nWe agreed to roll out the ingestion service on Friday after load testing finishes.\n"+
			"## Lunch with Bob\nBob recommended a new ramen place downtown near the office park.\n")
	writeFile(t, filepath.Join(ws, "memory", "2026-02-01.md"),
		"## Fixed the bug\nThe ingestion service crashed on malformed payloads; added validation and a regression test.\n")
	writeFile(t, filepath.Join(ws, "MEMORY.md"),
		"# Preferences\nPrefers concise written status updates over long meetings.\n")
	writeFile(t, filepath.Join(ws, "life", "areas", "people", "Alice", "items.json"),
		`[{"fact": "Alice owns the ingestion service deployment pipeline", "timestamp": "2026-01-29"}]`)
	writeFile(t, filepath.Join(ws, "tools", "search", "SKILL.md"),
		"Search skill: query indexed memories by keyword relevance.")
	return ws
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes the root command against ws and returns stdout.
func run(t *testing.T, ws string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--workspace", ws}, args...))
	err := root.Execute()
	return out.String(), err
}
