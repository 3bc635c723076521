package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"index", "search", "get", "timeline", "stats", "config", "logs", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_SilencesCobraErrors(t *testing.T) {
	root := NewRootCmd()

	assert.True(t, root.SilenceErrors)
	assert.True(t, root.SilenceUsage)
}

func TestRootCmd_ProfilesWrittenOnExit(t *testing.T) {
	// Given: a workspace and a heap profile path
	ws := newWorkspace(t)
	heap := filepath.Join(t.TempDir(), "heap.prof")

	// When: running a command with --profile-mem
	_, err := run(t, ws, "--profile-mem", heap, "version", "--short")

	// Then: the profile is written after the command
	require.NoError(t, err)
	info, err := os.Stat(heap)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRootCmd_InvalidConfigFallsBackForLogging(t *testing.T) {
	// Given: a workspace whose config does not parse
	ws := newWorkspace(t)
	writeFile(t, filepath.Join(ws, ".memex.yaml"), "index: [unclosed")

	// When: running a command that needs the config
	_, err := run(t, ws, "search", "ingestion")

	// Then: the config error surfaces from the command itself
	require.Error(t, err)
}
