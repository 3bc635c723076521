package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_Project(t *testing.T) {
	// Given: a workspace without .memex.yaml
	ws := newWorkspace(t)
	path := filepath.Join(ws, ".memex.yaml")

	// When: init --project runs twice, the second time with --force
	out, err := run(t, ws, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, ws, "config", "init", "--project")
	require.Error(t, err)

	out, err = run(t, ws, "config", "init", "--project", "--force")

	// Then: the existing file is backed up
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up")
	assert.FileExists(t, path)
}

func TestConfigShow_ReflectsWorkspaceFile(t *testing.T) {
	ws := newWorkspace(t)
	writeFile(t, filepath.Join(ws, ".memex.yaml"), "search:\n  default_limit: 3\n")

	out, err := run(t, ws, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "default_limit: 3")
}

func TestConfigPath(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, ws, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("memex", "config.yaml"))
	assert.Contains(t, out, filepath.Join(ws, ".memex.yaml"))
}
