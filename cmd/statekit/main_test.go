package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/statekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a file backend rooted in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, "statekit.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := "log_level: error\npersistence:\n  backend: file\n  dir: " + filepath.ToSlash(filepath.Join(dir, "snapshots")) + "\npersist_form:\n  debounce_ms: 5\n"
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, statekit.Version)
}

func TestTodos_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "todos", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No todos.")

	out, err = run(t, dir, "todos", "add", "buy", "milk")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Added "))
	id := strings.TrimSpace(strings.TrimPrefix(out, "Added "))

	_, err = run(t, dir, "todos", "add", "walk the dog")
	require.NoError(t, err)

	out, err = run(t, dir, "todos", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "walk the dog")

	out, err = run(t, dir, "todos", "ls", "--where", `title startsWith "buy"`)
	require.NoError(t, err)
	assert.Contains(t, out, "buy milk")
	assert.NotContains(t, out, "walk the dog")

	_, err = run(t, dir, "todos", "done", id)
	require.NoError(t, err)
	_, err = run(t, dir, "todos", "filter", "show_completed")
	require.NoError(t, err)

	out, err = run(t, dir, "todos", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "filter: SHOW_COMPLETED")
	assert.Contains(t, out, "[x] buy milk")
	assert.NotContains(t, out, "walk the dog")

	_, err = run(t, dir, "todos", "rm", id)
	require.NoError(t, err)
	out, err = run(t, dir, "todos", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No todos.")
}

func TestTodos_UnknownID(t *testing.T) {
	_, err := run(t, t.TempDir(), "todos", "done", "missing")
	assert.Error(t, err)
}

func TestSnapshot_Commands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "snapshot", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored sessions found.")

	_, err = run(t, dir, "--session", "alpha", "todos", "add", "one")
	require.NoError(t, err)
	_, err = run(t, dir, "--session", "beta", "todos", "add", "two")
	require.NoError(t, err)

	out, err = run(t, dir, "snapshot", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "- alpha")
	assert.Contains(t, out, "- beta")

	out, err = run(t, dir, "snapshot", "show", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, `"one"`)

	_, err = run(t, dir, "snapshot", "show", "gamma")
	assert.Error(t, err)

	_, err = run(t, dir, "snapshot", "rm")
	assert.Error(t, err)

	_, err = run(t, dir, "snapshot", "rm", "--all")
	require.NoError(t, err)
	out, err = run(t, dir, "snapshot", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored sessions found.")
}

func TestDemo_Commands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "demo", "widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "## 1.")

	out, err = run(t, dir, "demo", "stories")
	require.NoError(t, err)
	assert.Contains(t, out, "## 1.")
}

func TestMetricsFlag(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "--metrics", "todos", "add", "count me")
	require.NoError(t, err)
	assert.Contains(t, out, `statekit_store_updates_total{action="Add Entity",store="todos"} 1`)

	out, err = run(t, dir, "todos", "ls")
	require.NoError(t, err)
	assert.NotContains(t, out, "statekit_store_updates_total")
}
