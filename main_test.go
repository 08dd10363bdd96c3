package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestKeywordsCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "library:\n  run-on-failure: Nothing\n")

	out, err := execute(t, "--config", cfg, "keywords")
	require.NoError(t, err)
	assert.Contains(t, out, "Open Browser\n")
	assert.Contains(t, out, "Switch Browser\n")

	out, err = execute(t, "--config", cfg, "keywords", "switch browser")
	require.NoError(t, err)
	assert.Contains(t, out, "Arguments: index_or_alias")

	_, err = execute(t, "--config", cfg, "keywords", "fly away")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, t.TempDir(), "config.yaml", "library:\n  run-on-failure: Nothing\n")
	writeFile(t, dir, "timeouts.yaml", `
name: timeouts
steps:
  - keyword: Set Selenium Timeout
    args: ["${wait}"]
  - keyword: Get Selenium Timeout
    assign: current
  - keyword: Set Selenium Speed
    args: ["${current} later"]
    expect-error: invalid time string
teardown:
  - keyword: Close All Browsers
`)

	out, err := execute(t, "--config", cfg, "run", "--variable", "wait=3 seconds", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS  timeouts")

	out, err = execute(t, "--config", cfg, "run", "--json", "--variable", "wait=soon", dir)
	assert.ErrorContains(t, err, "1 of 1 suite(s) failed")
	assert.Contains(t, out, `"status": "FAIL"`)

	_, err = execute(t, "--config", cfg, "run", "--variable", "novalue", dir)
	assert.ErrorContains(t, err, "must be name=value")
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "keywords")
	assert.Error(t, err)
}
