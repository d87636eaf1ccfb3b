// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	assert.Equal(t, "code --wait", Resolve(env(map[string]string{"VISUAL": "code --wait", "EDITOR": "nano"})))
	assert.Equal(t, "nano", Resolve(env(map[string]string{"EDITOR": "nano"})))
	assert.Equal(t, DefaultCommand, Resolve(env(nil)))
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestEditRewritesFile(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	e := &Editor{Command: `sh -c "printf edited > \"$1\"" sh`, Dir: dir}

	path, err := e.Edit("seed text")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))
}

func TestEditKeepsSeed(t *testing.T) {
	skipWithoutShell(t)
	e := &Editor{Command: "true", Dir: t.TempDir()}

	path, err := e.Edit("seed text")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "seed text", string(data))
}

func TestEditFailureRemovesFile(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	e := &Editor{Command: "false", Dir: dir}

	_, err := e.Edit("x")
	require.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestEditBadCommand(t *testing.T) {
	_, err := (&Editor{Command: `"unterminated`}).Edit("x")
	assert.Error(t, err)

	_, err = (&Editor{Command: "   "}).Edit("x")
	assert.EqualError(t, err, "no editor command")
}
