// ABOUTME: Tests for upsert defaults, removal reporting, and lock guarding.
// ABOUTME: Each test gets its own mcp.json under a temp directory.

package cursor

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cantrip/internal/lockfile"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(NewStoreAt(filepath.Join(t.TempDir(), "mcp.json")), nil)
}

func TestUpsert_DerivesDefaults(t *testing.T) {
	reg := newTestRegistry(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "run.py")

	entry, err := reg.Upsert("calc", script, nil)
	require.NoError(t, err)

	assert.Equal(t, "python", entry.Command)
	assert.Equal(t, []string{script}, entry.Args)
	assert.Equal(t, dir, entry.Cwd)
	assert.Equal(t, dir, entry.Env["PYTHONPATH"])

	// The same entry must be what landed on disk.
	cfg, err := reg.Store().Read()
	require.NoError(t, err)
	assert.Equal(t, entry, cfg.MCPServers["calc"])
}

func TestUpsert_ResolvesRelativePaths(t *testing.T) {
	reg := newTestRegistry(t)

	entry, err := reg.Upsert("calc", "run.py", nil)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(wd, "run.py")}, entry.Args)
	assert.Equal(t, wd, entry.Cwd)
}

func TestUpsert_PrefersVenvInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("virtualenv layout differs on windows")
	}
	reg := newTestRegistry(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "run.py")

	venvPython := filepath.Join(dir, ".venv", "bin", "python")
	require.NoError(t, os.MkdirAll(filepath.Dir(venvPython), 0o755))
	require.NoError(t, os.WriteFile(venvPython, []byte("#!/bin/sh\n"), 0o755))

	entry, err := reg.Upsert("calc", script, nil)
	require.NoError(t, err)
	assert.Equal(t, venvPython, entry.Command)
}

func TestUpsert_HonorsExplicitOptions(t *testing.T) {
	reg := newTestRegistry(t)
	scriptDir := t.TempDir()
	workDir := t.TempDir()

	entry, err := reg.Upsert("calc", filepath.Join(scriptDir, "run.py"), &UpsertOptions{
		Python:     "/opt/python3.12/bin/python",
		WorkingDir: workDir,
		Env: map[string]string{
			"PYTHONPATH": "/custom/libs",
			"API_KEY":    "k-123",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/opt/python3.12/bin/python", entry.Command)
	assert.Equal(t, workDir, entry.Cwd)
	assert.Equal(t, "/custom/libs", entry.Env["PYTHONPATH"], "expected a supplied PYTHONPATH to win")
	assert.Equal(t, "k-123", entry.Env["API_KEY"])
}

func TestUpsert_CopiesCallerEnv(t *testing.T) {
	reg := newTestRegistry(t)
	callerEnv := map[string]string{"API_KEY": "k-123"}

	_, err := reg.Upsert("calc", filepath.Join(t.TempDir(), "run.py"), &UpsertOptions{Env: callerEnv})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"API_KEY": "k-123"}, callerEnv, "expected the caller's map to stay untouched")
}

func TestUpsert_SameNameReplaces(t *testing.T) {
	reg := newTestRegistry(t)
	script := filepath.Join(t.TempDir(), "run.py")

	_, err := reg.Upsert("calc", script, nil)
	require.NoError(t, err)
	_, err = reg.Upsert("calc", script, &UpsertOptions{Python: "/opt/py"})
	require.NoError(t, err)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"calc"}, names)

	cfg, err := reg.Store().Read()
	require.NoError(t, err)
	assert.Equal(t, "/opt/py", cfg.MCPServers["calc"].Command, "expected the last write to win")
}

func TestRemove_PresentEntry(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Upsert("calc", filepath.Join(t.TempDir(), "run.py"), nil)
	require.NoError(t, err)

	removed, err := reg.Remove("calc")
	require.NoError(t, err)
	assert.True(t, removed)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRemove_AbsentNameLeavesFileUntouched(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Upsert("keep", filepath.Join(t.TempDir(), "run.py"), nil)
	require.NoError(t, err)

	before, err := os.ReadFile(reg.Store().Path())
	require.NoError(t, err)

	removed, err := reg.Remove("ghost")
	require.NoError(t, err)
	assert.False(t, removed)

	after, err := os.ReadFile(reg.Store().Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestList_SortedNames(t *testing.T) {
	reg := newTestRegistry(t)
	script := filepath.Join(t.TempDir(), "run.py")

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := reg.Upsert(name, script, nil)
		require.NoError(t, err)
	}

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestMutations_RespectHeldLock(t *testing.T) {
	reg := newTestRegistry(t)

	lock, err := lockfile.Acquire(reg.Store().Path() + ".lock")
	require.NoError(t, err)
	defer lock.Release()

	_, err = reg.Upsert("calc", "run.py", nil)
	assert.True(t, errors.Is(err, lockfile.ErrLocked))

	_, err = reg.Remove("calc")
	assert.True(t, errors.Is(err, lockfile.ErrLocked))
}
