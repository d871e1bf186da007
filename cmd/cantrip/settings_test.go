// ABOUTME: Tests for TOML settings loading, expansion, and validation.
// ABOUTME: Redirects the user config dir so real settings are never read.

package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_AbsentDefaultGivesDefaults(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("config dir redirection differs on windows")
	}
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, ".config"))

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Empty(t, s.Cursor.ConfigPath)
}

func TestLoadSettings_ExplicitMissingPathErrors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadSettings_ParsesTOML(t *testing.T) {
	path := writeSettings(t, `
[log]
level = "debug"
format = "json"

[cursor]
config_path = "/tmp/cursor/mcp.json"
python = "/usr/bin/python3"

[cursor.env]
LOG_LEVEL = "debug"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "/tmp/cursor/mcp.json", s.Cursor.ConfigPath)
	assert.Equal(t, "/usr/bin/python3", s.Cursor.Python)
	assert.Equal(t, "debug", s.Cursor.Env["LOG_LEVEL"])
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `
[cursor]
python = "/opt/py"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, "/opt/py", s.Cursor.Python)
}

func TestLoadSettings_ExpandsEnvVars(t *testing.T) {
	t.Setenv("CANTRIP_TEST_MCP", "/custom/mcp.json")
	path := writeSettings(t, `
[cursor]
config_path = "${CANTRIP_TEST_MCP}"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/custom/mcp.json", s.Cursor.ConfigPath)
}

func TestLoadSettings_RejectsBadLevel(t *testing.T) {
	path := writeSettings(t, `
[log]
level = "verbose"
`)

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadSettings_RejectsBadFormat(t *testing.T) {
	path := writeSettings(t, `
[log]
format = "xml"
`)

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}
