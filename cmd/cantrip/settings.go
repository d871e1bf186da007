// ABOUTME: CLI settings loaded from a per-user TOML file.
// ABOUTME: An absent default file means defaults; an explicit path must exist.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Settings is the cantrip CLI's own configuration.
type Settings struct {
	Log    LogSettings    `toml:"log"`
	Cursor CursorSettings `toml:"cursor"`
}

// LogSettings controls diagnostic output on stderr.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is text (colorized) or json.
	Format string `toml:"format"`
}

// CursorSettings carries durable per-machine defaults for the cursor
// subcommands.
type CursorSettings struct {
	// ConfigPath overrides the per-OS location of Cursor's mcp.json.
	ConfigPath string `toml:"config_path"`
	// Python is the interpreter used when add-server gets no --python.
	Python string `toml:"python"`
	// Env is merged into every added entry; --env flags win on conflict.
	Env map[string]string `toml:"env"`
}

// DefaultSettingsPath returns the per-user settings file location.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "cantrip", "config.toml"), nil
}

// LoadSettings reads the settings file at path, or the default per-user
// location when path is empty. Environment variables in the format
// ${VAR_NAME} are expanded. A missing file at the default location
// yields defaults; a missing explicit path is an error.
func LoadSettings(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}

	s := &Settings{
		Log: LogSettings{Level: "info", Format: "text"},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	expanded := expandEnvVars(string(data))
	if err := toml.Unmarshal([]byte(expanded), s); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks the fields that commands rely on.
func (s *Settings) Validate() error {
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", s.Log.Level)
	}

	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", s.Log.Format)
	}

	return nil
}
