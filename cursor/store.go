// ABOUTME: Cursor's mcp.json on disk: locating, reading, and atomic writing.
// ABOUTME: Absent files read as an empty registry rather than an error.

package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config is the on-disk shape of Cursor's mcp.json. Keys other than
// mcpServers are preserved across a read-write cycle so rewriting the
// file never drops settings this package does not manage.
type Config struct {
	MCPServers map[string]ServerEntry

	extra map[string]json.RawMessage
}

// ServerEntry is one server launch definition inside mcp.json. Unknown
// keys on an entry (Cursor also accepts url-based entries, timeouts,
// and so on) survive a read-write cycle untouched.
type ServerEntry struct {
	Command string
	Args    []string
	Cwd     string
	Env     map[string]string

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the managed keys and stashes the rest.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.MCPServers = map[string]ServerEntry{}
	if servers, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(servers, &c.MCPServers); err != nil {
			return err
		}
		delete(raw, "mcpServers")
	}
	if len(raw) > 0 {
		c.extra = raw
	} else {
		c.extra = nil
	}
	return nil
}

// MarshalJSON re-merges the managed keys with the preserved ones.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+1)
	for k, v := range c.extra {
		out[k] = v
	}

	servers := c.MCPServers
	if servers == nil {
		servers = map[string]ServerEntry{}
	}
	encoded, err := json.Marshal(servers)
	if err != nil {
		return nil, err
	}
	out["mcpServers"] = encoded
	return json.Marshal(out)
}

func (e *ServerEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := map[string]any{
		"command": &e.Command,
		"args":    &e.Args,
		"cwd":     &e.Cwd,
		"env":     &e.Env,
	}
	for key, dst := range fields {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return err
			}
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		e.extra = raw
	} else {
		e.extra = nil
	}
	return nil
}

// MarshalJSON re-merges the managed keys with the preserved ones.
// Managed keys that were never set stay absent, so entries this
// package does not own (url-based servers, say) keep their shape.
func (e ServerEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.extra)+4)
	for k, v := range e.extra {
		out[k] = v
	}

	managed := []struct {
		key  string
		val  any
		omit bool
	}{
		{"command", e.Command, e.Command == ""},
		{"args", e.Args, e.Args == nil},
		{"cwd", e.Cwd, e.Cwd == ""},
		{"env", e.Env, e.Env == nil},
	}
	for _, f := range managed {
		if f.omit {
			continue
		}
		encoded, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		out[f.key] = encoded
	}
	return json.Marshal(out)
}

// DefaultPath returns the per-user location of Cursor's mcp.json for
// the host operating system.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".cursor", "mcp.json"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "cursor", "mcp.json"), nil
	default:
		return filepath.Join(home, ".config", "cursor", "mcp.json"), nil
	}
}

// Store reads and writes one mcp.json file. The file is the source of
// truth; every Read hits the disk.
type Store struct {
	path string
}

// NewStore opens the store at the default per-user path.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(path), nil
}

// NewStoreAt opens the store at an explicit path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Read loads the config. A missing file reads as an empty registry.
func (s *Store) Read() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Config{MCPServers: map[string]ServerEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerEntry{}
	}
	return &cfg, nil
}

// Write replaces the file atomically: marshal, write a sibling temp
// file, rename over the target. Parent directories are created as
// needed.
func (s *Store) Write(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp config file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}
