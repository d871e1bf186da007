// ABOUTME: Registry of MCP server launch entries inside Cursor's mcp.json.
// ABOUTME: Upsert derives launch defaults; mutations are lock-guarded.

package cursor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/2389/cantrip/internal/lockfile"
)

// UpsertOptions overrides the launch defaults derived from the script
// path. All fields are optional.
type UpsertOptions struct {
	// Python is the interpreter used to launch the script. Defaults to
	// the working directory's .venv interpreter when one exists, else
	// "python" from PATH.
	Python string
	// WorkingDir is the server's working directory. Defaults to the
	// script's containing directory.
	WorkingDir string
	// Env is extra environment for the launched server. PYTHONPATH
	// defaults to the working directory unless set here. The map is
	// copied, never retained.
	Env map[string]string
}

// Registry manages server entries in one mcp.json. Mutations take a
// sibling lock file, then read, modify, and atomically rewrite the
// config.
type Registry struct {
	store  *Store
	logger *slog.Logger
}

// NewRegistry wraps a store. A nil logger falls back to slog.Default().
func NewRegistry(store *Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, logger: logger}
}

// Store returns the underlying config store.
func (r *Registry) Store() *Store { return r.store }

// Upsert adds or replaces the entry for name and returns what was
// written. The script path is made absolute, the working directory
// defaults to the script's directory, and the interpreter to the
// working directory's virtualenv when present.
func (r *Registry) Upsert(name, scriptPath string, opts *UpsertOptions) (ServerEntry, error) {
	var o UpsertOptions
	if opts != nil {
		o = *opts
	}

	script, err := filepath.Abs(scriptPath)
	if err != nil {
		return ServerEntry{}, fmt.Errorf("resolving script path: %w", err)
	}

	workDir := o.WorkingDir
	if workDir == "" {
		workDir = filepath.Dir(script)
	} else {
		workDir, err = filepath.Abs(workDir)
		if err != nil {
			return ServerEntry{}, fmt.Errorf("resolving working directory: %w", err)
		}
	}

	python := o.Python
	if python == "" {
		python = defaultPython(workDir)
	}

	env := make(map[string]string, len(o.Env)+1)
	for k, v := range o.Env {
		env[k] = v
	}
	if _, ok := env["PYTHONPATH"]; !ok {
		env["PYTHONPATH"] = workDir
	}

	entry := ServerEntry{
		Command: python,
		Args:    []string{script},
		Cwd:     workDir,
		Env:     env,
	}

	lock, err := lockfile.Acquire(r.lockPath())
	if err != nil {
		return ServerEntry{}, err
	}
	defer lock.Release()

	cfg, err := r.store.Read()
	if err != nil {
		return ServerEntry{}, err
	}
	cfg.MCPServers[name] = entry
	if err := r.store.Write(cfg); err != nil {
		return ServerEntry{}, err
	}

	r.logger.Debug("server registered",
		"name", name,
		"command", entry.Command,
		"cwd", entry.Cwd,
		"config", r.store.Path(),
	)
	return entry, nil
}

// Remove deletes the entry for name and reports whether it existed.
// An absent name leaves the config untouched.
func (r *Registry) Remove(name string) (bool, error) {
	lock, err := lockfile.Acquire(r.lockPath())
	if err != nil {
		return false, err
	}
	defer lock.Release()

	cfg, err := r.store.Read()
	if err != nil {
		return false, err
	}
	if _, ok := cfg.MCPServers[name]; !ok {
		return false, nil
	}

	delete(cfg.MCPServers, name)
	if err := r.store.Write(cfg); err != nil {
		return false, err
	}

	r.logger.Debug("server removed", "name", name, "config", r.store.Path())
	return true, nil
}

// List returns all registered server names, sorted.
func (r *Registry) List() ([]string, error) {
	cfg, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) lockPath() string {
	return r.store.Path() + ".lock"
}

// defaultPython prefers the working directory's virtualenv interpreter
// and falls back to "python" from PATH.
func defaultPython(workDir string) string {
	venv := filepath.Join(workDir, ".venv", "bin", "python")
	if runtime.GOOS == "windows" {
		venv = filepath.Join(workDir, ".venv", "Scripts", "python.exe")
	}
	if _, err := os.Stat(venv); err == nil {
		return venv
	}
	return "python"
}
