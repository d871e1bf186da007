// ABOUTME: YAML manifests describing a desired set of Cursor server entries.
// ABOUTME: Apply reconciles a manifest against the registry in one pass.

package cursor

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Manifest declares server entries to register and names to remove,
// usually checked into a project next to the scripts it launches.
type Manifest struct {
	Servers map[string]ManifestServer `yaml:"servers"`
	Remove  []string                  `yaml:"remove"`
}

// ManifestServer is one declared entry. Script is required; the other
// fields default exactly like UpsertOptions.
type ManifestServer struct {
	Script string            `yaml:"script"`
	Python string            `yaml:"python"`
	Cwd    string            `yaml:"cwd"`
	Env    map[string]string `yaml:"env"`
}

// LoadManifest reads a manifest file. Environment variables in the
// format ${VAR_NAME} are expanded before parsing.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var m Manifest
	if err := yaml.Unmarshal([]byte(expanded), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest file: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
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

// Validate checks that every declared server names a script.
func (m *Manifest) Validate() error {
	for name, srv := range m.Servers {
		if srv.Script == "" {
			return fmt.Errorf("servers.%s.script is required", name)
		}
	}
	return nil
}

// ApplyResult reports what Apply changed.
type ApplyResult struct {
	// Added holds the names upserted from the manifest, sorted.
	Added []string
	// Removed holds the names deleted, sorted.
	Removed []string
	// Missing holds removal targets that were not registered, sorted.
	Missing []string
}

// Apply upserts every declared server, then processes removals, each
// in sorted name order.
func (r *Registry) Apply(m *Manifest) (*ApplyResult, error) {
	res := &ApplyResult{}

	names := make([]string, 0, len(m.Servers))
	for name := range m.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		srv := m.Servers[name]
		_, err := r.Upsert(name, srv.Script, &UpsertOptions{
			Python:     srv.Python,
			WorkingDir: srv.Cwd,
			Env:        srv.Env,
		})
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", name, err)
		}
		res.Added = append(res.Added, name)
	}

	removals := append([]string(nil), m.Remove...)
	sort.Strings(removals)
	for _, name := range removals {
		removed, err := r.Remove(name)
		if err != nil {
			return nil, fmt.Errorf("removing %s: %w", name, err)
		}
		if removed {
			res.Removed = append(res.Removed, name)
		} else {
			res.Missing = append(res.Missing, name)
		}
	}

	return res, nil
}
