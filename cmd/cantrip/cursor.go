// ABOUTME: The cursor command group: manage MCP server entries in Cursor.
// ABOUTME: Subcommands cover add, remove, list, config-path, and apply.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/cantrip/cursor"
)

var (
	mcpConfigFlag string

	addPython string
	addCwd    string
	addEnv    []string
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Manage MCP server entries in Cursor's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return fmt.Errorf("a cursor subcommand is required")
	},
}

var addServerCmd = &cobra.Command{
	Use:   "add-server <name> <script>",
	Short: "Add or update an MCP server entry",
	Long: `Register a script as an MCP server Cursor can launch.

The script path is stored absolute. The working directory defaults to
the script's directory, the interpreter to the working directory's
.venv when present, and PYTHONPATH to the working directory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		flagEnv, err := parseEnvPairs(addEnv)
		if err != nil {
			return err
		}

		python := addPython
		if python == "" {
			python = settings.Cursor.Python
		}

		opts := &cursor.UpsertOptions{
			Python:     python,
			WorkingDir: addCwd,
			Env:        mergeEnv(settings.Cursor.Env, flagEnv),
		}
		return runAddServer(cmd.OutOrStdout(), reg, args[0], args[1], opts)
	},
}

var removeServerCmd = &cobra.Command{
	Use:   "remove-server <name>",
	Short: "Remove an MCP server entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return runRemoveServer(cmd.OutOrStdout(), reg, args[0])
	},
}

var listServersCmd = &cobra.Command{
	Use:   "list-servers",
	Short: "List registered MCP server entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return runListServers(cmd.OutOrStdout(), reg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "config-path",
	Short: "Show the path of Cursor's MCP configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveMCPConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <manifest>",
	Short: "Reconcile entries from a YAML manifest",
	Long: `Apply a manifest declaring servers to register and names to remove.

Manifest shape:

  servers:
    calculator:
      script: ./examples/calculator/server.py
      python: /usr/bin/python3   # optional
      cwd: ./examples/calculator # optional
      env:                       # optional
        LOG_LEVEL: debug
  remove:
    - stale-server`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		return runApply(cmd.OutOrStdout(), reg, args[0])
	},
}

func init() {
	cursorCmd.PersistentFlags().StringVar(&mcpConfigFlag, "mcp-config", "",
		"Path to Cursor's mcp.json (default: the per-OS location)")

	addServerCmd.Flags().StringVar(&addPython, "python", "", "Interpreter used to launch the script")
	addServerCmd.Flags().StringVar(&addCwd, "cwd", "", "Working directory for the server")
	addServerCmd.Flags().StringArrayVar(&addEnv, "env", nil, "Environment for the server as KEY=VALUE (repeatable)")

	cursorCmd.AddCommand(addServerCmd, removeServerCmd, listServersCmd, configPathCmd, applyCmd)
	rootCmd.AddCommand(cursorCmd)
}

// resolveMCPConfigPath picks the mcp.json location: flag, then settings,
// then the per-OS default.
func resolveMCPConfigPath() (string, error) {
	if mcpConfigFlag != "" {
		return mcpConfigFlag, nil
	}
	if settings != nil && settings.Cursor.ConfigPath != "" {
		return settings.Cursor.ConfigPath, nil
	}
	return cursor.DefaultPath()
}

func openRegistry() (*cursor.Registry, error) {
	path, err := resolveMCPConfigPath()
	if err != nil {
		return nil, err
	}
	return cursor.NewRegistry(cursor.NewStoreAt(path), logger), nil
}

func runAddServer(out io.Writer, reg *cursor.Registry, name, script string, opts *cursor.UpsertOptions) error {
	if _, err := reg.Upsert(name, script, opts); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added '%s' server to Cursor MCP configuration.\n", name)
	fmt.Fprintf(out, "Configuration file location: %s\n", reg.Store().Path())
	return nil
}

func runRemoveServer(out io.Writer, reg *cursor.Registry, name string) error {
	removed, err := reg.Remove(name)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("server '%s' does not exist in configuration", name)
	}

	fmt.Fprintf(out, "Removed '%s' server from Cursor MCP configuration.\n", name)
	return nil
}

func runListServers(out io.Writer, reg *cursor.Registry) error {
	names, err := reg.List()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Servers registered in Cursor MCP configuration:")
	for _, name := range names {
		fmt.Fprintf(out, "- %s\n", name)
	}
	return nil
}

func runApply(out io.Writer, reg *cursor.Registry, manifestPath string) error {
	m, err := cursor.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	res, err := reg.Apply(m)
	if err != nil {
		return err
	}

	if len(res.Added) > 0 {
		fmt.Fprintf(out, "Added: %s\n", strings.Join(res.Added, ", "))
	}
	if len(res.Removed) > 0 {
		fmt.Fprintf(out, "Removed: %s\n", strings.Join(res.Removed, ", "))
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(out, "Not registered: %s\n", strings.Join(res.Missing, ", "))
	}
	if len(res.Added) == 0 && len(res.Removed) == 0 && len(res.Missing) == 0 {
		fmt.Fprintln(out, "Nothing to apply.")
	}
	return nil
}

// parseEnvPairs turns repeated KEY=VALUE flags into a map.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q, want KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

// mergeEnv layers override on top of base without touching either.
func mergeEnv(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}

	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
