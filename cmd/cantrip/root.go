// ABOUTME: Root command wiring: settings loading, logger setup, subcommands.
// ABOUTME: Cobra's own error printing is silenced; main reports failures.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFlag string

	// Populated by initSettings before any command runs.
	settings *Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cantrip",
	Short: "Turn plain functions into MCP servers and wire them into Cursor",
	Long: `cantrip exposes ordinary functions as Model Context Protocol tools
and manages the server entries Cursor launches them from.

Servers are built with the cantrip library; this command maintains the
editor side: entries in Cursor's mcp.json.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initSettings,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return fmt.Errorf("a command is required")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to the cantrip settings file (default: <user config dir>/cantrip/config.toml)")
}

func initSettings(cmd *cobra.Command, args []string) error {
	path := configFlag
	if path == "" {
		path = os.Getenv("CANTRIP_CONFIG")
	}

	var err error
	settings, err = LoadSettings(path)
	if err != nil {
		return err
	}

	logger = setupLogger(settings.Log, os.Stderr)
	return nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	return rootCmd.Execute()
}
