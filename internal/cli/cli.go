// Package cli implements the atelier command-line interface.
//
// # Commands
//
//   - serve: run the canvas HTTP API with live events and config reload
//   - layout: run the force-directed engine offline over a snapshot file
//   - profiles: print the layout profiles in effect
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context.
package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"atelier/internal/config"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOptions are the flags shared by every command
type globalOptions struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	var g globalOptions

	root := &cobra.Command{
		Use:          "atelier",
		Short:        "Atelier arranges canvas spaces with a force-directed layout",
		Long:         `Atelier serves a canvas of spaces, blocks and links, and rearranges them with a force-directed layout engine.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if g.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("atelier %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: search "+config.EnvConfigPath+" and standard locations)")

	root.AddCommand(newServeCmd(&g))
	root.AddCommand(newLayoutCmd(&g))
	root.AddCommand(newProfilesCmd(&g))

	return root
}

// Execute runs the atelier CLI
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig reads the explicit config file, or searches the standard
// locations when none was given. The returned path is empty for defaults.
func (g *globalOptions) loadConfig() (*config.Config, string, error) {
	if g.configPath != "" {
		return config.LoadFromPath(g.configPath)
	}
	return config.Load()
}

// applyLogLevel honours the configured level unless --verbose was given
func (g *globalOptions) applyLogLevel(logger *charmlog.Logger, cfg *config.Config) {
	if g.verbose {
		return
	}
	level, err := charmlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("unknown log level, keeping info", "level", cfg.Log.Level)
		return
	}
	logger.SetLevel(level)
}
