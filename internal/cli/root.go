// Package cli provides the Cobra command structure for jsoncomma.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/jsoncomma/internal/configloader"
	"github.com/yaklabco/jsoncomma/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root jsoncomma command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "jsoncomma",
		Short: "Insert missing and remove trailing commas in JSON",
		Long: `jsoncomma repairs comma placement in JSON and JSON-with-comments files.

It inserts the commas missing between sibling values and removes the commas
left dangling before a closing bracket. Nothing else in the file changes:
strings, comments, whitespace and layout are kept byte for byte.

Environment:
` + configloader.EnvHelp("  "),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newFixCommand(info))
	rootCmd.AddCommand(newServerCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
