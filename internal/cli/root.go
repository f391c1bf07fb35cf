// Package cli implements the flowcanvas command-line interface.
//
// This package provides commands for validating workflow documents, running
// auto-layout, rendering the state graph, migrating legacy transition ids,
// browsing a document interactively, and serving the editing API. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so every command shares one configured
// instance.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the flowcanvas CLI and returns an error if any command
// fails. The context carries cancellation from signal handling; the logger
// is attached to it and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "flowcanvas",
		Short:        "flowcanvas edits finite-state workflow documents",
		Long:         `flowcanvas is the consistency engine behind the workflow canvas: it validates workflow documents, keeps configurations and canvas layouts in sync, computes hierarchical auto-layouts, and serves the editing API.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("flowcanvas %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}
