// Package cmd provides the CLI commands for OmniSearch.
package cmd

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/logging"
	"github.com/Aman-CERP/omnisearch/internal/ui"
	"github.com/Aman-CERP/omnisearch/pkg/version"
)

var (
	debugMode      bool
	noColor        bool
	onDemand       bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the omnisearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "omnisearch",
		Short: "Health-aware search orchestration MCP server",
		Long: `OmniSearch fronts a set of web-search and AI-answer back-ends with
query classification, adaptive provider ranking, circuit breakers, and
automatic fallback.

Run 'omnisearch serve' to expose the MCP tool surface over stdio, or use
the one-shot commands (search, ai, analyze, health) from the terminal.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("omnisearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.omnisearch/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&onDemand, "on-demand", false, "Short-lived mode: smaller history, faster state saves")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAICmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogging wires the file logger. The MCP server must keep stdout
// clean for JSON-RPC, so logs go to file (and stderr in debug mode).
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging failure must not block the tool; fall back to stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return nil
	}

	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

// styles picks colored or plain output for the attached terminal.
func styles() ui.Styles {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		return ui.NoColorStyles()
	}
	return ui.DefaultStyles()
}
