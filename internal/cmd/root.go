// Package cmd contains all CLI commands for asana-mailer.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of asana-mailer
	Version = "1.0.0"

	// Global flags
	verbose    bool
	configPath string
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "asana-mailer",
	Short: "Email status reports generated from Asana projects",
	Long: `asana-mailer turns an Asana project into a readable status report.

It fetches the project's tasks and comments, groups tasks into the sections
marked out on the board (a task whose name ends with ':' starts a section),
applies optional tag and section filters, and renders the result as HTML and
markdown. The report is delivered by email, or written to files when no mail
recipients are configured.

Main capabilities:
  - Generate and deliver a project status report
  - Cache fetched comments locally to cut repeat API calls
  - Serve report tools over MCP for AI agent integration

Examples:
  asana-mailer init                          # Write a default config file
  asana-mailer generate 123456789            # Report for a project
  asana-mailer generate --filter-tags weekly # Only tasks tagged 'weekly'
  asana-mailer cache --stats                 # Inspect the story cache

See 'asana-mailer <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .asana-mailer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

// buildLogger constructs the logger shared by all commands. Logs go to
// stderr, and additionally to --log-file when set. The returned closer
// releases the log file.
func buildLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = func() { f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}
