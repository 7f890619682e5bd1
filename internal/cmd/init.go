// Package cmd implements the init command for asana-mailer.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/palantir/asana-mailer/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .asana-mailer directory and config file",
	Long: `Initialize the .asana-mailer directory with a default config file.

The config file holds the Asana project and access token, report filters,
template settings, and mail delivery settings. Every value can also be
overridden on the command line; the access token can come from the
ASANA_ACCESS_TOKEN environment variable instead.

Examples:
  asana-mailer init    # Write .asana-mailer/config.yaml in the current directory`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	path, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}

	relPath, relErr := filepath.Rel(cwd, path)
	if relErr != nil {
		relPath = path
	}
	fmt.Printf("Wrote default config to %s\n", relPath)
	fmt.Println("Edit it to set your Asana project and access token.")

	return nil
}
