// Package cmd implements the cache command for asana-mailer.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local story cache",
	Long: `Inspect or clear the local story cache.

When caching is enabled, fetched task comments are stored in
.asana-mailer/stories.db keyed by each task's modified_at timestamp, so an
unchanged task costs no API call on the next run.

Examples:
  asana-mailer cache --stats   # Show cached entry count
  asana-mailer cache --clear   # Drop all cached entries`,
	RunE: runCache,
}

var (
	cacheStats bool
	cacheClear bool
)

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.Flags().BoolVar(&cacheStats, "stats", false, "Show cache statistics")
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "Remove all cached entries")
}

func runCache(cmd *cobra.Command, args []string) error {
	if !cacheStats && !cacheClear {
		return fmt.Errorf("use --stats or --clear")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storyCache, err := openStoryCache(cfg)
	if err != nil {
		return fmt.Errorf("opening story cache: %w", err)
	}
	defer storyCache.Close()

	if cacheClear {
		if err := storyCache.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
	}

	if cacheStats {
		stats, err := storyCache.GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("Cache: %s\n", storyCache.Path())
		fmt.Printf("Cached tasks: %d\n", stats.StoryCount)
	}

	return nil
}
