package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var purgeOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the page cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print page cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database:          %s\n", cfg.Cache.DBPath)
		fmt.Fprintf(out, "Pages:             %d (%d missing)\n", status.PagesCount, status.MissingPagesCount)
		fmt.Fprintf(out, "Links:             %d\n", status.LinksCount)
		fmt.Fprintf(out, "Word frequencies:  %d\n", status.WordFrequenciesCount)
		fmt.Fprintf(out, "Size:              %.2f MB\n", status.CacheSizeMB)
		if !status.OldestFetch.IsZero() {
			fmt.Fprintf(out, "Oldest fetch:      %s\n", status.OldestFetch.Format(time.RFC3339))
			fmt.Fprintf(out, "Newest fetch:      %s\n", status.NewestFetch.Format(time.RFC3339))
		}
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached pages fetched before a cutoff",
	Long: `Delete cached pages fetched more than --older-than ago.
The default is the configured cache TTL. --older-than 0 deletes every page.
Word frequencies are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age := cfg.Cache.TTL
		if cmd.Flags().Changed("older-than") {
			age = purgeOlderThan
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		cutoff := time.Now().Add(-age)
		n, err := store.PurgePagesBefore(cmd.Context(), cutoff)
		if err != nil {
			return fmt.Errorf("failed to purge pages: %w", err)
		}
		logger.Info("purged cached pages", "count", n, "cutoff", cutoff)
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d pages\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd, cachePurgeCmd)

	cachePurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 0, "age of pages to delete (default is cache.ttl)")
}
