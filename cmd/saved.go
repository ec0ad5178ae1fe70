package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/config"
	"github.com/user/linkstitcher/internal/db"
)

var savedFile string

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Ingest saved URLs and write the saved feed",
	Long:  "Add every unknown URL of the saved file as an embellished preview, write the saved feed and clear the file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path := savedFile
		if path == "" {
			path = a.cfg.Files.Saved
		}
		urls, err := readURLs(path)
		if err != nil {
			return err
		}

		ix, err := a.indexer(nil)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		stats, err := ix.AddSaved(ctx, urls)
		if err != nil {
			return fmt.Errorf("failed to add saved urls: %w", err)
		}

		if err := a.writeFeed(ctx, config.SavedFeed, db.RecentQuery{SavedOnly: true}); err != nil {
			return fmt.Errorf("failed to write saved feed: %w", err)
		}

		if err := clearURLs(path); err != nil {
			return err
		}

		fmt.Printf("Saved %d of %d URLs (%d already known)\n", stats.Stored, stats.Input, stats.Skipped)
		return nil
	},
}

func init() {
	savedCmd.Flags().StringVarP(&savedFile, "file", "f", "", "Saved URLs file (default: files.saved)")
	rootCmd.AddCommand(savedCmd)
}
