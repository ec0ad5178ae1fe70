package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/config"
	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/filter"
	"github.com/user/linkstitcher/internal/indexer"
	"github.com/user/linkstitcher/internal/llm"
)

var feedCmd = &cobra.Command{
	Use:   "feed [name...]",
	Short: "Ingest remote feeds and write the filtered local feeds",
	Long:  "Read each configured feed profile (all of them when no name is given), keep new items that pass the keyword and topic filter, and write the profile's local RSS file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := selectFeeds(a.cfg, args)
		if err != nil {
			return err
		}

		var completer llm.Completer
		if needsTopics(profiles) {
			pool, err := a.completer()
			if err != nil {
				return err
			}
			completer = pool
		}

		ix, err := a.indexer(nil)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		for _, profile := range profiles {
			smart := filter.New(filter.Config{}, completer)
			smart.AddKeywords(profile.Keywords...)
			smart.AddTopics(profile.Topics...)

			stats, err := ix.IngestFeed(ctx, indexer.FeedSource{
				URL:    profile.URL,
				Source: profile.Source,
				Filter: smart,
			})
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", profile.Name, err)
			}

			if err := a.writeFeed(ctx, profile, db.RecentQuery{Source: profile.Source}); err != nil {
				return fmt.Errorf("failed to write %s feed: %w", profile.Name, err)
			}

			fmt.Printf("%s: %d new, %d kept, %d rejected, %d filter errors\n",
				profile.Name, stats.Input-stats.Skipped, stats.Stored, stats.Rejected, stats.FilterErrors)
		}
		return nil
	},
}

func selectFeeds(cfg *config.Config, names []string) ([]config.FeedConfig, error) {
	if len(names) == 0 {
		return cfg.Feeds, nil
	}
	profiles := make([]config.FeedConfig, 0, len(names))
	for _, name := range names {
		profile, ok := cfg.Feed(name)
		if !ok {
			return nil, fmt.Errorf("unknown feed: %s", name)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// needsTopics reports whether any profile runs the LLM topic phase.
func needsTopics(profiles []config.FeedConfig) bool {
	for _, profile := range profiles {
		if len(profile.Topics) > 0 {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(feedCmd)
}
