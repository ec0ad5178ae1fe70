package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/indexer"
)

var bookmarkFile string

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Tag and store bookmarked URLs",
	Long:  "Embellish bookmarked URLs when needed, generate tags with the LLM and store them. The file is cleared only when every URL was tagged and stored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path := bookmarkFile
		if path == "" {
			path = a.cfg.Files.Bookmarked
		}
		urls, err := readURLs(path)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			fmt.Println("No bookmarked URLs.")
			return nil
		}

		completer, err := a.completer()
		if err != nil {
			return err
		}

		ix, err := a.indexer(indexer.NewTagger(completer))
		if err != nil {
			return err
		}

		stats, err := ix.AddBookmarks(cmd.Context(), urls)
		if stats != nil {
			fmt.Printf("Bookmarked %d of %d URLs (%d tag errors)\n", stats.Stored, stats.Input, stats.TagErrors)
		}
		if err != nil {
			return fmt.Errorf("bookmarking incomplete, keeping %s: %w", path, err)
		}

		return clearURLs(path)
	},
}

func init() {
	bookmarkCmd.Flags().StringVarP(&bookmarkFile, "file", "f", "", "Bookmarked URLs file (default: files.bookmarked)")
	rootCmd.AddCommand(bookmarkCmd)
}
