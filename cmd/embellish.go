package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var embellishCmd = &cobra.Command{
	Use:   "embellish <url>...",
	Short: "Preview the enrichment of URLs",
	Long:  "Classify, extract and normalize each URL and print the resulting previews as JSON. Nothing is stored.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ix, err := a.indexer(nil)
		if err != nil {
			return err
		}

		previews, stats := ix.Embellish(cmd.Context(), args)
		a.log.Debug().Int("enriched", stats.Enriched).Int("failed", stats.EnrichFailed).Msg("embellish done")

		data, err := json.MarshalIndent(previews, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(embellishCmd)
}
