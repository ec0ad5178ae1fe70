package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/db"
)

var (
	jsonOutput      bool
	plaintextOutput bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored previews",
	Long:  "Print every stored preview with its tags, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		previews, err := a.store.All(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list previews: %w", err)
		}

		if jsonOutput {
			return outputJSON(previews)
		}
		if plaintextOutput {
			return outputPlaintext(previews)
		}
		return outputDefault(previews)
	},
}

func outputJSON(previews []db.Preview) error {
	data, err := json.MarshalIndent(previews, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(previews []db.Preview) error {
	for _, p := range previews {
		fmt.Printf("%s\t%s\t%s\n", db.Str(p.Source), db.Str(p.Title), p.URL)
	}
	return nil
}

func outputDefault(previews []db.Preview) error {
	if len(previews) == 0 {
		fmt.Println("No previews stored.")
		return nil
	}
	for _, p := range previews {
		fmt.Printf("- %s: %v\n", p.URL, p.TagList())
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	rootCmd.AddCommand(listCmd)
}
