package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "linkstitcher",
	Short: "URL preview enrichment and feed stitching",
	Long:  "Enrich saved, bookmarked and feed URLs into previews, filter them and re-publish them as RSS feeds.",
	RunE:  runBrowse,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.linkstitcher)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.SilenceUsage = true
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored previews",
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(a.store)
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
