// Package cmd implements the webcrawler command-line interface: a root
// command carrying shared flags plus a single crawl subcommand.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webcrawler",
		Short: "A configurable, multi-threaded web crawler.",
		Long: `webcrawler fetches a seed URL, extracts hyperlinks, and schedules the
discovered links for further fetching, subject to admission and
continuation rules (page/domain caps, timeout, external-page policy).`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (optional; env vars and defaults apply otherwise)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
