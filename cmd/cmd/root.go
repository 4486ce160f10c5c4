// Package cmd wires the sportsfeed worker, migrations, source onboarding,
// and search CLI into a single cobra command tree, following the
// teacher's cmd/cmd root-command layout.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sportsfeed/internal/config"
)

var cfgFile string

// rootCmd is the base command when sportsfeed is called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "sportsfeed",
	Short: "Sports content discovery, ingestion, and search pipeline",
	Long: `sportsfeed runs the continuous crawl -> extract -> dedupe -> score ->
persist pipeline over sports sources, feeds a trending-term detector back
into discovery, and serves a ranked, filterable search API over the
resulting corpus.

Run 'sportsfeed serve' to start the worker loop, 'sportsfeed migrate up'
to initialize the database schema, and 'sportsfeed search' to query the
accepted corpus from the command line.`,
}

// Execute adds all child commands to rootCmd and runs it. Called once
// by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml searched in ., ./config, /etc/sportsfeed)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(searchCmd)
}

// loadConfig loads configuration honoring the --config flag, per the
// teacher's config.Load(cfgFile) call sites.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
