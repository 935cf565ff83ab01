// remodel is the replication CLI for the requirements-quality modeling
// experiment: prepare the analysis table from the raw tables, fit the
// Bayesian models, and evaluate treatment effects.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remodel/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "remodel",
	Short: "Replication pipeline for the requirements-quality modeling experiment",
	Long: "Remodel rebuilds the analysis of a controlled experiment on requirements-quality\n" +
		"defects: it prepares the denormalized analysis table from the three raw tables,\n" +
		"fits Bayesian hierarchical models per response variable, and evaluates the\n" +
		"posterior-predicted sign of each treatment effect.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "study.yaml", "Study configuration file")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text or json)")

	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
