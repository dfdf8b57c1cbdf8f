package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string

	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hyperapi",
	Short: "Hypermedia REST API server",
	Long: `hyperapi serves resources as Hydra (JSON-LD), HAL or JSON:API documents
with links, embedded relations, forms and the operations available to the
caller. The format is picked by the Accept header.

Quick start:
  hyperapi serve --seed   # Start the server with sample content
  hyperapi routes         # List the registered operations

Resources can also be managed locally:
  hyperapi api blog-postings list
  hyperapi api blog-postings get 1 -O json`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), buildInfo())
	},
}

func buildInfo() string {
	return fmt.Sprintf("hyperapi %s\n  commit:  %s\n  built:   %s\n", version, commit, buildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "hyperapi.yaml", "config file path")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(buildInfo())
	rootCmd.AddCommand(versionCmd)
}
