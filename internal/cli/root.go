package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          "pubmed-blogger",
		Short:        "Publishes a daily blog post about a recent medical study",
		SilenceUsage: true,
		Long: `pubmed-blogger finds one recent high-impact study on PubMed,
asks a language model for a reader-friendly summary and publishes the
result to a Blogger blog. Articles that were already posted are skipped.`,
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML config file")
}
