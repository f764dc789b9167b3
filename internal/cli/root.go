package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cratepull",
	Short: "Mirror every crate that depends on a given crate into the local cargo registry",
	Long: `cratepull scans the local crates.io index clone for crates whose newest
version depends on a given crate, then downloads and extracts the ones
missing from the local cargo registry.

Downloads are strictly sequential with a fixed delay before every request,
per the crates.io crawling policy.

Examples:
	# Show available commands and global flags
	cratepull --help

	# Pull every crate depending on insta
	cratepull pull

	# See what would be downloaded without touching the network
	cratepull pull --dep serde --dry-run

	# Print build info
	cratepull version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every registry HTTP request)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
