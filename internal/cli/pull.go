package cli

import (
	"context"
	"fmt"
	"os"

	"cratepull/internal/config"
	"cratepull/internal/engine"
	"cratepull/internal/flags"

	"github.com/spf13/cobra"
)

var cfg = config.New()

var configPath string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download and extract the crates depending on --dep",
	Long: `Scan the local crates.io index clone for crates whose newest version
depends on --dep, compare against the crates already extracted under the
registry's src directory, and download plus extract the missing ones.

The registry root is resolved from $CARGO_HOME (falling back to ~/.cargo),
so a cloned index and an existing cargo cache layout are required.

Per-crate download or extraction failures are reported and skipped; they do
not abort the run.

Exit codes:
	0 = run completed (individual crate failures are warned about)
	1 = fatal error (registry, index, or inventory could not be read)

Examples:
	# Pull everything depending on insta, one request per second
	cratepull pull

	# A different target crate, gentler pacing
	cratepull pull --dep serde --throttle 2s

	# Plan only, no network traffic
	cratepull pull --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			fc, err := config.LoadFile(configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fc.Apply(cfg, cmd.Flags().Changed)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		os.Exit(engine.New(cfg).Run(context.Background()))
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)

	// Targeting
	pullCmd.Flags().StringVar(&cfg.Targeting.Dep, flags.FlagDep, cfg.Targeting.Dep, "Crate whose dependents should be pulled")
	pullCmd.Flags().BoolVar(&cfg.Targeting.DryRun, flags.FlagDryRun, false, "Resolve the download plan without fetching anything")

	// Network
	pullCmd.Flags().StringVar(&cfg.Network.UserAgent, flags.FlagUserAgent, cfg.Network.UserAgent, "User-Agent sent with every download request")
	pullCmd.Flags().DurationVar(&cfg.Network.Throttle, flags.FlagThrottle, cfg.Network.Throttle, "Minimum delay before each download request")

	// Runtime
	pullCmd.Flags().IntVar(&cfg.Runtime.Workers, flags.FlagWorkers, 0, "Index scan parallelism (0 = number of CPUs)")
	pullCmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "Path to a TOML config file (flags take precedence)")
}
