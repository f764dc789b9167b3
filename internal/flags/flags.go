package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config layers. Keeping these as constants helps avoid drift between Cobra
// flag wiring and the config-file overlay, which needs to ask whether a flag
// was set explicitly on the command line.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagDep    = "dep"
	FlagDryRun = "dry-run"

	// Network
	FlagUserAgent = "user-agent"
	FlagThrottle  = "throttle"

	// Runtime
	FlagWorkers = "workers"
	FlagConfig  = "config"
)
