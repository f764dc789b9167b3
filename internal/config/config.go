package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect run
	// behavior, keep the CLI flags in internal/cli/pull.go and the config-file
	// fields in internal/config/file.go in sync.
	Targeting Targeting
	Network   Network
	Runtime   Runtime
}

type Targeting struct {
	// Dep is the crate whose dependents are discovered and pulled (see --dep).
	Dep string

	// DryRun stops after planning: discovery and inventory filtering run, but
	// no network request is issued (see --dry-run).
	DryRun bool
}

type Network struct {
	// UserAgent is the client identifier sent with every download request,
	// per the registry's crawling policy (see --user-agent).
	UserAgent string

	// Throttle is the minimum enforced delay before each download request
	// (see --throttle). Must be >= 0; 0 disables throttling.
	Throttle time.Duration
}

type Runtime struct {
	// Workers bounds the index-scan worker pool (see --workers).
	// 0 selects the available parallelism.
	Workers int

	// Verbose enables per-request HTTP diagnostics on stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Targeting: Targeting{
			Dep: "insta",
		},
		Network: Network{
			UserAgent: "cratepull (github.com/cratepull/cratepull)",
			Throttle:  time.Second,
		},
	}
}

func (c *Config) Validate() error {
	c.Targeting.Dep = strings.TrimSpace(c.Targeting.Dep)
	if c.Targeting.Dep == "" {
		return errors.New("--dep must name a crate")
	}

	c.Network.UserAgent = strings.TrimSpace(c.Network.UserAgent)
	if c.Network.UserAgent == "" {
		return errors.New("--user-agent must not be empty (the registry crawling policy requires a descriptive client identifier)")
	}
	if c.Network.Throttle < 0 {
		return fmt.Errorf("--throttle must be >= 0, got %s", c.Network.Throttle)
	}

	if c.Runtime.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0, got %d", c.Runtime.Workers)
	}

	return nil
}
