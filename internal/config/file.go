package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig holds defaults loaded from an optional TOML config file. Pointer
// fields distinguish "not set" from zero values so CLI flags keep precedence.
//
// Example:
//
//	dep = "insta"
//	user_agent = "my-mirror (ops@example.com)"
//	throttle = "2s"
//	workers = 8
type FileConfig struct {
	Dep       *string   `toml:"dep"`
	UserAgent *string   `toml:"user_agent"`
	Throttle  *duration `toml:"throttle"`
	Workers   *int      `toml:"workers"`
}

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// LoadFile parses a TOML config file.
func LoadFile(path string) (*FileConfig, error) {
	var fc FileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("load config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config file %s: unknown key %q", path, undecoded[0].String())
	}
	return &fc, nil
}

// Apply overlays file values onto c, skipping any field for which overridden
// reports a CLI flag was set explicitly.
func (fc *FileConfig) Apply(c *Config, overridden func(flag string) bool) {
	if overridden == nil {
		overridden = func(string) bool { return false }
	}
	if fc.Dep != nil && !overridden("dep") {
		c.Targeting.Dep = *fc.Dep
	}
	if fc.UserAgent != nil && !overridden("user-agent") {
		c.Network.UserAgent = *fc.UserAgent
	}
	if fc.Throttle != nil && !overridden("throttle") {
		c.Network.Throttle = time.Duration(*fc.Throttle)
	}
	if fc.Workers != nil && !overridden("workers") {
		c.Runtime.Workers = *fc.Workers
	}
}
