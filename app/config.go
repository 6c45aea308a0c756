package main

import (
	"time"

	"blockmint"
	bc "blockmint/blockchain"
	"blockmint/mining"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
	"gopkg.in/urfave/cli.v1"
)

// Config holds the agent settings. Command-line flags override file
// values, which override the defaults.
type Config struct {
	Server        string   `toml:"server"`
	Bits          int      `toml:"bits"`
	Interval      uint64   `toml:"recheck_interval"`
	Timeout       duration `toml:"timeout"`
	PoolRetry     duration `toml:"pool_retry"`
	SubmitBackoff duration `toml:"submit_backoff"`
}

// duration lets TOML files carry values like "5s" or "100ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func defaultConfig() Config {
	return Config{
		Server:        "http://localhost",
		Bits:          bc.DefaultBits,
		Interval:      mining.DefaultRecheckInterval,
		Timeout:       duration{blockmint.DefaultTimeout},
		PoolRetry:     duration{mining.DefaultPoolRetry},
		SubmitBackoff: duration{mining.DefaultSubmitBackoff},
	}
}

// loadConfig builds the effective configuration for a command
// invocation: defaults, then the optional TOML file, then flags.
func loadConfig(c *cli.Context) (Config, error) {
	cfg := defaultConfig()
	if path := c.GlobalString("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, xerrors.Errorf("read config %s: %v", path, err)
		}
	}
	if server := c.GlobalString("server"); server != "" {
		cfg.Server = server
	}
	if c.IsSet("bits") {
		cfg.Bits = c.Int("bits")
	}
	if c.IsSet("interval") {
		cfg.Interval = uint64(c.Int("interval"))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Server == "" {
		return xerrors.New("server must not be empty")
	}
	if cfg.Bits <= 0 || cfg.Bits > 256 {
		return xerrors.Errorf("bits out of range: %d", cfg.Bits)
	}
	if cfg.Bits%4 != 0 {
		return xerrors.Errorf("bits must be a multiple of 4: %d", cfg.Bits)
	}
	if cfg.Interval == 0 {
		return xerrors.New("recheck_interval must be positive")
	}
	if cfg.Timeout.Duration <= 0 {
		return xerrors.New("timeout must be positive")
	}
	return nil
}
