package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"
)

func newContext(t *testing.T, args map[string]string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("server", "", "")
	set.Int("bits", 16, "")
	set.Int("interval", 512, "")
	for name, value := range args {
		require.NoError(t, set.Set(name, value))
	}
	return cli.NewContext(nil, set, nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newContext(t, nil))
	require.NoError(t, err)
	require.Equal(t, "http://localhost", cfg.Server)
	require.Equal(t, 16, cfg.Bits)
	require.Equal(t, uint64(512), cfg.Interval)
	require.Equal(t, 5*time.Second, cfg.Timeout.Duration)
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	body := `
server = "http://ledger.internal:8080"
bits = 20
pool_retry = "10ms"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := loadConfig(newContext(t, map[string]string{"config": path}))
	require.NoError(t, err)
	require.Equal(t, "http://ledger.internal:8080", cfg.Server)
	require.Equal(t, 20, cfg.Bits)
	require.Equal(t, 10*time.Millisecond, cfg.PoolRetry.Duration)

	// Flags beat the file.
	cfg, err = loadConfig(newContext(t, map[string]string{
		"config": path,
		"server": "http://other",
		"bits":   "24",
	}))
	require.NoError(t, err)
	require.Equal(t, "http://other", cfg.Server)
	require.Equal(t, 24, cfg.Bits)
}

func TestLoadConfigRejectsBadBits(t *testing.T) {
	_, err := loadConfig(newContext(t, map[string]string{"bits": "18"}))
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(newContext(t, map[string]string{
		"config": filepath.Join(t.TempDir(), "absent.toml"),
	}))
	require.Error(t, err)
}
