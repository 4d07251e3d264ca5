package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.Equal(t, BackendLevelDB, cfg.Backend)
	require.Equal(t, 256, cfg.TransferQueueSize)
	_, err = os.Stat(path)
	require.NoError(t, err, "default config file should be written")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, reloaded.RPCAddress)
}

func TestLoadParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
RPCAddress = "0.0.0.0:9000"
Backend = "memory"
StorageByteCost = "5"
WhitelistedTokens = ["wrapped.near", "usdc.near"]
TransferQueueSize = 8
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Backend)
	require.Len(t, cfg.WhitelistedTokens, 2)

	cost, err := cfg.ByteCost()
	require.NoError(t, err)
	require.Zero(t, cost.Cmp(big.NewInt(5)))
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("Backend = \"redis\"\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestByteCostRejectsGarbage(t *testing.T) {
	cfg := &Config{StorageByteCost: "12abc"}
	_, err := cfg.ByteCost()
	require.Error(t, err)
	cfg.StorageByteCost = "-3"
	_, err = cfg.ByteCost()
	require.Error(t, err)
}
