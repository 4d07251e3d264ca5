package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported storage backends.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
	BackendMemory  = "memory"
)

// DefaultStorageByteCost is the per-byte storage price applied when the
// config does not set one.
const DefaultStorageByteCost = "10000000000000000000"

type Config struct {
	RPCAddress        string   `toml:"RPCAddress"`
	DataDir           string   `toml:"DataDir"`
	Backend           string   `toml:"Backend"`
	StorageByteCost   string   `toml:"StorageByteCost"`
	WhitelistedTokens []string `toml:"WhitelistedTokens"`
	TransferQueueSize int      `toml:"TransferQueueSize"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ByteCost parses the configured per-byte storage price.
func (c *Config) ByteCost() (*big.Int, error) {
	trimmed := strings.TrimSpace(c.StorageByteCost)
	if trimmed == "" {
		trimmed = DefaultStorageByteCost
	}
	cost, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || cost.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid StorageByteCost %q", c.StorageByteCost)
	}
	return cost, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./ledger-data"
	}
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = BackendLevelDB
	}
	if strings.TrimSpace(cfg.StorageByteCost) == "" {
		cfg.StorageByteCost = DefaultStorageByteCost
	}
	if cfg.WhitelistedTokens == nil {
		cfg.WhitelistedTokens = []string{}
	}
	if cfg.TransferQueueSize <= 0 {
		cfg.TransferQueueSize = 256
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
