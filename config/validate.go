package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the daemon cannot start
// with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress required")
	}
	switch strings.TrimSpace(c.Backend) {
	case BackendLevelDB, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("config: unknown Backend %q", c.Backend)
	}
	if strings.TrimSpace(c.Backend) != BackendMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required for backend %q", c.Backend)
	}
	if _, err := c.ByteCost(); err != nil {
		return err
	}
	for _, token := range c.WhitelistedTokens {
		if strings.TrimSpace(token) == "" {
			return fmt.Errorf("config: blank token in WhitelistedTokens")
		}
	}
	return nil
}
