package config

import (
	"os"
	"strconv"
)

// applyEnvOverrides layers environment variables on top of whatever was
// loaded from YAML, mirroring the teacher's precedence-chain convention
// (later overrides win only if the env var is actually set).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REFLEXSUB_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("REFLEXSUB_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v, ok := parseBoolEnv("REFLEXSUB_LOG_DEV"); ok {
		c.Logging.Development = v
	}
	if v, ok := parseBoolEnv("REFLEXSUB_EPOCH_ALLOW_CLEAR"); ok {
		c.Epoch.AllowClear = v
	}
}

func parseBoolEnv(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
