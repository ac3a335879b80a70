// Package config loads process configuration from the environment via
// github.com/kelseyhightower/envconfig, the way the original aggregator
// reads its RocksDB path and server options from env vars at startup.
package config

import "github.com/kelseyhightower/envconfig"

// Config is the aggregator's process-wide configuration.
type Config struct {
	// StoreDir is the on-disk path for the embedded KV store.
	StoreDir string `envconfig:"STORE_DIR" default:"./data/cota-smt"`
	// Debug switches obslog to a human-readable development logger.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Load reads Config from environment variables prefixed COTA_SMT_, e.g.
// COTA_SMT_STORE_DIR.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("cota_smt", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
