// Package bpconfig loads pool and store configuration, following the
// reference ticket-tracker's config.go: a HuJSON (comments allowed) or YAML
// file layered over the defaults, with [Config.ApplyDefaults] filling any
// field left empty. It has no CLI-flag override layer.
package bpconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// StoreConfig mirrors spec §6's "Store configuration attrs":
// { root_path:string|null, cache_size:int|0 }, defaults ".pfile", 16384.
type StoreConfig struct {
	RootPath  string `json:"root_path"`
	CacheSize int    `json:"cache_size"`
}

// PoolConfig sizes the block arena (spec §4.B / §3 "Pool").
type PoolConfig struct {
	// RecordCount is the number of fixed-size records carved from the
	// pool's contiguous buffer at create time.
	RecordCount int `json:"record_count"`
}

// Config is the top-level configuration for a bplib node's memory and
// storage subsystems.
type Config struct {
	Pool  PoolConfig  `json:"pool"`
	Store StoreConfig `json:"store"`
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		Pool: PoolConfig{
			RecordCount: 4096,
		},
		Store: StoreConfig{
			RootPath:  ".pfile",
			CacheSize: 16384,
		},
	}
}

// LoadHuJSON reads a HuJSON (JSON-with-comments) config file at path,
// layering it over [DefaultConfig]. A missing file is not an error; the
// defaults are returned unchanged, matching the reference repo's "global
// config is optional" precedence rule.
func LoadHuJSON(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	if err := json.Unmarshal(standard, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %q: %w", path, err)
	}

	return cfg, nil
}

// LoadYAML reads a plain YAML config file, for deployments that prefer YAML
// over HuJSON. Layered over [DefaultConfig] the same way as [LoadHuJSON].
func LoadYAML(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %q: %w", path, err)
	}

	return cfg, nil
}

// ApplyDefaults fills zero fields left empty after loading, so a partial
// config file doesn't leave RootPath/CacheSize unset.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()

	if c.Store.RootPath == "" {
		c.Store.RootPath = def.Store.RootPath
	}

	if c.Store.CacheSize <= 0 {
		c.Store.CacheSize = def.Store.CacheSize
	}

	if c.Pool.RecordCount <= 0 {
		c.Pool.RecordCount = def.Pool.RecordCount
	}
}
