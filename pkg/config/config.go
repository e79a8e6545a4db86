// Package config loads planning run configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gridplan/pkg/geo"
	"gridplan/pkg/merge"
	"gridplan/pkg/msf"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes one planning run and the API server.
type Config struct {
	Demand       DemandConfig  `yaml:"demand"`
	Network      NetworkConfig `yaml:"network"`
	Output       OutputConfig  `yaml:"output"`
	Algorithm    string        `yaml:"algorithm"`
	MinNodeCount int           `yaml:"min_node_count"`
	LogLevel     string        `yaml:"log_level"`
	Server       ServerConfig  `yaml:"server"`
}

// DemandConfig locates the demand points.
type DemandConfig struct {
	Path             string `yaml:"path"`
	BudgetProperty   string `yaml:"budget_property"`
	IDProperty       string `yaml:"id_property"`
	SpatialReference string `yaml:"spatial_reference"`
}

// NetworkConfig locates the existing network. Path may be empty.
type NetworkConfig struct {
	Path             string `yaml:"path"`
	SpatialReference string `yaml:"spatial_reference"`
	SingleNetwork    bool   `yaml:"single_network"`
}

// OutputConfig says where the planned edges go. Empty means stdout.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Demand: DemandConfig{
			BudgetProperty: "budget",
		},
		Algorithm:    msf.StrategyBoruvka.String(),
		MinNodeCount: 2,
		LogLevel:     "info",
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "30s",
			WriteTimeout: "5m",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// resolvePaths makes relative input and output paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Demand.Path, &c.Network.Path, &c.Output.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("GRIDPLAN_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if addr := os.Getenv("GRIDPLAN_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks the values needed by a planning run.
func (c *Config) Validate() error {
	if _, err := msf.ParseStrategy(c.Algorithm); err != nil {
		return fmt.Errorf("%w: algorithm: %w", ErrInvalidConfig, err)
	}
	if c.MinNodeCount < 0 {
		return fmt.Errorf("%w: min_node_count must be >= 0, got %d", ErrInvalidConfig, c.MinNodeCount)
	}
	for name, ref := range map[string]string{
		"demand.spatial_reference":  c.Demand.SpatialReference,
		"network.spatial_reference": c.Network.SpatialReference,
	} {
		if ref == "" {
			continue
		}
		if _, err := geo.ParseRef(ref); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
	}
	for name, d := range map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// Strategy returns the configured construction strategy.
func (c *Config) Strategy() msf.Strategy {
	s, err := msf.ParseStrategy(c.Algorithm)
	if err != nil {
		return msf.StrategyBoruvka
	}
	return s
}

// Mode returns the configured merge mode.
func (c *Config) Mode() merge.Mode {
	if c.Network.SingleNetwork {
		return merge.Single
	}
	return merge.Disjoint
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.WriteTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
