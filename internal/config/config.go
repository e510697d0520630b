// Package config loads runtime configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"shipcast/internal/growth"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Forecast ForecastConfig `yaml:"forecast"`
	Runs     RunsConfig     `yaml:"runs"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// ForecastConfig drives the adjustment pipeline.
type ForecastConfig struct {
	HorizonDays    int     `yaml:"horizonDays"`
	GrowthFloor    float64 `yaml:"growthFloor"`
	NegativePolicy string  `yaml:"negativePolicy"`
}

// RunsConfig controls the analysis run store.
type RunsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 5 * time.Minute,
		},
		Forecast: ForecastConfig{
			HorizonDays:    31,
			GrowthFloor:    -12,
			NegativePolicy: string(growth.PolicyRandom),
		},
		Runs: RunsConfig{
			TTL:           2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH or configs/config.yaml) and environment overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("GROWTH_FLOOR"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Forecast.GrowthFloor = parsed
		}
	}
	if v := os.Getenv("NEGATIVE_POLICY"); v != "" {
		cfg.Forecast.NegativePolicy = v
	}
}

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return fmt.Errorf("http.address must be set")
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizonDays must be positive, got %d", c.Forecast.HorizonDays)
	}
	if c.Forecast.GrowthFloor > 0 {
		return fmt.Errorf("forecast.growthFloor must not be positive, got %v", c.Forecast.GrowthFloor)
	}
	if _, err := growth.ParsePolicy(c.Forecast.NegativePolicy); err != nil {
		return err
	}
	if c.Runs.TTL <= 0 || c.Runs.SweepInterval <= 0 {
		return fmt.Errorf("runs.ttl and runs.sweepInterval must be positive")
	}
	return nil
}
