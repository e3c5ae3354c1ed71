// Package config defines the configuration surface for the exchange demo
// driver. Config is loaded from a YAML file (default: configs/config.yaml)
// with overrides via SPOTEX_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig tunes the random order-flow demo driver (SPEC_FULL §4).
// It has no bearing on the exchange core itself — the core's asset and
// trading-pair taxonomy is a closed enum (pkg/spottypes), not configurable.
type SimulationConfig struct {
	Users          int     `mapstructure:"users"`
	Orders         int     `mapstructure:"orders"`
	Seed           int64   `mapstructure:"seed"`
	InitialUSDT    float64 `mapstructure:"initial_usdt"`
	InitialBTC     float64 `mapstructure:"initial_btc"`
	InitialETH     float64 `mapstructure:"initial_eth"`
	MarketOrderPct float64 `mapstructure:"market_order_pct"`
}

// LoggingConfig controls the demo driver's slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SPOTEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("simulation.users", 5)
	v.SetDefault("simulation.orders", 50)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.initial_usdt", 100000.0)
	v.SetDefault("simulation.initial_btc", 10.0)
	v.SetDefault("simulation.initial_eth", 50.0)
	v.SetDefault("simulation.market_order_pct", 0.2)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			var cfg Config
			if uerr := v.Unmarshal(&cfg); uerr != nil {
				return nil, fmt.Errorf("unmarshal default config: %w", uerr)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Simulation.Users <= 0 {
		return fmt.Errorf("simulation.users must be > 0")
	}
	if c.Simulation.Orders <= 0 {
		return fmt.Errorf("simulation.orders must be > 0")
	}
	if c.Simulation.InitialUSDT < 0 || c.Simulation.InitialBTC < 0 || c.Simulation.InitialETH < 0 {
		return fmt.Errorf("simulation initial balances must be >= 0")
	}
	if c.Simulation.MarketOrderPct < 0 || c.Simulation.MarketOrderPct > 1 {
		return fmt.Errorf("simulation.market_order_pct must be within [0, 1]")
	}
	return nil
}
