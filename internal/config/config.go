// Package config loads runtime settings for the CLI and the HTTP service.
//
// Sources, lowest precedence first: built-in defaults, an optional config
// file (YAML, TOML or JSON), a .env file in the working directory, and
// environment variables prefixed with OPTION_GREEKS_ (dots become
// underscores, e.g. OPTION_GREEKS_SOLVER_TOLERANCE). The Massive API key is
// also read from MASSIVE_API_KEY.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/contactkeval/option-greeks/pkg/pricing"
)

const envPrefix = "OPTION_GREEKS"

// Config is the full application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Solver  SolverConfig  `mapstructure:"solver"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Report  ReportConfig  `mapstructure:"report"`
	Massive MassiveConfig `mapstructure:"massive"`
}

// LogConfig controls logger verbosity (0=error .. 3=trace).
type LogConfig struct {
	Verbosity int `mapstructure:"verbosity"`
}

// SolverConfig tunes the implied volatility solver.
type SolverConfig struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// HTTPConfig configures the pricing service.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// BatchConfig configures the CSV batch evaluator.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// ReportConfig configures how results are rounded for output.
type ReportConfig struct {
	Decimals int32 `mapstructure:"decimals"`
}

// MassiveConfig holds credentials for the Massive market data API.
type MassiveConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Solver returns the pricing solver described by c.
func (c SolverConfig) Solver() pricing.Solver {
	return pricing.Solver{Tolerance: c.Tolerance, MaxIterations: c.MaxIterations}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.verbosity", 1)
	v.SetDefault("solver.tolerance", pricing.DefaultSolver.Tolerance)
	v.SetDefault("solver.max_iterations", pricing.DefaultSolver.MaxIterations)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("batch.workers", 8)
	v.SetDefault("report.decimals", 8)
	v.SetDefault("massive.api_key", "")
}

// Load reads the configuration. An empty path searches for
// option-greeks.{yaml,toml,json} in the working directory; a missing file
// is not an error in that case.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("massive.api_key", envPrefix+"_MASSIVE_API_KEY", "MASSIVE_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("option-greeks")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the rest of the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case !(c.Solver.Tolerance > 0):
		return fmt.Errorf("solver.tolerance must be positive, got %v", c.Solver.Tolerance)
	case c.Solver.MaxIterations < 1:
		return fmt.Errorf("solver.max_iterations must be at least 1, got %d", c.Solver.MaxIterations)
	case c.Batch.Workers < 1:
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	case c.Report.Decimals < 0:
		return fmt.Errorf("report.decimals must not be negative, got %d", c.Report.Decimals)
	}
	return nil
}
