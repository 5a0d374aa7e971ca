// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Solver  SolverConfig  `koanf:"solver"`
}

// AppConfig holds general application metadata.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig controls Prometheus instrument registration.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// SolverConfig controls the equilibrium assignment run: the algorithm
// family, convergence target, and iteration/concurrency bounds.
type SolverConfig struct {
	Algorithm                   string  `koanf:"algorithm"` // msa, fw, cfw, bfw
	RelativeGapTarget           float64 `koanf:"rgap_target"`
	MaxIterations               int     `koanf:"max_iter"`
	Cores                       int     `koanf:"cores"`
	StepsBelowNeededToTerminate int     `koanf:"steps_below_needed_to_terminate"`
}

// Validate checks the configuration for missing or out-of-range values.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validAlgorithms := map[string]bool{"msa": true, "fw": true, "cfw": true, "bfw": true}
	if c.Solver.Algorithm == "" {
		c.Solver.Algorithm = "bfw"
	}
	if !validAlgorithms[strings.ToLower(c.Solver.Algorithm)] {
		errs = append(errs, fmt.Sprintf("solver.algorithm must be one of: msa, fw, cfw, bfw, got %s", c.Solver.Algorithm))
	}

	if c.Solver.RelativeGapTarget < 0 {
		errs = append(errs, "solver.rgap_target must be non-negative")
	}
	if c.Solver.MaxIterations <= 0 {
		errs = append(errs, "solver.max_iter must be positive")
	}
	if c.Solver.Cores < 0 {
		errs = append(errs, "solver.cores must be non-negative")
	}
	if c.Solver.StepsBelowNeededToTerminate <= 0 {
		errs = append(errs, "solver.steps_below_needed_to_terminate must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the app environment is a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the app environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
