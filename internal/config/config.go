// Package config defines the aflcorr configuration and its defaults.
package config

import (
	"fmt"
	"runtime"

	"github.com/pable/aflcorr/internal/model"
)

// Config holds process configuration. Command-line flags override it.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is the root of the <Team>_R1-24 team directories.
	DataDir string `koanf:"data_dir"`

	// ResultsDir receives the CSV and JSON artifacts, one directory per team.
	ResultsDir string `koanf:"results_dir"`

	// MinGames is the default per-axis availability threshold.
	MinGames int `koanf:"min_games"`

	// Method is the default correlation method.
	Method string `koanf:"method"`

	// DropConstant drops players whose series has fewer than two distinct values.
	DropConstant bool `koanf:"drop_constant"`

	// Workers bounds parallel batch builds.
	Workers int `koanf:"workers"`

	// Rounds is the season length used to reindex player series.
	Rounds int `koanf:"rounds"`

	// Precision is the number of decimals written to CSV and printed.
	Precision int `koanf:"precision"`

	// Teams is the default team list for batch builds.
	Teams []string `koanf:"teams"`

	// Addr and MCPPath configure the tool server.
	Addr    string `koanf:"addr"`
	MCPPath string `koanf:"mcp_path"`
}

// DefaultTeams are the eighteen AFL clubs, spelled as the data directories are.
var DefaultTeams = []string{
	"Adelaide", "Brisbane", "Carlton", "Collingwood", "Essendon", "Fremantle",
	"Geelong", "GoldCoast", "GWS", "Hawthorn", "Melbourne", "NorthMelbourne",
	"PortAdelaide", "Richmond", "StKilda", "Sydney", "WestCoast", "WesternBulldogs",
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		DataDir:      "data",
		ResultsDir:   "results",
		MinGames:     12,
		Method:       string(model.Pearson),
		DropConstant: true,
		Workers:      runtime.NumCPU(),
		Rounds:       24,
		Precision:    3,
		Teams:        append([]string(nil), DefaultTeams...),
		Addr:         ":8090",
		MCPPath:      "/mcp",
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.ResultsDir == "":
		return fmt.Errorf("%w: results_dir must not be empty", ErrInvalidConfig)
	case c.MinGames <= 0:
		return fmt.Errorf("%w: min_games must be positive, got %d", ErrInvalidConfig, c.MinGames)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Rounds <= 0:
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidConfig, c.Rounds)
	case c.Precision < 0 || c.Precision > 6:
		return fmt.Errorf("%w: precision must be within 0..6, got %d", ErrInvalidConfig, c.Precision)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, ok := model.ParseMethod(c.Method); !ok {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, c.Method)
	}
	return nil
}

// DefaultMethod returns the configured method, falling back to pearson.
func (c *Config) DefaultMethod() model.Method {
	if m, ok := model.ParseMethod(c.Method); ok {
		return m
	}
	return model.Pearson
}
