// Package config loads bandinterp settings from YAML, TOML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-bands/interpolate"
)

// Config holds CLI parameters. Zero values mean "unspecified" and are
// replaced by Default.
type Config struct {
	// Workers is "auto" or an integer. Counts below 1 are passed through
	// and the fitter runs them serially.
	Workers  string `json:"workers" yaml:"workers" toml:"workers"`
	Reinit   string `json:"reinit" yaml:"reinit" toml:"reinit"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// Grid is the FFT mesh used by "eval --grid" when no size is given.
	Grid [3]int `json:"grid" yaml:"grid" toml:"grid"`
	// EnergyWindow restricts fitting to bands entering [min, max] eV.
	EnergyWindow []float64 `json:"energy_window" yaml:"energy_window" toml:"energy_window"`
	PlotPoints   int       `json:"plot_points" yaml:"plot_points" toml:"plot_points"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:    "auto",
		Reinit:     interpolate.ReinitAllowed.String(),
		LogLevel:   "info",
		Grid:       [3]int{16, 16, 16},
		PlotPoints: 200,
	}
}

// Load reads a configuration file based on its extension and fills unset
// fields from Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, err
	}
	cfg.fill()
	return cfg, cfg.Validate()
}

func (c *Config) fill() {
	def := Default()
	if c.Workers == "" {
		c.Workers = def.Workers
	}
	if c.Reinit == "" {
		c.Reinit = def.Reinit
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Grid == ([3]int{}) {
		c.Grid = def.Grid
	}
	if c.PlotPoints == 0 {
		c.PlotPoints = def.PlotPoints
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := ParseWorkers(c.Workers); err != nil {
		return err
	}
	if _, err := ParseReinit(c.Reinit); err != nil {
		return err
	}
	for _, n := range c.Grid {
		if n <= 0 || n&(n-1) != 0 {
			return fmt.Errorf("grid sizes must be powers of two: %v", c.Grid)
		}
	}
	if n := len(c.EnergyWindow); n != 0 && n != 2 {
		return fmt.Errorf("energy_window needs 2 values, got %d", n)
	}
	if len(c.EnergyWindow) == 2 && c.EnergyWindow[0] >= c.EnergyWindow[1] {
		return fmt.Errorf("energy_window min must be below max: %v", c.EnergyWindow)
	}
	if c.PlotPoints < 2 {
		return fmt.Errorf("plot_points must be >= 2: %d", c.PlotPoints)
	}
	return nil
}

// ParseWorkers accepts "auto" or any integer-like scalar.
func ParseWorkers(v any) (int, error) {
	if s, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(s), "auto") {
		return interpolate.AutoWorkers, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("workers must be \"auto\" or an integer: %v", v)
	}
	return n, nil
}

// ParseReinit maps a policy name to an interpolate.ReinitPolicy.
func ParseReinit(s string) (interpolate.ReinitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allowed", "":
		return interpolate.ReinitAllowed, nil
	case "forbidden":
		return interpolate.ReinitForbidden, nil
	default:
		return 0, fmt.Errorf("unknown reinit policy: %s", s)
	}
}

// Options converts the settings into interpolate options.
func (c Config) Options() ([]interpolate.Option, error) {
	workers, err := ParseWorkers(c.Workers)
	if err != nil {
		return nil, err
	}
	reinit, err := ParseReinit(c.Reinit)
	if err != nil {
		return nil, err
	}
	return []interpolate.Option{
		interpolate.WithWorkers(workers),
		interpolate.WithReinitPolicy(reinit),
	}, nil
}
