// Package config loads dashboard settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Defaults (Default)
//  2. A YAML or TOML file, chosen by extension
//  3. GHGDASH_* environment variables
//
// The merged result is validated against an embedded CUE schema before use.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ghgdash/internal/table"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GHGDASH_"

//go:embed schema.cue
var schemaSrc string

// Config is the complete dashboard configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server" json:"server" envPrefix:"SERVER_"`
	Data       DataConfig       `yaml:"data" toml:"data" json:"data" envPrefix:"DATA_"`
	Regression RegressionConfig `yaml:"regression" toml:"regression" json:"regression" envPrefix:"REGRESSION_"`
	Panels     PanelsConfig     `yaml:"panels" toml:"panels" json:"panels" envPrefix:"PANELS_"`
	Trace      TraceConfig      `yaml:"trace" toml:"trace" json:"trace" envPrefix:"TRACE_"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr" toml:"addr" json:"addr" env:"ADDR"`
	DevMode   bool   `yaml:"dev_mode" toml:"dev_mode" json:"dev_mode" env:"DEV_MODE"`
	RenderSVG bool   `yaml:"render_svg" toml:"render_svg" json:"render_svg" env:"RENDER_SVG"`
}

// DataConfig names the emission table files.
type DataConfig struct {
	CO2 string `yaml:"co2" toml:"co2" json:"co2" env:"CO2"`
	CH4 string `yaml:"ch4" toml:"ch4" json:"ch4" env:"CH4"`
}

// RegressionConfig controls the forecast overlay.
//
// Horizon is the number of periods the line is extrapolated. Window caps
// the length of the "Predicted" trace. With PredictedOnly the trace holds
// forecast points only; without it the trace is the last Window points of
// history plus forecast.
type RegressionConfig struct {
	Horizon       int  `yaml:"horizon" toml:"horizon" json:"horizon" env:"HORIZON"`
	Window        int  `yaml:"window" toml:"window" json:"window" env:"WINDOW"`
	PredictedOnly bool `yaml:"predicted_only" toml:"predicted_only" json:"predicted_only" env:"PREDICTED_ONLY"`
}

// PanelsConfig holds the initial selections.
type PanelsConfig struct {
	OverviewDefaults  []string `yaml:"overview_defaults" toml:"overview_defaults" json:"overview_defaults" env:"OVERVIEW_DEFAULTS" envSeparator:","`
	RegressionDefault string   `yaml:"regression_default" toml:"regression_default" json:"regression_default" env:"REGRESSION_DEFAULT"`
}

// TraceConfig enables the interaction trace log. Empty DB disables it.
type TraceConfig struct {
	DB string `yaml:"db" toml:"db" json:"db" env:"DB"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8050",
			RenderSVG: true,
		},
		Data: DataConfig{
			CO2: filepath.Join("clean", "co2.csv"),
			CH4: filepath.Join("clean", "ch4.csv"),
		},
		Regression: RegressionConfig{
			Horizon:       10,
			Window:        50,
			PredictedOnly: true,
		},
		Panels: PanelsConfig{
			OverviewDefaults:  []string{"Germany", "United States", "China"},
			RegressionDefault: "Germany",
		},
	}
}

// Load reads path (optional) over the defaults, applies the process
// environment and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment.
// A nil environ means the process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFile decodes a YAML or TOML file into cfg, rejecting unknown keys.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg *Config) error {
	c := *cfg
	if c.Panels.OverviewDefaults == nil {
		c.Panels.OverviewDefaults = []string{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	val := ctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

// Sources maps table names to their files.
func (c *Config) Sources() map[string]string {
	return map[string]string{
		table.CO2: c.Data.CO2,
		table.CH4: c.Data.CH4,
	}
}
