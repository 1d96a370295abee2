// Package config loads the command-line configuration from defaults, an
// optional TOML file, NEUROGRAPH_* environment variables, and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when --config is not given
const DefaultFile = "neurograph.toml"

// EnvPrefix prefixes environment variables, e.g. NEUROGRAPH_OUT_DIR=out
const EnvPrefix = "NEUROGRAPH_"

// Config holds all configuration for the application
type Config struct {
	Scenario   string `koanf:"scenario"` // Built-in name or YAML path
	Seed       uint64 `koanf:"seed"`     // 0 derives a seed from the clock
	Workers    int    `koanf:"workers"`  // 0 uses GOMAXPROCS
	BruteForce bool   `koanf:"brute-force"`

	OutDir string `koanf:"out-dir"`
	Out    string `koanf:"out"` // Explicit file name; empty uses the scenario template
	Author string `koanf:"author"`

	Counts         []string `koanf:"counts"` // batch=N overrides
	ReleaseRadius  float64  `koanf:"release-radius"`
	EffectRadius   float64  `koanf:"effect-radius"`
	AffectedRadius float64  `koanf:"affected-radius"`

	Serve   bool `koanf:"serve"`
	Port    int  `koanf:"port"`
	Watch   bool `koanf:"watch"`
	Summary bool `koanf:"summary"`

	JSONLogs   bool   `koanf:"json-logs"`
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
}

func defaults() map[string]any {
	return map[string]any{
		"scenario":        "glutamate",
		"seed":            0,
		"workers":         0,
		"brute-force":     false,
		"out-dir":         "data/synthetic",
		"out":             "",
		"author":          "",
		"counts":          []string{},
		"release-radius":  0.0,
		"effect-radius":   0.0,
		"affected-radius": 0.0,
		"serve":           false,
		"port":            8080,
		"watch":           false,
		"summary":         true,
		"json-logs":       false,
		"verbosity":       "",
		"verbose":         0,
	}
}

// NewFlagSet defines every configuration flag. Flag defaults mirror the
// built-in defaults; only flags set on the command line override other layers.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", "", "Path to a TOML config file (default "+DefaultFile+" if present)")
	f.StringP("scenario", "s", "glutamate", "Built-in scenario ("+strings.Join(scenario.Builtins(), ", ")+") or path to a YAML scenario")
	f.Uint64("seed", 0, "Random seed; 0 derives one from the clock")
	f.Int("workers", 0, "Parallel workers; 0 uses all CPUs")
	f.Bool("brute-force", false, "Use the all-pairs proximity scan instead of the spatial grid")
	f.StringP("out-dir", "o", "data/synthetic", "Directory for the exported document")
	f.String("out", "", "Output file name; default expands the scenario's template")
	f.String("author", "", "Author recorded in the document metadata")
	f.StringSlice("counts", nil, "Secondary count overrides as batch=N (repeatable)")
	f.Float64("release-radius", 0, "Override the release radius; 0 keeps the scenario value")
	f.Float64("effect-radius", 0, "Override the effect radius; 0 keeps the scenario value")
	f.Float64("affected-radius", 0, "Override the affected radius; 0 keeps the scenario value")
	f.Bool("serve", false, "Serve the snapshot over HTTP after generating")
	f.Int("port", 8080, "Port for the HTTP API (with --serve)")
	f.Bool("watch", false, "Regenerate when the scenario file changes")
	f.Bool("summary", true, "Print a summary report after generating")
	f.Bool("json-logs", false, "Log as JSON instead of the compact console format")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file. The default file is optional; an explicit one must exist.
	path, explicit := DefaultFile, false
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path, explicit = p, true
		}
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// NEUROGRAPH_OUT_DIR=out sets out-dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that do not depend on the scenario
func (c *Config) Validate() error {
	var errs []error
	if c.Scenario == "" {
		errs = append(errs, errors.New("scenario must be set"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1..65535, got %d", c.Port))
	}
	radii := []struct {
		name  string
		value float64
	}{
		{"release-radius", c.ReleaseRadius},
		{"effect-radius", c.EffectRadius},
		{"affected-radius", c.AffectedRadius},
	}
	for _, r := range radii {
		if r.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %g", r.name, r.value))
		}
	}
	if c.Watch && scenario.IsBuiltin(c.Scenario) {
		errs = append(errs, fmt.Errorf("--watch needs a scenario file, %q is built in", c.Scenario))
	}
	if _, err := c.Overrides(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", scenario.ErrInvalidConfig, err)
	}
	return nil
}

// Overrides converts the count and radius settings into scenario overrides.
// Entries may also be comma separated, as they arrive from the environment.
func (c *Config) Overrides() (scenario.Overrides, error) {
	o := scenario.Overrides{
		ReleaseRadius:  c.ReleaseRadius,
		EffectRadius:   c.EffectRadius,
		AffectedRadius: c.AffectedRadius,
	}

	for _, entry := range c.Counts {
		for _, item := range strings.Split(entry, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			name, value, ok := strings.Cut(item, "=")
			if !ok || name == "" {
				return o, fmt.Errorf("count override %q must look like batch=N", item)
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return o, fmt.Errorf("count override %q needs a non-negative integer", item)
			}
			if o.Counts == nil {
				o.Counts = make(map[string]int)
			}
			o.Counts[name] = n
		}
	}

	return o, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
