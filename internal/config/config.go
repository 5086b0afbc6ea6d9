// Package config loads flume settings. Precedence, highest first:
// flags > FLUME_* environment > flume.toml / flume.yaml > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"flume/internal/diagfmt"
	"flume/internal/lint"
	"flume/internal/sema"
	"flume/internal/trace"
)

// EnvPrefix prefixes every environment override: FLUME_DIAGNOSTICS_MAX=50.
const EnvPrefix = "FLUME_"

type ProjectConfig struct {
	Name    string   `koanf:"name"`
	Roots   []string `koanf:"roots"`
	WorkDir string   `koanf:"work_dir"`
}

type DiagnosticsConfig struct {
	Max              int    `koanf:"max"`
	WarningsAsErrors bool   `koanf:"warnings_as_errors"`
	Format           string `koanf:"format"`
}

type AnalysisConfig struct {
	BetweenPolicy string `koanf:"between_policy"`
	Jobs          int    `koanf:"jobs"`
}

type LintConfig struct {
	Enabled bool     `koanf:"enabled"`
	Disable []string `koanf:"disable"`
}

type TraceConfig struct {
	Level     string        `koanf:"level"`
	Mode      string        `koanf:"mode"`
	Output    string        `koanf:"output"`
	Format    string        `koanf:"format"`
	RingSize  int           `koanf:"ring_size"`
	Heartbeat time.Duration `koanf:"heartbeat"`
}

// Config holds every setting of one invocation.
type Config struct {
	Project     ProjectConfig     `koanf:"project"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
	Analysis    AnalysisConfig    `koanf:"analysis"`
	Lint        LintConfig        `koanf:"lint"`
	Trace       TraceConfig       `koanf:"trace"`
	Color       string            `koanf:"color"` // auto | on | off
	Timings     bool              `koanf:"timings"`

	// File is the project file that was loaded ("" when none).
	File string `koanf:"-"`
	// Root anchors relative paths from the project file.
	Root string `koanf:"-"`
}

var defaults = map[string]interface{}{
	"project.work_dir":               ".",
	"diagnostics.max":                200,
	"diagnostics.warnings_as_errors": false,
	"diagnostics.format":             "pretty",
	"analysis.between_policy":        "strict",
	"analysis.jobs":                  0,
	"lint.enabled":                   true,
	"trace.level":                    "off",
	"trace.mode":                     "ring",
	"trace.output":                   "-",
	"trace.format":                   "auto",
	"trace.ring_size":                4096,
	"color":                          "auto",
	"timings":                        false,
}

var sections = map[string]bool{
	"project": true, "diagnostics": true, "analysis": true, "lint": true, "trace": true,
}

// flagKeys maps CLI flags onto config keys. Flags missing here are not
// configuration (e.g. --config itself).
var flagKeys = map[string]string{
	"max-diagnostics":    "diagnostics.max",
	"format":             "diagnostics.format",
	"warnings-as-errors": "diagnostics.warnings_as_errors",
	"work-dir":           "project.work_dir",
	"between":            "analysis.between_policy",
	"jobs":               "analysis.jobs",
	"no-lint":            "lint.enabled",
	"disable-lint":       "lint.disable",
	"trace":              "trace.output",
	"trace-level":        "trace.level",
	"trace-mode":         "trace.mode",
	"trace-format":       "trace.format",
	"trace-heartbeat":    "trace.heartbeat",
	"color":              "color",
	"timings":            "timings",
}

// LoadOptions select the sources of Load.
type LoadOptions struct {
	// File is an explicit project file; otherwise one is searched upward
	// from StartDir.
	File     string
	StartDir string
	Flags    *pflag.FlagSet
}

// Load merges defaults, the project file, the environment and the
// explicitly set flags, then validates the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		found, ok, err := FindConfigFile(opts.StartDir)
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var flagWorkDir string
	if opts.Flags != nil {
		if f := opts.Flags.Lookup("work-dir"); f != nil && f.Changed {
			// flag paths are relative to the shell, not to the project file
			flagWorkDir, _ = filepath.Abs(f.Value.String())
		}
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			if f.Name == "no-lint" {
				return key, f.Value.String() != "true"
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.File = path
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfg.File = abs
		cfg.Root = filepath.Dir(abs)
	} else {
		start := opts.StartDir
		if start == "" {
			start = "."
		}
		root, err := filepath.Abs(start)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		cfg.Root = root
	}
	if flagWorkDir != "" {
		cfg.Project.WorkDir = flagWorkDir
	} else {
		cfg.Project.WorkDir = resolvePathRelativeTo(cfg.Project.WorkDir, cfg.Root)
	}
	cfg.Lint.Disable = splitList(cfg.Lint.Disable)
	cfg.Project.Roots = splitList(cfg.Project.Roots)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Diagnostics.Max <= 0 {
		errs = append(errs, fmt.Errorf("diagnostics.max must be positive, got %d", c.Diagnostics.Max))
	}
	if _, err := diagfmt.ParseFormat(c.Diagnostics.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := sema.ParseBetweenPolicy(c.Analysis.BetweenPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Analysis.Jobs < 0 {
		errs = append(errs, fmt.Errorf("analysis.jobs must not be negative, got %d", c.Analysis.Jobs))
	}
	if _, err := lint.New(c.Lint.Disable); err != nil {
		errs = append(errs, err)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Color) {
	case "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("invalid color mode %q (expected: auto|on|off)", c.Color))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RootFiles returns the input files: args (relative to the shell) when
// given, otherwise project.roots (relative to the project file).
func (c *Config) RootFiles(args []string) []string {
	if len(args) > 0 {
		out := make([]string, len(args))
		for i, a := range args {
			if abs, err := filepath.Abs(a); err == nil {
				a = abs
			}
			out[i] = a
		}
		return out
	}
	out := make([]string, len(c.Project.Roots))
	for i, r := range c.Project.Roots {
		out[i] = resolvePathRelativeTo(r, c.Root)
	}
	return out
}

// Between returns the parsed BETWEEN policy (validated by Load).
func (c *Config) Between() sema.BetweenPolicy {
	p, _ := sema.ParseBetweenPolicy(c.Analysis.BetweenPolicy)
	return p
}

// OutputFormat returns the parsed diagnostics format (validated by Load).
func (c *Config) OutputFormat() diagfmt.Format {
	f, _ := diagfmt.ParseFormat(c.Diagnostics.Format)
	return f
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOMLParser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file %s (want .toml, .yaml or .yml)", path)
	}
}

// envKey maps FLUME_DIAGNOSTICS_WARNINGS_AS_ERRORS to
// diagnostics.warnings_as_errors: only the first underscore after a known
// section separates levels.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if section, rest, ok := strings.Cut(key, "_"); ok && sections[section] {
		return section + "." + rest
	}
	return key
}

// splitList expands comma-separated entries coming from the environment.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Getwd is os.Getwd with "." as the fallback.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return "."
	}
	return wd
}
