// Package config loads gocas settings from defaults, a YAML file, GOCAS_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/njchilds90/gocas"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GOCAS_"

// Default file names searched in the working directory.
var defaultFiles = []string{"gocas.yaml", "gocas.yml"}

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultOutput       = "text"
)

// Config is the resolved configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Engine EngineConfig `koanf:"engine"`
	Server ServerConfig `koanf:"server"`

	// Output is the CLI output format: text, json or md.
	Output string `koanf:"output"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EngineConfig bounds the engine's searches. Zero values keep the engine
// defaults.
type EngineConfig struct {
	MaxExpandPower int `koanf:"max_expand_power"`
	FactorBudget   int `koanf:"factor_budget"`
	SeriesOrder    int `koanf:"series_order"`
	MaxDepth       int `koanf:"max_depth"`
}

// ServerConfig configures the HTTP tool endpoint.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
}

// flagKeys maps flag names onto config keys where kebab-to-snake is not
// enough.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"format":           "output",
	"addr":             "server.addr",
	"read-timeout":     "server.read_timeout",
	"write-timeout":    "server.write_timeout",
	"max-body-bytes":   "server.max_body_bytes",
	"max-expand-power": "engine.max_expand_power",
	"factor-budget":    "engine.factor_budget",
	"series-order":     "engine.series_order",
	"max-depth":        "engine.max_depth",
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":               DefaultLogLevel,
		"log.format":              DefaultLogFormat,
		"engine.max_expand_power": gocas.DefaultMaxExpandPower,
		"engine.factor_budget":    gocas.DefaultFactorBudget,
		"engine.series_order":     gocas.DefaultSeriesOrder,
		"engine.max_depth":        gocas.DefaultMaxDepth,
		"server.addr":             DefaultAddr,
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.max_body_bytes":   DefaultMaxBodyBytes,
		"output":                  DefaultOutput,
	}
}

// findConfigFile returns the explicit path, or the first default file
// present in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range defaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey turns GOCAS_SERVER_MAX_BODY_BYTES into server.max_body_bytes.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Load resolves the configuration. Precedence, highest first: flags that
// were set explicitly, environment variables, the config file, defaults.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and bounds.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	switch c.Output {
	case "text", "json", "md":
	default:
		return fmt.Errorf("invalid output format %q: must be text, json or md", c.Output)
	}
	for name, v := range map[string]int{
		"engine.max_expand_power": c.Engine.MaxExpandPower,
		"engine.factor_budget":    c.Engine.FactorBudget,
		"engine.series_order":     c.Engine.SeriesOrder,
		"engine.max_depth":        c.Engine.MaxDepth,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// EngineOptions converts the engine section into engine options. Zero
// fields are skipped.
func (c *Config) EngineOptions() []gocas.Option {
	var opts []gocas.Option
	if v := c.Engine.MaxExpandPower; v > 0 {
		opts = append(opts, gocas.WithMaxExpandPower(v))
	}
	if v := c.Engine.FactorBudget; v > 0 {
		opts = append(opts, gocas.WithFactorBudget(v))
	}
	if v := c.Engine.SeriesOrder; v > 0 {
		opts = append(opts, gocas.WithSeriesOrder(v))
	}
	if v := c.Engine.MaxDepth; v > 0 {
		opts = append(opts, gocas.WithMaxDepth(v))
	}
	return opts
}

// Logger builds the slog logger described by the log section, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
