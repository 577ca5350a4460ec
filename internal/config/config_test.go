package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gocas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", DefaultLogLevel, "")
	fs.String("format", DefaultOutput, "")
	fs.String("addr", DefaultAddr, "")
	fs.Int("series-order", gocas.DefaultSeriesOrder, "")
	fs.Duration("read-timeout", 15*time.Second, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, gocas.DefaultMaxExpandPower, cfg.Engine.MaxExpandPower)
	assert.Equal(t, gocas.DefaultFactorBudget, cfg.Engine.FactorBudget)
	assert.Equal(t, gocas.DefaultSeriesOrder, cfg.Engine.SeriesOrder)
	assert.Equal(t, gocas.DefaultMaxDepth, cfg.Engine.MaxDepth)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "text", cfg.Output)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
engine:
  series_order: 10
server:
  addr: 127.0.0.1:9090
  read_timeout: 2s
output: json
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Engine.SeriesOrder)
	assert.Equal(t, gocas.DefaultMaxDepth, cfg.Engine.MaxDepth, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "engine:\n  series_order: 10\nserver:\n  addr: ':1000'\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("GOCAS_ENGINE_SERIES_ORDER", "12")
		t.Setenv("GOCAS_SERVER_MAX_BODY_BYTES", "4096")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Engine.SeriesOrder)
		assert.Equal(t, int64(4096), cfg.Server.MaxBodyBytes)
		assert.Equal(t, ":1000", cfg.Server.Addr)
	})

	t.Run("changed flags override env", func(t *testing.T) {
		t.Setenv("GOCAS_ENGINE_SERIES_ORDER", "12")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--series-order=3", "--format=json", "--read-timeout=1m"}))

		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Engine.SeriesOrder)
		assert.Equal(t, "json", cfg.Output)
		assert.Equal(t, time.Minute, cfg.Server.ReadTimeout)
	})

	t.Run("unchanged flags do not override", func(t *testing.T) {
		fs := testFlags()
		require.NoError(t, fs.Parse(nil))

		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Engine.SeriesOrder)
		assert.Equal(t, ":1000", cfg.Server.Addr)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		errSubstr string
	}{
		{"log level", "log:\n  level: loud\n", "invalid log level"},
		{"log format", "log:\n  format: xml\n", "invalid log format"},
		{"output", "output: csv\n", "invalid output format"},
		{"negative bound", "engine:\n  max_depth: -1\n", "engine.max_depth must not be negative"},
		{"body limit", "server:\n  max_body_bytes: 0\n", "server.max_body_bytes must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.max_body_bytes", envKey("GOCAS_SERVER_MAX_BODY_BYTES"))
	assert.Equal(t, "log.level", envKey("GOCAS_LOG_LEVEL"))
	assert.Equal(t, "output", envKey("GOCAS_OUTPUT"))
}

func TestEngineOptions(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{MaxExpandPower: 2}}
	opts := cfg.EngineOptions()
	require.Len(t, opts, 1)

	e := gocas.NewEngine(gocas.NewRegistry(), opts...)
	x := e.MustSymbol("x")
	p := e.Pow(e.Add(x, e.Int(1)), e.Int(3))
	assert.Equal(t, p, e.Expand(p), "powers above the bound stay unexpanded")

	q := e.Pow(e.Add(x, e.Int(1)), e.Int(2))
	assert.Equal(t, "x^2 + 2*x + 1", e.String(e.Expand(q)))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}
	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json handler: %s", out)
	assert.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	cfg = &Config{Log: LogConfig{Level: "debug", Format: "text"}}
	cfg.Logger(&buf).Debug("traced")
	assert.Contains(t, buf.String(), "msg=traced")
}
