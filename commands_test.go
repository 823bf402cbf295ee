package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-recycler/config"
	"github.com/miosa/osa-recycler/style"
)

// execute runs the root command with a temporary HOME and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func tempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestVersionFlag(t *testing.T) {
	tempHome(t)
	out, err := execute(t, "-V")
	require.NoError(t, err)
	assert.Equal(t, "osa-recycler dev\n", out)
}

func TestConfigCmd_FlagsOverrideDefaults(t *testing.T) {
	tempHome(t)
	out, err := execute(t, "config", "--strategy", "staggered", "--span", "3", "--workers", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: staggered")
	assert.Contains(t, out, "span_count: 3")
	assert.Contains(t, out, "workers: 8")
	assert.Contains(t, out, "range_ratio: 1")
}

func TestConfigCmd_RejectsInvalidFlag(t *testing.T) {
	tempHome(t)
	_, err := execute(t, "config", "--strategy", "hexagonal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestConfigCmd_MetricsAddrEnablesPrometheus(t *testing.T) {
	tempHome(t)
	out, err := execute(t, "config", "--metrics-addr", "127.0.0.1:9999")
	require.NoError(t, err)
	assert.Contains(t, out, "metric_exporter: prometheus")
	assert.Contains(t, out, "127.0.0.1:9999")
}

func TestInitConfig_WritesProfile(t *testing.T) {
	home := tempHome(t)

	out, err := execute(t, "init-config", "--profile", "work", "--strategy", "grid")
	require.NoError(t, err)
	path := filepath.Join(home, ".osa", "profiles", "work", config.Filename)
	assert.Contains(t, out, path)

	cfg, err := config.Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, config.StrategyGrid, cfg.Strategy)

	_, err = execute(t, "init-config", "--profile", "work")
	require.Error(t, err, "existing file must not be overwritten")

	_, err = execute(t, "init-config", "--profile", "work", "--force")
	require.NoError(t, err)
	cfg, err = config.Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, config.StrategyLinear, cfg.Strategy)
}

func TestConfigCmd_ReadsProfileFile(t *testing.T) {
	home := tempHome(t)
	dir := filepath.Join(home, ".osa")
	cfg := config.Default()
	cfg.Items = 1234
	require.NoError(t, config.Save(dir, cfg))

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 1234")

	out, err = execute(t, "config", "--items", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 7")
}

func TestProfileDir(t *testing.T) {
	home := tempHome(t)
	cases := []struct {
		name string
		o    options
		want string
	}{
		{"default", options{}, filepath.Join(home, ".osa")},
		{"named", options{profile: "a"}, filepath.Join(home, ".osa", "profiles", "a")},
		{"dev", options{dev: true}, filepath.Join(home, ".osa", "profiles", "dev")},
		{"named wins over dev", options{profile: "b", dev: true}, filepath.Join(home, ".osa", "profiles", "b")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := profileDir(&tc.o)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDevFlag_DebugLogging(t *testing.T) {
	tempHome(t)
	out, err := execute(t, "config", "--dev")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: debug")

	out, err = execute(t, "config", "--dev", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: warn")
}

func TestThemeName(t *testing.T) {
	assert.Equal(t, "light", themeName("light"))
	assert.Equal(t, "dark", themeName("dark"))
}

func TestThemeNames_AcceptedByConfig(t *testing.T) {
	for _, name := range style.ThemeNames {
		cfg := config.Default()
		cfg.Theme = name
		assert.NoError(t, cfg.Validate(), name)
	}
	cfg := config.Default()
	cfg.Theme = "solarized"
	assert.Error(t, cfg.Validate())
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = newLogger(&buf, "bogus")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestNoColorFlag(t *testing.T) {
	tempHome(t)
	t.Setenv("NO_COLOR", "")
	_, err := execute(t, "config", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("NO_COLOR"))
}
