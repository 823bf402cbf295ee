package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/miosa/osa-recycler/app"
	"github.com/miosa/osa-recycler/config"
	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/telemetry"
)

// options holds the command line flags. Only flags the user actually set
// override the profile's recycler.yaml.
type options struct {
	profile     string
	dev         bool
	noColor     bool
	theme       string
	strategy    string
	spanCount   int
	items       int
	ratio       float64
	workers     int
	latency     time.Duration
	logLevel    string
	metricsAddr string
	force       bool
}

func newRootCmd() *cobra.Command {
	var o options

	root := &cobra.Command{
		Use:   "osa-recycler",
		Short: "Browse a virtualized message list backed by the range binder",
		Long: `osa-recycler renders a large, mutable message list in the terminal.
Only the items near the viewport keep a computed layout; the rest are
measured asynchronously as the visible window moves.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if o.noColor {
				os.Setenv("NO_COLOR", "1")
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &o)
		},
	}
	root.SetVersionTemplate("osa-recycler {{.Version}}\n")
	root.Flags().BoolP("version", "V", false, "Show version and exit")

	f := root.PersistentFlags()
	f.StringVar(&o.profile, "profile", "", "Named profile for state isolation (~/.osa/profiles/<name>)")
	f.BoolVar(&o.dev, "dev", false, "Dev mode (alias for --profile dev, debug logging)")
	f.BoolVar(&o.noColor, "no-color", false, "Disable ANSI colors")
	f.StringVar(&o.theme, "theme", "", "Color theme: dark, light, catppuccin or tokyo-night (default: detect)")
	f.StringVar(&o.strategy, "strategy", "", "Layout strategy: linear, grid or staggered")
	f.IntVar(&o.spanCount, "span", 0, "Span count for grid and staggered strategies")
	f.IntVar(&o.items, "items", 0, "Number of sample messages to mount")
	f.Float64Var(&o.ratio, "ratio", 0, "Range ratio: viewport lengths kept computed on each side")
	f.IntVar(&o.workers, "workers", 0, "Layout worker count")
	f.DurationVar(&o.latency, "latency", 0, "Artificial per-layout latency")
	f.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "Prometheus listen address (host:port)")

	root.AddCommand(newInitConfigCmd(&o), newConfigCmd(&o))
	return root
}

func newInitConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write recycler.yaml with the effective settings into the profile directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := profileDir(o)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.Filename)
			if _, err := os.Stat(path); err == nil && !o.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := config.Default()
			if err := applyFlags(cmd, o, &cfg); err != nil {
				return err
			}
			if err := config.Save(dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing recycler.yaml")
	return cmd
}

func newConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// profileDir resolves ~/.osa or ~/.osa/profiles/<name>.
func profileDir(o *options) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	profile := o.profile
	if o.dev && profile == "" {
		profile = "dev"
	}
	if profile == "" {
		return filepath.Join(home, ".osa"), nil
	}
	return filepath.Join(home, ".osa", "profiles", profile), nil
}

// loadConfig reads the profile's recycler.yaml and layers the flags on top.
func loadConfig(cmd *cobra.Command, o *options) (config.Config, string, error) {
	dir, err := profileDir(o)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return cfg, dir, err
	}
	if err := applyFlags(cmd, o, &cfg); err != nil {
		return cfg, dir, err
	}
	return cfg, dir, nil
}

// applyFlags copies every flag the user set onto cfg and revalidates it.
func applyFlags(cmd *cobra.Command, o *options, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = o.theme
	}
	if flags.Changed("strategy") {
		cfg.Strategy = o.strategy
	}
	if flags.Changed("span") {
		cfg.SpanCount = o.spanCount
	}
	if flags.Changed("items") {
		cfg.Items = o.items
	}
	if flags.Changed("ratio") {
		cfg.RangeRatio = o.ratio
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("latency") {
		cfg.Latency = o.latency
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	} else if o.dev {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("metrics-addr") {
		cfg.Telemetry.MetricsAddr = o.metricsAddr
		cfg.Telemetry.MetricExporter = "prometheus"
	}
	return cfg.Validate()
}

func run(cmd *cobra.Command, o *options) error {
	cfg, dir, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	// The terminal belongs to the program, so logs and stdout exporters go
	// to a file in the profile directory.
	logFile, err := os.OpenFile(filepath.Join(dir, cfg.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	cfg.Telemetry.Output = logFile
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	if cfg.Telemetry.MetricExporter == "prometheus" && cfg.Telemetry.MetricsAddr != "" {
		srv, err := telemetry.ServeMetrics(cfg.Telemetry.MetricsAddr, telemetry.MetricsHandler(), logger)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	style.SetTheme(themeName(cfg.Theme))
	logger.Info("starting",
		"version", version,
		"profile", dir,
		"strategy", cfg.Strategy,
		"items", cfg.Items,
		"workers", cfg.Workers,
		"theme", style.CurrentThemeName,
	)

	app.Version = version

	// The program runs on this goroutine, which also becomes the binder's
	// control goroutine in app.New.
	m := app.New(ctx, cfg, logger)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	go func() {
		p.Send(app.ProgramReady{Program: p})
	}()

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	return errors.Join(runErr, m.Close())
}

// themeName picks the configured theme, or detects the terminal background.
func themeName(configured string) string {
	if configured != "" {
		return configured
	}
	if lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
		return "dark"
	}
	return "light"
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
