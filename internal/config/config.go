package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
	"github.com/Dicklesworthstone/wattmeter/internal/placement"
)

// Config carries runtime options for wattmeter.
type Config struct {
	Interval     time.Duration
	Mode         string
	StateFile    string
	SysfsRoot    string
	EnableNvidia bool
	ShowDetail   bool
	JSON         bool
	JSONStream   bool
	LogFile      string
	LogLevel     string
}

func Default() Config {
	return Config{
		Interval:     10 * time.Second,
		Mode:         string(model.ModeDetailed),
		StateFile:    placement.DefaultPath(),
		SysfsRoot:    "/sys",
		EnableNvidia: true,
		ShowDetail:   false,
		JSON:         false,
		JSONStream:   false,
		LogFile:      "",
		LogLevel:     "info",
	}
}

// BindFlags registers the command-line flags on fs.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "sensor polling interval")
	fs.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "estimation mode: detailed|naive")
	fs.StringVar(&cfg.StateFile, "state", cfg.StateFile, "file storing the widget position")
	fs.StringVar(&cfg.SysfsRoot, "sysfs", cfg.SysfsRoot, "sysfs mount point")
	fs.BoolVar(&cfg.EnableNvidia, "nvidia", cfg.EnableNvidia, "query nvidia-smi for GPU power")
	fs.BoolVarP(&cfg.ShowDetail, "detail", "d", cfg.ShowDetail, "start with the per-category breakdown visible")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&cfg.JSONStream, "json-stream", cfg.JSONStream, "stream NDJSON until interrupted")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
}

// ApplyEnv applies environment overrides.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("WATTMETER_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("WATTMETER_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("WATTMETER_STATE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("WATTMETER_SYSFS"); v != "" {
		cfg.SysfsRoot = v
	}
	if v := os.Getenv("WATTMETER_NVIDIA"); v == "0" {
		cfg.EnableNvidia = false
	}
	return cfg
}

// Validate rejects settings the sampler cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	switch model.Mode(c.Mode) {
	case model.ModeDetailed, model.ModeNaive:
	default:
		return fmt.Errorf("unknown mode %q (want detailed or naive)", c.Mode)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// EstimationMode returns Mode as a model.Mode.
func (c Config) EstimationMode() model.Mode { return model.Mode(c.Mode) }

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
