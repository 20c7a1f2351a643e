package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/wattmeter/internal/config"
	"github.com/Dicklesworthstone/wattmeter/internal/export"
	"github.com/Dicklesworthstone/wattmeter/internal/power"
	"github.com/Dicklesworthstone/wattmeter/internal/sampler"
	"github.com/Dicklesworthstone/wattmeter/internal/sensors"
	"github.com/Dicklesworthstone/wattmeter/internal/sysinfo"
	"github.com/Dicklesworthstone/wattmeter/internal/ui"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "wattmeter",
		Short: "Estimated total system power draw widget",
		Long: `wattmeter polls hardware sensors (hwmon, RAPL, nvidia-smi) and shows an
estimated total system power draw in a small draggable terminal widget.

Measured CPU, GPU and motherboard power is combined with static allowances for
memory, disks, fans and miscellaneous board draw, then compensated for PSU
efficiency. Drag the card with the mouse; its position is kept across runs.

Keys: d toggles the breakdown, q quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), config.ApplyEnv(cfg))
		},
	}
	config.BindFlags(root.Flags(), &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	provider := sensors.Open(sensors.Options{
		SysfsRoot:    cfg.SysfsRoot,
		EnableNvidia: cfg.EnableNvidia,
		Logger:       logger,
	})
	defer provider.Close()

	info := sysinfo.New(cfg.SysfsRoot)
	smp := sampler.New(cfg.Interval, provider, power.New(cfg.EstimationMode()),
		info.MemoryModules, info.Disks, logger)

	if cfg.JSON {
		if !smp.Prime(ctx) {
			return nil
		}
		return export.WriteJSON(os.Stdout, smp.Sample(ctx, time.Now()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream := smp.Stream(ctx)

	if cfg.JSONStream {
		return export.Stream(ctx, os.Stdout, stream)
	}
	if err := ui.RunTUI(cfg, stream, cancel, logger); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// newLogger logs to stderr in JSON modes. The TUI owns the terminal, so
// there logs go to --log-file or nowhere.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	var (
		w       io.Writer = io.Discard
		closeFn           = func() {}
	)
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, func() { _ = f.Close() }
	case cfg.JSON || cfg.JSONStream:
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
