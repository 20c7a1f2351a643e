package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
	"github.com/Dicklesworthstone/wattmeter/internal/power"
	"github.com/Dicklesworthstone/wattmeter/internal/sensors"
)

// MemoryFunc counts installed memory modules.
type MemoryFunc func(ctx context.Context) (int, error)

// DiskFunc lists physical disks.
type DiskFunc func(ctx context.Context) ([]model.Disk, error)

// Sampler periodically emits Samples built from the sensor provider and the
// OS memory/disk lookups.
type Sampler struct {
	Interval  time.Duration
	Provider  sensors.Provider
	Estimator *power.Estimator
	Memory    MemoryFunc
	Disks     DiskFunc
	Logger    *slog.Logger

	// Warmup is the pause between priming the counter-based sensors and the
	// first sample.
	Warmup time.Duration
}

func New(interval time.Duration, provider sensors.Provider, est *power.Estimator, memory MemoryFunc, disks DiskFunc, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		Interval:  interval,
		Provider:  provider,
		Estimator: est,
		Memory:    memory,
		Disks:     disks,
		Logger:    logger.With("service", "sampler"),
		Warmup:    min(time.Second, interval),
	}
}

// Prime reads every device once so energy counters (RAPL) have a baseline,
// then waits Warmup. It reports false if ctx ended first.
func (s *Sampler) Prime(ctx context.Context) bool {
	sensors.Snapshot(s.Provider, s.Logger)
	if s.Warmup <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.Warmup)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stream returns a channel that will receive snapshots until ctx is done.
// The first sample follows Prime. A slow receiver makes the ticker
// drop ticks rather than queue them.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Sample {
	ch := make(chan model.Sample)
	go func() {
		defer close(ch)
		if !s.Prime(ctx) || !s.emit(ctx, ch, time.Now()) {
			return
		}
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				if !s.emit(ctx, ch, t) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (s *Sampler) emit(ctx context.Context, ch chan<- model.Sample, t time.Time) bool {
	samp := s.Sample(ctx, t)
	select {
	case ch <- samp:
		return true
	case <-ctx.Done():
		return false
	}
}

// Sample runs one poll cycle synchronously.
func (s *Sampler) Sample(ctx context.Context, now time.Time) model.Sample {
	readings := sensors.Snapshot(s.Provider, s.Logger)

	mem := power.MemoryResult(s.lookupMemory(ctx))
	disks := power.DiskResult(s.lookupDisks(ctx))
	if mem.Err != nil {
		s.Logger.Debug("memory lookup failed, using fallback", "error", mem.Err)
	}
	if disks.Err != nil {
		s.Logger.Debug("disk lookup failed, using fallback", "error", disks.Err)
	}

	est := s.Estimator.Estimate(readings, power.CountFans(readings), mem, disks)
	s.Logger.Debug("estimate",
		"final_w", est.FinalWatts,
		"main_w", est.MainMeasuredWatts,
		"fallback", est.UsedFallback,
		"readings", len(readings))

	return model.Sample{
		Timestamp: now,
		Interval:  s.Interval,
		Estimate:  est,
		Readings:  readings,
	}
}

func (s *Sampler) lookupMemory(ctx context.Context) (int, error) {
	if s.Memory == nil {
		return 0, errNoLookup
	}
	return s.Memory(ctx)
}

func (s *Sampler) lookupDisks(ctx context.Context) ([]model.Disk, error) {
	if s.Disks == nil {
		return nil, errNoLookup
	}
	return s.Disks(ctx)
}
