// Package power turns one snapshot of sensor readings into an estimated
// total system power draw.
package power

import (
	"fmt"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

const (
	noiseFloor       = 0.5
	mainMeasuredMin  = 1.0
	defaultFanCount  = 3
	wattsPerFan      = 2.0
	miscWatts        = 10.0 // chipset, USB, LEDs
	psuEfficiency    = 0.85
	errorCompensator = 1.10
)

// Estimator computes an Estimate in the configured mode.
type Estimator struct {
	Mode model.Mode
}

// New returns an estimator; an empty mode means detailed.
func New(mode model.Mode) *Estimator {
	if mode == "" {
		mode = model.ModeDetailed
	}
	return &Estimator{Mode: mode}
}

// Estimate aggregates readings. fanCount is the number of fan sensors seen
// this cycle (see CountFans).
func (e *Estimator) Estimate(readings []model.SensorReading, fanCount int, mem MemoryProbe, disks DiskProbe) model.Estimate {
	if e.Mode == model.ModeNaive {
		return Naive(readings)
	}
	return Detailed(readings, fanCount, mem, disks)
}

// Detailed is the category heuristic with fallback and PSU compensation.
func Detailed(readings []model.SensorReading, fanCount int, mem MemoryProbe, disks DiskProbe) model.Estimate {
	est := model.Estimate{Mode: model.ModeDetailed}

	for _, r := range readings {
		if r.Kind != model.SensorPower || r.Value == nil || *r.Value <= noiseFloor {
			continue
		}
		v := *r.Value
		switch Classify(r) {
		case BucketCPU:
			est.CPUWatts += v
		case BucketGPU:
			est.GPUWatts += v
		case BucketMotherboard:
			est.MotherboardWatts += v
		default:
			est.OtherMeasuredWatts += v
		}
	}

	est.MainMeasuredWatts = est.CPUWatts + est.GPUWatts + est.MotherboardWatts
	if est.MainMeasuredWatts < mainMeasuredMin {
		est.MainMeasuredWatts = est.OtherMeasuredWatts
		est.UsedFallback = true
	}

	est.MemoryWatts = mem.Watts()
	est.DiskWatts = disks.Watts()
	est.FanCount, est.FanWatts = FanWatts(fanCount)
	est.MiscWatts = miscWatts

	est.TotalRawWatts = est.MainMeasuredWatts + est.MemoryWatts + est.DiskWatts + est.FanWatts + est.MiscWatts
	est.PSUCompensatedWatts = est.TotalRawWatts / psuEfficiency
	est.FinalWatts = est.PSUCompensatedWatts * errorCompensator
	return est
}

// Naive sums every power reading that has a value.
func Naive(readings []model.SensorReading) model.Estimate {
	est := model.Estimate{Mode: model.ModeNaive}
	for _, r := range readings {
		if r.Kind == model.SensorPower && r.Value != nil {
			est.OtherMeasuredWatts += *r.Value
		}
	}
	est.MainMeasuredWatts = est.OtherMeasuredWatts
	est.TotalRawWatts = est.OtherMeasuredWatts
	est.PSUCompensatedWatts = est.OtherMeasuredWatts
	est.FinalWatts = est.OtherMeasuredWatts
	return est
}

// CountFans counts fan sensors across all devices.
func CountFans(readings []model.SensorReading) int {
	n := 0
	for _, r := range readings {
		if r.Kind == model.SensorFan {
			n++
		}
	}
	return n
}

// FanWatts applies the 3-fan default when no fan sensor was found.
func FanWatts(count int) (int, float64) {
	if count <= 0 {
		count = defaultFanCount
	}
	return count, float64(count) * wattsPerFan
}

// Label formats the display string.
func Label(est model.Estimate) string {
	return fmt.Sprintf("Power usage: %.1fW", est.FinalWatts)
}
