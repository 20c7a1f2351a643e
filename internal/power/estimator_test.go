package power

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

var errLookup = errors.New("access denied")

func pw(src model.SourceKind, name string, v float64) model.SensorReading {
	return model.Reading(src, model.SensorPower, name, v)
}

func fan(name string) model.SensorReading {
	return model.Reading(model.SourceMotherboard, model.SensorFan, name, 1200)
}

func TestDetailed_EndToEnd(t *testing.T) {
	readings := []model.SensorReading{
		pw(model.SourceCPU, "CPU Package", 40),
		pw(model.SourceGPUNvidia, "GPU Total", 80),
		pw(model.SourceMotherboard, "VRM", 5),
		fan("Fan #1"), fan("Fan #2"), fan("Fan #3"), fan("Fan #4"),
	}
	est := Detailed(readings, CountFans(readings),
		MemoryResult(2, nil),
		DiskResult([]model.Disk{{Name: "nvme0n1", SolidState: true}}, nil))

	assert.InDelta(t, 40.0, est.CPUWatts, 1e-9)
	assert.InDelta(t, 80.0, est.GPUWatts, 1e-9)
	assert.InDelta(t, 5.0, est.MotherboardWatts, 1e-9)
	assert.InDelta(t, 125.0, est.MainMeasuredWatts, 1e-9)
	assert.False(t, est.UsedFallback)
	assert.InDelta(t, 6.0, est.MemoryWatts, 1e-9)
	assert.InDelta(t, 3.0, est.DiskWatts, 1e-9)
	assert.Equal(t, 4, est.FanCount)
	assert.InDelta(t, 8.0, est.FanWatts, 1e-9)
	assert.InDelta(t, 10.0, est.MiscWatts, 1e-9)
	assert.InDelta(t, 152.0, est.TotalRawWatts, 1e-9)
	assert.InDelta(t, 178.82, est.PSUCompensatedWatts, 0.01)
	assert.InDelta(t, 196.71, est.FinalWatts, 0.01)
	assert.Equal(t, "Power usage: 196.7W", Label(est))
}

func TestDetailed_NoHardware(t *testing.T) {
	est := Detailed(nil, 0, MemoryResult(0, errLookup), DiskResult(nil, nil))

	assert.Zero(t, est.MainMeasuredWatts)
	assert.InDelta(t, 28.0, est.TotalRawWatts, 1e-9)
	assert.InDelta(t, 28.0/0.85*1.10, est.FinalWatts, 1e-9)
	assert.Equal(t, "Power usage: 36.2W", Label(est))
}

func TestDetailed_MainMeasuredExcludesOther(t *testing.T) {
	readings := []model.SensorReading{
		pw(model.SourceCPU, "CPU Package", 0.6),
		pw(model.SourceMotherboard, "12V", 0.6),
		pw(model.SourceOther, "USB hub", 50),
		pw(model.SourceCPU, "Core #1", 7), // cpu device, name doesn't match
	}
	est := Detailed(readings, 0, MemoryResult(2, nil), DiskResult(nil, nil))

	assert.InDelta(t, 1.2, est.MainMeasuredWatts, 1e-9)
	assert.InDelta(t, 57.0, est.OtherMeasuredWatts, 1e-9)
	assert.False(t, est.UsedFallback)
}

func TestDetailed_FallsBackToOtherMeasured(t *testing.T) {
	readings := []model.SensorReading{
		pw(model.SourceCPU, "CPU Package", 0.9),
		pw(model.SourceOther, "Battery discharge", 12),
		pw(model.SourceGPUAmd, "GPU Core", 20), // gpu device, no Total/Power in name
	}
	est := Detailed(readings, 0, MemoryResult(2, nil), DiskResult(nil, nil))

	assert.True(t, est.UsedFallback)
	assert.InDelta(t, 0.9, est.CPUWatts, 1e-9)
	assert.InDelta(t, 32.0, est.MainMeasuredWatts, 1e-9)
}

func TestDetailed_FallbackThreshold(t *testing.T) {
	tests := []struct {
		name         string
		cpu          float64
		wantFallback bool
		wantMain     float64
	}{
		{"just below threshold", 0.99999, true, 12},
		{"at threshold", 1.0, false, 1.0},
		{"above threshold", 1.5, false, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings := []model.SensorReading{
				pw(model.SourceCPU, "CPU Package", tt.cpu),
				pw(model.SourceOther, "Battery discharge", 12),
			}
			est := Detailed(readings, 0, MemoryResult(2, nil), DiskResult(nil, nil))
			assert.Equal(t, tt.wantFallback, est.UsedFallback)
			assert.InDelta(t, tt.wantMain, est.MainMeasuredWatts, 1e-12)
			assert.InDelta(t, tt.cpu, est.CPUWatts, 1e-12)
		})
	}
}

func TestDetailed_NoiseFloor(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"at floor excluded", 0.5, 0},
		{"just above included", 0.50001, 0.50001},
		{"negative excluded", -3, 0},
		{"zero excluded", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Detailed([]model.SensorReading{pw(model.SourceOther, "rail", tt.value)}, 0,
				MemoryResult(2, nil), DiskResult(nil, nil))
			assert.InDelta(t, tt.want, est.OtherMeasuredWatts, 1e-12)
		})
	}
}

func TestDetailed_IgnoresNonPowerAndMissingValues(t *testing.T) {
	readings := []model.SensorReading{
		model.Reading(model.SourceCPU, model.SensorTemperature, "CPU Package", 65),
		{Source: model.SourceCPU, Kind: model.SensorPower, Name: "CPU Package"},
		fan("Fan #1"),
	}
	est := Detailed(readings, CountFans(readings), MemoryResult(2, nil), DiskResult(nil, nil))

	assert.Zero(t, est.CPUWatts)
	assert.Zero(t, est.OtherMeasuredWatts)
	assert.Equal(t, 1, est.FanCount)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	tests := []struct {
		reading model.SensorReading
		want    Bucket
	}{
		{pw(model.SourceCPU, "CPU Package", 1), BucketCPU},
		{pw(model.SourceCPU, "cpu total", 1), BucketCPU},
		{pw(model.SourceCPU, "CPU Cores", 1), BucketOther},
		{pw(model.SourceGPUNvidia, "GPU Power", 1), BucketGPU},
		{pw(model.SourceGPUAmd, "GPU PPT TOTAL", 1), BucketGPU},
		{pw(model.SourceGPUAmd, "GPU SoC", 1), BucketOther},
		{pw(model.SourceMotherboard, "Package", 1), BucketMotherboard},
		{pw(model.SourceOther, "CPU Package", 1), BucketOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.reading), "%s/%s", tt.reading.Source, tt.reading.Name)
	}
}

func TestFanWatts(t *testing.T) {
	n, w := FanWatts(0)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 6.0, w, 1e-9)

	n, w = FanWatts(5)
	assert.Equal(t, 5, n)
	assert.InDelta(t, 10.0, w, 1e-9)
}

func TestMemoryProbe(t *testing.T) {
	assert.InDelta(t, 6.0, MemoryResult(2, nil).Watts(), 1e-9)
	assert.InDelta(t, 12.0, MemoryResult(4, nil).Watts(), 1e-9)
	assert.InDelta(t, 6.0, MemoryResult(8, errLookup).Watts(), 1e-9)
}

func TestDiskProbe(t *testing.T) {
	mixed := []model.Disk{{Name: "nvme0n1", SolidState: true}, {Name: "sda"}}
	assert.InDelta(t, 9.0, DiskResult(mixed, nil).Watts(), 1e-9)
	assert.InDelta(t, 6.0, DiskResult(nil, nil).Watts(), 1e-9)
	assert.InDelta(t, 6.0, DiskResult(mixed, errLookup).Watts(), 1e-9)
}

func TestNaive(t *testing.T) {
	readings := []model.SensorReading{
		pw(model.SourceCPU, "CPU Cores", 0.3),
		pw(model.SourceGPUNvidia, "GPU Power", 80),
		{Source: model.SourceOther, Kind: model.SensorPower, Name: "empty"},
		model.Reading(model.SourceCPU, model.SensorTemperature, "Tctl", 60),
	}
	est := New(model.ModeNaive).Estimate(readings, 0, MemoryResult(0, errLookup), DiskResult(nil, errLookup))

	require.Equal(t, model.ModeNaive, est.Mode)
	assert.InDelta(t, 80.3, est.FinalWatts, 1e-9)
	assert.Zero(t, est.MemoryWatts)
	assert.Zero(t, est.MiscWatts)
}

func TestNew_DefaultsToDetailed(t *testing.T) {
	assert.Equal(t, model.ModeDetailed, New("").Mode)
}
