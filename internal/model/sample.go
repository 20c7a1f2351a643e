package model

import "time"

// SourceKind identifies the hardware a sensor belongs to.
type SourceKind int

const (
	SourceOther SourceKind = iota
	SourceCPU
	SourceGPUNvidia
	SourceGPUAmd
	SourceMotherboard
)

func (k SourceKind) String() string {
	switch k {
	case SourceCPU:
		return "cpu"
	case SourceGPUNvidia:
		return "gpu-nvidia"
	case SourceGPUAmd:
		return "gpu-amd"
	case SourceMotherboard:
		return "motherboard"
	default:
		return "other"
	}
}

// MarshalText renders the kind by name in JSON output.
func (k SourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// SensorKind is the measurement type tag of a sensor.
type SensorKind int

const (
	SensorOther SensorKind = iota
	SensorPower
	SensorFan
	SensorTemperature
)

func (k SensorKind) String() string {
	switch k {
	case SensorPower:
		return "power"
	case SensorFan:
		return "fan"
	case SensorTemperature:
		return "temperature"
	default:
		return "other"
	}
}

func (k SensorKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// SensorReading is one sensor value within a single poll cycle.
type SensorReading struct {
	Source SourceKind `json:"source"`
	Kind   SensorKind `json:"kind"`
	Device string     `json:"device"`
	Name   string     `json:"name"`
	Value  *float64   `json:"value,omitempty"` // nil when the sensor reported nothing
}

// Reading builds a SensorReading with a present value.
func Reading(source SourceKind, kind SensorKind, name string, value float64) SensorReading {
	return SensorReading{Source: source, Kind: kind, Name: name, Value: &value}
}

// Disk describes one physical drive.
type Disk struct {
	Name       string `json:"name"`
	SolidState bool   `json:"ssd"`
}

// Mode selects the estimation strategy.
type Mode string

const (
	ModeDetailed Mode = "detailed"
	ModeNaive    Mode = "naive"
)

// Estimate is the power breakdown for one poll cycle. Values are watts.
type Estimate struct {
	Mode                Mode    `json:"mode"`
	CPUWatts            float64 `json:"cpu_w"`
	GPUWatts            float64 `json:"gpu_w"`
	MotherboardWatts    float64 `json:"motherboard_w"`
	OtherMeasuredWatts  float64 `json:"other_measured_w"`
	MainMeasuredWatts   float64 `json:"main_measured_w"`
	UsedFallback        bool    `json:"used_fallback"`
	MemoryWatts         float64 `json:"memory_w"`
	DiskWatts           float64 `json:"disk_w"`
	FanCount            int     `json:"fan_count"`
	FanWatts            float64 `json:"fan_w"`
	MiscWatts           float64 `json:"misc_w"`
	TotalRawWatts       float64 `json:"total_raw_w"`
	PSUCompensatedWatts float64 `json:"psu_compensated_w"`
	FinalWatts          float64 `json:"final_w"`
}

// Sample is the full snapshot exchanged between sampler, UI, and JSON exporter.
type Sample struct {
	Timestamp time.Time       `json:"timestamp"`
	Interval  time.Duration   `json:"interval"`
	Estimate  Estimate        `json:"estimate"`
	Readings  []SensorReading `json:"readings,omitempty"`
}

// Zero returns an empty sample for initialization.
func Zero() Sample { return Sample{Timestamp: time.Now()} }
