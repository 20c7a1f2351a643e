// Package sensors exposes the machine's hardware devices and their sensors.
// Devices are refreshed with Update and read with Sensors once per tick.
package sensors

import (
	"log/slog"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// Sensor is one named measurement on a device.
type Sensor struct {
	Kind  model.SensorKind
	Name  string
	Value *float64
}

// Device is a piece of hardware carrying sensors.
type Device interface {
	Name() string
	Kind() model.SourceKind
	Update() error
	Sensors() []Sensor
}

// Provider enumerates hardware devices. It is opened once and shared across ticks.
type Provider interface {
	Hardware() []Device
	Close() error
}

// Snapshot refreshes every device and flattens its sensors into readings.
func Snapshot(p Provider, logger *slog.Logger) []model.SensorReading {
	var out []model.SensorReading
	for _, dev := range p.Hardware() {
		if err := dev.Update(); err != nil && logger != nil {
			logger.Debug("device update failed", "device", dev.Name(), "error", err)
		}
		for _, s := range dev.Sensors() {
			out = append(out, model.SensorReading{
				Source: dev.Kind(),
				Kind:   s.Kind,
				Device: dev.Name(),
				Name:   s.Name,
				Value:  s.Value,
			})
		}
	}
	return out
}

func value(v float64) *float64 { return &v }
