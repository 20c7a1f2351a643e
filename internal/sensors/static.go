package sensors

import "github.com/Dicklesworthstone/wattmeter/internal/model"

// StaticDevice returns the same sensors on every update.
type StaticDevice struct {
	DeviceName string
	Source     model.SourceKind
	Values     []Sensor
	Updates    int
}

func (d *StaticDevice) Name() string           { return d.DeviceName }
func (d *StaticDevice) Kind() model.SourceKind { return d.Source }
func (d *StaticDevice) Sensors() []Sensor      { return d.Values }

func (d *StaticDevice) Update() error {
	d.Updates++
	return nil
}

// Static is a fixed set of devices.
type Static struct {
	Devices []Device
}

// NewStatic groups readings into one device per (source, device name).
func NewStatic(readings []model.SensorReading) *Static {
	s := &Static{}
	index := make(map[string]*StaticDevice)
	for _, r := range readings {
		key := r.Source.String() + "/" + r.Device
		dev, ok := index[key]
		if !ok {
			dev = &StaticDevice{DeviceName: r.Device, Source: r.Source}
			index[key] = dev
			s.Devices = append(s.Devices, dev)
		}
		dev.Values = append(dev.Values, Sensor{Kind: r.Kind, Name: r.Name, Value: r.Value})
	}
	return s
}

func (s *Static) Hardware() []Device { return s.Devices }
func (s *Static) Close() error       { return nil }
