package sensors

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// chipKinds maps hwmon chip name prefixes to the device class.
var chipKinds = []struct {
	prefix string
	kind   model.SourceKind
}{
	{"coretemp", model.SourceCPU},
	{"k10temp", model.SourceCPU},
	{"zenpower", model.SourceCPU},
	{"amdgpu", model.SourceGPUAmd},
	{"radeon", model.SourceGPUAmd},
	{"nouveau", model.SourceGPUNvidia},
	{"nvidia", model.SourceGPUNvidia},
	{"it87", model.SourceMotherboard},
	{"nct", model.SourceMotherboard},
	{"w83", model.SourceMotherboard},
	{"f71", model.SourceMotherboard},
	{"asus", model.SourceMotherboard},
}

// ChipKind classifies an hwmon chip name.
func ChipKind(chip string) model.SourceKind {
	lower := strings.ToLower(chip)
	for _, entry := range chipKinds {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.kind
		}
	}
	return model.SourceOther
}

var hwmonInputRe = regexp.MustCompile(`^(power|fan|temp)(\d+)_(input|average)$`)

// hwmonDevice reads one /sys/class/hwmon/hwmonN directory.
type hwmonDevice struct {
	dir     string
	chip    string
	kind    model.SourceKind
	sensors []Sensor
}

func newHwmonDevice(dir string) (*hwmonDevice, error) {
	name, err := readTrimmed(filepath.Join(dir, "name"))
	if err != nil {
		return nil, err
	}
	return &hwmonDevice{dir: dir, chip: name, kind: ChipKind(name)}, nil
}

func (d *hwmonDevice) Name() string           { return d.chip }
func (d *hwmonDevice) Kind() model.SourceKind { return d.kind }
func (d *hwmonDevice) Sensors() []Sensor      { return d.sensors }

// powerName makes GPU board power recognizable as such. amdgpu labels its
// power channels "PPT" or "slowPPT", which say nothing about being the card
// total.
func (d *hwmonDevice) powerName(label string) string {
	if d.kind != model.SourceGPUAmd && d.kind != model.SourceGPUNvidia {
		return label
	}
	l := strings.ToLower(label)
	if strings.Contains(l, "power") || strings.Contains(l, "total") {
		return label
	}
	return "GPU Power (" + label + ")"
}

func (d *hwmonDevice) Update() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", d.dir, err)
	}

	// power*_input wins over power*_average for the same channel
	seen := make(map[string]bool)
	var sensors []Sensor
	for _, e := range entries {
		m := hwmonInputRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		class, channel, suffix := m[1], m[2], m[3]
		if class != "power" && suffix != "input" {
			continue
		}
		key := class + channel
		if seen[key] {
			continue
		}
		if suffix == "average" {
			if _, err := os.Stat(filepath.Join(d.dir, key+"_input")); err == nil {
				continue
			}
		}
		seen[key] = true

		s := Sensor{Name: d.label(class, channel)}
		raw, err := readTrimmed(filepath.Join(d.dir, e.Name()))
		if err == nil {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				s.Value = value(scale(class, v))
			}
		}
		switch class {
		case "power":
			s.Kind = model.SensorPower
			s.Name = d.powerName(s.Name)
		case "fan":
			s.Kind = model.SensorFan
		case "temp":
			s.Kind = model.SensorTemperature
		}
		sensors = append(sensors, s)
	}
	sort.Slice(sensors, func(i, j int) bool { return sensors[i].Name < sensors[j].Name })
	d.sensors = sensors
	return nil
}

func (d *hwmonDevice) label(class, channel string) string {
	if l, err := readTrimmed(filepath.Join(d.dir, class+channel+"_label")); err == nil && l != "" {
		return l
	}
	return class + channel
}

// scale converts hwmon units: microwatts, millidegrees, RPM.
func scale(class string, v float64) float64 {
	switch class {
	case "power":
		return v / 1e6
	case "temp":
		return v / 1000
	default:
		return v
	}
}

func hwmonDevices(sysfsRoot string) []Device {
	dirs, _ := filepath.Glob(filepath.Join(sysfsRoot, "class", "hwmon", "hwmon*"))
	sort.Strings(dirs)
	var devs []Device
	for _, dir := range dirs {
		dev, err := newHwmonDevice(dir)
		if err != nil {
			continue
		}
		devs = append(devs, dev)
	}
	return devs
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
