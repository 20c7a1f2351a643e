package sensors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// maxPackageWatts bounds a plausible package rate; anything above it comes
// from a counter glitch.
const maxPackageWatts = 5000.0

// raplZone derives watts from the powercap energy counter of one package.
// The first Update only primes the counter; Sensors carries no value until
// a second reading exists.
type raplZone struct {
	dir      string
	name     string
	maxRange uint64
	now      func() time.Time
	lastUJ   uint64
	lastAt   time.Time
	primed   bool
	watts    *float64
}

func newRAPLZone(dir string, now func() time.Time) (*raplZone, error) {
	name, err := readTrimmed(filepath.Join(dir, "name"))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(name, "package") {
		return nil, fmt.Errorf("zone %s is not a package", name)
	}
	z := &raplZone{dir: dir, name: name, now: now}
	if raw, err := readTrimmed(filepath.Join(dir, "max_energy_range_uj")); err == nil {
		z.maxRange, _ = strconv.ParseUint(raw, 10, 64)
	}
	return z, nil
}

func (z *raplZone) Name() string           { return "rapl/" + z.name }
func (z *raplZone) Kind() model.SourceKind { return model.SourceCPU }

func (z *raplZone) Sensors() []Sensor {
	return []Sensor{{Kind: model.SensorPower, Name: "CPU Package", Value: z.watts}}
}

func (z *raplZone) Update() error {
	raw, err := readTrimmed(filepath.Join(z.dir, "energy_uj"))
	if err != nil {
		z.watts = nil
		return fmt.Errorf("read energy: %w", err)
	}
	uj, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		z.watts = nil
		return fmt.Errorf("parse energy %q: %w", raw, err)
	}
	at := z.now()
	if z.primed {
		z.watts = z.rate(uj, at)
	}
	z.lastUJ, z.lastAt, z.primed = uj, at, true
	return nil
}

// rate converts the counter movement since the last read into watts. A
// counter that moved backwards without a usable max_energy_range_uj (a
// reset, or a range the last reading already exceeds) gives no value and
// the current reading becomes the new baseline.
func (z *raplZone) rate(uj uint64, at time.Time) *float64 {
	dt := at.Sub(z.lastAt).Seconds()
	if dt <= 0 {
		return z.watts
	}
	delta := uj - z.lastUJ
	if uj < z.lastUJ {
		if z.maxRange == 0 || z.lastUJ > z.maxRange {
			return nil
		}
		delta = z.maxRange - z.lastUJ + uj
	}
	w := float64(delta) / 1e6 / dt
	if w > maxPackageWatts {
		return nil
	}
	return value(w)
}

func raplDevices(sysfsRoot string, now func() time.Time) []Device {
	dirs, _ := filepath.Glob(filepath.Join(sysfsRoot, "class", "powercap", "intel-rapl:*"))
	sort.Strings(dirs)
	var devs []Device
	for _, dir := range dirs {
		// subzones (intel-rapl:0:0) are core/uncore/dram, covered by the package
		if strings.Count(filepath.Base(dir), ":") != 1 {
			continue
		}
		z, err := newRAPLZone(dir, now)
		if err != nil {
			continue
		}
		devs = append(devs, z)
	}
	return devs
}
