package power

import "github.com/Dicklesworthstone/wattmeter/internal/model"

const (
	wattsPerModule = 3.0
	wattsPerSSD    = 3.0
	wattsPerHDD    = 6.0
	fallbackWatts  = 6.0
)

// MemoryProbe is the outcome of a memory module enumeration.
type MemoryProbe struct {
	Modules int
	Err     error
}

// MemoryResult wraps the return values of a module count lookup.
func MemoryResult(modules int, err error) MemoryProbe {
	return MemoryProbe{Modules: modules, Err: err}
}

// Watts is Modules*3W, or 6W when the enumeration failed.
func (p MemoryProbe) Watts() float64 {
	if p.Err != nil {
		return fallbackWatts
	}
	return float64(p.Modules) * wattsPerModule
}

// DiskProbe is the outcome of a disk enumeration.
type DiskProbe struct {
	Disks []model.Disk
	Err   error
}

// DiskResult wraps the return values of a disk lookup.
func DiskResult(disks []model.Disk, err error) DiskProbe {
	return DiskProbe{Disks: disks, Err: err}
}

// Watts sums 3W per SSD and 6W per other drive. A failed lookup, an empty
// list, or a zero sum yields 6W.
func (p DiskProbe) Watts() float64 {
	if p.Err != nil {
		return fallbackWatts
	}
	var total float64
	for _, d := range p.Disks {
		if d.SolidState {
			total += wattsPerSSD
		} else {
			total += wattsPerHDD
		}
	}
	if total <= 0 {
		return fallbackWatts
	}
	return total
}
