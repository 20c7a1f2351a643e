package power

import (
	"strings"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// Bucket names a category accumulator.
type Bucket int

const (
	BucketCPU Bucket = iota
	BucketGPU
	BucketMotherboard
	BucketOther
)

func (b Bucket) String() string {
	switch b {
	case BucketCPU:
		return "cpu"
	case BucketGPU:
		return "gpu"
	case BucketMotherboard:
		return "motherboard"
	default:
		return "other"
	}
}

type rule struct {
	bucket Bucket
	match  func(model.SensorReading) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{BucketCPU, func(r model.SensorReading) bool {
		return r.Source == model.SourceCPU && containsAny(r.Name, "package", "cpu total")
	}},
	{BucketGPU, func(r model.SensorReading) bool {
		return (r.Source == model.SourceGPUNvidia || r.Source == model.SourceGPUAmd) &&
			containsAny(r.Name, "total", "power")
	}},
	{BucketMotherboard, func(r model.SensorReading) bool {
		return r.Source == model.SourceMotherboard
	}},
}

// Classify returns the bucket a power reading is accumulated into.
func Classify(r model.SensorReading) Bucket {
	for _, rl := range rules {
		if rl.match(r) {
			return rl.bucket
		}
	}
	return BucketOther
}

func containsAny(name string, needles ...string) bool {
	lower := strings.ToLower(name)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
