//go:build linux

package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// MemoryModules asks dmidecode first and falls back to EDAC.
func (q *Querier) MemoryModules(ctx context.Context) (int, error) {
	out, err := q.command(ctx, "dmidecode", "-t", "17")
	if err == nil {
		if n := parseDMIDecode(out); n > 0 {
			return n, nil
		}
	}
	if n := edacDimms(q.root()); n > 0 {
		return n, nil
	}
	if err != nil {
		return 0, fmt.Errorf("dmidecode: %w", err)
	}
	return 0, ErrNoModules
}

// Disks lists physical block devices known to the kernel.
func (q *Querier) Disks(ctx context.Context) ([]model.Disk, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("disk counters: %w", err)
	}
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	return classifyDisks(q.root(), names), nil
}
