//go:build windows

package sysinfo

import (
	"context"
	"fmt"

	"github.com/yusufpapurcu/wmi"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

type win32PhysicalMemory struct {
	Capacity uint64
}

type win32DiskDrive struct {
	DeviceID  string
	MediaType string
}

// MemoryModules counts Win32_PhysicalMemory instances.
func (q *Querier) MemoryModules(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var dst []win32PhysicalMemory
	if err := wmi.Query("SELECT Capacity FROM Win32_PhysicalMemory", &dst); err != nil {
		return 0, fmt.Errorf("WMI query failed: %w", err)
	}
	return len(dst), nil
}

// Disks reads Win32_DiskDrive and treats a MediaType mentioning SSD as solid state.
func (q *Querier) Disks(ctx context.Context) ([]model.Disk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var dst []win32DiskDrive
	if err := wmi.Query("SELECT DeviceID, MediaType FROM Win32_DiskDrive", &dst); err != nil {
		return nil, fmt.Errorf("WMI query failed: %w", err)
	}
	disks := make([]model.Disk, 0, len(dst))
	for _, d := range dst {
		disks = append(disks, model.Disk{Name: d.DeviceID, SolidState: isSSDMedia(d.MediaType)})
	}
	return disks, nil
}
