//go:build !linux && !windows

package sysinfo

import (
	"context"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

func (q *Querier) MemoryModules(context.Context) (int, error) { return 0, ErrUnsupported }

func (q *Querier) Disks(context.Context) ([]model.Disk, error) { return nil, ErrUnsupported }
