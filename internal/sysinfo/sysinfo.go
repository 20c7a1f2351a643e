// Package sysinfo answers the two OS questions the estimator needs each tick:
// how many memory modules are installed and which disks are present.
package sysinfo

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

// ErrUnsupported is returned on platforms without a lookup implementation.
var ErrUnsupported = errors.New("sysinfo: not supported on this platform")

// ErrNoModules means the lookup ran but reported no installed module.
var ErrNoModules = errors.New("sysinfo: no memory modules reported")

// Querier runs the lookups. The zero value queries the live system.
type Querier struct {
	SysfsRoot string

	run func(ctx context.Context, name string, args ...string) (string, error)
}

// New returns a Querier reading sysfs below root (usually /sys).
func New(sysfsRoot string) *Querier {
	return &Querier{SysfsRoot: sysfsRoot}
}

func (q *Querier) root() string {
	if q.SysfsRoot == "" {
		return "/sys"
	}
	return q.SysfsRoot
}

func (q *Querier) command(ctx context.Context, name string, args ...string) (string, error) {
	if q.run != nil {
		return q.run(ctx, name, args...)
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// parseDMIDecode counts populated "Memory Device" entries in `dmidecode -t 17`
// output.
func parseDMIDecode(out string) int {
	count := 0
	inDevice := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, " ") {
			inDevice = trimmed == "Memory Device"
			continue
		}
		if !inDevice || !strings.HasPrefix(trimmed, "Size:") {
			continue
		}
		size := strings.TrimSpace(strings.TrimPrefix(trimmed, "Size:"))
		switch {
		case size == "", size == "0", strings.HasPrefix(size, "No Module"),
			strings.HasPrefix(size, "Not Installed"), strings.HasPrefix(size, "Unknown"):
			continue
		}
		count++
	}
	return count
}

// edacDimms counts DIMMs the EDAC driver exposes, which needs no root.
func edacDimms(sysfsRoot string) int {
	dimms, _ := filepath.Glob(filepath.Join(sysfsRoot, "devices", "system", "edac", "mc", "mc*", "dimm*"))
	if len(dimms) > 0 {
		return len(dimms)
	}
	ranks, _ := filepath.Glob(filepath.Join(sysfsRoot, "devices", "system", "edac", "mc", "mc*", "rank*"))
	return len(ranks)
}

var virtualPrefixes = []string{"loop", "ram", "zram", "dm-", "md", "sr", "fd", "nbd"}

func isVirtualDisk(name string) bool {
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// classifyDisks keeps whole physical block devices and marks non-rotational
// ones as solid state. Partitions have no /sys/block entry and are skipped.
func classifyDisks(sysfsRoot string, names []string) []model.Disk {
	sort.Strings(names)
	var disks []model.Disk
	for _, name := range names {
		if isVirtualDisk(name) {
			continue
		}
		block := filepath.Join(sysfsRoot, "block", name)
		if _, err := os.Stat(block); err != nil {
			continue
		}
		rot, err := os.ReadFile(filepath.Join(block, "queue", "rotational"))
		ssd := err == nil && strings.TrimSpace(string(rot)) == "0"
		disks = append(disks, model.Disk{Name: name, SolidState: ssd})
	}
	return disks
}

// isSSDMedia matches the free-text media description Windows reports.
func isSSDMedia(media string) bool {
	return strings.Contains(strings.ToLower(media), "ssd")
}
