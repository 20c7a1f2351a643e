package sensors

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

const nvidiaTimeout = 2 * time.Second

// commandRunner runs an external command; swapped in tests.
type commandRunner func(timeout time.Duration, name string, args ...string) (string, error)

// nvidiaGPU reports board power for one GPU index via nvidia-smi.
type nvidiaGPU struct {
	index string
	name  string
	watts *float64
	query *nvidiaQuery
}

func (g *nvidiaGPU) Name() string           { return g.name }
func (g *nvidiaGPU) Kind() model.SourceKind { return model.SourceGPUNvidia }

func (g *nvidiaGPU) Sensors() []Sensor {
	return []Sensor{{Kind: model.SensorPower, Name: "GPU Power", Value: g.watts}}
}

func (g *nvidiaGPU) Update() error {
	rows, err := g.query.rows()
	if err != nil {
		g.watts = nil
		return err
	}
	g.watts = nil
	for _, r := range rows {
		if r.index == g.index {
			g.watts = r.watts
		}
	}
	return nil
}

type nvidiaRow struct {
	index string
	name  string
	watts *float64
}

// nvidiaQuery shares one nvidia-smi invocation between the GPUs of a tick.
type nvidiaQuery struct {
	run      commandRunner
	now      func() time.Time
	cached   []nvidiaRow
	cachedAt time.Time
}

func (q *nvidiaQuery) rows() ([]nvidiaRow, error) {
	at := q.now()
	if q.cached != nil && at.Sub(q.cachedAt) < time.Second {
		return q.cached, nil
	}
	out, err := q.run(nvidiaTimeout, "nvidia-smi",
		"--query-gpu=index,name,power.draw",
		"--format=csv,noheader,nounits")
	if err != nil {
		q.cached = nil
		return nil, err
	}
	q.cached, q.cachedAt = parseNvidia(out), at
	return q.cached, nil
}

func parseNvidia(out string) []nvidiaRow {
	var rows []nvidiaRow
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 3 {
			continue
		}
		row := nvidiaRow{
			index: strings.TrimSpace(parts[0]),
			name:  strings.TrimSpace(parts[1]),
		}
		// "[N/A]" or "[Not Supported]" leaves the value absent
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
			row.watts = value(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func nvidiaDevices(run commandRunner, now func() time.Time) []Device {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}
	q := &nvidiaQuery{run: run, now: now}
	rows, err := q.rows()
	if err != nil {
		return nil
	}
	devs := make([]Device, 0, len(rows))
	for _, r := range rows {
		devs = append(devs, &nvidiaGPU{index: r.index, name: r.name, watts: r.watts, query: q})
	}
	return devs
}

func runCmd(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
