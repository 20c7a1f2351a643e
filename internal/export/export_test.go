package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
)

func sample(final float64) model.Sample {
	return model.Sample{
		Timestamp: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Interval:  10 * time.Second,
		Estimate:  model.Estimate{Mode: model.ModeDetailed, FinalWatts: final},
		Readings: []model.SensorReading{
			model.Reading(model.SourceCPU, model.SensorPower, "CPU Package", 40),
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(196.70588)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Power usage: 196.7W", got["label"])

	est := got["estimate"].(map[string]any)
	assert.Equal(t, "detailed", est["mode"])

	readings := got["readings"].([]any)
	require.Len(t, readings, 1)
	r := readings[0].(map[string]any)
	assert.Equal(t, "cpu", r["source"])
	assert.Equal(t, "power", r["kind"])
}

func TestStream(t *testing.T) {
	ch := make(chan model.Sample, 2)
	ch <- sample(100)
	ch <- sample(200)
	close(ch)

	var buf bytes.Buffer
	require.NoError(t, Stream(context.Background(), &buf, ch))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"label":"Power usage: 100.0W"`)
	assert.Contains(t, lines[1], `"label":"Power usage: 200.0W"`)
}
