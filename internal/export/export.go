// Package export writes samples as JSON for scripting use.
package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Dicklesworthstone/wattmeter/internal/model"
	"github.com/Dicklesworthstone/wattmeter/internal/power"
)

// Record is the JSON shape of one sample.
type Record struct {
	model.Sample
	Label string `json:"label"`
}

func record(s model.Sample) Record {
	return Record{Sample: s, Label: power.Label(s.Estimate)}
}

// WriteJSON writes a single indented sample.
func WriteJSON(w io.Writer, s model.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(record(s))
}

// Stream writes one compact JSON line per sample until the channel closes
// or ctx is done.
func Stream(ctx context.Context, w io.Writer, samples <-chan model.Sample) error {
	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-samples:
			if !ok {
				return nil
			}
			if err := enc.Encode(record(s)); err != nil {
				return err
			}
		}
	}
}
