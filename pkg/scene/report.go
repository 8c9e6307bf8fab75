package scene

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/host"
)

// FrameReport is one frame of a run.
type FrameReport struct {
	Label string `json:"label,omitempty"`
	host.Frame
}

// Report is the result of running a scene.
type Report struct {
	Scene    string         `json:"scene"`
	Frames   []FrameReport  `json:"frames"`
	Snapshot *host.Snapshot `json:"snapshot"`
}

// Last returns the final frame, or nil for an empty report.
func (r *Report) Last() *FrameReport {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[len(r.Frames)-1]
}

// TotalMeasures sums the measure requests of every frame per node.
func (r *Report) TotalMeasures() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Frames {
		for name, c := range f.Counts.Measures {
			out[name] += c
		}
	}
	return out
}

// Remeasured lists the nodes remeasured in any frame after the first, sorted.
func (r *Report) Remeasured() []string {
	seen := make(map[string]bool)
	for _, f := range r.Frames[min(1, len(r.Frames)):] {
		for _, name := range f.Remeasured {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	return nil
}

// ReadReport decodes a report written by [Report.WriteJSON].
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
	}
	return &r, nil
}
