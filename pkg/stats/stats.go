// Package stats computes scalar summary statistics over a temperature matrix.
//
// The median is an exact order statistic taken from a sorted copy of the
// values, never an approximation, so zone boundaries derived from it are
// deterministic and reproducible across runs.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// Frame is the per-frame statistical summary. It is computed fresh for every
// frame; distinct captures are not comparable without renormalization.
type Frame struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`

	// Percentiles maps a requested percentile (0-100) to its value.
	// Populated only when the engine is configured with bands.
	Percentiles map[float64]float64 `json:"percentiles,omitempty"`
}

// Engine computes frame statistics. It is stateless apart from its
// configuration and safe for concurrent use.
type Engine struct {
	bands []float64
}

// New creates an Engine without percentile bands.
func New() *Engine {
	return &Engine{}
}

// NewWithBands creates an Engine that additionally reports the given
// percentiles (0-100) for every frame.
func NewWithBands(bands []float64) (*Engine, error) {
	for _, p := range bands {
		if p < 0 || p > 100 || math.IsNaN(p) {
			return nil, &thermal.InvalidInputError{Reason: fmt.Sprintf("percentile band %v out of range [0,100]", p)}
		}
	}
	sorted := append([]float64(nil), bands...)
	sort.Float64s(sorted)
	return &Engine{bands: sorted}, nil
}

// Compute derives the statistical summary of a matrix. It never modifies the
// matrix and identical input always yields identical output.
func (e *Engine) Compute(m *thermal.Matrix) (Frame, error) {
	if m == nil || m.Len() == 0 {
		return Frame{}, &thermal.InvalidInputError{Reason: "cannot compute statistics of an empty matrix"}
	}

	values := m.Values()
	min, max := values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	f := Frame{
		Min:    min,
		Max:    max,
		Mean:   sum / float64(len(values)),
		Median: exactMedian(sorted),
	}

	if len(e.bands) > 0 {
		f.Percentiles = make(map[float64]float64, len(e.bands))
		for _, p := range e.bands {
			f.Percentiles[p] = stat.Quantile(p/100, stat.Empirical, sorted, nil)
		}
	}

	return f, nil
}

// exactMedian returns the middle order statistic of an ascending slice,
// averaging the two central values for even lengths.
func exactMedian(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
