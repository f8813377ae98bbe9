// Package zones partitions a temperature matrix into discrete zones relative
// to the frame median.
package zones

import (
	"fmt"

	"github.com/termoscan/thermal-analyzer/pkg/stats"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// Zone labels a pixel by where its temperature falls relative to the
// in-range band [median-lowOffset, median+highOffset].
type Zone uint8

const (
	// Below marks temperatures strictly colder than median-lowOffset.
	Below Zone = iota
	// InRange marks temperatures inside the band, boundaries inclusive.
	InRange
	// Above marks temperatures strictly hotter than median+highOffset.
	Above
)

// String returns the human-readable label used in reports and legends.
func (z Zone) String() string {
	switch z {
	case Below:
		return "below"
	case InRange:
		return "in-range"
	case Above:
		return "above"
	}
	return fmt.Sprintf("zone(%d)", uint8(z))
}

// Map is the per-pixel zone classification of a matrix. Its dimensions always
// equal the dimensions of the matrix it was derived from.
type Map struct {
	width  int
	height int
	cells  []Zone
}

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// At returns the zone at column x, row y.
func (m *Map) At(x, y int) Zone {
	return m.cells[y*m.width+x]
}

// Cells returns the row-major backing slice. Callers must not modify it.
func (m *Map) Cells() []Zone { return m.cells }

// Count returns how many cells carry the given zone.
func (m *Map) Count(z Zone) int {
	n := 0
	for _, c := range m.cells {
		if c == z {
			n++
		}
	}
	return n
}

// Classify labels every cell of the matrix against the band
// [st.Median-lowOffset, st.Median+highOffset]. Offsets must be non-negative;
// zero offsets collapse the band to the single point {median}, which is a
// valid configuration. Classify is a pure function of its arguments.
func Classify(m *thermal.Matrix, st stats.Frame, lowOffset, highOffset float64) (*Map, error) {
	if m == nil || m.Len() == 0 {
		return nil, &thermal.InvalidInputError{Reason: "cannot classify an empty matrix"}
	}
	if lowOffset < 0 || highOffset < 0 {
		return nil, &thermal.InvalidInputError{Reason: fmt.Sprintf("zone offsets must be non-negative, got %v/%v", lowOffset, highOffset)}
	}
	if st.Min > st.Median || st.Median > st.Max {
		return nil, &thermal.InvalidInputError{Reason: "statistics do not describe the matrix being classified"}
	}

	low := st.Median - lowOffset
	high := st.Median + highOffset

	values := m.Values()
	cells := make([]Zone, len(values))
	for i, v := range values {
		switch {
		case v < low:
			cells[i] = Below
		case v > high:
			cells[i] = Above
		default:
			cells[i] = InRange
		}
	}

	return &Map{width: m.Width(), height: m.Height(), cells: cells}, nil
}
