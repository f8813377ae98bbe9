package thermal

import "fmt"

// Matrix is a dense 2-D grid of per-pixel temperatures in degrees Celsius,
// produced once by a decoder and treated as read-only afterwards. Values are
// stored row-major.
type Matrix struct {
	width  int
	height int
	pix    []float64
}

// NewMatrix builds a Matrix from row-major pixel data. The pixel slice is
// retained, not copied; callers hand over ownership.
func NewMatrix(width, height int, pix []float64) (*Matrix, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("matrix dimensions must be positive, got %dx%d", width, height)}
	}
	if len(pix) != width*height {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("pixel count %d does not match %dx%d", len(pix), width, height)}
	}
	return &Matrix{width: width, height: height, pix: pix}, nil
}

// FromRows builds a Matrix from a slice of rows, validating that every row
// has the same length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &InvalidInputError{Reason: "matrix is empty"}
	}
	width := len(rows[0])
	pix := make([]float64, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("row %d has %d values, expected %d", i, len(row), width)}
		}
		pix = append(pix, row...)
	}
	return &Matrix{width: width, height: len(rows), pix: pix}, nil
}

// Width returns the number of columns.
func (m *Matrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *Matrix) Height() int { return m.height }

// Len returns the total number of pixels.
func (m *Matrix) Len() int { return len(m.pix) }

// At returns the temperature at column x, row y.
func (m *Matrix) At(x, y int) float64 {
	return m.pix[y*m.width+x]
}

// Values returns the row-major backing slice. Callers must not modify it.
func (m *Matrix) Values() []float64 { return m.pix }
