package heightfield

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimensions is returned when a grid would have no samples.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrIndexOutOfBounds is the panic value for accesses outside the grid.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
)

// Field is a dense row-major grid of elevation samples.
// Index = row*cols + col.
type Field struct {
	cols, rows int
	values     []float64
}

// New creates a zeroed field with cols×rows samples.
func New(cols, rows int) (*Field, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d samples", ErrInvalidDimensions, cols, rows)
	}
	return &Field{cols: cols, rows: rows, values: make([]float64, cols*rows)}, nil
}

// FromSegments creates a field for a plane split into widthSegments×heightSegments
// quads, i.e. (widthSegments+1)×(heightSegments+1) vertices.
func FromSegments(widthSegments, heightSegments int) (*Field, error) {
	if widthSegments < 1 || heightSegments < 1 {
		return nil, fmt.Errorf("%w: %dx%d segments", ErrInvalidDimensions, widthSegments, heightSegments)
	}
	return New(widthSegments+1, heightSegments+1)
}

// Cols returns the number of samples per row.
func (f *Field) Cols() int { return f.cols }

// Rows returns the number of rows.
func (f *Field) Rows() int { return f.rows }

// Len returns the total number of samples.
func (f *Field) Len() int { return len(f.values) }

// Index returns the flat offset of (col, row). It panics when the
// coordinates fall outside the grid.
func (f *Field) Index(col, row int) int {
	if col < 0 || col >= f.cols || row < 0 || row >= f.rows {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d field", ErrIndexOutOfBounds, col, row, f.cols, f.rows))
	}
	return row*f.cols + col
}

// Get returns the sample at (col, row).
func (f *Field) Get(col, row int) float64 {
	return f.values[f.Index(col, row)]
}

// Set stores v at (col, row).
func (f *Field) Set(col, row int, v float64) {
	f.values[f.Index(col, row)] = v
}

// At returns the sample at flat index i.
func (f *Field) At(i int) float64 { return f.values[i] }

// SetAt stores v at flat index i.
func (f *Field) SetAt(i int, v float64) { f.values[i] = v }

// Samples exposes the backing slice for in-place filters. Callers must not
// retain it past the filter call.
func (f *Field) Samples() []float64 { return f.values }

// Values returns a copy of all samples in row-major order.
func (f *Field) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	return &Field{cols: f.cols, rows: f.rows, values: f.Values()}
}

// Fill sets every sample to v.
func (f *Field) Fill(v float64) {
	for i := range f.values {
		f.values[i] = v
	}
}

// Map replaces every sample with fn(col, row, sample).
func (f *Field) Map(fn func(col, row int, v float64) float64) {
	for row := 0; row < f.rows; row++ {
		base := row * f.cols
		for col := 0; col < f.cols; col++ {
			f.values[base+col] = fn(col, row, f.values[base+col])
		}
	}
}

// MinMax returns the smallest and largest sample.
func (f *Field) MinMax() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Finite reports whether every sample is a finite number.
func (f *Field) Finite() bool {
	for _, v := range f.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
