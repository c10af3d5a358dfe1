package storage

import (
	"fmt"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
)

// FieldData is the serializable representation of a height field, the
// form handed to mesh-building tools.
type FieldData struct {
	Cols    int       `json:"cols"`
	Rows    int       `json:"rows"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Samples []float64 `json:"samples"` // row-major, index = row*cols + col
}

// FieldDataFromField snapshots f.
func FieldDataFromField(f *heightfield.Field) FieldData {
	lo, hi := f.MinMax()
	return FieldData{
		Cols:    f.Cols(),
		Rows:    f.Rows(),
		Min:     lo,
		Max:     hi,
		Samples: f.Values(),
	}
}

// Field rebuilds a height field, checking the sample count.
func (fd FieldData) Field() (*heightfield.Field, error) {
	f, err := heightfield.New(fd.Cols, fd.Rows)
	if err != nil {
		return nil, err
	}
	if len(fd.Samples) != f.Len() {
		return nil, fmt.Errorf("%w: %d samples for %dx%d field", heightfield.ErrInvalidDimensions, len(fd.Samples), fd.Cols, fd.Rows)
	}
	copy(f.Samples(), fd.Samples)
	return f, nil
}
