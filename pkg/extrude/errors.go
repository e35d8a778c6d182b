package extrude

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/internal/tess"
)

var (
	// ErrNilDrawContext is returned by Render and Pick when called without
	// a draw context.
	ErrNilDrawContext = errors.New("nil draw context")

	// ErrNilDataset is returned by NewShape when called without a dataset.
	ErrNilDataset = errors.New("nil dataset")

	// ErrDatasetInUse is returned by NewShape when the dataset's records
	// already belong to another shape's tile tree.
	ErrDatasetInUse = errors.New("dataset already belongs to a shape")

	// ErrMalformedContour is returned when a record's contours cannot be
	// tessellated.
	ErrMalformedContour = tess.ErrMalformedContour
)

// ErrInvalidCoordinate indicates a vertex outside the geographic range or
// not a finite number.
type ErrInvalidCoordinate struct {
	Record   int
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("record %d: invalid coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Record, e.Lat, e.Lon)
}

// ErrInvalidGeometry indicates a record whose part structure is malformed.
type ErrInvalidGeometry struct {
	Record int
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("record %d: invalid geometry: %s", e.Record, e.Reason)
}

// ErrRecordIndex indicates a record index outside the dataset.
type ErrRecordIndex struct {
	Index int
	Count int
}

func (e *ErrRecordIndex) Error() string {
	return fmt.Sprintf("record index %d out of range [0, %d)", e.Index, e.Count)
}

// ErrUnsupportedShapeType indicates input whose shape type has no polygon
// interpretation.
type ErrUnsupportedShapeType struct {
	Type string
}

func (e *ErrUnsupportedShapeType) Error() string {
	return fmt.Sprintf("unsupported shape type: %s", e.Type)
}
