package extrude

import (
	"math"

	"github.com/paulmach/orb"
)

// Feature is one polygon to add to a dataset. The first ring is the outer
// boundary and any further rings are holes.
type Feature struct {
	Polygon orb.Polygon

	// Height is the extrusion height in metres, used when HasHeight is
	// set. Records without a height use the shape's default height.
	Height    float64
	HasHeight bool
}

// Dataset is an immutable collection of records sharing one coordinate
// store. Build one with a DatasetBuilder.
type Dataset struct {
	points  []orb.Point
	parts   []int // Start of each part in points, plus a final sentinel
	records []*Record
	bounds  orb.Bound

	// Range of the records' own heights and the number of records
	// without one.
	minHeight, maxHeight float64
	heightless           int

	index *recordIndex
	owner *Shape
}

// DatasetBuilder accumulates records for a Dataset. The first malformed
// record is reported by the Add call and again by Build.
//
// Example:
//
//	b := extrude.NewDatasetBuilder()
//	b.Add(extrude.Feature{
//	    Polygon:   orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
//	    Height:    25,
//	    HasHeight: true,
//	})
//	ds, err := b.Build()
type DatasetBuilder struct {
	ds  *Dataset
	err error
}

// NewDatasetBuilder returns an empty builder.
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{ds: &Dataset{
		bounds:    emptyBound(),
		minHeight: math.Inf(1),
		maxHeight: math.Inf(-1),
	}}
}

// Add appends a polygon feature.
func (b *DatasetBuilder) Add(f Feature) error {
	points := make([]orb.Point, 0, polygonSize(f.Polygon))
	parts := make([]int, 0, len(f.Polygon))
	for _, ring := range f.Polygon {
		parts = append(parts, len(points))
		points = append(points, ring...)
	}
	return b.AddParts(points, parts, f.Height, f.HasHeight)
}

// AddParts appends a record given shapefile style: a flat point list and
// the offset of the first point of each part.
func (b *DatasetBuilder) AddParts(points []orb.Point, parts []int, height float64, hasHeight bool) error {
	if b.err != nil {
		return b.err
	}
	number := len(b.ds.records)
	if err := validateParts(number, points, parts); err != nil {
		b.err = err
		return err
	}

	ds := b.ds
	base := len(ds.points)
	r := &Record{
		number:    number,
		dataset:   ds,
		firstPart: len(ds.parts),
		lastPart:  len(ds.parts) + len(parts) - 1,
		numPoints: len(points),
		height:    height,
		hasHeight: hasHeight,
		visible:   true,
		bounds:    emptyBound(),
	}
	for _, off := range parts {
		ds.parts = append(ds.parts, base+off)
	}
	for _, p := range points {
		r.bounds = r.bounds.Extend(p)
	}
	ds.points = append(ds.points, points...)
	ds.records = append(ds.records, r)
	ds.bounds = ds.bounds.Union(r.bounds)

	if hasHeight {
		ds.minHeight = math.Min(ds.minHeight, height)
		ds.maxHeight = math.Max(ds.maxHeight, height)
	} else {
		ds.heightless++
	}
	return nil
}

// Build finishes the dataset and indexes its records. The builder must not
// be used afterwards.
func (b *DatasetBuilder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	ds := b.ds
	b.ds = nil
	ds.parts = append(ds.parts, len(ds.points))
	if len(ds.records) == 0 {
		ds.bounds = orb.Bound{}
	}
	ds.index = buildRecordIndex(ds.records)
	return ds, nil
}

func validateParts(number int, points []orb.Point, parts []int) error {
	if len(points) == 0 {
		return &ErrInvalidGeometry{Record: number, Reason: "no points"}
	}
	if len(parts) == 0 {
		return &ErrInvalidGeometry{Record: number, Reason: "no parts"}
	}
	if parts[0] != 0 {
		return &ErrInvalidGeometry{Record: number, Reason: "first part does not start at point 0"}
	}
	for i := 1; i < len(parts); i++ {
		if parts[i] <= parts[i-1] || parts[i] >= len(points) {
			return &ErrInvalidGeometry{Record: number, Reason: "part offsets must increase within the point list"}
		}
	}
	for _, p := range points {
		lon, lat := p.Lon(), p.Lat()
		if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return &ErrInvalidCoordinate{Record: number, Lat: lat, Lon: lon}
		}
	}
	return nil
}

func polygonSize(p orb.Polygon) int {
	n := 0
	for _, r := range p {
		n += len(r)
	}
	return n
}

// emptyBound returns a bound that any Extend replaces.
func emptyBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
}

// Len returns the number of records.
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// Records returns all records in dataset order.
func (ds *Dataset) Records() []*Record {
	return ds.records
}

// Record returns the record at index i.
func (ds *Dataset) Record(i int) (*Record, error) {
	if i < 0 || i >= len(ds.records) {
		return nil, &ErrRecordIndex{Index: i, Count: len(ds.records)}
	}
	return ds.records[i], nil
}

// Bounds returns the union of all record bounds.
func (ds *Dataset) Bounds() orb.Bound {
	return ds.bounds
}

// NumParts returns the number of parts across all records.
func (ds *Dataset) NumParts() int {
	return len(ds.parts) - 1
}

// PartPoints returns the points of one part. The slice aliases the shared
// coordinate store and must not be modified.
func (ds *Dataset) PartPoints(part int) []orb.Point {
	return ds.points[ds.parts[part]:ds.parts[part+1]]
}

// HeightRange returns the smallest and largest height any record is
// extruded to when records without a height use defaultHeight.
func (ds *Dataset) HeightRange(defaultHeight float64) (min, max float64) {
	min, max = ds.minHeight, ds.maxHeight
	if ds.heightless > 0 {
		min = math.Min(min, defaultHeight)
		max = math.Max(max, defaultHeight)
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}
