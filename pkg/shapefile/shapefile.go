// Package shapefile builds extrude datasets from ESRI polygon shapefiles.
//
// Each polygon record becomes one dataset record with its parts in file
// order. The extrusion height is read from the record's DBF row when the
// table has a height column.
//
// Example:
//
//	ds, err := shapefile.Load("buildings.shp", shapefile.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
package shapefile

import (
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/extrude"
)

// Options controls how shapefiles are read.
type Options struct {
	// HeightFields lists DBF column names holding the extrusion height in
	// metres. The first column present in the file is used. Rows whose
	// value is empty or not a number get no height.
	HeightFields []string

	// Bounds, when set, keeps only records whose bounding box intersects
	// it.
	Bounds *orb.Bound

	// Parallel enables concurrent file reading in LoadParallel.
	Parallel bool

	// Workers specifies the number of reader goroutines.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes LoadParallel to continue when a file fails.
	// Failed files are skipped and their errors collected.
	SkipErrors bool

	// Progress is an optional callback called after each file is read.
	Progress func(loaded, total int)

	// ErrorLog is an optional writer for per-file error details.
	ErrorLog io.Writer
}

// DefaultOptions returns options that read the common height column
// spellings and load files in parallel, skipping failures.
func DefaultOptions() Options {
	return Options{
		HeightFields: []string{"height", "Height", "HEIGHT"},
		Parallel:     true,
		Workers:      runtime.NumCPU(),
		SkipErrors:   true,
	}
}

// polygon is one record read from a file, in extrude.DatasetBuilder.AddParts
// form.
type polygon struct {
	points    []orb.Point
	parts     []int
	height    float64
	hasHeight bool
}

// Load reads one polygon shapefile into a dataset. The path must name the
// .shp file; the .dbf file beside it is read for heights when present.
func Load(path string, opts Options) (*extrude.Dataset, error) {
	polys, err := readFile(path, opts)
	if err != nil {
		return nil, err
	}
	b := extrude.NewDatasetBuilder()
	if err := addPolygons(b, path, polys); err != nil {
		return nil, err
	}
	return b.Build()
}

// readFile reads every qualifying polygon record of a file. Null records
// and records without points are skipped.
func readFile(path string, opts Options) ([]polygon, error) {
	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		return nil, errors.Newf("%s: not a .shp file", path)
	}
	r, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()

	switch r.GeometryType {
	case shp.POLYGON, shp.POLYGONZ, shp.POLYGONM:
	default:
		return nil, errors.Wrapf(&extrude.ErrUnsupportedShapeType{Type: shapeTypeName(r.GeometryType)}, "%s", path)
	}

	heightField := findField(r.Fields(), opts.HeightFields)

	var polys []polygon
	skipped := 0
	for r.Next() {
		row, s := r.Shape()
		points, parts, box, ok := polygonParts(s)
		if !ok || len(points) == 0 {
			skipped++
			continue
		}
		if opts.Bounds != nil && !opts.Bounds.Intersects(box) {
			skipped++
			continue
		}

		p := polygon{points: points, parts: parts}
		if heightField >= 0 {
			p.height, p.hasHeight = parseHeight(r.ReadAttribute(row, heightField))
		}
		polys = append(polys, p)
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	extrude.Logger().Debug("read shapefile",
		"path", path,
		"records", len(polys),
		"skipped", skipped,
		"heights", heightField >= 0,
	)
	return polys, nil
}

// polygonParts converts a shape's parts and points. ok is false for null
// shapes and any other non-polygon record.
func polygonParts(s shp.Shape) (points []orb.Point, parts []int, box orb.Bound, ok bool) {
	var rawParts []int32
	var rawPoints []shp.Point
	switch v := s.(type) {
	case *shp.Polygon:
		rawParts, rawPoints = v.Parts, v.Points
	case *shp.PolygonZ:
		rawParts, rawPoints = v.Parts, v.Points
	case *shp.PolygonM:
		rawParts, rawPoints = v.Parts, v.Points
	default:
		return nil, nil, orb.Bound{}, false
	}

	points = make([]orb.Point, len(rawPoints))
	for i, p := range rawPoints {
		points[i] = orb.Point{p.X, p.Y}
	}
	parts = make([]int, len(rawParts))
	for i, off := range rawParts {
		parts[i] = int(off)
	}
	if len(points) > 0 {
		box = orb.MultiPoint(points).Bound()
	}
	return points, parts, box, true
}

func addPolygons(b *extrude.DatasetBuilder, path string, polys []polygon) error {
	for i, p := range polys {
		if err := b.AddParts(p.points, p.parts, p.height, p.hasHeight); err != nil {
			return errors.Wrapf(err, "%s: polygon %d", path, i)
		}
	}
	return nil
}

// findField returns the index of the first of names present in fields, or
// -1.
func findField(fields []shp.Field, names []string) int {
	for _, name := range names {
		for i, f := range fields {
			if f.String() == name {
				return i
			}
		}
	}
	return -1
}

func parseHeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return h, true
}

func shapeTypeName(t shp.ShapeType) string {
	switch t {
	case shp.NULL:
		return "null"
	case shp.POINT:
		return "point"
	case shp.POLYLINE:
		return "polyline"
	case shp.MULTIPOINT:
		return "multipoint"
	case shp.POINTZ:
		return "pointZ"
	case shp.POLYLINEZ:
		return "polylineZ"
	case shp.MULTIPOINTZ:
		return "multipointZ"
	case shp.POINTM:
		return "pointM"
	case shp.POLYLINEM:
		return "polylineM"
	case shp.MULTIPOINTM:
		return "multipointM"
	case shp.MULTIPATCH:
		return "multipatch"
	default:
		return "type " + strconv.Itoa(int(t))
	}
}
