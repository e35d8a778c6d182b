package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

func safeLoad(path string) (*extrude.Dataset, error) {
	ds, err := shapefile.Load(path, shapefile.DefaultOptions())
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Newf("shapefile not found: %s", path)
		}

		// Inspect typed errors
		var shapeType *extrude.ErrUnsupportedShapeType
		var coord *extrude.ErrInvalidCoordinate
		var geometry *extrude.ErrInvalidGeometry
		switch {
		case errors.As(err, &shapeType):
			log.Printf("%s holds %s shapes, not polygons", path, shapeType.Type)
		case errors.As(err, &coord):
			log.Printf("%s record %d is not in degrees: lat=%f lon=%f", path, coord.Record, coord.Lat, coord.Lon)
		case errors.As(err, &geometry):
			log.Printf("%s record %d is malformed: %s", path, geometry.Record, geometry.Reason)
		default:
			log.Printf("Failed to load %s: %v", path, err)
		}
		return nil, err
	}

	// Validate the data
	if ds.Len() == 0 {
		log.Printf("Warning: %s contains no polygons", path)
	}
	if lo, hi := ds.HeightRange(1); lo == hi {
		log.Printf("Warning: %s has no height variation", path)
	}
	return ds, nil
}

func main() {
	ds, err := safeLoad("buildings.shp")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Successfully loaded %d records\n", ds.Len())

	// Projected (non-degree) data fails with ErrInvalidCoordinate
	_, err = safeLoad("buildings_utm.shp")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}

	// Nil datasets are rejected by NewShape
	if _, err := extrude.NewShape(nil, extrude.DefaultOptions()); errors.Is(err, extrude.ErrNilDataset) {
		log.Printf("Expected error: %v", err)
	}
}
