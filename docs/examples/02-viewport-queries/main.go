package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

func main() {
	ds, err := shapefile.Load("buildings.shp", shapefile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (lower Manhattan)
	viewport := orb.Bound{
		Min: orb.Point{-74.02, 40.70},
		Max: orb.Point{-74.00, 40.72},
	}

	// Query R-tree index for records overlapping the viewport (O(log n))
	records := ds.RecordsInBounds(viewport)
	fmt.Printf("Records in viewport: %d\n", len(records))

	for _, r := range records {
		if h, ok := r.Height(); ok {
			fmt.Printf("  #%d: %d parts, %.1f m\n", r.Number(), r.NumParts(), h)
		} else {
			fmt.Printf("  #%d: %d parts, no height\n", r.Number(), r.NumParts())
		}
	}

	// Point query: which footprints contain a location?
	p := orb.Point{-74.0134, 40.7127}
	for _, r := range ds.RecordsAt(p) {
		fmt.Printf("Record %d contains %v\n", r.Number(), p)
	}
}
