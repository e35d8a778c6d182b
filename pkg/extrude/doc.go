// Package extrude draws large polygon datasets as extruded blocks over a
// globe.
//
// A Dataset holds the polygons and their heights. A Shape partitions the
// dataset into a quadtree of tiles once, then each frame draws only the
// tiles in view, regenerating tile geometry on a timer and when the globe
// changes.
//
// # Basic Usage
//
//	b := extrude.NewDatasetBuilder()
//	for _, building := range buildings {
//	    b.Add(extrude.Feature{
//	        Polygon:   building.Footprint,
//	        Height:    building.Height,
//	        HasHeight: building.Height > 0,
//	    })
//	}
//	ds, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Drawing
//
// Shape implements scene.Layer. Drive it with scene.DrawFrame, which runs
// the assembly pass and then the ordered drawing pass:
//
//	dc.FrameTime = time.Now()
//	if err := scene.DrawFrame(dc, shape); err != nil {
//	    log.Fatal(err)
//	}
//
// # Picking
//
// Pick resolves the record under a screen point with two colour-coded
// passes, the first over tiles and the second over the records of the hit
// tile:
//
//	picked, err := shape.Pick(dc, image.Pt(x, y))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if picked != nil && picked.Record != nil {
//	    picked.Record.SetHighlighted(true)
//	}
//
// # Display State
//
// Records carry visibility, highlight and attribute references. Changing
// any of them regroups only the record's tile. Attributes are grouped by
// pointer, so records sharing an *Attributes are drawn together and editing
// its fields restyles them all without regrouping.
//
// SetBaseDepth and SetDefaultHeight change every record's vertices and
// expire the geometry of the whole tree.
package extrude
