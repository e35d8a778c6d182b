package main

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/globe"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

// heightBands colours records by height. Records sharing an *Attributes
// are drawn with one draw call per tile.
func heightBands() (low, mid, high *extrude.Attributes) {
	low = extrude.DefaultAttributes()
	low.InteriorColor = color.NRGBA{R: 0x9e, G: 0xca, B: 0xe1, A: 0xff}

	mid = extrude.DefaultAttributes()
	mid.InteriorColor = color.NRGBA{R: 0x42, G: 0x92, B: 0xc6, A: 0xff}

	high = extrude.DefaultAttributes()
	high.InteriorColor = color.NRGBA{R: 0x08, G: 0x45, B: 0x94, A: 0xff}
	high.OutlineWidth = 2
	return low, mid, high
}

func main() {
	ds, err := shapefile.Load("buildings.shp", shapefile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	low, mid, high := heightBands()
	for _, r := range ds.Records() {
		h, ok := r.Height()
		switch {
		case !ok:
			// Keep the shape's default attributes
		case h < 20:
			r.SetAttributes(low)
		case h < 100:
			r.SetAttributes(mid)
		default:
			r.SetAttributes(high)
			r.SetHighlighted(h > 300)
		}
	}

	center := ds.Bounds().Center()
	dc := &scene.DrawContext{
		Terrain: globe.NewFlatTerrain(),
		View: globe.NewOrthoCamera(
			mgl64.Vec3{center.Lon(), center.Lat(), 10000},
			mgl64.Vec3{center.Lon(), center.Lat(), 0},
			mgl64.Vec3{0, 1, 0},
			0.05, 800, 600),
		Renderer:  headless.NewRenderer(),
		Resources: scene.NewLRUCache(256<<20, nil),
		FrameTime: time.Now(),
	}
	if err := scene.DrawFrame(dc, shape); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("First frame:  %d groups built, %d draw calls\n",
		shape.Stats().GroupsRebuilt, shape.Stats().DrawCalls)

	// Editing a shared value restyles every record using it without
	// regrouping
	mid.InteriorOpacity = 0.5
	dc.FrameTime = dc.FrameTime.Add(time.Second / 60)
	if err := scene.DrawFrame(dc, shape); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Second frame: %d groups built, %d draw calls\n",
		shape.Stats().GroupsRebuilt, shape.Stats().DrawCalls)
}
