package main

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/globe"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

func main() {
	ds, err := shapefile.Load("buildings.shp", shapefile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Perspective view over a spherical Earth
	center := ds.Bounds().Center()
	terrain := globe.NewSphereTerrain(globe.EarthRadius, 1)
	target := terrain.SurfacePoint(center.Lat(), center.Lon())
	camera := globe.NewPerspectiveCamera(
		terrain.GeographicPoint(center.Lat()-0.02, center.Lon(), 2000),
		target, terrain.SurfaceNormal(target), 1024, 768)

	dc := &scene.DrawContext{
		Terrain:   terrain,
		View:      camera,
		Renderer:  headless.NewRenderer(),
		Resources: scene.NewLRUCache(256<<20, nil),
		FrameTime: time.Now(),
	}
	if err := scene.DrawFrame(dc, shape); err != nil {
		log.Fatal(err)
	}

	// Pick at the centre of the window: first the tile, then the record
	// within it
	p := image.Pt(512, 384)
	picked, err := shape.Pick(dc, p)
	if err != nil {
		log.Fatal(err)
	}
	if picked == nil || picked.Record == nil {
		fmt.Printf("Nothing at %v\n", p)
		return
	}

	r := picked.Record
	fmt.Printf("Record %d at %v (tile level %d)\n", r.Number(), p, picked.Tile.Level())
	if h, ok := r.Height(); ok {
		fmt.Printf("  Height: %.1f m\n", h)
	}

	// Highlight it on the next frame
	r.SetHighlighted(true)
	dc.FrameTime = dc.FrameTime.Add(time.Second / 60)
	if err := scene.DrawFrame(dc, shape); err != nil {
		log.Fatal(err)
	}
}
