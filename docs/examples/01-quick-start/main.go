package main

import (
	"fmt"
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
	// Load building footprints
	ds, err := shapefile.Load("buildings.shp", shapefile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Build the tile tree
	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Set up a headless scene looking straight down on the data
	bounds := ds.Bounds()
	center := bounds.Center()
	terrain := globe.NewFlatTerrain()
	camera := globe.NewOrthoCamera(
		mgl64.Vec3{center.Lon(), center.Lat(), 10000},
		mgl64.Vec3{center.Lon(), center.Lat(), 0},
		mgl64.Vec3{0, 1, 0},
		bounds.Max.Lat()-bounds.Min.Lat(), 800, 600)
	renderer := headless.NewRenderer()

	dc := &scene.DrawContext{
		Terrain:   terrain,
		View:      camera,
		Renderer:  renderer,
		Resources: scene.NewLRUCache(256<<20, nil),
		FrameTime: time.Now(),
	}

	// Draw one frame
	if err := scene.DrawFrame(dc, shape); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Records: %d\n", ds.Len())
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.Min.Lon(), bounds.Min.Lat(),
		bounds.Max.Lon(), bounds.Max.Lat())
	fmt.Printf("Shape: %s\n", shape.Stats())
	fmt.Printf("Renderer: %s\n", renderer.Stats())
}
