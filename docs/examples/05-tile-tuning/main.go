package main

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/globe"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

var manhattan = orb.Bound{Min: orb.Point{-74.02, 40.70}, Max: orb.Point{-73.93, 40.80}}

// run draws frames of a 25,000 block grid zoomed on one corner and
// reports how much tile work the options caused.
func run(name string, opts extrude.Options) {
	ds, err := extrude.NewGridDataset(manhattan, 250, 100, 0.5, func(col, row int) (float64, bool) {
		return float64(10 + (col*row)%190), true
	})
	if err != nil {
		log.Fatal(err)
	}
	shape, err := extrude.NewShape(ds, opts)
	if err != nil {
		log.Fatal(err)
	}

	dc := &scene.DrawContext{
		Terrain: globe.NewFlatTerrain(),
		View: globe.NewOrthoCamera(
			mgl64.Vec3{-74.01, 40.71, 10000},
			mgl64.Vec3{-74.01, 40.71, 0},
			mgl64.Vec3{0, 1, 0},
			0.02, 800, 600),
		Renderer:  headless.NewRenderer(),
		Resources: scene.NewLRUCache(256<<20, nil),
	}

	start := time.Now()
	clock := start
	for i := 0; i < 600; i++ {
		dc.FrameTime = clock.Add(time.Duration(i) * time.Second / 60)
		if err := scene.DrawFrame(dc, shape); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("%-10s %s in %s\n", name, shape.Stats(), time.Since(start).Round(time.Millisecond))
}

func main() {
	// One large tile: every frame that regenerates rebuilds all 25,000 records
	flat := extrude.DefaultOptions()
	flat.TileCapacity = 25000
	run("one tile", flat)

	// Small tiles: only tiles in view are regenerated
	deep := extrude.DefaultOptions()
	deep.TileCapacity = 500
	deep.TileMaxDepth = 5
	run("deep", deep)

	// Longer lifetimes: fewer regenerations while the view is still
	lazy := deep
	lazy.MinExpiryTime = 10 * time.Second
	lazy.MaxExpiryTime = 20 * time.Second
	run("lazy", lazy)
}
