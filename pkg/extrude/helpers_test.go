package extrude

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/extrude/pkg/globe"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fixture is a flat globe with one model unit per degree, seen from above
// by a 200x200 pixel orthographic camera.
type fixture struct {
	terrain  *globe.FlatTerrain
	camera   *globe.Camera
	renderer *headless.Renderer
	cache    *scene.LRUCache
	dc       *scene.DrawContext
}

// newFixture centres the camera on (cx, cy) showing viewHeight degrees.
func newFixture(cx, cy, viewHeight float64) *fixture {
	f := &fixture{
		terrain: globe.NewFlatTerrain(),
		camera: globe.NewOrthoCamera(
			mgl64.Vec3{cx, cy, 1000}, mgl64.Vec3{cx, cy, 0}, mgl64.Vec3{0, 1, 0},
			viewHeight, 200, 200),
		renderer: headless.NewRenderer(),
		cache:    scene.NewLRUCache(64<<20, nil),
	}
	f.dc = &scene.DrawContext{
		Terrain:   f.terrain,
		View:      f.camera,
		Renderer:  f.renderer,
		Resources: f.cache,
		FrameTime: t0,
	}
	return f
}

// pixelAt returns the pixel showing model point (lon, lat).
func (f *fixture) pixelAt(lon, lat float64) image.Point {
	x, y, _, _ := f.camera.Project(mgl64.Vec3{lon, lat, 10})
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

func (f *fixture) frame(t testing.TB, s *Shape) {
	t.Helper()
	require.NoError(t, scene.DrawFrame(f.dc, s))
}

func (f *fixture) frameAt(t testing.TB, s *Shape, at time.Time) {
	t.Helper()
	f.dc.FrameTime = at
	f.frame(t, s)
}

// rect returns a closed rectangular feature.
func rect(x0, y0, x1, y1, height float64) Feature {
	return Feature{
		Polygon:   orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}},
		Height:    height,
		HasHeight: height != 0,
	}
}

func buildDataset(t testing.TB, features ...Feature) *Dataset {
	t.Helper()
	b := NewDatasetBuilder()
	for _, f := range features {
		require.NoError(t, b.Add(f))
	}
	ds, err := b.Build()
	require.NoError(t, err)
	return ds
}

func buildShape(t testing.TB, opts Options, features ...Feature) *Shape {
	t.Helper()
	s, err := NewShape(buildDataset(t, features...), opts)
	require.NoError(t, err)
	return s
}

// quadShape builds a four record tree with capacity 1:
//
//	record 0: bar across the whole dataset at lat 4.5..5.5 (root)
//	record 1: square (1,1)-(2,2) (south-west child)
//	record 2: square (8,8)-(9,9) (north-east child)
//	record 3: bar at lon 4.5..5.5, lat 6..8.5 (root)
//
// All records are 10 m tall.
func quadShape(t testing.TB) *Shape {
	t.Helper()
	opts := DefaultOptions()
	opts.TileCapacity = 1
	return buildShape(t, opts,
		rect(0, 4.5, 10, 5.5, 10),
		rect(1, 1, 2, 2, 10),
		rect(8, 8, 9, 9, 10),
		rect(4.5, 6, 5.5, 8.5, 10),
	)
}

// quadFixture is centred on quadShape's dataset at 0.06 degrees per pixel.
func quadFixture() *fixture {
	return newFixture(5, 5, 12)
}

func record(t testing.TB, s *Shape, i int) *Record {
	t.Helper()
	r, err := s.Dataset().Record(i)
	require.NoError(t, err)
	return r
}

// tiles returns every tile of the shape, parent before children.
func tiles(s *Shape) []*Tile {
	var out []*Tile
	if s.Root() == nil {
		return nil
	}
	s.Root().Walk(func(t *Tile) bool {
		out = append(out, t)
		return true
	})
	return out
}
