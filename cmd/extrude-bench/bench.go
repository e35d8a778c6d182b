package main

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/extrude/internal/config"
	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/globe"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

// bench owns the scene a shape is drawn into. mu serialises frames and
// picks against metrics scrapes.
type bench struct {
	mu sync.Mutex

	shape    *extrude.Shape
	cfg      config.BenchConfig
	terrain  scene.Terrain
	camera   *globe.Camera
	renderer *headless.Renderer
	cache    *scene.LRUCache
	dc       *scene.DrawContext
	clock    time.Time
	orbit    func(heading float64)
}

func newBench(shape *extrude.Shape, cfg config.BenchConfig) *bench {
	b := &bench{
		shape:    shape,
		cfg:      cfg,
		renderer: headless.NewRenderer(),
		clock:    time.Now(),
	}
	b.cache = scene.NewLRUCache(int64(cfg.CacheMB)<<20, func(_, value any) {
		if h, ok := value.(scene.BufferHandle); ok {
			b.renderer.DeleteBuffer(h)
		}
	})

	bounds := shape.Dataset().Bounds()
	center := bounds.Center()
	span := math.Max(bounds.Max.Lon()-bounds.Min.Lon(), bounds.Max.Lat()-bounds.Min.Lat())
	if span == 0 {
		span = 0.01
	}

	switch cfg.Terrain {
	case "flat":
		t := globe.NewFlatTerrain()
		b.terrain = t
		target := t.SurfacePoint(center.Lat(), center.Lon())
		b.camera = globe.NewOrthoCamera(target.Add(mgl64.Vec3{0, 0, 10000}), target, mgl64.Vec3{0, 1, 0},
			span*1.1, cfg.Width, cfg.Height)
		// Spin the view about the vertical axis.
		b.orbit = func(heading float64) {
			s, c := math.Sincos(mgl64.DegToRad(heading))
			b.camera.Up = mgl64.Vec3{s, c, 0}
		}
	default:
		t := globe.NewSphereTerrain(globe.EarthRadius, 1)
		b.terrain = t
		target := t.SurfacePoint(center.Lat(), center.Lon())
		b.camera = globe.NewPerspectiveCamera(t.GeographicPoint(center.Lat()-span, center.Lon(), cfg.Altitude),
			target, t.SurfaceNormal(target), cfg.Width, cfg.Height)
		// Circle the target at a fixed ground offset and altitude.
		b.orbit = func(heading float64) {
			s, c := math.Sincos(mgl64.DegToRad(heading))
			lat := center.Lat() - span*c
			lon := center.Lon() - span*s/math.Cos(mgl64.DegToRad(center.Lat()))
			b.camera.Eye = t.GeographicPoint(lat, lon, cfg.Altitude)
		}
	}

	b.dc = &scene.DrawContext{
		Terrain:   b.terrain,
		View:      b.camera,
		Renderer:  b.renderer,
		Resources: b.cache,
	}
	return b
}

// frame draws frame i at simulated time clock + i frame intervals.
func (b *bench) frame(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orbit(float64(i) * b.cfg.Orbit)
	b.dc.FrameTime = b.clock.Add(time.Duration(i) * frameInterval)
	return scene.DrawFrame(b.dc, b.shape)
}

func (b *bench) pick(p image.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	po, err := b.shape.Pick(b.dc, p)
	if err != nil {
		return err
	}
	switch {
	case po == nil:
		fmt.Printf("Pick %v: nothing\n", p)
	case po.Record == nil:
		fmt.Printf("Pick %v: tile level %d, no record\n", p, po.Tile.Level())
	default:
		r := po.Record
		h, ok := r.Height()
		height := "default"
		if ok {
			height = fmt.Sprintf("%.1f m", h)
		}
		fmt.Printf("Pick %v: record %d, height %s, bounds %v, tile level %d\n",
			p, r.Number(), height, r.Bounds(), po.Tile.Level())
		r.SetHighlighted(true)
	}
	return nil
}

func (b *bench) report(w io.Writer, elapsed time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.shape.Stats()
	fmt.Fprintf(w, "Shape:    %s\n", s)
	fmt.Fprintf(w, "Renderer: %s\n", b.renderer.Stats())
	cs := b.cache.Stats()
	fmt.Fprintf(w, "Cache:    %d entries, %.2f MB, %.1f%% hits, %d evictions\n",
		cs.Entries, float64(cs.UsedBytes)/(1024*1024), cs.HitRate()*100, cs.Evictions)
	if s.Frames > 0 {
		fmt.Fprintf(w, "Frames:   %d in %s (%s per frame)\n",
			s.Frames, elapsed.Round(time.Millisecond), (elapsed / time.Duration(s.Frames)).Round(time.Microsecond))
	}
}

func (b *bench) shapeStats() extrude.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shape.Stats()
}

func (b *bench) rendererStats() headless.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer.Stats()
}

func (b *bench) cacheStats() scene.CacheStats {
	return b.cache.Stats()
}
