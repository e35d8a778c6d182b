// Package scene defines the services a globe layer consumes while it draws:
// terrain sampling, the view, an opaque renderer and a GPU resource cache.
// It also provides the per-frame DrawContext and the drivers that run the
// assembly, ordered drawing and picking phases of a frame.
//
// Example:
//
//	dc := &scene.DrawContext{
//	    Terrain:   globe.NewSphereTerrain(globe.EarthRadius, 1),
//	    View:      camera,
//	    Renderer:  headless.NewRenderer(),
//	    Resources: scene.NewLRUCache(64<<20, nil),
//	    FrameTime: time.Now(),
//	}
//	if err := scene.DrawFrame(dc, layer); err != nil {
//	    log.Fatal(err)
//	}
package scene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/geom"
)

// Terrain samples the globe surface. Points are model coordinates and
// already include vertical exaggeration.
type Terrain interface {
	// SurfacePoint returns the terrain surface point at a location.
	SurfacePoint(lat, lon float64) mgl64.Vec3

	// SurfaceNormal returns the unit normal of the globe at a model point.
	SurfaceNormal(p mgl64.Vec3) mgl64.Vec3

	// GeographicPoint returns the model point at an elevation above the
	// globe's reference surface. The elevation is not exaggerated.
	GeographicPoint(lat, lon, elevation float64) mgl64.Vec3

	// ElevationRange returns the minimum and maximum terrain elevation in
	// a region, without exaggeration.
	ElevationRange(bounds orb.Bound) (min, max float64)

	// VerticalExaggeration returns the factor applied to elevations.
	VerticalExaggeration() float64

	// GlobeStateKey identifies the globe configuration. Geometry computed
	// under one key is invalid under another. Keys must be comparable.
	GlobeStateKey() any
}

// View describes the camera for the current frame.
type View interface {
	EyePoint() mgl64.Vec3
	ModelView() mgl64.Mat4
	Projection() mgl64.Mat4
	Viewport() image.Rectangle

	// Frustum returns the view frustum in model coordinates.
	Frustum() geom.Frustum

	// PickFrustum returns a frustum covering a size x size pixel square
	// centred on a screen point (y down, origin at the viewport's top left).
	PickFrustum(p image.Point, size int) geom.Frustum

	// IsSmall reports whether the extent covers fewer than numPixels pixels
	// on screen.
	IsSmall(e geom.Extent, numPixels int) bool
}

// BufferHandle names a buffer object owned by a Renderer. Zero is never a
// valid handle.
type BufferHandle uint32

// Renderer is the drawing API. Implementations map it onto a real graphics
// API or, in tests, record it.
type Renderer interface {
	// UploadFloats stores data in the buffer h, allocating a new buffer
	// when h is zero, and returns the handle holding the data.
	UploadFloats(h BufferHandle, data []float32) BufferHandle
	UploadIndices(h BufferHandle, data []uint32) BufferHandle
	UploadColors(h BufferHandle, data []uint8) BufferHandle
	DeleteBuffer(h BufferHandle)

	SetProjection(m mgl64.Mat4)
	SetModelView(m mgl64.Mat4)
	SetViewport(r image.Rectangle)

	// SetVertexBuffer selects the xyz float buffer vertices come from.
	SetVertexBuffer(h BufferHandle)

	// SetColorBuffer selects an RGB byte buffer of per-vertex colours.
	// Zero disables per-vertex colour.
	SetColorBuffer(h BufferHandle)

	SetColor(c color.NRGBA)
	SetLineWidth(w float32)

	// SetPicking disables blending, lighting and smoothing so colours
	// reach the framebuffer exactly.
	SetPicking(enabled bool)

	Clear()
	DrawTriangles(indices BufferHandle, offset, count int)
	DrawLines(indices BufferHandle, offset, count int)

	// ReadPixel returns the framebuffer colour at a screen point.
	ReadPixel(p image.Point) color.NRGBA
}

// ResourceCache holds GPU resources keyed by identity. Keys must be
// comparable. The size is a byte count used for eviction.
type ResourceCache interface {
	Get(key any) (any, bool)
	Put(key any, value any, size int64)
	Remove(key any)
}

// Layer is something that can be drawn and picked.
type Layer interface {
	// Render is called once during assembly and again, in ordered
	// rendering mode, for every OrderedRenderable it queued.
	Render(dc *DrawContext) error
}

// OrderedRenderable is a deferred draw request queued during assembly.
type OrderedRenderable interface {
	Render(dc *DrawContext) error
}
