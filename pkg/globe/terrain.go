// Package globe provides reference implementations of the scene services:
// a planar terrain for tests, a spherical terrain backed by golang/geo, and
// a look-at camera.
package globe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadius is the mean Earth radius in metres.
const EarthRadius = 6371008.8

// ElevationFunc returns the terrain elevation in metres at a location.
type ElevationFunc func(lat, lon float64) float64

// rangeSamples is the number of samples per axis ElevationRange takes when
// the elevation varies.
const rangeSamples = 5

// FlatTerrain maps longitude to x, latitude to y and elevation to z. It is
// the terrain used by tests: points are easy to predict and the normal is
// always +z.
type FlatTerrain struct {
	// Scale is the number of model units per degree. Zero means 1.
	Scale float64

	// Elevation is the constant ground elevation.
	Elevation float64

	// Exaggeration is the vertical exaggeration. Zero means 1.
	Exaggeration float64

	// Generation identifies the globe configuration. Changing it
	// invalidates geometry computed against the terrain.
	Generation int
}

// NewFlatTerrain returns a flat terrain with one model unit per degree.
func NewFlatTerrain() *FlatTerrain {
	return &FlatTerrain{Scale: 1, Exaggeration: 1}
}

func (t *FlatTerrain) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// SurfacePoint returns the exaggerated ground point at a location.
func (t *FlatTerrain) SurfacePoint(lat, lon float64) mgl64.Vec3 {
	return t.GeographicPoint(lat, lon, t.Elevation*t.VerticalExaggeration())
}

// SurfaceNormal always returns +z.
func (t *FlatTerrain) SurfaceNormal(mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{0, 0, 1}
}

// GeographicPoint returns the point at an elevation above the z=0 plane.
func (t *FlatTerrain) GeographicPoint(lat, lon, elevation float64) mgl64.Vec3 {
	s := t.scale()
	return mgl64.Vec3{lon * s, lat * s, elevation}
}

// ElevationRange returns the constant ground elevation twice.
func (t *FlatTerrain) ElevationRange(orb.Bound) (min, max float64) {
	return t.Elevation, t.Elevation
}

// VerticalExaggeration returns the exaggeration factor.
func (t *FlatTerrain) VerticalExaggeration() float64 {
	if t.Exaggeration == 0 {
		return 1
	}
	return t.Exaggeration
}

// GlobeStateKey returns a key that changes with Scale and Generation.
func (t *FlatTerrain) GlobeStateKey() any {
	return flatState{scale: t.scale(), generation: t.Generation}
}

type flatState struct {
	scale      float64
	generation int
}

// SphereTerrain is a spherical globe with optional terrain elevations.
// Model coordinates are earth centred: +z through the north pole and +x
// through latitude 0, longitude 0.
type SphereTerrain struct {
	Radius       float64
	Exaggeration float64

	// Elevation samples the terrain. Nil means a smooth sphere.
	Elevation ElevationFunc

	// Generation identifies the globe configuration.
	Generation int
}

// NewSphereTerrain returns a smooth sphere.
func NewSphereTerrain(radius, exaggeration float64) *SphereTerrain {
	return &SphereTerrain{Radius: radius, Exaggeration: exaggeration}
}

func (t *SphereTerrain) elevation(lat, lon float64) float64 {
	if t.Elevation == nil {
		return 0
	}
	return t.Elevation(lat, lon)
}

// SurfacePoint returns the exaggerated terrain point at a location.
func (t *SphereTerrain) SurfacePoint(lat, lon float64) mgl64.Vec3 {
	return t.GeographicPoint(lat, lon, t.elevation(lat, lon)*t.VerticalExaggeration())
}

// SurfaceNormal returns the outward unit normal of the sphere through p.
func (t *SphereTerrain) SurfaceNormal(p mgl64.Vec3) mgl64.Vec3 {
	n := r3.Vector{X: p[0], Y: p[1], Z: p[2]}.Normalize()
	return mgl64.Vec3{n.X, n.Y, n.Z}
}

// GeographicPoint returns the point at an elevation above the sphere.
func (t *SphereTerrain) GeographicPoint(lat, lon, elevation float64) mgl64.Vec3 {
	u := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	v := u.Mul(t.Radius + elevation)
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// ElevationRange samples the elevation over a grid covering the bound. The
// result is exact for a smooth sphere and approximate otherwise.
func (t *SphereTerrain) ElevationRange(b orb.Bound) (min, max float64) {
	if t.Elevation == nil {
		return 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for i := 0; i < rangeSamples; i++ {
		lat := b.Min.Lat() + (b.Max.Lat()-b.Min.Lat())*float64(i)/(rangeSamples-1)
		for j := 0; j < rangeSamples; j++ {
			lon := b.Min.Lon() + (b.Max.Lon()-b.Min.Lon())*float64(j)/(rangeSamples-1)
			e := t.Elevation(lat, lon)
			min = math.Min(min, e)
			max = math.Max(max, e)
		}
	}
	return min, max
}

// VerticalExaggeration returns the exaggeration factor. Zero means 1.
func (t *SphereTerrain) VerticalExaggeration() float64 {
	if t.Exaggeration == 0 {
		return 1
	}
	return t.Exaggeration
}

// GlobeStateKey returns a key that changes with Radius and Generation.
func (t *SphereTerrain) GlobeStateKey() any {
	return sphereState{radius: t.Radius, generation: t.Generation}
}

type sphereState struct {
	radius     float64
	generation int
}

// Position converts a model point back to latitude, longitude and height
// above the sphere.
func (t *SphereTerrain) Position(p mgl64.Vec3) (lat, lon, height float64) {
	v := r3.Vector{X: p[0], Y: p[1], Z: p[2]}
	ll := s2.LatLngFromPoint(s2.Point{Vector: v})
	return ll.Lat.Degrees(), ll.Lng.Degrees(), v.Norm() - t.Radius
}
