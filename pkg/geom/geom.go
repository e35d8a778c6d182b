// Package geom provides the 3D bounding volumes used to cull tiles: an axis
// aligned Extent and a six-plane Frustum.
//
// All coordinates are model (world) coordinates in float64.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Extent is an axis aligned bounding box. The zero value is a degenerate
// box at the origin; use EmptyExtent for a box that contains nothing.
type Extent struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyExtent returns an extent that contains no points. Extending it with
// a point yields a zero-size box at that point.
func EmptyExtent() Extent {
	inf := math.Inf(1)
	return Extent{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// ExtentOf returns the smallest extent containing the points.
func ExtentOf(points ...mgl64.Vec3) Extent {
	e := EmptyExtent()
	for _, p := range points {
		e = e.ExtendPoint(p)
	}
	return e
}

// IsEmpty reports whether the extent contains no points.
func (e Extent) IsEmpty() bool {
	return e.Min[0] > e.Max[0] || e.Min[1] > e.Max[1] || e.Min[2] > e.Max[2]
}

// ExtendPoint returns the extent grown to include p.
func (e Extent) ExtendPoint(p mgl64.Vec3) Extent {
	for i := 0; i < 3; i++ {
		e.Min[i] = math.Min(e.Min[i], p[i])
		e.Max[i] = math.Max(e.Max[i], p[i])
	}
	return e
}

// Union returns the smallest extent containing both e and o.
func (e Extent) Union(o Extent) Extent {
	if o.IsEmpty() {
		return e
	}
	if e.IsEmpty() {
		return o
	}
	return e.ExtendPoint(o.Min).ExtendPoint(o.Max)
}

// Encloses reports whether o lies entirely inside e. An empty o is
// enclosed by anything.
func (e Extent) Encloses(o Extent) bool {
	if o.IsEmpty() {
		return true
	}
	for i := 0; i < 3; i++ {
		if o.Min[i] < e.Min[i] || o.Max[i] > e.Max[i] {
			return false
		}
	}
	return true
}

// Center returns the centre of the box.
func (e Extent) Center() mgl64.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

// Radius returns half the length of the box diagonal.
func (e Extent) Radius() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.Max.Sub(e.Min).Len() / 2
}

// Corners returns the eight corners of the box.
func (e Extent) Corners() [8]mgl64.Vec3 {
	var c [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[i][axis] = e.Max[axis]
			} else {
				c[i][axis] = e.Min[axis]
			}
		}
	}
	return c
}

// String returns the extent as min/max triples.
func (e Extent) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f]-[%.3f %.3f %.3f]",
		e.Min[0], e.Min[1], e.Min[2], e.Max[0], e.Max[1], e.Max[2])
}

// Plane is the set of points p with N·p + D == 0. Points with a positive
// distance are on the inside.
type Plane struct {
	N mgl64.Vec3
	D float64
}

// Distance returns the signed distance from p to the plane. It is a true
// distance only when N is unit length.
func (p Plane) Distance(v mgl64.Vec3) float64 {
	return p.N.Dot(v) + p.D
}

func (p Plane) normalize() Plane {
	l := p.N.Len()
	if l == 0 {
		return p
	}
	return Plane{N: p.N.Mul(1 / l), D: p.D / l}
}

// Frustum is a convex volume bounded by six inward facing planes: left,
// right, bottom, top, near and far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the frustum of a clip matrix. Passing
// projection*modelview yields planes in model coordinates.
func FrustumFromMatrix(m mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	plane := func(v mgl64.Vec4) Plane {
		return Plane{N: mgl64.Vec3{v[0], v[1], v[2]}, D: v[3]}.normalize()
	}
	return Frustum{Planes: [6]Plane{
		plane(r3.Add(r0)),
		plane(r3.Sub(r0)),
		plane(r3.Add(r1)),
		plane(r3.Sub(r1)),
		plane(r3.Add(r2)),
		plane(r3.Sub(r2)),
	}}
}

// ContainsPoint reports whether p is inside or on every plane.
func (f Frustum) ContainsPoint(p mgl64.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsExtent reports whether the box may overlap the frustum. The
// test is conservative: a box near a frustum corner can be reported as
// intersecting when it is not, never the other way round.
func (f Frustum) IntersectsExtent(e Extent) bool {
	if e.IsEmpty() {
		return false
	}
	for _, pl := range f.Planes {
		// The corner furthest along the plane normal.
		var v mgl64.Vec3
		for axis := 0; axis < 3; axis++ {
			if pl.N[axis] >= 0 {
				v[axis] = e.Max[axis]
			} else {
				v[axis] = e.Min[axis]
			}
		}
		if pl.Distance(v) < 0 {
			return false
		}
	}
	return true
}
