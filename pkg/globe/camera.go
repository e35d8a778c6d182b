package globe

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/extrude/pkg/geom"
)

// Camera is a look-at camera implementing scene.View. It projects either in
// perspective or orthographically.
//
// Example:
//
//	cam := globe.NewOrthoCamera(
//	    mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0},
//	    10, 800, 600)
//	visible := cam.Frustum().IntersectsExtent(extent)
type Camera struct {
	Eye    mgl64.Vec3
	Center mgl64.Vec3
	Up     mgl64.Vec3

	// FovY is the vertical field of view in degrees for perspective
	// cameras.
	FovY float64

	// Orthographic selects an orthographic projection ViewHeight model
	// units tall.
	Orthographic bool
	ViewHeight   float64

	Near, Far float64

	Width, Height int
}

// NewPerspectiveCamera returns a perspective camera with a 45 degree field
// of view. Near and far are derived from the eye distance.
func NewPerspectiveCamera(eye, center, up mgl64.Vec3, width, height int) *Camera {
	d := eye.Sub(center).Len()
	return &Camera{
		Eye:    eye,
		Center: center,
		Up:     up,
		FovY:   45,
		Near:   math.Max(d*1e-3, 1e-3),
		Far:    d * 4,
		Width:  width,
		Height: height,
	}
}

// NewOrthoCamera returns an orthographic camera showing viewHeight model
// units vertically.
func NewOrthoCamera(eye, center, up mgl64.Vec3, viewHeight float64, width, height int) *Camera {
	d := eye.Sub(center).Len()
	return &Camera{
		Eye:          eye,
		Center:       center,
		Up:           up,
		Orthographic: true,
		ViewHeight:   viewHeight,
		Near:         math.Max(d*1e-3, 1e-3),
		Far:          d * 4,
		Width:        width,
		Height:       height,
	}
}

func (c *Camera) aspect() float64 {
	if c.Height == 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// EyePoint returns the eye position.
func (c *Camera) EyePoint() mgl64.Vec3 { return c.Eye }

// ModelView returns the look-at matrix.
func (c *Camera) ModelView() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Center, c.Up)
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	if c.Orthographic {
		hh := c.ViewHeight / 2
		hw := hh * c.aspect()
		return mgl64.Ortho(-hw, hw, -hh, hh, c.Near, c.Far)
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.aspect(), c.Near, c.Far)
}

// Viewport returns the window rectangle.
func (c *Camera) Viewport() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Frustum returns the view frustum in model coordinates.
func (c *Camera) Frustum() geom.Frustum {
	return geom.FrustumFromMatrix(c.Projection().Mul4(c.ModelView()))
}

// PickFrustum returns the frustum through a size x size pixel square
// centred on p. Screen y grows downwards.
func (c *Camera) PickFrustum(p image.Point, size int) geom.Frustum {
	if size < 1 {
		size = 1
	}
	vp := c.Viewport()
	x0 := float64(p.X - size/2)
	y0 := float64(p.Y - size/2)
	x1, y1 := x0+float64(size), y0+float64(size)

	nx0 := 2*(x0-float64(vp.Min.X))/float64(vp.Dx()) - 1
	nx1 := 2*(x1-float64(vp.Min.X))/float64(vp.Dx()) - 1
	ny0 := 1 - 2*(y1-float64(vp.Min.Y))/float64(vp.Dy())
	ny1 := 1 - 2*(y0-float64(vp.Min.Y))/float64(vp.Dy())

	// Stretch the pick square to fill clip space.
	sx, sy := 2/(nx1-nx0), 2/(ny1-ny0)
	pick := mgl64.Translate3D(-(nx1+nx0)/(nx1-nx0), -(ny1+ny0)/(ny1-ny0), 0).
		Mul4(mgl64.Scale3D(sx, sy, 1))
	return geom.FrustumFromMatrix(pick.Mul4(c.Projection()).Mul4(c.ModelView()))
}

// PixelSizeAtDistance returns the size in model units of one pixel at a
// distance from the eye.
func (c *Camera) PixelSizeAtDistance(d float64) float64 {
	if c.Height == 0 {
		return 0
	}
	if c.Orthographic {
		return c.ViewHeight / float64(c.Height)
	}
	return 2 * d * math.Tan(mgl64.DegToRad(c.FovY)/2) / float64(c.Height)
}

// IsSmall reports whether the extent's diameter covers fewer than numPixels
// pixels. Extents around the eye are never small.
func (c *Camera) IsSmall(e geom.Extent, numPixels int) bool {
	if e.IsEmpty() {
		return true
	}
	r := e.Radius()
	d := e.Center().Sub(c.Eye).Len() - r
	if d <= 0 {
		return false
	}
	px := c.PixelSizeAtDistance(d)
	if px <= 0 {
		return false
	}
	return 2*r/px < float64(numPixels)
}

// Project returns the window position of p, with y down, and its depth in
// [0, 1]. ok is false when p is behind the eye.
func (c *Camera) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := c.Projection().Mul4(c.ModelView()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	vp := c.Viewport()
	x = float64(vp.Min.X) + (ndc[0]+1)/2*float64(vp.Dx())
	y = float64(vp.Min.Y) + (1-ndc[1])/2*float64(vp.Dy())
	return x, y, (ndc[2] + 1) / 2, true
}
