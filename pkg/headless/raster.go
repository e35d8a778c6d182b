package headless

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ReadPixel returns the colour the recorded draw calls leave at p. The
// sample is taken at the pixel centre with a less-or-equal depth test, so
// a later draw at the same depth wins. Pixels no draw covers read as
// transparent black, the cleared framebuffer.
func (r *Renderer) ReadPixel(p image.Point) color.NRGBA {
	px, py := float64(p.X)+0.5, float64(p.Y)+0.5
	out := color.NRGBA{}
	depth := math.Inf(1)

	for i := range r.calls {
		c := &r.calls[i]
		switch c.Mode {
		case Triangles:
			r.sampleTriangles(c, px, py, &depth, &out)
		case Lines:
			r.sampleLines(c, px, py, &depth, &out)
		}
	}
	return out
}

// window is a vertex projected into window coordinates with y down.
type window struct {
	x, y, z float64
	ok      bool
}

func (r *Renderer) project(c *DrawCall, vertex uint32) window {
	b, ok := r.buffers[c.Vertices]
	if !ok || int(vertex)*3+2 >= len(b.floats) {
		return window{}
	}
	f := b.floats[vertex*3:]
	clip := c.Projection.Mul4(c.ModelView).Mul4x1(mgl64.Vec4{float64(f[0]), float64(f[1]), float64(f[2]), 1})
	if clip[3] <= 0 {
		return window{}
	}
	nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	if nz < -1 || nz > 1 {
		return window{}
	}
	vp := c.Viewport
	return window{
		x:  float64(vp.Min.X) + (nx+1)/2*float64(vp.Dx()),
		y:  float64(vp.Min.Y) + (1-ny)/2*float64(vp.Dy()),
		z:  (nz + 1) / 2,
		ok: true,
	}
}

// vertexColor returns the colour of a vertex: the per-vertex colour when a
// colour buffer is bound, otherwise the draw colour.
func (r *Renderer) vertexColor(c *DrawCall, vertex uint32) color.NRGBA {
	if c.Colors == 0 {
		return c.Color
	}
	b, ok := r.buffers[c.Colors]
	if !ok || int(vertex)*3+2 >= len(b.colors) {
		return c.Color
	}
	rgb := b.colors[vertex*3:]
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

func (r *Renderer) indices(c *DrawCall) []uint32 {
	b, ok := r.buffers[c.Indices]
	if !ok || c.Offset < 0 || c.Offset+c.Count > len(b.indices) {
		return nil
	}
	return b.indices[c.Offset : c.Offset+c.Count]
}

func (r *Renderer) sampleTriangles(c *DrawCall, px, py float64, depth *float64, out *color.NRGBA) {
	idx := r.indices(c)
	for k := 0; k+2 < len(idx); k += 3 {
		a, b, d := r.project(c, idx[k]), r.project(c, idx[k+1]), r.project(c, idx[k+2])
		if !a.ok || !b.ok || !d.ok {
			continue
		}
		area := edge(a, b, d.x, d.y)
		if area == 0 {
			continue
		}
		w0 := edge(b, d, px, py) / area
		w1 := edge(d, a, px, py) / area
		w2 := edge(a, b, px, py) / area
		if w0 < 0 || w1 < 0 || w2 < 0 {
			continue
		}
		z := w0*a.z + w1*b.z + w2*d.z
		if z <= *depth {
			*depth = z
			*out = r.vertexColor(c, idx[k])
		}
	}
}

func (r *Renderer) sampleLines(c *DrawCall, px, py float64, depth *float64, out *color.NRGBA) {
	idx := r.indices(c)
	half := math.Max(float64(c.LineWidth), 1) / 2
	for k := 0; k+1 < len(idx); k += 2 {
		a, b := r.project(c, idx[k]), r.project(c, idx[k+1])
		if !a.ok || !b.ok {
			continue
		}
		dx, dy := b.x-a.x, b.y-a.y
		t := 0.0
		if l2 := dx*dx + dy*dy; l2 > 0 {
			t = math.Max(0, math.Min(1, ((px-a.x)*dx+(py-a.y)*dy)/l2))
		}
		cx, cy := a.x+t*dx, a.y+t*dy
		if math.Hypot(px-cx, py-cy) > half {
			continue
		}
		z := a.z + t*(b.z-a.z)
		if z <= *depth {
			*depth = z
			*out = r.vertexColor(c, idx[k])
		}
	}
}

// edge is the signed area of (a, b, (x, y)) doubled.
func edge(a, b window, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}
