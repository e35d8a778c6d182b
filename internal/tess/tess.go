// Package tess triangulates polygons with holes and reports the triangle
// edges that lie on the polygon boundary.
//
// The first contour of a polygon is its outer ring and any further contours
// are holes, which is the part order shapefiles use. Regions are filled by
// the even-odd rule, so contours may wind in either direction and a ring
// that crosses itself fills each of its lobes. Where edges cross, a new
// vertex is created at the crossing. Output triangles and boundary edges are
// always counter-clockwise in the (x, y) plane.
//
// The plane sweep is done by libtess2, which stores single precision
// coordinates. Contours are shifted to the first vertex of the outer ring
// before they are handed over, so only the polygon's own extent has to fit
// in a float32.
package tess

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	libtess2 "github.com/hajimehoshi/go-libtess2"
	"github.com/paulmach/orb"
)

// ErrMalformedContour is returned when a contour refers to a vertex that
// does not exist or holds a non-finite coordinate. Tessellation stops at the
// first malformed contour; nothing is emitted for the polygon.
var ErrMalformedContour = errors.New("malformed contour")

// ErrSweepFailed is returned when the plane sweep gives up on a polygon.
var ErrSweepFailed = errors.New("tessellation sweep failed")

// Result holds the output of one tessellation.
//
// Interior lists triangles, three indices each. Boundary lists boundary
// edges, two indices each. Added holds the vertices created where edges
// cross, in insertion order.
//
// In owned mode Vertices holds the input points followed by Added, and
// indices refer to Vertices. In indexed mode Vertices is nil, indices below
// len(vertices) refer to the caller's array and index len(vertices)+j
// refers to Added[j].
type Result struct {
	Vertices []orb.Point
	Added    []orb.Point
	Interior []uint32
	Boundary []uint32
}

type coordKey [2]float32

// Tessellator triangulates polygons. Its scratch buffers are reused across
// calls, so a single Tessellator should not be shared between goroutines.
type Tessellator struct {
	interior IndexBuffer
	boundary IndexBuffer
	vertices VertexBuffer
	added    VertexBuffer

	contours []libtess2.Contour
	lookup   map[coordKey]uint32
	resolved []uint32
	points   []orb.Point
	edges    map[uint64]int
}

// New returns a Tessellator with empty scratch buffers.
func New() *Tessellator {
	return &Tessellator{
		lookup: make(map[coordKey]uint32),
		edges:  make(map[uint64]int),
	}
}

// Tessellate triangulates a polygon given as contours of points. The points
// are copied into the result's Vertices, followed by any vertices created
// at edge crossings.
func (t *Tessellator) Tessellate(contours [][]orb.Point) (*Result, error) {
	t.vertices.Reset()
	indexed := make([][]int, len(contours))
	for c, contour := range contours {
		indexed[c] = make([]int, len(contour))
		for k, p := range contour {
			indexed[c][k] = int(t.vertices.Append(p))
		}
	}

	n := t.vertices.Len()
	if err := t.tessellate(t.vertices.Points()[:n:n], indexed, &t.vertices); err != nil {
		return nil, err
	}

	verts := t.vertices.Points()
	res := t.result()
	res.Vertices = make([]orb.Point, len(verts))
	copy(res.Vertices, verts)
	if len(verts) > n {
		res.Added = res.Vertices[n:]
	}
	return res, nil
}

// TessellateIndexed triangulates a polygon whose contours are lists of
// indices into vertices. This is the reference-only mode: no coordinates
// are copied and the result indices are the caller's indices, so the same
// topology can be reused while the vertices' 3D positions change. Vertices
// created at edge crossings are returned in Result.Added and numbered from
// len(vertices) on.
func (t *Tessellator) TessellateIndexed(vertices []orb.Point, contours [][]int) (*Result, error) {
	t.added.ResetAt(len(vertices))
	if err := t.tessellate(vertices, contours, &t.added); err != nil {
		return nil, err
	}
	res := t.result()
	if t.added.Len() > 0 {
		res.Added = make([]orb.Point, t.added.Len())
		copy(res.Added, t.added.Points())
	}
	return res, nil
}

func (t *Tessellator) result() *Result {
	return &Result{
		Interior: t.interior.Copy(),
		Boundary: t.boundary.Copy(),
	}
}

// tessellate fills the interior and boundary buffers. New vertices are
// appended to out, whose Append result is the index triangles use.
func (t *Tessellator) tessellate(vertices []orb.Point, contours [][]int, out *VertexBuffer) error {
	for c, contour := range contours {
		for _, k := range contour {
			if k < 0 || k >= len(vertices) {
				return errors.Wrapf(ErrMalformedContour, "contour %d: index %d outside %d vertices", c, k, len(vertices))
			}
			p := vertices[k]
			if !isFinite(p[0]) || !isFinite(p[1]) {
				return errors.Wrapf(ErrMalformedContour, "contour %d: vertex %d is not finite", c, k)
			}
		}
	}

	t.interior.Reset()
	t.boundary.Reset()
	if len(contours) == 0 || degenerate(vertices, contours[0]) {
		return nil
	}

	origin := vertices[contours[0][0]]
	clear(t.lookup)
	t.contours = t.contours[:0]
	for _, contour := range contours {
		if degenerate(vertices, contour) {
			continue
		}
		lc := make(libtess2.Contour, len(contour))
		for j, k := range contour {
			lc[j] = libtess2.Vertex{
				X: float32(vertices[k][0] - origin[0]),
				Y: float32(vertices[k][1] - origin[1]),
			}
			key := coordKey{lc[j].X, lc[j].Y}
			if _, ok := t.lookup[key]; !ok {
				t.lookup[key] = uint32(k)
			}
		}
		t.contours = append(t.contours, lc)
	}

	elements, swept, err := sweep(t.contours)
	if err != nil {
		return err
	}

	// Map sweep vertices back to input indices; anything unknown was made
	// at a crossing.
	t.resolved = t.resolved[:0]
	t.points = t.points[:0]
	for _, v := range swept {
		p := orb.Point{float64(v.X) + origin[0], float64(v.Y) + origin[1]}
		k, ok := t.lookup[coordKey{v.X, v.Y}]
		if ok {
			p = vertices[k]
		} else {
			k = out.Append(p)
		}
		t.resolved = append(t.resolved, k)
		t.points = append(t.points, p)
	}

	for e := 0; e+2 < len(elements); e += 3 {
		i, j, k := elements[e], elements[e+1], elements[e+2]
		if i < 0 || j < 0 || k < 0 {
			continue
		}
		a, b, c := t.resolved[i], t.resolved[j], t.resolved[k]
		if a == b || b == c || a == c {
			continue
		}
		if cross(t.points[i], t.points[j], t.points[k]) < 0 {
			b, c = c, b
		}
		t.interior.Append(a, b, c)
	}

	t.extractBoundary()
	return nil
}

// sweep runs libtess2 over the contours, turning its assertion panics into
// errors.
func sweep(contours []libtess2.Contour) (elements []int, vertices []libtess2.Vertex, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrSweepFailed, "%v", r)
		}
	}()
	elements, vertices, err = libtess2.Tesselate(contours, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, nil, errors.Mark(errors.Wrap(err, "tessellate"), ErrSweepFailed)
	}
	return elements, vertices, nil
}

// extractBoundary keeps every triangle edge used by exactly one triangle.
// Edges inside the filled region, including those ending at crossing
// vertices, are shared and drop out.
func (t *Tessellator) extractBoundary() {
	clear(t.edges)
	tris := t.interior.Slice()
	for k := 0; k+2 < len(tris); k += 3 {
		for e := 0; e < 3; e++ {
			t.edges[edgeKey(tris[k+e], tris[k+(e+1)%3])]++
		}
	}
	for k := 0; k+2 < len(tris); k += 3 {
		for e := 0; e < 3; e++ {
			a, b := tris[k+e], tris[k+(e+1)%3]
			if t.edges[edgeKey(a, b)] == 1 {
				t.boundary.Append(a, b)
			}
		}
	}
}

// degenerate reports whether a contour has fewer than three points or no
// area.
func degenerate(vertices []orb.Point, contour []int) bool {
	if len(contour) < 3 {
		return true
	}
	sum := 0.0
	prev := vertices[contour[len(contour)-1]]
	for _, k := range contour {
		p := vertices[k]
		sum += (prev[0] - p[0]) * (p[1] + prev[1])
		prev = p
	}
	return sum == 0
}

// cross is twice the signed area of abc; positive when abc turns
// counter-clockwise.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

func edgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String summarizes the result for debugging.
func (r *Result) String() string {
	return fmt.Sprintf("%d triangles, %d boundary edges, %d added vertices",
		len(r.Interior)/3, len(r.Boundary)/2, len(r.Added))
}
