package tess

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, size float64) []orb.Point {
	return []orb.Point{
		{x0, y0},
		{x0 + size, y0},
		{x0 + size, y0 + size},
		{x0, y0 + size},
	}
}

func reversed(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// triangleArea sums the signed area of every triangle.
func triangleArea(verts []orb.Point, tris []uint32) float64 {
	sum := 0.0
	for k := 0; k+2 < len(tris); k += 3 {
		a, b, c := verts[tris[k]], verts[tris[k+1]], verts[tris[k+2]]
		sum += ((b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])) / 2
	}
	return sum
}

func edgeSet(boundary []uint32) map[[2]uint32]bool {
	set := make(map[[2]uint32]bool)
	for k := 0; k+1 < len(boundary); k += 2 {
		set[[2]uint32{boundary[k], boundary[k+1]}] = true
	}
	return set
}

func TestTessellateSquare(t *testing.T) {
	tess := New()
	res, err := tess.Tessellate([][]orb.Point{square(0, 0, 1)})
	require.NoError(t, err)

	assert.Len(t, res.Interior, 6)
	assert.Len(t, res.Boundary, 8)
	assert.InDelta(t, 1.0, triangleArea(res.Vertices, res.Interior), 1e-12)

	want := map[[2]uint32]bool{{0, 1}: true, {1, 2}: true, {2, 3}: true, {3, 0}: true}
	assert.Equal(t, want, edgeSet(res.Boundary))
}

func TestTessellateClockwiseInputWindsCounterClockwise(t *testing.T) {
	tess := New()
	res, err := tess.Tessellate([][]orb.Point{reversed(square(0, 0, 2))})
	require.NoError(t, err)

	assert.InDelta(t, 4.0, triangleArea(res.Vertices, res.Interior), 1e-12)
	for k := 0; k+1 < len(res.Boundary); k += 2 {
		a, b := res.Vertices[res.Boundary[k]], res.Vertices[res.Boundary[k+1]]
		// Interior lies to the left of a counter-clockwise edge; the
		// square's centre is (1, 1).
		cross := (b[0]-a[0])*(1-a[1]) - (b[1]-a[1])*(1-a[0])
		assert.Greater(t, cross, 0.0, "edge %v -> %v", a, b)
	}
}

func TestTessellateClosedRing(t *testing.T) {
	ring := append(square(0, 0, 1), orb.Point{0, 0})
	res, err := New().Tessellate([][]orb.Point{ring})
	require.NoError(t, err)

	assert.Len(t, res.Interior, 6)
	assert.Len(t, res.Boundary, 8)
}

func TestTessellateWithHole(t *testing.T) {
	outer := square(0, 0, 10)
	hole := square(4, 4, 2)
	res, err := New().Tessellate([][]orb.Point{outer, hole})
	require.NoError(t, err)

	// n + 2h - 2 triangles for n vertices and h holes.
	assert.Len(t, res.Interior, (8+2-2)*3)
	assert.InDelta(t, 96.0, triangleArea(res.Vertices, res.Interior), 1e-9)

	// Every outer and hole edge is on the boundary and no edge joins the
	// two rings.
	assert.Len(t, res.Boundary, 16)
	for k := 0; k+1 < len(res.Boundary); k += 2 {
		a, b := res.Boundary[k], res.Boundary[k+1]
		assert.Equal(t, a < 4, b < 4, "boundary edge %d-%d joins outer ring to hole", a, b)
	}
}

func TestTessellateConcave(t *testing.T) {
	// An L shape.
	l := []orb.Point{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	res, err := New().Tessellate([][]orb.Point{l})
	require.NoError(t, err)

	assert.Len(t, res.Interior, 4*3)
	assert.InDelta(t, 3.0, triangleArea(res.Vertices, res.Interior), 1e-12)
	assert.Len(t, res.Boundary, 12)
}

func TestTessellateSelfIntersecting(t *testing.T) {
	// A bow tie whose edges 0-1 and 2-3 cross at (4/3, 4/3).
	ring := []orb.Point{{0, 0}, {4, 4}, {4, 0}, {0, 2}}
	res, err := New().Tessellate([][]orb.Point{ring})
	require.NoError(t, err)

	require.Len(t, res.Added, 1)
	require.Len(t, res.Vertices, 5)
	assert.InDelta(t, 4.0/3, res.Added[0][0], 1e-6)
	assert.InDelta(t, 4.0/3, res.Added[0][1], 1e-6)

	// One triangle per lobe, both counter-clockwise.
	require.Len(t, res.Interior, 6)
	for k := 0; k < len(res.Interior); k += 3 {
		assert.Positive(t, triangleArea(res.Vertices, res.Interior[k:k+3]))
	}
	assert.InDelta(t, 4.0/3+16.0/3, triangleArea(res.Vertices, res.Interior), 1e-5)

	// Each lobe is bounded by three edges, two of them ending at the
	// crossing. The closing diagonal 1-3 is not an input edge.
	edges := edgeSet(res.Boundary)
	assert.Len(t, edges, 6)
	for e := range edges {
		assert.NotEqual(t, [2]uint32{1, 3}, e)
		assert.NotEqual(t, [2]uint32{3, 1}, e)
	}
	crossing := 0
	for e := range edges {
		if e[0] == 4 || e[1] == 4 {
			crossing++
		}
	}
	assert.Equal(t, 4, crossing)
}

func TestTessellateIndexedSelfIntersecting(t *testing.T) {
	// The bow tie again, after two unrelated vertices.
	verts := []orb.Point{{9, 9}, {8, 8}, {0, 0}, {4, 4}, {4, 0}, {0, 2}}
	res, err := New().TessellateIndexed(verts, [][]int{{2, 3, 4, 5}})
	require.NoError(t, err)

	assert.Nil(t, res.Vertices)
	require.Len(t, res.Added, 1)
	all := append(append([]orb.Point{}, verts...), res.Added...)
	assert.Contains(t, res.Interior, uint32(len(verts)), "crossing vertex numbered after the caller's")
	assert.InDelta(t, 20.0/3, triangleArea(all, res.Interior), 1e-5)
	for _, k := range res.Interior {
		assert.NotContains(t, []uint32{0, 1}, k)
	}
}

func TestTessellateDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		contours [][]orb.Point
	}{
		{"no contours", nil},
		{"two points", [][]orb.Point{{{0, 0}, {1, 1}}}},
		{"one point", [][]orb.Point{{{0, 0}}}},
		{"collinear", [][]orb.Point{{{0, 0}, {1, 1}, {2, 2}, {3, 3}}}},
		{"zero area", [][]orb.Point{{{0, 0}, {1, 0}, {0, 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Tessellate(tt.contours)
			require.NoError(t, err)
			assert.Empty(t, res.Interior)
			assert.Empty(t, res.Boundary)
		})
	}
}

func TestTessellateIndexedKeepsCallerIndices(t *testing.T) {
	// Two polygons share one vertex array; the second starts at index 4.
	verts := append(square(0, 0, 1), square(5, 5, 1)...)
	res, err := New().TessellateIndexed(verts, [][]int{{4, 5, 6, 7}})
	require.NoError(t, err)

	assert.Nil(t, res.Vertices)
	assert.Nil(t, res.Added)
	require.Len(t, res.Interior, 6)
	for _, i := range res.Interior {
		assert.GreaterOrEqual(t, i, uint32(4))
		assert.LessOrEqual(t, i, uint32(7))
	}
	assert.InDelta(t, 1.0, triangleArea(verts, res.Interior), 1e-12)
}

func TestTessellateIndexedRepeatable(t *testing.T) {
	verts := []orb.Point{{0, 0}, {4, 0}, {4, 3}, {2, 1}, {0, 3}}
	tess := New()
	first, err := tess.TessellateIndexed(verts, [][]int{{0, 1, 2, 3, 4}})
	require.NoError(t, err)
	second, err := tess.TessellateIndexed(verts, [][]int{{0, 1, 2, 3, 4}})
	require.NoError(t, err)

	assert.Equal(t, first.Interior, second.Interior)
	assert.Equal(t, first.Boundary, second.Boundary)
}

func TestTessellateMalformed(t *testing.T) {
	verts := square(0, 0, 1)

	_, err := New().TessellateIndexed(verts, [][]int{{0, 1, 2, 9}})
	assert.True(t, errors.Is(err, ErrMalformedContour), "got %v", err)

	verts[2] = orb.Point{math.NaN(), 1}
	_, err = New().TessellateIndexed(verts, [][]int{{0, 1, 2, 3}})
	assert.True(t, errors.Is(err, ErrMalformedContour), "got %v", err)
}

func TestIndexBufferGrowth(t *testing.T) {
	var b IndexBuffer
	b.Append(1, 2, 3)
	assert.Equal(t, minBufferCapacity, b.Cap())

	for i := 0; i < minBufferCapacity; i++ {
		b.Append(uint32(i))
	}
	assert.Equal(t, minBufferCapacity+3, b.Len())
	assert.Greater(t, b.Cap(), minBufferCapacity)
	assert.Equal(t, uint32(1), b.Slice()[0])

	capBefore := b.Cap()
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, capBefore, b.Cap())
}

func TestVertexBufferBase(t *testing.T) {
	var b VertexBuffer
	assert.Equal(t, uint32(0), b.Append(orb.Point{1, 1}))

	b.ResetAt(10)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, uint32(10), b.Append(orb.Point{2, 2}))
	assert.Equal(t, uint32(11), b.Append(orb.Point{3, 3}))
	assert.Equal(t, []orb.Point{{2, 2}, {3, 3}}, b.Points())

	b.Reset()
	assert.Equal(t, uint32(0), b.Append(orb.Point{4, 4}))
}

func BenchmarkTessellateCircle(b *testing.B) {
	const n = 512
	ring := make([]orb.Point, n)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / n
		ring[i] = orb.Point{math.Cos(a), math.Sin(a)}
	}
	contours := [][]int{make([]int, n)}
	for i := range contours[0] {
		contours[0][i] = i
	}

	tess := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tess.TessellateIndexed(ring, contours); err != nil {
			b.Fatal(err)
		}
	}
}
