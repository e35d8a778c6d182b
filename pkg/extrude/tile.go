package extrude

import (
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/geom"
)

// Quadrant order of a tile's children.
const (
	southWest = iota
	southEast
	northWest
	northEast
)

// Tile is a node of a shape's quadtree.
//
// A tile owns the records that fit wholly inside its region but inside no
// single quadrant of it. The tree is built once by NewShape and never
// changes shape afterwards; tile membership stays fixed even when records
// are hidden.
type Tile struct {
	shape    *Shape
	bounds   orb.Bound
	level    int
	records  []*Record
	children []*Tile

	// Number of vertex pairs for record points, fixed at build, and for
	// crossing vertices, which grows as records are tessellated.
	vertexCount int
	addedCount  int

	geometry *tileGeometry
	extent   tileExtent

	groups      []*recordGroup
	groupsValid bool
}

// Bounds returns the tile's region.
func (t *Tile) Bounds() orb.Bound { return t.bounds }

// Level returns the tile's depth; the root is level 0.
func (t *Tile) Level() int { return t.level }

// Records returns the records the tile owns directly.
func (t *Tile) Records() []*Record { return t.records }

// Children returns the non-empty child tiles in south-west, south-east,
// north-west, north-east order.
func (t *Tile) Children() []*Tile { return t.children }

// VertexCount returns the number of top/bottom vertex pairs in the tile's
// vertex buffer. Record points come first in record order; pairs for
// vertices created at self-intersections follow once their records have
// been tessellated.
func (t *Tile) VertexCount() int { return t.vertexCount + t.addedCount }

// Extent returns the tile's most recently computed extent. It is empty
// until the tile has been visited by a frame.
func (t *Tile) Extent() geom.Extent {
	if !t.extent.valid {
		return geom.EmptyExtent()
	}
	return t.extent.extent
}

// Walk calls fn for t and its descendants, parent before children and
// children in quadrant order. Returning false skips the tile's children.
func (t *Tile) Walk(fn func(*Tile) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.children {
		c.Walk(fn)
	}
}

// newTile creates a tile and splits it while it is over capacity.
func newTile(s *Shape, bounds orb.Bound, level int, records []*Record) *Tile {
	t := &Tile{
		shape:    s,
		bounds:   bounds,
		level:    level,
		records:  records,
		geometry: newTileGeometry(s.opts),
	}
	if level < s.opts.TileMaxDepth && len(records) > s.opts.TileCapacity {
		t.split()
	}
	return t
}

// split moves every record that fits wholly in a quadrant to that
// quadrant's child. Records straddling the midlines stay. Quadrants left
// without records get no child.
func (t *Tile) split() {
	quads := quadrants(t.bounds)
	var moved [4][]*Record
	kept := make([]*Record, 0)
	for _, r := range t.records {
		placed := false
		for q := range quads {
			if containsBound(quads[q], r.bounds) {
				moved[q] = append(moved[q], r)
				placed = true
				break
			}
		}
		if !placed {
			kept = append(kept, r)
		}
	}
	t.records = kept

	for q := range quads {
		if len(moved[q]) > 0 {
			t.children = append(t.children, newTile(t.shape, quads[q], t.level+1, moved[q]))
		}
	}
}

// assignRecords binds records to their tile and lays out the tile's vertex
// buffer.
func (t *Tile) assignRecords() {
	t.Walk(func(tile *Tile) bool {
		offset := 0
		for _, r := range tile.records {
			r.tile = tile
			r.vertexOffset = offset
			offset += r.numPoints
		}
		tile.vertexCount = offset
		return true
	})
}

// quadrants splits a bound at its midpoints.
func quadrants(b orb.Bound) [4]orb.Bound {
	mid := b.Center()
	return [4]orb.Bound{
		southWest: {Min: b.Min, Max: mid},
		southEast: {Min: orb.Point{mid.Lon(), b.Min.Lat()}, Max: orb.Point{b.Max.Lon(), mid.Lat()}},
		northWest: {Min: orb.Point{b.Min.Lon(), mid.Lat()}, Max: orb.Point{mid.Lon(), b.Max.Lat()}},
		northEast: {Min: mid, Max: b.Max},
	}
}

// containsBound reports whether inner lies wholly inside outer, edges
// included.
func containsBound(outer, inner orb.Bound) bool {
	return inner.Min.Lon() >= outer.Min.Lon() && inner.Max.Lon() <= outer.Max.Lon() &&
		inner.Min.Lat() >= outer.Min.Lat() && inner.Max.Lat() <= outer.Max.Lat()
}

// invalidateGroups discards the tile's grouping; it is rebuilt the next
// time the tile is visible.
func (t *Tile) invalidateGroups() {
	t.groupsValid = false
}

// expire marks the tile's geometry and extent stale.
func (t *Tile) expire() {
	t.geometry.expire()
	t.extent.valid = false
}
