package extrude

import (
	"github.com/paulmach/orb"
)

// Record is one polygon feature of a dataset.
//
// The geometry of a record is fixed. Its display state (visibility,
// highlight and attributes) may change at any time between frames; each
// change regroups the record's tile on the next frame but leaves the tile
// geometry alone.
type Record struct {
	number  int
	dataset *Dataset
	bounds  orb.Bound

	firstPart, lastPart int // Inclusive range into the dataset's parts
	numPoints           int

	height    float64
	hasHeight bool

	visible        bool
	highlighted    bool
	attrs          *Attributes
	highlightAttrs *Attributes

	// Tile membership and the position of the record's vertex pairs in the
	// tile's vertex buffer. Assigned once when the tree is built.
	tile         *Tile
	vertexOffset int

	// Extrusion topology in vertex indices relative to the record's first
	// pair, where pair k has its top vertex at 2k and its bottom vertex at
	// 2k+1. Computed once, the first time the record's tile is
	// regenerated.
	interior    []uint32
	outline     []uint32
	tessellated bool

	// Vertices the tessellator created where the record's edges cross,
	// and the tile pair they start at.
	added       []orb.Point
	addedOffset int
}

// Number returns the record's position in the dataset.
func (r *Record) Number() int { return r.number }

// Bounds returns the record's bounding region.
func (r *Record) Bounds() orb.Bound { return r.bounds }

// FirstPart returns the index of the record's first part in the dataset.
func (r *Record) FirstPart() int { return r.firstPart }

// LastPart returns the index of the record's last part in the dataset.
func (r *Record) LastPart() int { return r.lastPart }

// NumParts returns the number of contours.
func (r *Record) NumParts() int { return r.lastPart - r.firstPart + 1 }

// NumPoints returns the number of points across all parts.
func (r *Record) NumPoints() int { return r.numPoints }

// Points returns the record's points across all parts. The slice aliases
// the dataset's coordinate store and must not be modified.
func (r *Record) Points() []orb.Point {
	start := r.dataset.parts[r.firstPart]
	return r.dataset.points[start : start+r.numPoints]
}

// Polygon returns the record's parts as a polygon, outer ring first.
func (r *Record) Polygon() orb.Polygon {
	poly := make(orb.Polygon, 0, r.NumParts())
	for part := r.firstPart; part <= r.lastPart; part++ {
		poly = append(poly, orb.Ring(r.dataset.PartPoints(part)))
	}
	return poly
}

// Height returns the record's own height and whether it has one.
func (r *Record) Height() (float64, bool) { return r.height, r.hasHeight }

// Tile returns the tile that owns the record, or nil before the record's
// dataset is given to a Shape.
func (r *Record) Tile() *Tile { return r.tile }

// IsVisible reports whether the record is drawn.
func (r *Record) IsVisible() bool { return r.visible }

// SetVisible shows or hides the record.
func (r *Record) SetVisible(visible bool) {
	if r.visible != visible {
		r.visible = visible
		r.didChange()
	}
}

// IsHighlighted reports whether the record is drawn with its highlight
// attributes.
func (r *Record) IsHighlighted() bool { return r.highlighted }

// SetHighlighted switches between the normal and highlight attributes.
func (r *Record) SetHighlighted(highlighted bool) {
	if r.highlighted != highlighted {
		r.highlighted = highlighted
		r.didChange()
	}
}

// Attributes returns the record's normal attributes. Nil means the shape's
// default attributes.
func (r *Record) Attributes() *Attributes { return r.attrs }

// SetAttributes assigns the record's normal attributes by reference.
func (r *Record) SetAttributes(a *Attributes) {
	if r.attrs != a {
		r.attrs = a
		r.didChange()
	}
}

// HighlightAttributes returns the record's highlight attributes. Nil means
// the shape's default highlight attributes.
func (r *Record) HighlightAttributes() *Attributes { return r.highlightAttrs }

// SetHighlightAttributes assigns the record's highlight attributes by
// reference.
func (r *Record) SetHighlightAttributes(a *Attributes) {
	if r.highlightAttrs != a {
		r.highlightAttrs = a
		r.didChange()
	}
}

// didChange invalidates the grouping of the owning tile.
func (r *Record) didChange() {
	if r.tile != nil {
		r.tile.invalidateGroups()
	}
}

// activeAttributes resolves the attributes the record is drawn with.
func (r *Record) activeAttributes(defaults, highlightDefaults *Attributes) *Attributes {
	if r.highlighted {
		if r.highlightAttrs != nil {
			return r.highlightAttrs
		}
		return highlightDefaults
	}
	if r.attrs != nil {
		return r.attrs
	}
	return defaults
}

// contours returns the record's parts as index lists into Points().
func (r *Record) contours() [][]int {
	ds := r.dataset
	start := ds.parts[r.firstPart]
	contours := make([][]int, 0, r.NumParts())
	for part := r.firstPart; part <= r.lastPart; part++ {
		c := make([]int, 0, ds.parts[part+1]-ds.parts[part])
		for k := ds.parts[part]; k < ds.parts[part+1]; k++ {
			c = append(c, k-start)
		}
		contours = append(contours, c)
	}
	return contours
}
