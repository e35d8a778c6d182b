package extrude

import (
	"image"
	"image/color"

	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/pkg/scene"
)

// PickedObject is the result of a pick.
type PickedObject struct {
	// Record is the record under the pick point. It is nil when the tile
	// was hit but the record pass found nothing, which only happens when
	// the scene changed between the passes.
	Record *Record

	// Tile is the tile the record belongs to.
	Tile *Tile

	// Color is the pick colour read back for the hit.
	Color color.NRGBA
}

// pickColorKey identifies a shape's pick colour buffer in the resource
// cache.
type pickColorKey struct {
	shape *Shape
}

// Pick resolves the record drawn at screen point p, or returns nil when
// nothing is there.
//
// Picking runs in two passes. The first draws each visible tile in its own
// colour and reads the pixel to find the tile. Only if a tile is hit does
// the second pass draw that tile again with one colour per record.
func (s *Shape) Pick(dc *scene.DrawContext, p image.Point) (*PickedObject, error) {
	if dc == nil {
		return nil, ErrNilDrawContext
	}
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	if !s.enabled || s.root == nil {
		return nil, nil
	}

	s.stats.Picks++
	dc.BeginPicking(p)
	defer dc.EndPicking()

	if err := s.assemble(dc); err != nil {
		return nil, errors.Wrap(err, "assemble pick")
	}
	if len(s.visible) == 0 {
		return nil, nil
	}

	tile := s.pickTile(dc, p)
	if tile == nil {
		return nil, nil
	}
	record, c := s.pickRecord(dc, tile, p)
	if record != nil {
		s.stats.PickHits++
	}
	Logger().Debug("picked",
		"x", p.X,
		"y", p.Y,
		"level", tile.level,
		"record", recordNumber(record),
	)
	return &PickedObject{Record: record, Tile: tile, Color: c}, nil
}

// pickTile draws every visible tile in a unique colour and returns the
// tile at p.
func (s *Shape) pickTile(dc *scene.DrawContext, p image.Point) *Tile {
	r := dc.Renderer
	r.Clear()
	byCode := make(map[uint32]*Tile, len(s.visible))
	for _, t := range s.visible {
		c := dc.UniquePickColor()
		byCode[scene.PickCode(c)] = t
		s.bindTile(dc, t)
		s.drawGroups(dc, t, true, c)
	}
	return byCode[scene.PickCode(r.ReadPixel(p))]
}

// pickRecord draws one tile with a unique colour per record and returns
// the record at p. Every vertex pair is coloured, including those of hidden
// records, so the colour buffer lines up with the vertex buffer.
func (s *Shape) pickRecord(dc *scene.DrawContext, t *Tile, p image.Point) (*Record, color.NRGBA) {
	r := dc.Renderer
	r.Clear()

	n := t.VertexCount() * 2 * 3
	if cap(s.pickColors) < n {
		s.pickColors = make([]uint8, n)
	}
	colors := s.pickColors[:n]

	byCode := make(map[uint32]*Record, len(t.records))
	for _, rec := range t.records {
		c := dc.UniquePickColor()
		byCode[scene.PickCode(c)] = rec
		fillColor(colors, rec.vertexOffset, rec.numPoints, c)
		fillColor(colors, rec.addedOffset, len(rec.added), c)
	}

	key := pickColorKey{shape: s}
	h, _ := cachedHandle(dc.Resources, key)
	h = r.UploadColors(h, colors)
	dc.Resources.Put(key, h, int64(cap(s.pickColors)))

	s.bindTile(dc, t)
	r.SetColorBuffer(h)
	s.drawGroups(dc, t, true, color.NRGBA{})
	r.SetColorBuffer(0)

	c := r.ReadPixel(p)
	return byCode[scene.PickCode(c)], c
}

// fillColor colours n vertex pairs starting at pair first.
func fillColor(colors []uint8, first, n int, c color.NRGBA) {
	for v := 2 * first; v < 2*(first+n); v++ {
		colors[3*v], colors[3*v+1], colors[3*v+2] = c.R, c.G, c.B
	}
}

func recordNumber(r *Record) int {
	if r == nil {
		return -1
	}
	return r.number
}
