package extrude

import (
	"math"

	"github.com/beetlebugorg/extrude/pkg/geom"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

// extentSamples is the number of samples per axis taken across a tile's
// region when bounding it.
const extentSamples = 3

// extentKey is the state an extent was computed under.
type extentKey struct {
	globe         any
	ve            float64
	baseDepth     float64
	defaultHeight float64
}

type tileExtent struct {
	extent geom.Extent
	key    extentKey
	valid  bool
}

// extentFor returns the tile's extent, recomputing it when the globe, the
// exaggeration, the base depth or the default height changed.
//
// The vertical range runs from the lowest floor to the highest roof any
// record of the dataset could have over the tile's terrain, so a parent's
// extent covers its children's. The children's extents are unioned in as
// well, which makes the enclosure hold whatever the terrain sampling does.
func (t *Tile) extentFor(dc *scene.DrawContext) geom.Extent {
	s := t.shape
	terrain := dc.Terrain
	key := extentKey{
		globe:         terrain.GlobeStateKey(),
		ve:            terrain.VerticalExaggeration(),
		baseDepth:     s.baseDepth,
		defaultHeight: s.defaultHeight,
	}
	if t.extent.valid && t.extent.key == key {
		return t.extent.extent
	}

	minElev, maxElev := terrain.ElevationRange(t.bounds)
	minHeight, maxHeight := s.dataset.HeightRange(s.defaultHeight)
	ve := key.ve
	low := math.Min(minElev*ve-s.baseDepth, (minElev+minHeight)*ve)
	high := math.Max((maxElev+maxHeight)*ve, maxElev*ve-s.baseDepth)

	e := geom.EmptyExtent()
	b := t.bounds
	for i := 0; i < extentSamples; i++ {
		lat := b.Min.Lat() + (b.Max.Lat()-b.Min.Lat())*float64(i)/(extentSamples-1)
		for j := 0; j < extentSamples; j++ {
			lon := b.Min.Lon() + (b.Max.Lon()-b.Min.Lon())*float64(j)/(extentSamples-1)
			e = e.ExtendPoint(terrain.GeographicPoint(lat, lon, low))
			e = e.ExtendPoint(terrain.GeographicPoint(lat, lon, high))
		}
	}
	for _, c := range t.children {
		e = e.Union(c.extentFor(dc))
	}

	t.extent = tileExtent{extent: e, key: key, valid: true}
	return e
}
