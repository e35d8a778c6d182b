package extrude

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/pkg/scene"
)

// floatsPerPair is the number of floats a record point occupies in a tile
// vertex buffer: top xyz then bottom xyz.
const floatsPerPair = 6

// tileGeometry is a tile's extruded vertex buffer and the state it was
// computed under.
type tileGeometry struct {
	// Vertices relative to origin, so single precision holds them without
	// visible error.
	vertices  []float32
	origin    mgl64.Vec3
	transform mgl64.Mat4

	expiry     expiry
	globeState any
	ve         float64
	generated  bool

	// vboExpired marks vertices as changed since the last upload.
	vboExpired bool
}

func newTileGeometry(opts Options) *tileGeometry {
	return &tileGeometry{
		transform: mgl64.Ident4(),
		expiry: expiry{
			min:           opts.MinExpiryTime,
			max:           opts.MaxExpiryTime,
			approachRatio: opts.ApproachRatio,
		},
	}
}

// isValid reports whether the geometry was computed for the terrain's
// current globe and exaggeration.
func (g *tileGeometry) isValid(terrain scene.Terrain) bool {
	return g.generated &&
		g.globeState == terrain.GlobeStateKey() &&
		g.ve == terrain.VerticalExaggeration()
}

func (g *tileGeometry) expire() {
	g.expiry.expire()
}

// needsRegeneration updates the approach timer with the current eye
// distance and reports whether the geometry is expired or invalid.
func (t *Tile) needsRegeneration(dc *scene.DrawContext, eyeDistance float64) bool {
	g := t.geometry
	g.expiry.adjust(dc.FrameTime, eyeDistance)
	return !g.isValid(dc.Terrain) || g.expiry.isExpired(dc.FrameTime)
}

// regenerate recomputes the tile's vertices in place.
//
// Every record, visible or not, writes its pairs at its fixed offset so
// record topology stays valid. The top of a record is a plane
// perpendicular to the normal at its first point, height metres
// (exaggerated) above that point; the bottom follows the terrain baseDepth
// metres below it. Records are tessellated before the buffer is sized,
// since tessellation can add pairs for crossing vertices.
func (t *Tile) regenerate(dc *scene.DrawContext, eyeDistance float64) error {
	s := t.shape
	g := t.geometry
	terrain := dc.Terrain
	ve := terrain.VerticalExaggeration()

	for _, r := range t.records {
		if !r.tessellated {
			if err := s.tessellate(r); err != nil {
				return err
			}
		}
	}

	n := t.VertexCount() * floatsPerPair
	if cap(g.vertices) < n {
		g.vertices = make([]float32, n)
	} else {
		g.vertices = g.vertices[:n]
	}

	haveOrigin := false
	for _, r := range t.records {
		height := s.defaultHeight
		if r.hasHeight {
			height = r.height
		}

		var normal mgl64.Vec3
		var dot float64
		write := func(pair int, p orb.Point) {
			sp := terrain.SurfacePoint(p.Lat(), p.Lon())
			top := sp.Add(normal.Mul(height*ve - (normal.Dot(sp) - dot))).Sub(g.origin)
			bottom := sp.Sub(normal.Mul(s.baseDepth)).Sub(g.origin)

			v := g.vertices[pair*floatsPerPair : (pair+1)*floatsPerPair]
			v[0], v[1], v[2] = float32(top[0]), float32(top[1]), float32(top[2])
			v[3], v[4], v[5] = float32(bottom[0]), float32(bottom[1]), float32(bottom[2])
		}

		for k, p := range r.Points() {
			if k == 0 {
				sp := terrain.SurfacePoint(p.Lat(), p.Lon())
				if !haveOrigin {
					g.origin = sp
					haveOrigin = true
				}
				normal = terrain.SurfaceNormal(sp)
				dot = normal.Dot(sp)
			}
			write(r.vertexOffset+k, p)
		}
		for k, p := range r.added {
			write(r.addedOffset+k, p)
		}
	}

	g.transform = mgl64.Translate3D(g.origin[0], g.origin[1], g.origin[2])
	g.globeState = terrain.GlobeStateKey()
	g.ve = ve
	g.generated = true
	g.vboExpired = true
	g.expiry.restart(dc.FrameTime, eyeDistance)

	s.stats.TilesRegenerated++
	Logger().Debug("regenerated tile",
		"level", t.level,
		"records", len(t.records),
		"pairs", t.VertexCount(),
	)
	return nil
}

// tessellate derives a record's extrusion topology from its footprint.
// The roof reuses the footprint triangles on the top vertices; every
// boundary edge adds a two triangle wall and two outline segments, the top
// edge and the vertical edge at its first point. Vertices the tessellator
// creates get pairs at the end of the tile's buffer.
func (s *Shape) tessellate(r *Record) error {
	res, err := s.tess.TessellateIndexed(r.Points(), r.contours())
	if err != nil {
		return errors.Wrapf(err, "tessellate record %d", r.number)
	}

	t := r.tile
	r.added = res.Added
	r.addedOffset = t.vertexCount + t.addedCount
	t.addedCount += len(res.Added)

	// pair maps a tessellator index to a pair relative to vertexOffset.
	points := uint32(r.numPoints)
	addedBase := uint32(r.addedOffset - r.vertexOffset)
	pair := func(k uint32) uint32 {
		if k < points {
			return k
		}
		return addedBase + k - points
	}

	interior := make([]uint32, 0, len(res.Interior)+len(res.Boundary)*3)
	for _, k := range res.Interior {
		interior = append(interior, 2*pair(k))
	}
	outline := make([]uint32, 0, len(res.Boundary)*2)
	for e := 0; e+1 < len(res.Boundary); e += 2 {
		a, b := 2*pair(res.Boundary[e]), 2*pair(res.Boundary[e+1])
		interior = append(interior, a, a+1, b, b, a+1, b+1)
		outline = append(outline, a, b, a, a+1)
	}

	r.interior = interior
	r.outline = outline
	r.tessellated = true
	s.stats.RecordsTessellated++
	return nil
}
