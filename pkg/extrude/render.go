package extrude

import (
	"image/color"

	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/pkg/geom"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

// vertexKey identifies a tile's vertex buffer in the resource cache.
type vertexKey struct {
	tile *Tile
}

// Render implements scene.Layer. Outside ordered rendering mode it
// assembles the frame and, when any tile is visible, queues the shape as
// an ordered renderable. In ordered rendering mode it draws the tiles
// assembled earlier.
func (s *Shape) Render(dc *scene.DrawContext) error {
	if dc == nil {
		return ErrNilDrawContext
	}
	if err := dc.Validate(); err != nil {
		return err
	}
	if !s.enabled || s.root == nil {
		return nil
	}

	if dc.OrderedRenderingMode {
		return s.drawOrdered(dc)
	}

	s.state = stateAssembling
	s.stats.Frames++
	if err := s.assemble(dc); err != nil {
		s.state = stateDone
		return err
	}
	if len(s.visible) == 0 {
		s.state = stateDone
		return nil
	}
	s.state = stateOrderedForDraw
	dc.AddOrderedRenderable(s)
	return nil
}

// assemble collects the visible tiles and brings their geometry and
// grouping up to date.
func (s *Shape) assemble(dc *scene.DrawContext) error {
	s.visible = s.visible[:0]

	var frustums []geom.Frustum
	if dc.PickingMode {
		frustums = dc.PickFrustums()
	} else {
		frustums = []geom.Frustum{dc.View.Frustum()}
	}
	s.collectVisible(dc, s.root, frustums)
	s.stats.VisibleTiles = len(s.visible)

	eye := dc.View.EyePoint()
	for _, t := range s.visible {
		distance := eye.Sub(t.extentFor(dc).Center()).Len()
		if t.needsRegeneration(dc, distance) {
			if err := t.regenerate(dc, distance); err != nil {
				return errors.Wrapf(err, "regenerate level %d tile", t.level)
			}
		}
		if !t.groupsValid {
			t.buildGroups(dc)
		}
	}
	return nil
}

// collectVisible walks the tree top-down. A tile outside every frustum or
// too small on screen is pruned with its descendants; a visible tile is
// collected when it owns records, and its children are tested in turn.
func (s *Shape) collectVisible(dc *scene.DrawContext, t *Tile, frustums []geom.Frustum) {
	e := t.extentFor(dc)
	if !intersectsAny(frustums, e) || dc.View.IsSmall(e, s.opts.MinTilePixels) {
		return
	}
	if len(t.records) > 0 {
		s.visible = append(s.visible, t)
	}
	for _, c := range t.children {
		s.collectVisible(dc, c, frustums)
	}
}

func intersectsAny(frustums []geom.Frustum, e geom.Extent) bool {
	for _, f := range frustums {
		if f.IntersectsExtent(e) {
			return true
		}
	}
	return false
}

// drawOrdered draws the tiles collected by the last assembly.
func (s *Shape) drawOrdered(dc *scene.DrawContext) error {
	if s.state != stateOrderedForDraw {
		return nil
	}
	s.state = stateDrawing
	for _, t := range s.visible {
		s.bindTile(dc, t)
		s.drawGroups(dc, t, false, color.NRGBA{})
	}
	s.state = stateDone
	return nil
}

// bindTile selects the tile's vertex buffer, uploading it when its
// contents changed, and loads the tile's origin into the model-view.
func (s *Shape) bindTile(dc *scene.DrawContext, t *Tile) {
	r := dc.Renderer
	r.SetVertexBuffer(s.vertexBuffer(dc, t))
	r.SetModelView(dc.View.ModelView().Mul4(t.geometry.transform))
}

func (s *Shape) vertexBuffer(dc *scene.DrawContext, t *Tile) scene.BufferHandle {
	g := t.geometry
	key := vertexKey{tile: t}
	h, ok := cachedHandle(dc.Resources, key)
	if !ok || g.vboExpired {
		h = dc.Renderer.UploadFloats(h, g.vertices)
		dc.Resources.Put(key, h, int64(4*len(g.vertices)))
		g.vboExpired = false
	}
	return h
}

func (s *Shape) indexBuffer(dc *scene.DrawContext, g *recordGroup) scene.BufferHandle {
	h, ok := cachedHandle(dc.Resources, g.key)
	if !ok || g.iboExpired {
		h = dc.Renderer.UploadIndices(h, g.indices)
		dc.Resources.Put(g.key, h, int64(4*len(g.indices)))
		g.iboExpired = false
	}
	return h
}

// cachedHandle returns the buffer cached under key, or zero.
func cachedHandle(cache scene.ResourceCache, key any) (scene.BufferHandle, bool) {
	v, ok := cache.Get(key)
	if !ok {
		return 0, false
	}
	h, ok := v.(scene.BufferHandle)
	return h, ok
}

// drawGroups issues the draw calls of a tile's groups. In picking mode
// every primitive is drawn in pickColor, or in the bound per-vertex colours
// when pickColor is zero, and outlines are widened to OutlinePickWidth.
func (s *Shape) drawGroups(dc *scene.DrawContext, t *Tile, picking bool, pickColor color.NRGBA) {
	r := dc.Renderer
	for _, g := range t.groups {
		a := g.attrs
		drawInterior := a.DrawInterior && g.interior.count > 0
		drawOutline := a.DrawOutline && g.outline.count > 0
		if !drawInterior && !drawOutline {
			continue
		}
		ibo := s.indexBuffer(dc, g)

		if drawInterior {
			if picking {
				r.SetColor(pickColor)
			} else {
				r.SetColor(a.interiorColor())
			}
			r.DrawTriangles(ibo, g.interior.offset, g.interior.count)
			s.stats.DrawCalls++
		}
		if drawOutline {
			width := a.OutlineWidth
			if picking {
				width = max(width, s.opts.OutlinePickWidth)
				r.SetColor(pickColor)
			} else {
				r.SetColor(a.outlineColor())
			}
			r.SetLineWidth(width)
			r.DrawLines(ibo, g.outline.offset, g.outline.count)
			s.stats.DrawCalls++
		}
	}
}
