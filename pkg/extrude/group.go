package extrude

import (
	"github.com/beetlebugorg/extrude/pkg/scene"
)

// indexRange locates a segment of a group's index buffer.
type indexRange struct {
	offset int
	count  int
}

// groupKey identifies a group's index buffer in the resource cache.
type groupKey struct {
	tile  *Tile
	index int
}

// recordGroup is the visible records of a tile drawn with the same
// attributes. Its index buffer holds every member's interior triangles
// followed by every member's outline segments, so either can be drawn or
// skipped without a rebuild.
type recordGroup struct {
	attrs    *Attributes
	records  []*Record
	indices  []uint32
	interior indexRange
	outline  indexRange

	key        groupKey
	iboExpired bool
}

// buildGroups regroups the tile's visible records by attribute identity,
// in order of first appearance.
func (t *Tile) buildGroups(dc *scene.DrawContext) {
	s := t.shape
	previous := len(t.groups)

	var groups []*recordGroup
	byAttrs := make(map[*Attributes]*recordGroup)
	for _, r := range t.records {
		if !r.visible {
			continue
		}
		a := r.activeAttributes(s.attrs, s.highlightAttrs)
		g, ok := byAttrs[a]
		if !ok {
			g = &recordGroup{
				attrs: a,
				key:   groupKey{tile: t, index: len(groups)},
			}
			byAttrs[a] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}

	for _, g := range groups {
		g.build()
	}

	// Release the index buffers of groups that no longer exist.
	for i := len(groups); i < previous; i++ {
		dc.Resources.Remove(groupKey{tile: t, index: i})
	}

	t.groups = groups
	t.groupsValid = true
	s.stats.GroupsRebuilt++
	Logger().Debug("rebuilt record groups",
		"level", t.level,
		"groups", len(groups),
		"records", len(t.records),
	)
}

// build concatenates the members' interior indices, then their outline
// indices, offset to the members' places in the tile vertex buffer.
func (g *recordGroup) build() {
	n := 0
	for _, r := range g.records {
		n += len(r.interior) + len(r.outline)
	}
	g.indices = make([]uint32, 0, n)

	for _, r := range g.records {
		base := uint32(2 * r.vertexOffset)
		for _, k := range r.interior {
			g.indices = append(g.indices, base+k)
		}
	}
	g.interior = indexRange{offset: 0, count: len(g.indices)}

	for _, r := range g.records {
		base := uint32(2 * r.vertexOffset)
		for _, k := range r.outline {
			g.indices = append(g.indices, base+k)
		}
	}
	g.outline = indexRange{offset: g.interior.count, count: len(g.indices) - g.interior.count}
	g.iboExpired = true
}
