package extrude

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/extrude/pkg/headless"
)

// lineShape builds a single tile with four records in a row.
func lineShape(t *testing.T) *Shape {
	t.Helper()
	return buildShape(t, DefaultOptions(),
		rect(0, 0, 1, 1, 10),
		rect(2, 0, 3, 1, 10),
		rect(4, 0, 5, 1, 10),
		rect(6, 0, 7, 1, 10),
	)
}

func TestGroupsByAttributeIdentity(t *testing.T) {
	s := lineShape(t)
	shared := &Attributes{InteriorColor: color.NRGBA{R: 0xff, A: 0xff}, InteriorOpacity: 1, DrawInterior: true}
	// Equal values but a different pointer: a separate group.
	twin := *shared

	record(t, s, 0).SetAttributes(shared)
	record(t, s, 2).SetAttributes(shared)
	record(t, s, 1).SetAttributes(&twin)
	record(t, s, 3).SetHighlighted(true)

	f := newFixture(3.5, 0.5, 8)
	f.frame(t, s)

	groups := s.Root().groups
	require.Len(t, groups, 3)
	assert.Same(t, shared, groups[0].attrs)
	assert.Equal(t, []*Record{record(t, s, 0), record(t, s, 2)}, groups[0].records)
	assert.Same(t, &twin, groups[1].attrs)
	assert.Same(t, s.DefaultHighlightAttributes(), groups[2].attrs)
	assert.Equal(t, []*Record{record(t, s, 3)}, groups[2].records)
}

func TestGroupCompleteness(t *testing.T) {
	s := lineShape(t)
	a := DefaultAttributes()
	record(t, s, 1).SetAttributes(a)
	record(t, s, 2).SetVisible(false)
	record(t, s, 3).SetAttributes(a)

	f := newFixture(3.5, 0.5, 8)
	f.frame(t, s)

	seen := make(map[*Record]int)
	for _, g := range s.Root().groups {
		interior, outline := 0, 0
		for _, r := range g.records {
			seen[r]++
			assert.Same(t, g.attrs, r.activeAttributes(s.attrs, s.highlightAttrs))
			interior += len(r.interior)
			outline += len(r.outline)
		}
		assert.Equal(t, indexRange{offset: 0, count: interior}, g.interior)
		assert.Equal(t, indexRange{offset: interior, count: outline}, g.outline)
		assert.Len(t, g.indices, interior+outline)
	}
	for _, r := range s.Dataset().Records() {
		want := 1
		if !r.IsVisible() {
			want = 0
		}
		assert.Equal(t, want, seen[r], "record %d", r.Number())
	}
}

func TestGroupIndicesOffsetToRecords(t *testing.T) {
	s := lineShape(t)
	f := newFixture(3.5, 0.5, 8)
	f.frame(t, s)

	g := s.Root().groups[0]
	require.Len(t, g.records, 4)
	r1 := record(t, s, 1)
	require.Equal(t, 5, r1.vertexOffset)

	// Record 1's interior follows record 0's, shifted past record 0's
	// ten vertices.
	n := len(record(t, s, 0).interior)
	for i, k := range r1.interior {
		assert.Equal(t, k+10, g.indices[n+i])
	}

	h, ok := cachedHandle(f.cache, g.key)
	require.True(t, ok)
	assert.Equal(t, g.indices, f.renderer.Indices(h))
}

func TestAttributeEditDoesNotRegroup(t *testing.T) {
	s := lineShape(t)
	f := newFixture(3.5, 0.5, 8)
	f.frame(t, s)
	rebuilt := s.Stats().GroupsRebuilt

	s.DefaultAttributes().DrawInterior = false
	s.DefaultAttributes().OutlineColor = color.NRGBA{B: 0xff, A: 0xff}
	f.frame(t, s)

	assert.Equal(t, rebuilt, s.Stats().GroupsRebuilt)
	calls := f.renderer.DrawCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, headless.Lines, calls[0].Mode)
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, calls[0].Color)
}

func TestDidChangeInvalidatesOwningTileOnly(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)
	rebuilt := s.Stats().GroupsRebuilt
	for _, tile := range tiles(s) {
		require.True(t, tile.groupsValid)
	}

	r := record(t, s, 1)
	r.SetHighlighted(true)
	for _, tile := range tiles(s) {
		assert.Equal(t, tile != r.Tile(), tile.groupsValid, "level %d tile", tile.level)
	}
	// Geometry is untouched.
	assert.False(t, r.Tile().geometry.expiry.isExpired(t0))

	f.frame(t, s)
	assert.Equal(t, rebuilt+1, s.Stats().GroupsRebuilt)
	assert.Equal(t, 3, s.Stats().TilesRegenerated)
}

func TestSettersIgnoreNoChange(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)

	r := record(t, s, 2)
	r.SetVisible(true)
	r.SetHighlighted(false)
	r.SetAttributes(nil)
	r.SetHighlightAttributes(nil)
	assert.True(t, r.Tile().groupsValid)

	a := DefaultAttributes()
	r.SetHighlightAttributes(a)
	assert.Same(t, a, r.HighlightAttributes())
	assert.False(t, r.Tile().groupsValid)
}

func TestStaleGroupBuffersReleased(t *testing.T) {
	s := lineShape(t)
	record(t, s, 1).SetAttributes(DefaultAttributes())
	f := newFixture(3.5, 0.5, 8)
	f.frame(t, s)

	root := s.Root()
	require.Len(t, root.groups, 2)
	_, ok := f.cache.Get(groupKey{tile: root, index: 1})
	require.True(t, ok)

	record(t, s, 1).SetAttributes(nil)
	f.frame(t, s)
	require.Len(t, root.groups, 1)
	_, ok = f.cache.Get(groupKey{tile: root, index: 1})
	assert.False(t, ok)
}

func TestHiddenRecordsNotDrawn(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	record(t, s, 1).SetVisible(false)
	f.frame(t, s)

	sw := record(t, s, 1).Tile()
	assert.Empty(t, sw.groups)
	assert.Equal(t, color.NRGBA{}, f.renderer.ReadPixel(f.pixelAt(1.5, 1.5)))

	// Root and north-east groups draw interiors and outlines.
	assert.Equal(t, 4, len(f.renderer.DrawCalls()))
}
