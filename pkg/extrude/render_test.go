package extrude

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

func TestRenderContextErrors(t *testing.T) {
	s := quadShape(t)

	assert.ErrorIs(t, s.Render(nil), ErrNilDrawContext)
	_, err := s.Pick(nil, image.Point{})
	assert.ErrorIs(t, err, ErrNilDrawContext)

	f := quadFixture()
	f.dc.Resources = nil
	assert.ErrorIs(t, s.Render(f.dc), scene.ErrIncompleteContext)
	_, err = s.Pick(f.dc, image.Point{})
	assert.ErrorIs(t, err, scene.ErrIncompleteContext)
}

func TestRenderStateMachine(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.renderer.Clear()
	assert.Equal(t, stateNotYetOrdered, s.state)

	require.NoError(t, s.Render(f.dc))
	assert.Equal(t, stateOrderedForDraw, s.state)
	require.Len(t, f.dc.OrderedRenderables(), 1)
	assert.Same(t, s, f.dc.OrderedRenderables()[0])
	assert.Empty(t, f.renderer.DrawCalls(), "assembly does not draw")

	f.dc.OrderedRenderingMode = true
	require.NoError(t, s.Render(f.dc))
	assert.Equal(t, stateDone, s.state)
	drawn := len(f.renderer.DrawCalls())
	assert.Equal(t, 6, drawn)

	// A second ordered call in the same frame draws nothing.
	require.NoError(t, s.Render(f.dc))
	assert.Len(t, f.renderer.DrawCalls(), drawn)
	assert.Equal(t, 1, s.Stats().Frames)
}

func TestRenderDrawsGroups(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)

	st := s.Stats()
	assert.Equal(t, 3, st.VisibleTiles)
	assert.Equal(t, 6, st.DrawCalls)
	assert.Equal(t, 1, st.Frames)

	calls := f.renderer.DrawCalls()
	require.Len(t, calls, 6)
	a := s.DefaultAttributes()
	for i, c := range calls {
		if i%2 == 0 {
			assert.Equal(t, headless.Triangles, c.Mode)
			assert.Equal(t, a.InteriorColor, c.Color)
		} else {
			assert.Equal(t, headless.Lines, c.Mode)
			assert.Equal(t, a.OutlineColor, c.Color)
			assert.Equal(t, a.OutlineWidth, c.LineWidth)
		}
		assert.False(t, c.Picking)
	}

	assert.Equal(t, a.InteriorColor, f.renderer.ReadPixel(f.pixelAt(1.5, 1.5)))
	assert.Equal(t, a.InteriorColor, f.renderer.ReadPixel(f.pixelAt(3, 5)))
	assert.Equal(t, color.NRGBA{}, f.renderer.ReadPixel(f.pixelAt(7, 2)))
}

func TestRenderOpacity(t *testing.T) {
	s := quadShape(t)
	s.DefaultAttributes().InteriorOpacity = 0.5
	f := quadFixture()
	f.frame(t, s)

	c := f.renderer.ReadPixel(f.pixelAt(1.5, 1.5))
	assert.Equal(t, uint8(0x80), c.A)
}

func TestRenderHighlight(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	record(t, s, 1).SetHighlighted(true)
	f.frame(t, s)

	want := s.DefaultHighlightAttributes().InteriorColor
	assert.Equal(t, want, f.renderer.ReadPixel(f.pixelAt(1.5, 1.5)))
	assert.Equal(t, s.DefaultAttributes().InteriorColor, f.renderer.ReadPixel(f.pixelAt(8.5, 8.5)))
}

func TestRenderDisabled(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	s.SetEnabled(false)
	assert.False(t, s.IsEnabled())

	f.frame(t, s)
	assert.Empty(t, f.renderer.DrawCalls())
	assert.Zero(t, s.Stats().Frames)
}

func TestRenderCulling(t *testing.T) {
	s := quadShape(t)

	// Looking away from the data.
	f := newFixture(100, 50, 12)
	f.frame(t, s)
	assert.Zero(t, s.Stats().VisibleTiles)
	assert.Empty(t, f.dc.OrderedRenderables())
	assert.Zero(t, s.Stats().TilesRegenerated)

	// Only the south-west quadrant and the root are in view.
	f = newFixture(1.5, 1.5, 2)
	f.frame(t, s)
	assert.Equal(t, 2, s.Stats().VisibleTiles)
	assert.False(t, record(t, s, 2).Tile().geometry.generated)

	// Tiles under MinTilePixels are dropped with their descendants.
	s = quadShape(t)
	s.opts.MinTilePixels = 1 << 20
	f = quadFixture()
	f.frame(t, s)
	assert.Zero(t, s.Stats().VisibleTiles)
}

func TestRenderUploadsOnlyChanges(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)
	st := f.renderer.Stats()
	assert.Equal(t, 6, st.Uploads, "three vertex and three index buffers")

	f.frame(t, s)
	assert.Equal(t, 6, f.renderer.Stats().Uploads)

	// A regroup uploads only that tile's indices.
	record(t, s, 1).SetVisible(false)
	record(t, s, 1).SetVisible(true)
	f.frame(t, s)
	assert.Equal(t, 7, f.renderer.Stats().Uploads)
}

func TestRenderModelViewIncludesTileOrigin(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)

	sw := record(t, s, 1).Tile()
	want := f.camera.ModelView().Mul4(mgl64.Translate3D(1, 1, 0))
	found := false
	for _, c := range f.renderer.DrawCalls() {
		h, _ := cachedHandle(f.cache, vertexKey{tile: sw})
		if c.Vertices == h {
			assert.Equal(t, want, c.ModelView)
			found = true
		}
	}
	assert.True(t, found)
}

func TestStatsString(t *testing.T) {
	s := quadShape(t)
	assert.Contains(t, s.Stats().String(), "4 records in 3 tiles")
	assert.Equal(t, "ordered-for-draw", stateOrderedForDraw.String())
	assert.Equal(t, "not-yet-ordered", stateNotYetOrdered.String())
}
