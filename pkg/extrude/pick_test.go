package extrude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/extrude/pkg/scene"
)

func TestPickTwoPasses(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)

	tests := []struct {
		name     string
		lon, lat float64
		record   int
		level    int
	}{
		{"root straddler", 3, 5, 0, 0},
		{"south-west quadrant", 1.5, 1.5, 1, 1},
		{"north-east quadrant", 8.5, 8.5, 2, 1},
		{"root vertical bar", 5, 7.5, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picked, err := s.Pick(f.dc, f.pixelAt(tt.lon, tt.lat))
			require.NoError(t, err)
			require.NotNil(t, picked)
			require.NotNil(t, picked.Record)
			assert.Equal(t, tt.record, picked.Record.Number())
			assert.Same(t, picked.Record.Tile(), picked.Tile)
			assert.Equal(t, tt.level, picked.Tile.Level())
			assert.NotZero(t, scene.PickCode(picked.Color))
		})
	}

	assert.False(t, f.dc.PickingMode, "picking mode restored")
	st := s.Stats()
	assert.Equal(t, 4, st.Picks)
	assert.Equal(t, 4, st.PickHits)
}

func TestPickMiss(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()

	picked, err := s.Pick(f.dc, f.pixelAt(7, 2))
	require.NoError(t, err)
	assert.Nil(t, picked)

	// Off the data entirely: nothing is even assembled.
	f = newFixture(100, 50, 12)
	picked, err = s.Pick(f.dc, f.pixelAt(100, 50))
	require.NoError(t, err)
	assert.Nil(t, picked)
	assert.Equal(t, 2, s.Stats().Picks)
	assert.Zero(t, s.Stats().PickHits)
}

func TestPickWidensOutlines(t *testing.T) {
	// Just outside record 1's east edge, 1.5 pixels away.
	lon, lat := 2.09, 1.5

	s := quadShape(t)
	f := quadFixture()
	picked, err := s.Pick(f.dc, f.pixelAt(lon, lat))
	require.NoError(t, err)
	require.NotNil(t, picked)
	assert.Equal(t, 1, picked.Record.Number())

	opts := DefaultOptions()
	opts.TileCapacity = 1
	opts.OutlinePickWidth = 0
	s = buildShape(t, opts,
		rect(0, 4.5, 10, 5.5, 10),
		rect(1, 1, 2, 2, 10),
		rect(8, 8, 9, 9, 10),
		rect(4.5, 6, 5.5, 8.5, 10),
	)
	picked, err = s.Pick(f.dc, f.pixelAt(lon, lat))
	require.NoError(t, err)
	assert.Nil(t, picked)
}

func TestPickIgnoresHiddenRecords(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	record(t, s, 1).SetVisible(false)

	picked, err := s.Pick(f.dc, f.pixelAt(1.5, 1.5))
	require.NoError(t, err)
	assert.Nil(t, picked)

	record(t, s, 1).SetVisible(true)
	picked, err = s.Pick(f.dc, f.pixelAt(1.5, 1.5))
	require.NoError(t, err)
	require.NotNil(t, picked)
	assert.Equal(t, 1, picked.Record.Number())
}

func TestPickColorBufferReused(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()

	_, err := s.Pick(f.dc, f.pixelAt(3, 5))
	require.NoError(t, err)
	// Root holds ten vertex pairs: twenty RGB vertices.
	require.Len(t, s.pickColors, 60)
	buf := &s.pickColors[0]

	_, err = s.Pick(f.dc, f.pixelAt(1.5, 1.5))
	require.NoError(t, err)
	assert.Len(t, s.pickColors, 60, "never shrinks")
	assert.Same(t, buf, &s.pickColors[0], "smaller tiles reuse the buffer")

	h, ok := cachedHandle(f.cache, pickColorKey{shape: s})
	require.True(t, ok)
	assert.True(t, f.renderer.HasBuffer(h))
}

func TestPickDisabled(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	s.SetEnabled(false)

	picked, err := s.Pick(f.dc, f.pixelAt(1.5, 1.5))
	require.NoError(t, err)
	assert.Nil(t, picked)
	assert.Zero(t, s.Stats().Picks)
}

func TestPickThenHighlight(t *testing.T) {
	s := quadShape(t)
	f := quadFixture()
	f.frame(t, s)

	picked, err := s.Pick(f.dc, f.pixelAt(8.5, 8.5))
	require.NoError(t, err)
	require.NotNil(t, picked)
	picked.Record.SetHighlighted(true)

	f.frame(t, s)
	want := s.DefaultHighlightAttributes().InteriorColor
	assert.Equal(t, want, f.renderer.ReadPixel(f.pixelAt(8.5, 8.5)))
}
