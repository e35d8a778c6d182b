package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(c).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorShape(t *testing.T) {
	stats := extrude.Stats{Records: 25000, Tiles: 5, MaxLevel: 1, Frames: 3, VisibleTiles: 4, Picks: 2, PickHits: 1}
	c := NewCollector(Sources{Shape: func() extrude.Stats { return stats }})

	out := scrape(t, c)
	assert.Contains(t, out, "# TYPE extrude_records gauge")
	assert.Contains(t, out, "extrude_records 25000")
	assert.Contains(t, out, "# TYPE extrude_frames_total counter")
	assert.Contains(t, out, "extrude_frames_total 3")
	assert.Contains(t, out, "extrude_visible_tiles 4")
	assert.Contains(t, out, "extrude_pick_hits_total 1")
	assert.NotContains(t, out, "extrude_renderer_")
	assert.NotContains(t, out, "extrude_cache_")
	assert.Contains(t, out, "go_goroutines")

	// Each scrape reads a fresh snapshot.
	stats.Frames = 10
	assert.Contains(t, scrape(t, c), "extrude_frames_total 10")
}

func TestCollectorOptionalSources(t *testing.T) {
	c := NewCollector(Sources{
		Shape:    func() extrude.Stats { return extrude.Stats{} },
		Renderer: func() headless.Stats { return headless.Stats{Buffers: 6, Uploads: 12} },
		Cache:    func() scene.CacheStats { return scene.CacheStats{Entries: 6, Hits: 30, Evictions: 2} },
	})

	out := scrape(t, c)
	assert.Contains(t, out, "extrude_renderer_buffers 6")
	assert.Contains(t, out, "extrude_renderer_uploads_total 12")
	assert.Contains(t, out, "extrude_cache_entries 6")
	assert.Contains(t, out, "extrude_cache_hits_total 30")
	assert.Contains(t, out, "extrude_cache_evictions_total 2")
}

func TestCollectorDescribe(t *testing.T) {
	c := NewCollector(Sources{Shape: func() extrude.Stats { return extrude.Stats{} }})
	ch := make(chan *prometheus.Desc, 64)
	c.Describe(ch)
	close(ch)
	assert.Len(t, ch, len(shapeMetrics()))
}
