// Package metrics exports shape, renderer and resource cache counters to
// prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/headless"
	"github.com/beetlebugorg/extrude/pkg/scene"
)

const namespace = "extrude"

// Sources supplies the stats snapshot for each scrape. Shape is required;
// the others are optional. The functions must be safe to call from the
// scraping goroutine.
type Sources struct {
	Shape    func() extrude.Stats
	Renderer func() headless.Stats
	Cache    func() scene.CacheStats
}

type snapshot struct {
	shape    extrude.Stats
	renderer headless.Stats
	cache    scene.CacheStats
}

type metric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*snapshot) float64
}

func newMetric(name, help string, kind prometheus.ValueType, value func(*snapshot) float64) metric {
	return metric{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil),
		kind:  kind,
		value: value,
	}
}

var (
	counter = prometheus.CounterValue
	gauge   = prometheus.GaugeValue
)

func shapeMetrics() []metric {
	return []metric{
		newMetric("records", "Records in the dataset.", gauge,
			func(s *snapshot) float64 { return float64(s.shape.Records) }),
		newMetric("tiles", "Tiles in the tile tree.", gauge,
			func(s *snapshot) float64 { return float64(s.shape.Tiles) }),
		newMetric("tile_max_level", "Deepest tile level.", gauge,
			func(s *snapshot) float64 { return float64(s.shape.MaxLevel) }),
		newMetric("visible_tiles", "Tiles collected by the last frame.", gauge,
			func(s *snapshot) float64 { return float64(s.shape.VisibleTiles) }),
		newMetric("frames_total", "Frames assembled.", counter,
			func(s *snapshot) float64 { return float64(s.shape.Frames) }),
		newMetric("tiles_regenerated_total", "Tile geometry regenerations.", counter,
			func(s *snapshot) float64 { return float64(s.shape.TilesRegenerated) }),
		newMetric("groups_rebuilt_total", "Attribute group rebuilds.", counter,
			func(s *snapshot) float64 { return float64(s.shape.GroupsRebuilt) }),
		newMetric("records_tessellated_total", "Records tessellated.", counter,
			func(s *snapshot) float64 { return float64(s.shape.RecordsTessellated) }),
		newMetric("draw_calls_total", "Draw calls issued by the shape.", counter,
			func(s *snapshot) float64 { return float64(s.shape.DrawCalls) }),
		newMetric("picks_total", "Pick requests.", counter,
			func(s *snapshot) float64 { return float64(s.shape.Picks) }),
		newMetric("pick_hits_total", "Pick requests that resolved a record.", counter,
			func(s *snapshot) float64 { return float64(s.shape.PickHits) }),
	}
}

func rendererMetrics() []metric {
	return []metric{
		newMetric("renderer_buffers", "Live renderer buffer objects.", gauge,
			func(s *snapshot) float64 { return float64(s.renderer.Buffers) }),
		newMetric("renderer_buffer_bytes", "Bytes held by renderer buffer objects.", gauge,
			func(s *snapshot) float64 { return float64(s.renderer.BufferBytes) }),
		newMetric("renderer_uploads_total", "Buffer uploads.", counter,
			func(s *snapshot) float64 { return float64(s.renderer.Uploads) }),
	}
}

func cacheMetrics() []metric {
	return []metric{
		newMetric("cache_entries", "Resources in the GPU resource cache.", gauge,
			func(s *snapshot) float64 { return float64(s.cache.Entries) }),
		newMetric("cache_used_bytes", "Bytes accounted to cached resources.", gauge,
			func(s *snapshot) float64 { return float64(s.cache.UsedBytes) }),
		newMetric("cache_hits_total", "Resource cache hits.", counter,
			func(s *snapshot) float64 { return float64(s.cache.Hits) }),
		newMetric("cache_misses_total", "Resource cache misses.", counter,
			func(s *snapshot) float64 { return float64(s.cache.Misses) }),
		newMetric("cache_evictions_total", "Resource cache evictions.", counter,
			func(s *snapshot) float64 { return float64(s.cache.Evictions) }),
	}
}

// Collector implements prometheus.Collector over stats snapshots.
//
// Example:
//
//	c := metrics.NewCollector(metrics.Sources{Shape: shape.Stats})
//	http.Handle("/metrics", metrics.Handler(c))
type Collector struct {
	src     Sources
	metrics []metric
}

// NewCollector returns a collector reading from src.
func NewCollector(src Sources) *Collector {
	c := &Collector{src: src, metrics: shapeMetrics()}
	if src.Renderer != nil {
		c.metrics = append(c.metrics, rendererMetrics()...)
	}
	if src.Cache != nil {
		c.metrics = append(c.metrics, cacheMetrics()...)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var s snapshot
	if c.src.Shape != nil {
		s.shape = c.src.Shape()
	}
	if c.src.Renderer != nil {
		s.renderer = c.src.Renderer()
	}
	if c.src.Cache != nil {
		s.cache = c.src.Cache()
	}
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(&s))
	}
}

// Handler serves c and the Go runtime metrics from a private registry.
func Handler(c *Collector) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	reg.MustRegister(collectors.NewGoCollector())
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
