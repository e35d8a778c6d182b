package extrude

import (
	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/internal/tess"
)

// frameState is the progress of the current frame through the renderer.
type frameState int

const (
	stateNotYetOrdered frameState = iota
	stateAssembling
	stateOrderedForDraw
	stateDrawing
	stateDone
)

func (f frameState) String() string {
	switch f {
	case stateAssembling:
		return "assembling"
	case stateOrderedForDraw:
		return "ordered-for-draw"
	case stateDrawing:
		return "drawing"
	case stateDone:
		return "done"
	default:
		return "not-yet-ordered"
	}
}

// Shape draws the records of a dataset as polygons extruded from the
// terrain. It is a scene.Layer.
//
// The records are partitioned into a quadtree of tiles when the shape is
// built. Each frame, tiles whose extent is in view are collected; their
// geometry is regenerated when it expired or the globe changed, their
// records are regrouped when a record's display state changed, and each
// group is drawn with two calls, one for interiors and one for outlines.
//
// A Shape is not safe for concurrent use; drive it from the render loop.
//
// Example:
//
//	shape, err := extrude.NewShape(ds, extrude.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    dc.FrameTime = time.Now()
//	    if err := scene.DrawFrame(dc, shape); err != nil {
//	        log.Fatal(err)
//	    }
//	}
type Shape struct {
	opts    Options
	dataset *Dataset
	root    *Tile

	baseDepth     float64
	defaultHeight float64
	enabled       bool

	attrs          *Attributes
	highlightAttrs *Attributes

	tess    *tess.Tessellator
	visible []*Tile
	state   frameState

	// Per-vertex pick colours, grown to fit the largest tile picked and
	// never shrunk.
	pickColors []uint8

	stats Stats
}

// NewShape builds the tile tree over a dataset. A dataset can back only
// one shape. An empty dataset yields a shape that draws nothing.
func NewShape(ds *Dataset, opts Options) (*Shape, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	if ds.owner != nil {
		return nil, ErrDatasetInUse
	}

	s := &Shape{
		opts:           opts,
		dataset:        ds,
		baseDepth:      opts.BaseDepth,
		defaultHeight:  opts.DefaultHeight,
		enabled:        true,
		attrs:          opts.DefaultAttributes,
		highlightAttrs: opts.DefaultHighlightAttributes,
		tess:           tess.New(),
	}
	if s.attrs == nil {
		s.attrs = DefaultAttributes()
	}
	if s.highlightAttrs == nil {
		s.highlightAttrs = DefaultHighlightAttributes()
	}

	s.stats.Records = ds.Len()
	if ds.Len() > 0 {
		records := make([]*Record, len(ds.records))
		copy(records, ds.records)
		s.root = newTile(s, ds.bounds, 0, records)
		s.root.assignRecords()
		s.root.Walk(func(t *Tile) bool {
			s.stats.Tiles++
			s.stats.MaxLevel = max(s.stats.MaxLevel, t.level)
			return true
		})
	}
	ds.owner = s

	Logger().Info("built extruded shape",
		"records", s.stats.Records,
		"tiles", s.stats.Tiles,
		"depth", s.stats.MaxLevel,
	)
	return s, nil
}

// Dataset returns the shape's dataset.
func (s *Shape) Dataset() *Dataset { return s.dataset }

// Root returns the root tile, or nil when the dataset is empty.
func (s *Shape) Root() *Tile { return s.root }

// IsEnabled reports whether the shape draws and picks.
func (s *Shape) IsEnabled() bool { return s.enabled }

// SetEnabled turns drawing and picking on or off.
func (s *Shape) SetEnabled(enabled bool) { s.enabled = enabled }

// BaseDepth returns how far below the terrain the extrusion floor sits.
func (s *Shape) BaseDepth() float64 { return s.baseDepth }

// SetBaseDepth moves the extrusion floor. A change expires the geometry
// of every tile.
func (s *Shape) SetBaseDepth(d float64) {
	if d == s.baseDepth {
		return
	}
	s.baseDepth = d
	s.expireAll()
}

// DefaultHeight returns the height of records without their own.
func (s *Shape) DefaultHeight() float64 { return s.defaultHeight }

// SetDefaultHeight changes the height of records without their own. A
// change expires the geometry of every tile.
func (s *Shape) SetDefaultHeight(h float64) {
	if h == s.defaultHeight {
		return
	}
	s.defaultHeight = h
	s.expireAll()
}

// DefaultAttributes returns the attributes of records without their own.
func (s *Shape) DefaultAttributes() *Attributes { return s.attrs }

// DefaultHighlightAttributes returns the highlight attributes of records
// without their own.
func (s *Shape) DefaultHighlightAttributes() *Attributes { return s.highlightAttrs }

// Stats returns the shape's counters.
func (s *Shape) Stats() Stats { return s.stats }

// expireAll expires every tile's geometry and extent.
func (s *Shape) expireAll() {
	if s.root == nil {
		return
	}
	n := 0
	s.root.Walk(func(t *Tile) bool {
		t.expire()
		n++
		return true
	})
	Logger().Debug("expired all tiles", "tiles", n)
}
