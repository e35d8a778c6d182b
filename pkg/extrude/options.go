package extrude

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Options configures a Shape.
type Options struct {
	// TileCapacity is the number of records a tile may own before it is
	// split into quadrants.
	TileCapacity int

	// TileMaxDepth is the deepest tile level. Tiles at this level are
	// never split, whatever their record count.
	TileMaxDepth int

	// MinExpiryTime and MaxExpiryTime bound the random lifetime of tile
	// geometry. Spreading lifetimes keeps tiles from regenerating in the
	// same frame.
	MinExpiryTime time.Duration
	MaxExpiryTime time.Duration

	// ApproachRatio is the eye distance ratio below which the viewer counts
	// as having moved closer. When the new eye distance is less than
	// ApproachRatio times the distance the geometry was built at, the
	// remaining lifetime is halved, once.
	ApproachRatio float64

	// BaseDepth is how far below the terrain the extrusion floor sits.
	BaseDepth float64

	// DefaultHeight is used for records without their own height.
	DefaultHeight float64

	// MinTilePixels culls tiles whose extent covers fewer pixels.
	MinTilePixels int

	// OutlinePickWidth is the minimum line width used when picking
	// outlines, so thin outlines stay clickable.
	OutlinePickWidth float32

	// DefaultAttributes and DefaultHighlightAttributes are used for records
	// without attributes of their own. Nil selects a private copy of
	// DefaultAttributes() and DefaultHighlightAttributes().
	DefaultAttributes          *Attributes
	DefaultHighlightAttributes *Attributes
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		TileCapacity:     10000,
		TileMaxDepth:     3,
		MinExpiryTime:    2 * time.Second,
		MaxExpiryTime:    4 * time.Second,
		ApproachRatio:    0.5,
		BaseDepth:        0,
		DefaultHeight:    1,
		MinTilePixels:    1,
		OutlinePickWidth: 10,
	}
}

// validate checks option ranges.
func (o Options) validate() error {
	switch {
	case o.TileCapacity < 1:
		return errors.Newf("tile capacity %d must be positive", o.TileCapacity)
	case o.TileMaxDepth < 0:
		return errors.Newf("tile max depth %d must not be negative", o.TileMaxDepth)
	case o.MinExpiryTime < 0 || o.MaxExpiryTime < o.MinExpiryTime:
		return errors.Newf("invalid expiry range [%s, %s]", o.MinExpiryTime, o.MaxExpiryTime)
	case o.ApproachRatio <= 0 || o.ApproachRatio > 1:
		return errors.Newf("approach ratio %g must be in (0, 1]", o.ApproachRatio)
	}
	return nil
}
