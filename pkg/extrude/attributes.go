package extrude

import (
	"image/color"
	"math"
)

// Attributes describe how a record is drawn.
//
// Records refer to attributes by pointer and records sharing a pointer are
// drawn together. Changing a field of a shared Attributes value takes effect
// on the next frame without regrouping; assigning a different pointer to a
// record regroups its tile.
type Attributes struct {
	InteriorColor   color.NRGBA
	InteriorOpacity float64

	OutlineColor   color.NRGBA
	OutlineOpacity float64
	OutlineWidth   float32

	DrawInterior bool
	DrawOutline  bool
}

var (
	defaultAttributes = Attributes{
		InteriorColor:   color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
		InteriorOpacity: 1,
		OutlineColor:    color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff},
		OutlineOpacity:  1,
		OutlineWidth:    1,
		DrawInterior:    true,
		DrawOutline:     true,
	}
	defaultHighlightAttributes = Attributes{
		InteriorColor:   color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		InteriorOpacity: 1,
		OutlineColor:    color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		OutlineOpacity:  1,
		OutlineWidth:    2,
		DrawInterior:    true,
		DrawOutline:     true,
	}
)

// DefaultAttributes returns a new copy of the default attributes.
func DefaultAttributes() *Attributes {
	a := defaultAttributes
	return &a
}

// DefaultHighlightAttributes returns a new copy of the default highlight
// attributes.
func DefaultHighlightAttributes() *Attributes {
	a := defaultHighlightAttributes
	return &a
}

// interiorColor returns the interior colour with opacity applied.
func (a *Attributes) interiorColor() color.NRGBA {
	return withOpacity(a.InteriorColor, a.InteriorOpacity)
}

// outlineColor returns the outline colour with opacity applied.
func (a *Attributes) outlineColor() color.NRGBA {
	return withOpacity(a.OutlineColor, a.OutlineOpacity)
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}
