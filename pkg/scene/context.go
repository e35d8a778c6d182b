package scene

import (
	"image"
	"image/color"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/beetlebugorg/extrude/pkg/geom"
)

// PickRegionSize is the side, in pixels, of the square pick frustum built
// around a pick point.
const PickRegionSize = 3

// ErrIncompleteContext is returned when a frame is driven with a
// DrawContext that lacks a required service.
var ErrIncompleteContext = errors.New("draw context is missing a required service")

// DrawContext carries the services and state of one frame. The application
// fills in the services; the frame drivers manage the mode flags.
type DrawContext struct {
	Terrain   Terrain
	View      View
	Renderer  Renderer
	Resources ResourceCache

	// FrameTime is the timestamp of the frame, used for cache expiry.
	FrameTime time.Time

	// OrderedRenderingMode is set while queued OrderedRenderables draw.
	OrderedRenderingMode bool

	// PickingMode is set for the duration of a pick.
	PickingMode bool

	// PickPoint is the screen point being picked while PickingMode is set.
	PickPoint image.Point

	ordered       []OrderedRenderable
	nextPickColor uint32
}

// Validate checks that every service is present.
func (dc *DrawContext) Validate() error {
	switch {
	case dc.Terrain == nil:
		return errors.Wrap(ErrIncompleteContext, "terrain")
	case dc.View == nil:
		return errors.Wrap(ErrIncompleteContext, "view")
	case dc.Renderer == nil:
		return errors.Wrap(ErrIncompleteContext, "renderer")
	case dc.Resources == nil:
		return errors.Wrap(ErrIncompleteContext, "resource cache")
	}
	return nil
}

// AddOrderedRenderable queues a deferred draw request for this frame.
func (dc *DrawContext) AddOrderedRenderable(r OrderedRenderable) {
	dc.ordered = append(dc.ordered, r)
}

// OrderedRenderables returns the queued requests in submission order.
func (dc *DrawContext) OrderedRenderables() []OrderedRenderable {
	return dc.ordered
}

// PickFrustums returns the frustums that limit picking. It is empty
// outside picking mode.
func (dc *DrawContext) PickFrustums() []geom.Frustum {
	if !dc.PickingMode || dc.View == nil {
		return nil
	}
	return []geom.Frustum{dc.View.PickFrustum(dc.PickPoint, PickRegionSize)}
}

// UniquePickColor returns a colour not yet handed out in this pick. Colours
// are opaque and never black, which is the cleared framebuffer.
func (dc *DrawContext) UniquePickColor() color.NRGBA {
	dc.nextPickColor++
	return PickColor(dc.nextPickColor)
}

// ResetPickColors restarts the pick colour sequence.
func (dc *DrawContext) ResetPickColors() {
	dc.nextPickColor = 0
}

// PickColor encodes a non-zero 24-bit code as an opaque colour.
func PickColor(code uint32) color.NRGBA {
	return color.NRGBA{R: uint8(code >> 16), G: uint8(code >> 8), B: uint8(code), A: 0xff}
}

// PickCode decodes a colour produced by PickColor. Zero means no object.
func PickCode(c color.NRGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// DrawFrame runs one frame: every layer assembles, then every queued
// OrderedRenderable draws in submission order.
func DrawFrame(dc *DrawContext, layers ...Layer) error {
	if dc == nil {
		return errors.Wrap(ErrIncompleteContext, "nil draw context")
	}
	if err := dc.Validate(); err != nil {
		return err
	}

	dc.ordered = dc.ordered[:0]
	dc.OrderedRenderingMode = false
	dc.PickingMode = false

	r := dc.Renderer
	r.SetViewport(dc.View.Viewport())
	r.SetProjection(dc.View.Projection())
	r.SetPicking(false)
	r.Clear()

	for _, l := range layers {
		if err := l.Render(dc); err != nil {
			return errors.Wrap(err, "assemble layer")
		}
	}

	dc.OrderedRenderingMode = true
	defer func() { dc.OrderedRenderingMode = false }()
	for _, or := range dc.ordered {
		if err := or.Render(dc); err != nil {
			return errors.Wrap(err, "draw ordered renderable")
		}
	}
	return nil
}

// BeginPicking prepares the context and renderer for a pick at p.
func (dc *DrawContext) BeginPicking(p image.Point) {
	dc.PickingMode = true
	dc.PickPoint = p
	dc.ordered = dc.ordered[:0]
	dc.ResetPickColors()
	if dc.Renderer != nil && dc.View != nil {
		dc.Renderer.SetViewport(dc.View.Viewport())
		dc.Renderer.SetProjection(dc.View.Projection())
		dc.Renderer.SetPicking(true)
	}
}

// EndPicking restores normal drawing.
func (dc *DrawContext) EndPicking() {
	dc.PickingMode = false
	if dc.Renderer != nil {
		dc.Renderer.SetPicking(false)
	}
}
