// Package headless implements scene.Renderer without a graphics device.
//
// The Renderer keeps uploaded buffers in memory, records every draw call
// issued since the last Clear, and answers ReadPixel by replaying those
// calls for a single pixel with a depth test. That is enough to drive the
// colour-coded picking protocol and to inspect what a layer drew in tests.
package headless

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/extrude/pkg/scene"
)

// Mode is the primitive type of a draw call.
type Mode int

const (
	Triangles Mode = iota
	Lines
)

func (m Mode) String() string {
	if m == Lines {
		return "lines"
	}
	return "triangles"
}

// DrawCall is one recorded draw with the state it was issued under.
type DrawCall struct {
	Mode       Mode
	Indices    scene.BufferHandle
	Offset     int
	Count      int
	Vertices   scene.BufferHandle
	Colors     scene.BufferHandle // Zero when per-vertex colour is off
	Color      color.NRGBA
	LineWidth  float32
	Picking    bool
	ModelView  mgl64.Mat4
	Projection mgl64.Mat4
	Viewport   image.Rectangle
}

// Stats encapsulates assorted statistics from rendering.
type Stats struct {
	Buffers     int // Live buffer objects
	BufferBytes int // Bytes held by live buffer objects
	Uploads     int
	Frames      int // Number of Clear calls
	DrawCalls   int
	Triangles   int
	Lines       int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d uploads, %d frames, %d draw calls: %d lines, %d tris",
		s.Buffers, float32(s.BufferBytes)/(1024*1024), s.Uploads, s.Frames, s.DrawCalls, s.Lines, s.Triangles)
}

type buffer struct {
	floats  []float32
	indices []uint32
	colors  []uint8
}

func (b *buffer) bytes() int {
	return 4*len(b.floats) + 4*len(b.indices) + len(b.colors)
}

// Renderer is an in-memory scene.Renderer. It is not safe for concurrent
// use.
type Renderer struct {
	buffers map[scene.BufferHandle]*buffer
	next    scene.BufferHandle

	projection mgl64.Mat4
	modelView  mgl64.Mat4
	viewport   image.Rectangle
	vertices   scene.BufferHandle
	colors     scene.BufferHandle
	color      color.NRGBA
	lineWidth  float32
	picking    bool

	calls []DrawCall
	stats Stats
}

var _ scene.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer with identity matrices and no buffers.
func NewRenderer() *Renderer {
	return &Renderer{
		buffers:    make(map[scene.BufferHandle]*buffer),
		projection: mgl64.Ident4(),
		modelView:  mgl64.Ident4(),
		color:      color.NRGBA{A: 0xff},
		lineWidth:  1,
	}
}

// buffer returns the buffer for h, allocating one when h is zero or
// unknown.
func (r *Renderer) buffer(h scene.BufferHandle) (scene.BufferHandle, *buffer) {
	if b, ok := r.buffers[h]; ok && h != 0 {
		r.stats.BufferBytes -= b.bytes()
		return h, b
	}
	r.next++
	b := &buffer{}
	r.buffers[r.next] = b
	r.stats.Buffers++
	return r.next, b
}

// UploadFloats copies data into a float buffer.
func (r *Renderer) UploadFloats(h scene.BufferHandle, data []float32) scene.BufferHandle {
	h, b := r.buffer(h)
	b.floats = append(b.floats[:0], data...)
	r.stats.BufferBytes += b.bytes()
	r.stats.Uploads++
	return h
}

// UploadIndices copies data into an index buffer.
func (r *Renderer) UploadIndices(h scene.BufferHandle, data []uint32) scene.BufferHandle {
	h, b := r.buffer(h)
	b.indices = append(b.indices[:0], data...)
	r.stats.BufferBytes += b.bytes()
	r.stats.Uploads++
	return h
}

// UploadColors copies data into an RGB colour buffer.
func (r *Renderer) UploadColors(h scene.BufferHandle, data []uint8) scene.BufferHandle {
	h, b := r.buffer(h)
	b.colors = append(b.colors[:0], data...)
	r.stats.BufferBytes += b.bytes()
	r.stats.Uploads++
	return h
}

// DeleteBuffer releases a buffer. Unknown handles are ignored.
func (r *Renderer) DeleteBuffer(h scene.BufferHandle) {
	if b, ok := r.buffers[h]; ok {
		r.stats.Buffers--
		r.stats.BufferBytes -= b.bytes()
		delete(r.buffers, h)
	}
}

// HasBuffer reports whether h names a live buffer.
func (r *Renderer) HasBuffer(h scene.BufferHandle) bool {
	_, ok := r.buffers[h]
	return ok
}

// Floats returns the contents of a float buffer.
func (r *Renderer) Floats(h scene.BufferHandle) []float32 {
	if b, ok := r.buffers[h]; ok {
		return b.floats
	}
	return nil
}

// Indices returns the contents of an index buffer.
func (r *Renderer) Indices(h scene.BufferHandle) []uint32 {
	if b, ok := r.buffers[h]; ok {
		return b.indices
	}
	return nil
}

// SetProjection sets the projection matrix for later draw calls.
func (r *Renderer) SetProjection(m mgl64.Mat4) { r.projection = m }

// SetModelView sets the model-view matrix for later draw calls.
func (r *Renderer) SetModelView(m mgl64.Mat4) { r.modelView = m }

// SetViewport sets the screen rectangle draw calls are mapped to.
func (r *Renderer) SetViewport(v image.Rectangle) { r.viewport = v }

// SetVertexBuffer binds the vertex buffer later draw calls index into.
func (r *Renderer) SetVertexBuffer(h scene.BufferHandle) { r.vertices = h }

// SetColorBuffer binds a per-vertex colour buffer; zero unbinds it and
// draws use the flat colour.
func (r *Renderer) SetColorBuffer(h scene.BufferHandle) { r.colors = h }

// SetColor sets the flat colour.
func (r *Renderer) SetColor(c color.NRGBA) { r.color = c }

// SetLineWidth sets the width in pixels of later line draws.
func (r *Renderer) SetLineWidth(w float32) { r.lineWidth = w }

// SetPicking marks later draw calls as pick passes.
func (r *Renderer) SetPicking(enabled bool) { r.picking = enabled }

// Clear starts a new frame: the recorded draw calls are dropped.
func (r *Renderer) Clear() {
	r.calls = r.calls[:0]
	r.stats.Frames++
}

// DrawTriangles records a triangle draw of count indices.
func (r *Renderer) DrawTriangles(indices scene.BufferHandle, offset, count int) {
	r.record(Triangles, indices, offset, count)
	r.stats.Triangles += count / 3
}

// DrawLines records a line draw of count indices.
func (r *Renderer) DrawLines(indices scene.BufferHandle, offset, count int) {
	r.record(Lines, indices, offset, count)
	r.stats.Lines += count / 2
}

func (r *Renderer) record(mode Mode, indices scene.BufferHandle, offset, count int) {
	r.calls = append(r.calls, DrawCall{
		Mode:       mode,
		Indices:    indices,
		Offset:     offset,
		Count:      count,
		Vertices:   r.vertices,
		Colors:     r.colors,
		Color:      r.color,
		LineWidth:  r.lineWidth,
		Picking:    r.picking,
		ModelView:  r.modelView,
		Projection: r.projection,
		Viewport:   r.viewport,
	})
	r.stats.DrawCalls++
}

// DrawCalls returns the draw calls recorded since the last Clear.
func (r *Renderer) DrawCalls() []DrawCall {
	return r.calls
}

// Stats returns the accumulated statistics.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the per-frame counters. Buffer counts are kept.
func (r *Renderer) ResetStats() {
	r.stats = Stats{Buffers: r.stats.Buffers, BufferBytes: r.stats.BufferBytes}
}
