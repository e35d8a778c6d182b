package tess

import "github.com/paulmach/orb"

// minBufferCapacity is the capacity allocated on first growth.
const minBufferCapacity = 64

// IndexBuffer is a growable list of vertex indices.
//
// Growth is amortized: when an append would exceed capacity the backing
// array is reallocated at 1.5x the required size and the old contents are
// copied over. Reset keeps the capacity so a buffer reused across many
// polygons stops allocating once it has seen the largest one.
type IndexBuffer struct {
	data []uint32
}

// growFor ensures at least n more indices fit without reallocation.
func (b *IndexBuffer) growFor(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}
	size := need + need/2
	if size < minBufferCapacity {
		size = minBufferCapacity
	}
	grown := make([]uint32, len(b.data), size)
	copy(grown, b.data)
	b.data = grown
}

// Append adds indices to the end of the buffer.
func (b *IndexBuffer) Append(indices ...uint32) {
	b.growFor(len(indices))
	b.data = append(b.data, indices...)
}

// Len returns the number of indices in the buffer.
func (b *IndexBuffer) Len() int { return len(b.data) }

// Cap returns the current capacity of the buffer.
func (b *IndexBuffer) Cap() int { return cap(b.data) }

// Slice returns the buffer contents. The slice aliases the buffer and is
// only valid until the next Append or Reset.
func (b *IndexBuffer) Slice() []uint32 { return b.data }

// Copy returns the buffer contents in a newly allocated slice.
func (b *IndexBuffer) Copy() []uint32 {
	if len(b.data) == 0 {
		return nil
	}
	out := make([]uint32, len(b.data))
	copy(out, b.data)
	return out
}

// Reset empties the buffer, keeping its capacity.
func (b *IndexBuffer) Reset() { b.data = b.data[:0] }

// VertexBuffer is a growable list of 2D vertices. Append returns the index
// of the inserted vertex, which is the value triangles refer to. A buffer
// reset with ResetAt numbers its vertices from a base, so it can extend an
// array held elsewhere.
type VertexBuffer struct {
	base uint32
	data []orb.Point
}

// Append adds a vertex and returns its index.
func (b *VertexBuffer) Append(p orb.Point) uint32 {
	if len(b.data) == cap(b.data) {
		size := len(b.data) + len(b.data)/2
		if size < minBufferCapacity {
			size = minBufferCapacity
		}
		grown := make([]orb.Point, len(b.data), size)
		copy(grown, b.data)
		b.data = grown
	}
	b.data = append(b.data, p)
	return b.base + uint32(len(b.data)-1)
}

// Len returns the number of vertices.
func (b *VertexBuffer) Len() int { return len(b.data) }

// Points returns the vertices. The slice aliases the buffer.
func (b *VertexBuffer) Points() []orb.Point { return b.data }

// Reset empties the buffer, keeping its capacity.
func (b *VertexBuffer) Reset() { b.ResetAt(0) }

// ResetAt empties the buffer and numbers the next vertex base.
func (b *VertexBuffer) ResetAt(base int) {
	b.base = uint32(base)
	b.data = b.data[:0]
}
