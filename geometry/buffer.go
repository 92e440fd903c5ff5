// Package geometry uploads static vertex data for the session's draw call.
package geometry

import (
	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/shader"
)

// Vertex is a position with x, y and z components.
type Vertex [3]float32

// Quad covers the full viewport with two triangles.
var Quad = []Vertex{
	{-1, -1, 0},
	{1, -1, 0},
	{1, 1, 0},
	{-1, -1, 0},
	{-1, 1, 0},
	{1, 1, 0},
}

// Triangle is the single triangle of the simple-shader variant.
var Triangle = []Vertex{
	{-1, -1, 0},
	{1, -1, 0},
	{1, 1, 0},
}

// Shape returns a named built-in vertex list.
func Shape(name string) ([]Vertex, bool) {
	switch name {
	case "", "quad":
		return Quad, true
	case "triangle":
		return Triangle, true
	}
	return nil, false
}

// Buffer is a GPU array buffer holding tightly packed float positions.
type Buffer struct {
	gfx         graphics.Context
	id          uint32
	vertexCount int
}

func NewBuffer(gfx graphics.Context) *Buffer {
	return &Buffer{gfx: gfx}
}

// Upload replaces the buffer contents. The first call creates the GPU
// object.
func (b *Buffer) Upload(vertices []Vertex) {
	if b.id == 0 {
		b.id = b.gfx.CreateBuffer()
	}
	data := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		data = append(data, v[0], v[1], v[2])
	}
	b.gfx.BindArrayBuffer(b.id)
	b.gfx.BufferData(data)
	b.vertexCount = len(vertices)
}

// BindAttribute wires the buffer to an attribute as non-normalized floats.
// An invalid attribute leaves the pipeline untouched.
func (b *Buffer) BindAttribute(attr shader.Attribute, components int) {
	if !attr.Valid() || b.id == 0 {
		return
	}
	if components <= 0 {
		components = 3
	}
	loc := uint32(attr.Location())
	b.gfx.BindArrayBuffer(b.id)
	b.gfx.VertexAttribPointer(loc, int32(components))
	b.gfx.EnableVertexAttribArray(loc)
}

func (b *Buffer) ID() uint32 {
	return b.id
}

func (b *Buffer) VertexCount() int {
	return b.vertexCount
}

func (b *Buffer) TriangleCount() int {
	return b.vertexCount / 3
}

func (b *Buffer) Delete() {
	if b.id == 0 {
		return
	}
	b.gfx.DeleteBuffer(b.id)
	b.id = 0
	b.vertexCount = 0
}
