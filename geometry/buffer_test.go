package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/shader"
)

func TestUploadCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []Vertex
		triangles int
	}{
		{"quad", Quad, 2},
		{"triangle", Triangle, 1},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := graphics.NewRecorder()
			b := NewBuffer(rec)
			b.Upload(tt.vertices)

			assert.Equal(t, len(tt.vertices), b.VertexCount())
			assert.Equal(t, tt.triangles, b.TriangleCount())
			assert.Len(t, rec.BufferContents(b.ID()), len(tt.vertices)*3)
		})
	}
}

func TestReuploadKeepsBuffer(t *testing.T) {
	rec := graphics.NewRecorder()
	b := NewBuffer(rec)
	b.Upload(Triangle)
	id := b.ID()
	b.Upload(Quad)

	assert.Equal(t, id, b.ID())
	assert.Equal(t, 1, rec.Count("CreateBuffer"))
	assert.Equal(t, 2, b.TriangleCount())
	assert.Equal(t, []float32{-1, -1, 0, 1, -1, 0}, rec.BufferContents(id)[:6])
}

func TestBindAttribute(t *testing.T) {
	rec := graphics.NewRecorder()
	p, err := shader.Compile(rec,
		"attribute vec3 a_position;\nvoid main() { gl_Position = vec4(a_position, 1.0); }",
		"void main() { gl_FragColor = vec4(1.0); }")
	require.NoError(t, err)

	b := NewBuffer(rec)
	b.Upload(Quad)

	attr, ok := p.Attribute("a_position")
	require.True(t, ok)
	b.BindAttribute(attr, 3)

	call, ok := rec.Last("VertexAttribPointer")
	require.True(t, ok)
	assert.Equal(t, []any{uint32(0), int32(3)}, call.Args)
	assert.Equal(t, 1, rec.Count("EnableVertexAttribArray"))

	missing, _ := p.Attribute("a_uv")
	rec.Reset()
	b.BindAttribute(missing, 2)
	assert.Empty(t, rec.Calls())
}

func TestShape(t *testing.T) {
	v, ok := Shape("")
	assert.True(t, ok)
	assert.Len(t, v, 6)
	v, ok = Shape("triangle")
	assert.True(t, ok)
	assert.Len(t, v, 3)
	_, ok = Shape("hexagon")
	assert.False(t, ok)
}
