package graphics

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVertex = `attribute vec3 a_position;
uniform mediump float u_scale;
void main() { gl_Position = vec4(a_position * u_scale, 1.0); }`
	testFragment = `precision mediump float;
uniform vec2 canvasSize;
uniform float u_scale;
void main() { gl_FragColor = vec4(gl_FragCoord.xy / canvasSize, 0.0, 1.0); }`
)

func link(t *testing.T, r *Recorder, vs, fs string) uint32 {
	t.Helper()
	v := r.CreateShader(VertexStage)
	r.ShaderSource(v, vs)
	r.CompileShader(v)
	f := r.CreateShader(FragmentStage)
	r.ShaderSource(f, fs)
	r.CompileShader(f)
	p := r.CreateProgram()
	r.AttachShader(p, v)
	r.AttachShader(p, f)
	r.LinkProgram(p)
	return p
}

func TestRecorderResolvesDeclarations(t *testing.T) {
	r := NewRecorder()
	p := link(t, r, testVertex, testFragment)
	require.True(t, r.ProgramLinked(p))

	assert.Equal(t, int32(0), r.GetUniformLocation(p, "u_scale"))
	assert.Equal(t, int32(1), r.GetUniformLocation(p, "canvasSize"))
	assert.Equal(t, int32(-1), r.GetUniformLocation(p, "u_time"))
	assert.Equal(t, int32(0), r.GetAttribLocation(p, "a_position"))
	assert.Equal(t, int32(-1), r.GetAttribLocation(p, "a_normal"))
}

func TestRecorderValidation(t *testing.T) {
	r := NewRecorder()
	s := r.CreateShader(FragmentStage)
	r.ShaderSource(s, "   ")
	r.CompileShader(s)
	assert.False(t, r.ShaderCompiled(s))
	assert.Contains(t, r.ShaderInfoLog(s), "empty fragment shader")

	r.ShaderSource(s, "float x;")
	r.CompileShader(s)
	assert.Contains(t, r.ShaderInfoLog(s), "no main function")

	p := link(t, r, testVertex, "broken")
	assert.False(t, r.ProgramLinked(p))
	assert.NotEmpty(t, r.ProgramInfoLog(p))
	assert.Equal(t, int32(-1), r.GetUniformLocation(p, "u_scale"))
}

func TestRecorderCustomHooks(t *testing.T) {
	r := NewRecorder()
	r.Validate = func(stage Stage, source string) string {
		if stage == VertexStage {
			return "ERROR: 0:1: vertex rejected"
		}
		return ""
	}
	v := r.CreateShader(VertexStage)
	r.ShaderSource(v, testVertex)
	r.CompileShader(v)
	assert.False(t, r.ShaderCompiled(v))

	r = NewRecorder()
	r.LinkCheck = func(vs, fs string) string { return "ERROR: link rejected" }
	p := link(t, r, testVertex, testFragment)
	assert.False(t, r.ProgramLinked(p))
	assert.Equal(t, "ERROR: link rejected", r.ProgramInfoLog(p))
}

func TestRecorderUniformValues(t *testing.T) {
	r := NewRecorder()
	p := link(t, r, testVertex, testFragment)

	r.Uniform1f(0, 2)
	_, ok := r.UniformValue(p, "u_scale")
	assert.False(t, ok, "no program in use")

	r.UseProgram(p)
	r.Uniform1f(r.GetUniformLocation(p, "u_scale"), 2)
	r.Uniform2f(r.GetUniformLocation(p, "canvasSize"), 640, 480)
	r.Uniform1f(-1, 9)

	v, ok := r.UniformValue(p, "u_scale")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, v)
	v, _ = r.UniformValue(p, "canvasSize")
	assert.Equal(t, []float32{640, 480}, v)

	r.DeleteProgram(p)
	assert.Zero(t, r.CurrentProgram())
}

func TestRecorderBuffersAndTextures(t *testing.T) {
	r := NewRecorder()
	b := r.CreateBuffer()
	r.BindArrayBuffer(b)
	r.BufferData([]float32{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, r.BufferContents(b))
	r.DeleteBuffer(b)
	assert.Nil(t, r.BufferContents(b))

	tex := r.CreateTexture()
	r.BindTexture2D(tex)
	r.TexImage2D(image.NewRGBA(image.Rect(0, 0, 3, 2)))
	r.GenerateMipmap()
	info, ok := r.Texture(tex)
	require.True(t, ok)
	assert.Equal(t, TextureInfo{Width: 3, Height: 2, Uploads: 1, Mipmapped: true}, info)

	r.DeleteTexture(tex)
	info, _ = r.Texture(tex)
	assert.True(t, info.Deleted)
	_, ok = r.Texture(999)
	assert.False(t, ok)
}

func TestRecorderCallLog(t *testing.T) {
	r := NewRecorder()
	r.Viewport(0, 0, 10, 20)
	r.Enable(DepthTest)
	r.Clear(ColorBuffer | DepthBuffer)
	r.DrawTriangles(0, 6)
	r.DrawTriangles(0, 3)

	assert.Equal(t, 2, r.Count("DrawTriangles"))
	last, ok := r.Last("DrawTriangles")
	require.True(t, ok)
	assert.Equal(t, []any{int32(0), int32(3)}, last.Args)
	assert.True(t, r.Enabled(DepthTest))
	assert.False(t, r.Enabled(Blend))

	r.Reset()
	assert.Empty(t, r.Calls())
	assert.True(t, r.Enabled(DepthTest), "state survives Reset")
}

func TestRecorderReadPixels(t *testing.T) {
	r := NewRecorder()
	r.ClearColor(1, 0, 0.5, 1)
	px := r.ReadPixels(2, 1)
	assert.Equal(t, []byte{255, 0, 128, 255, 255, 0, 128, 255}, px)
}

func TestRecordingSurface(t *testing.T) {
	s := NewRecordingSurface(4, 3)
	ctx, err := s.Context()
	require.NoError(t, err)
	assert.Same(t, s.Recorder, ctx)

	s.SetSize(8, 6)
	assert.Equal(t, 8, s.Width())
	assert.Equal(t, 6, s.Height())

	s.Err = errors.New("lost")
	_, err = s.Context()
	assert.EqualError(t, err, "lost")
}
