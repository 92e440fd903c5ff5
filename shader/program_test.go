package shader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderquad/graphics"
)

const testVertex = `
attribute vec3 a_position;
void main() {
    gl_Position = vec4(a_position, 1.0);
}
`

const testFragment = `
precision mediump float;
uniform vec2 canvasSize;
uniform float u_time;
void main() {
    gl_FragColor = vec4(gl_FragCoord.xy / canvasSize, u_time, 1.0);
}
`

func TestCompileAndResolve(t *testing.T) {
	rec := graphics.NewRecorder()

	p, err := Compile(rec, testVertex, testFragment)
	require.NoError(t, err)
	require.NotZero(t, p.ID())

	_, ok := p.Uniform("u_time")
	assert.True(t, ok)
	_, ok = p.Uniform("canvasSize")
	assert.True(t, ok)
	attr, ok := p.Attribute("a_position")
	require.True(t, ok)
	assert.Equal(t, int32(0), attr.Location())

	// Stage objects are released once linked.
	assert.Equal(t, 2, rec.Count("DeleteShader"))
}

func TestCompileErrorIdentifiesStage(t *testing.T) {
	tests := []struct {
		name     string
		vertex   string
		fragment string
		stage    graphics.Stage
	}{
		{"broken vertex", "attribute vec3 a_position;", testFragment, graphics.VertexStage},
		{"broken fragment", testVertex, "precision mediump float;", graphics.FragmentStage},
		{"empty fragment", testVertex, "", graphics.FragmentStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := graphics.NewRecorder()
			p, err := Compile(rec, tt.vertex, tt.fragment)
			require.Error(t, err)
			assert.Nil(t, p)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.stage, ce.Stage)
			assert.NotEmpty(t, ce.Log)
			assert.Zero(t, rec.Count("LinkProgram"))
		})
	}
}

func TestCompileErrorOnDiagnosticLog(t *testing.T) {
	rec := graphics.NewRecorder()
	rec.Validate = func(stage graphics.Stage, source string) string {
		if stage == graphics.FragmentStage {
			return "ERROR: 0:3: 'foo' : undeclared identifier"
		}
		return ""
	}

	_, err := Compile(rec, testVertex, testFragment)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, graphics.FragmentStage, ce.Stage)
	assert.Contains(t, err.Error(), "undeclared identifier")
}

func TestCompileLogOnSuccess(t *testing.T) {
	tests := []struct {
		name    string
		log     string
		wantErr bool
	}{
		{"no errors", "No errors.\n", false},
		{"warning", "WARNING: 0:4: 'u_unused' : unused uniform", false},
		{"error line with good status", "WARNING: 0:2: x\nERROR: 0:5: 'y' : syntax error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := graphics.NewRecorder()
			rec.CompileLog = func(stage graphics.Stage, source string) string {
				if stage == graphics.FragmentStage {
					return tt.log
				}
				return ""
			}

			p, err := Compile(rec, testVertex, testFragment)
			if tt.wantErr {
				var ce *CompileError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, graphics.FragmentStage, ce.Stage)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID())
		})
	}
}

func TestLinkError(t *testing.T) {
	rec := graphics.NewRecorder()
	rec.LinkCheck = func(vertex, fragment string) string {
		return "varying v_uv not written by vertex shader"
	}

	_, err := Compile(rec, testVertex, testFragment)
	var le *LinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "v_uv")
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
}

func TestLinkRejectsSwappedStages(t *testing.T) {
	rec := graphics.NewRecorder()
	vs, err := CompileStage(rec, graphics.VertexStage, testVertex)
	require.NoError(t, err)
	fs, err := CompileStage(rec, graphics.FragmentStage, testFragment)
	require.NoError(t, err)

	_, err = Link(rec, fs, vs)
	var le *LinkError
	require.ErrorAs(t, err, &le)
}

func TestMissingUniformIsInert(t *testing.T) {
	rec := graphics.NewRecorder()
	p, err := Compile(rec, testVertex, testFragment)
	require.NoError(t, err)
	p.Activate()

	u, ok := p.Uniform("u_texture")
	assert.False(t, ok)
	assert.False(t, u.Valid())
	assert.Equal(t, int32(-1), u.Location())

	rec.Reset()
	u.SetFloat(1)
	u.SetVec2(1, 2)
	u.SetInt(3)
	assert.Empty(t, rec.Calls())

	_, ok = p.Attribute("a_normal")
	assert.False(t, ok)
}

func TestHandlesGoStaleAfterDelete(t *testing.T) {
	rec := graphics.NewRecorder()
	p, err := Compile(rec, testVertex, testFragment)
	require.NoError(t, err)
	p.Activate()

	u, ok := p.Uniform("u_time")
	require.True(t, ok)
	u.SetFloat(0.5)
	assert.Equal(t, 1, rec.Count("Uniform1f"))

	p.Delete()
	assert.False(t, u.Valid())
	u.SetFloat(1.5)
	assert.Equal(t, 1, rec.Count("Uniform1f"))

	_, ok = p.Uniform("u_time")
	assert.False(t, ok)
}

func TestNameTable(t *testing.T) {
	const mappedFragment = `
precision mediump float;
uniform float _uu_time;
void main() { gl_FragColor = vec4(_uu_time); }
`
	rec := graphics.NewRecorder()
	p, err := Compile(rec, testVertex, mappedFragment)
	require.NoError(t, err)

	_, ok := p.Uniform("u_time")
	assert.False(t, ok)

	p.SetNames(map[string]string{"u_time": "_uu_time"})
	p.Activate()
	u, ok := p.Uniform("u_time")
	require.True(t, ok)
	u.SetFloat(2)

	v, ok := rec.UniformValue(p.ID(), "_uu_time")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, v)
}

func TestActivate(t *testing.T) {
	rec := graphics.NewRecorder()
	a, err := Compile(rec, testVertex, testFragment)
	require.NoError(t, err)
	b, err := Compile(rec, testVertex, testFragment)
	require.NoError(t, err)

	a.Activate()
	assert.Equal(t, a.ID(), rec.CurrentProgram())
	b.Activate()
	assert.Equal(t, b.ID(), rec.CurrentProgram())
}
