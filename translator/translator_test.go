package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/shader"
)

func TestNativePassThrough(t *testing.T) {
	src := shader.Source{Vertex: "v", Fragment: "f"}
	res, err := Translate(src, Native, GLSL410)
	require.NoError(t, err)
	assert.Equal(t, "v", res.Vertex)
	assert.Equal(t, "f", res.Fragment)
	assert.Empty(t, res.Names)
}

func TestUnknownDialect(t *testing.T) {
	_, err := Translate(shader.Source{}, Dialect("hlsl"), GLSL410)
	assert.ErrorContains(t, err, "unsupported shader dialect")
}

func TestTranslatePresets(t *testing.T) {
	tests := []struct {
		preset string
		names  []string
	}{
		{"boilerplate", []string{"a_position"}},
		{"simple", []string{"a_position", "canvasSize", "u_time"}},
		{"texture", []string{"a_position", "u_time", "u_texture"}},
		{"neon", []string{"a_position", "canvasSize", "u_time"}},
		{"fractal", []string{"a_position", "canvasSize", "u_time", "u_texture"}},
	}
	require.Len(t, tests, len(shader.Presets()))

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			src, err := shader.Preset(tt.preset)
			require.NoError(t, err)

			res, err := Translate(src, WebGL, GLSL410)
			require.NoError(t, err)
			assert.NotEmpty(t, res.Vertex)
			assert.NotEmpty(t, res.Fragment)
			for _, name := range tt.names {
				assert.NotEmpty(t, res.Names[name], "no mapped name for %s", name)
			}
		})
	}
}

func TestTranslateRejectsFragment(t *testing.T) {
	src, err := shader.Preset("simple")
	require.NoError(t, err)
	src.Fragment = "precision mediump float;\nvoid main() { gl_FragColor = missing(); }\n"

	_, err = Translate(src, WebGL, GLSL410)
	var ce *shader.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, graphics.FragmentStage, ce.Stage)
}
