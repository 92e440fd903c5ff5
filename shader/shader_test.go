package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderquad/graphics"
)

func TestPresetsCompile(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			src, err := Preset(name)
			require.NoError(t, err)
			assert.Equal(t, name, src.Name)

			rec := graphics.NewRecorder()
			p, err := Compile(rec, src.Vertex, src.Fragment)
			require.NoError(t, err)
			_, ok := p.Attribute("a_position")
			assert.True(t, ok)
		})
	}
}

func TestPresetUniforms(t *testing.T) {
	tests := []struct {
		preset  string
		sampler bool
		time    bool
	}{
		{"boilerplate", false, false},
		{"simple", false, true},
		{"texture", true, true},
		{"neon", false, true},
		{"fractal", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			src, err := Preset(tt.preset)
			require.NoError(t, err)
			p, err := Compile(graphics.NewRecorder(), src.Vertex, src.Fragment)
			require.NoError(t, err)

			_, ok := p.Uniform("u_texture")
			assert.Equal(t, tt.sampler, ok)
			_, ok = p.Uniform("u_time")
			assert.Equal(t, tt.time, ok)
		})
	}
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("nope")
	assert.Error(t, err)
}
