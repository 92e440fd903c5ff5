package shader

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed sources/*.vert sources/*.frag
var sources embed.FS

// Source is a vertex+fragment pair as written, before any translation.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

var presets = map[string][2]string{
	"boilerplate": {"quad.vert", "boilerplate.frag"},
	"simple":      {"quad.vert", "basic.frag"},
	"texture":     {"quad.vert", "texture.frag"},
	"neon":        {"quad.vert", "neon.frag"},
	"fractal":     {"quad.vert", "fractal.frag"},
}

// Preset returns one of the built-in WebGL shader pairs.
func Preset(name string) (Source, error) {
	files, ok := presets[name]
	if !ok {
		return Source{}, fmt.Errorf("unknown shader preset %q", name)
	}
	vs, err := sources.ReadFile("sources/" + files[0])
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", files[0], err)
	}
	fs, err := sources.ReadFile("sources/" + files[1])
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", files[1], err)
	}
	return Source{Name: name, Vertex: string(vs), Fragment: string(fs)}, nil
}

// Presets lists the built-in preset names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
