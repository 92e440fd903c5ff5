package options

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/richinsley/goshaderquad/geometry"
	"github.com/richinsley/goshaderquad/session"
	"github.com/richinsley/goshaderquad/shader"
	"github.com/richinsley/goshaderquad/translator"
)

// Variant describes one session configuration as written in a variant file.
// Either Preset or both Vertex and Fragment name the shader sources.
type Variant struct {
	Name       string    `toml:"name" yaml:"name"`
	Preset     string    `toml:"preset,omitempty" yaml:"preset,omitempty"`
	Vertex     string    `toml:"vertex,omitempty" yaml:"vertex,omitempty"`
	Fragment   string    `toml:"fragment,omitempty" yaml:"fragment,omitempty"`
	Dialect    string    `toml:"dialect,omitempty" yaml:"dialect,omitempty"`
	Geometry   string    `toml:"geometry,omitempty" yaml:"geometry,omitempty"`
	Texture    string    `toml:"texture,omitempty" yaml:"texture,omitempty"`
	Fallback   []int     `toml:"fallback,omitempty" yaml:"fallback,omitempty"`
	ClearColor []float32 `toml:"clear_color,omitempty" yaml:"clear_color,omitempty"`

	// dir resolves relative shader paths; set by LoadVariant.
	dir string
}

var builtins = map[string]Variant{
	"boilerplate":     {Name: "boilerplate", Preset: "boilerplate", Geometry: "quad"},
	"simple-shader":   {Name: "simple-shader", Preset: "simple", Geometry: "triangle"},
	"texture":         {Name: "texture", Preset: "texture", Geometry: "quad", Texture: "embed:noise.png"},
	"neon-swirls":     {Name: "neon-swirls", Preset: "neon", Geometry: "quad"},
	"fractal-pattern": {Name: "fractal-pattern", Preset: "fractal", Geometry: "quad", Texture: "embed:noise.png"},
}

// Builtin returns a built-in variant by name.
func Builtin(name string) (Variant, error) {
	v, ok := builtins[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (available: %s)", name, strings.Join(Builtins(), ", "))
	}
	return v, nil
}

// Builtins lists the built-in variant names.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadVariant reads a variant file. The format follows the extension.
func LoadVariant(path string) (Variant, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Variant{}, fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return Variant{}, fmt.Errorf("failed to read variant file: %w", err)
	}

	v, err := ParseVariant(data, filepath.Ext(expanded))
	if err != nil {
		return Variant{}, fmt.Errorf("%s: %w", path, err)
	}
	v.dir = filepath.Dir(expanded)
	if v.Name == "" {
		v.Name = strings.TrimSuffix(filepath.Base(expanded), filepath.Ext(expanded))
	}
	return v, nil
}

// ParseVariant decodes a variant from TOML (".toml") or YAML (".yaml",
// ".yml"). Unknown keys are rejected.
func ParseVariant(data []byte, ext string) (Variant, error) {
	var v Variant
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			return Variant{}, fmt.Errorf("failed to parse TOML variant: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&v); err != nil {
			return Variant{}, fmt.Errorf("failed to parse YAML variant: %w", err)
		}
	default:
		return Variant{}, fmt.Errorf("unsupported variant format %q", ext)
	}
	return v, nil
}

// Encode writes the variant in the format selected by ext.
func (v Variant) Encode(ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.Marshal(v)
	case ".yaml", ".yml":
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("unsupported variant format %q", ext)
}

// Source loads the variant's shader pair.
func (v Variant) Source() (shader.Source, error) {
	if v.Vertex == "" && v.Fragment == "" {
		preset := v.Preset
		if preset == "" {
			preset = "boilerplate"
		}
		src, err := shader.Preset(preset)
		if err != nil {
			return shader.Source{}, err
		}
		src.Name = v.Name
		return src, nil
	}
	if v.Vertex == "" || v.Fragment == "" {
		return shader.Source{}, fmt.Errorf("variant %s: vertex and fragment must be given together", v.Name)
	}

	vs, err := v.readFile(v.Vertex)
	if err != nil {
		return shader.Source{}, err
	}
	fs, err := v.readFile(v.Fragment)
	if err != nil {
		return shader.Source{}, err
	}
	return shader.Source{Name: v.Name, Vertex: vs, Fragment: fs}, nil
}

func (v Variant) readFile(name string) (string, error) {
	path, err := homedir.Expand(name)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) && v.dir != "" {
		path = filepath.Join(v.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader source: %w", err)
	}
	return string(data), nil
}

// SessionConfig builds the session configuration for this variant. Shader
// sources are translated to target unless the dialect is native.
func (v Variant) SessionConfig(target translator.Target) (session.Config, error) {
	src, err := v.Source()
	if err != nil {
		return session.Config{}, err
	}

	dialect := translator.Dialect(strings.ToLower(v.Dialect))
	switch dialect {
	case "":
		dialect = translator.WebGL
	case translator.WebGL, translator.Native:
	default:
		return session.Config{}, fmt.Errorf("variant %s: unknown dialect %q", v.Name, v.Dialect)
	}

	shape, ok := geometry.Shape(v.Geometry)
	if !ok {
		return session.Config{}, fmt.Errorf("variant %s: unknown geometry %q", v.Name, v.Geometry)
	}

	cfg := session.Config{
		Name:       v.Name,
		Source:     src,
		Dialect:    dialect,
		Target:     target,
		Geometry:   shape,
		TextureRef: v.Texture,
	}

	switch len(v.ClearColor) {
	case 0:
	case 3:
		copy(cfg.ClearColor[:], v.ClearColor)
		cfg.ClearColor[3] = 1
	case 4:
		copy(cfg.ClearColor[:], v.ClearColor)
	default:
		return session.Config{}, fmt.Errorf("variant %s: clear_color needs 3 or 4 components, got %d", v.Name, len(v.ClearColor))
	}

	switch len(v.Fallback) {
	case 0:
	case 3, 4:
		c := [4]uint8{0, 0, 0, 255}
		for i, n := range v.Fallback {
			if n < 0 || n > 255 {
				return session.Config{}, fmt.Errorf("variant %s: fallback component %d out of range", v.Name, n)
			}
			c[i] = uint8(n)
		}
		cfg.Fallback = color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
	default:
		return session.Config{}, fmt.Errorf("variant %s: fallback needs 3 or 4 components, got %d", v.Name, len(v.Fallback))
	}
	return cfg, nil
}

// Resolve picks the variant selected by the options: the -config file if
// given, otherwise the built-in -variant, with -texture and -dialect applied
// on top.
func (o *ShaderOptions) Resolve() (Variant, error) {
	var v Variant
	var err error
	if o.ConfigFile != nil && *o.ConfigFile != "" {
		v, err = LoadVariant(*o.ConfigFile)
	} else {
		name := "boilerplate"
		if o.Variant != nil && *o.Variant != "" {
			name = *o.Variant
		}
		v, err = Builtin(name)
	}
	if err != nil {
		return Variant{}, err
	}
	if o.Texture != nil && *o.Texture != "" {
		v.Texture = *o.Texture
	}
	if o.Dialect != nil && *o.Dialect != "" {
		v.Dialect = *o.Dialect
	}
	return v, nil
}
