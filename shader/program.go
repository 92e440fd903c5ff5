package shader

import (
	"fmt"
	"log"
	"strings"

	"github.com/richinsley/goshaderquad/graphics"
)

// CompileError reports a stage that failed to compile, with the driver's
// info log.
type CompileError struct {
	Stage graphics.Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, cleanLog(e.Log))
}

// LinkError reports a program that the driver did not mark as linked.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", cleanLog(e.Log))
}

func cleanLog(s string) string {
	s = strings.TrimRight(s, "\x00 \r\n\t")
	if s == "" {
		return "(no info log)"
	}
	return s
}

func hasErrorLine(infoLog string) bool {
	for _, line := range strings.Split(infoLog, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "ERROR:") {
			return true
		}
	}
	return false
}

// Shader is a single compiled stage.
type Shader struct {
	ID    uint32
	Stage graphics.Stage
}

// CompileStage compiles one stage. A false compile status, or an info log
// line starting with "ERROR:", fails with *CompileError; other log output is
// logged as a warning.
func CompileStage(gfx graphics.Context, stage graphics.Stage, source string) (Shader, error) {
	id := gfx.CreateShader(stage)
	gfx.ShaderSource(id, source)
	gfx.CompileShader(id)

	infoLog := gfx.ShaderInfoLog(id)
	if !gfx.ShaderCompiled(id) || hasErrorLine(infoLog) {
		gfx.DeleteShader(id)
		return Shader{}, &CompileError{Stage: stage, Log: infoLog}
	}
	if msg := strings.TrimRight(infoLog, "\x00 \r\n\t"); msg != "" {
		log.Printf("Warning: %s shader compiled with diagnostics: %s", stage, msg)
	}
	return Shader{ID: id, Stage: stage}, nil
}

// Compile compiles both stages and links them. The stage objects are
// released once the program exists.
func Compile(gfx graphics.Context, vertexSource, fragmentSource string) (*Program, error) {
	vs, err := CompileStage(gfx, graphics.VertexStage, vertexSource)
	if err != nil {
		return nil, err
	}
	fs, err := CompileStage(gfx, graphics.FragmentStage, fragmentSource)
	if err != nil {
		gfx.DeleteShader(vs.ID)
		return nil, err
	}

	p, err := Link(gfx, vs, fs)
	gfx.DeleteShader(vs.ID)
	gfx.DeleteShader(fs.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Link links a vertex and fragment stage into a program.
func Link(gfx graphics.Context, vertex, fragment Shader) (*Program, error) {
	if vertex.Stage != graphics.VertexStage || fragment.Stage != graphics.FragmentStage {
		return nil, &LinkError{Log: fmt.Sprintf("stages out of order: got %s and %s", vertex.Stage, fragment.Stage)}
	}

	id := gfx.CreateProgram()
	gfx.AttachShader(id, vertex.ID)
	gfx.AttachShader(id, fragment.ID)
	gfx.LinkProgram(id)

	if !gfx.ProgramLinked(id) {
		infoLog := gfx.ProgramInfoLog(id)
		gfx.DeleteProgram(id)
		return nil, &LinkError{Log: infoLog}
	}
	return &Program{gfx: gfx, id: id}, nil
}

// Program is a linked vertex+fragment pair on one context.
type Program struct {
	gfx   graphics.Context
	id    uint32
	names map[string]string
	// generation changes whenever previously resolved handles become stale.
	generation int
}

func (p *Program) ID() uint32 {
	return p.id
}

// SetNames installs a logical to in-program name table, used when a
// translator renamed the declared variables.
func (p *Program) SetNames(names map[string]string) {
	p.names = names
	p.generation++
}

func (p *Program) mapped(name string) string {
	if m, ok := p.names[name]; ok && m != "" {
		return m
	}
	return name
}

// Activate makes this the current program on its context.
func (p *Program) Activate() {
	if p.id == 0 {
		return
	}
	p.gfx.UseProgram(p.id)
}

// Uniform resolves a uniform by name. The second result is false when the
// program does not declare or use it; the returned handle is then inert.
func (p *Program) Uniform(name string) (Uniform, bool) {
	if p.id == 0 {
		return Uniform{}, false
	}
	loc := p.gfx.GetUniformLocation(p.id, p.mapped(name))
	if loc < 0 {
		return Uniform{}, false
	}
	return Uniform{program: p, loc: loc, generation: p.generation}, true
}

// Attribute resolves a vertex attribute by name.
func (p *Program) Attribute(name string) (Attribute, bool) {
	if p.id == 0 {
		return Attribute{}, false
	}
	loc := p.gfx.GetAttribLocation(p.id, p.mapped(name))
	if loc < 0 {
		return Attribute{}, false
	}
	return Attribute{program: p, loc: loc, generation: p.generation}, true
}

// Delete frees the program. Handles resolved from it become inert.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	p.gfx.DeleteProgram(p.id)
	p.id = 0
	p.generation++
}

// Uniform is a resolved uniform location. Setters apply to the currently
// active program and do nothing on a missing or stale handle.
type Uniform struct {
	program    *Program
	loc        int32
	generation int
}

// Valid reports whether the handle still refers to a live location.
func (u Uniform) Valid() bool {
	return u.program != nil && u.program.id != 0 && u.generation == u.program.generation && u.loc >= 0
}

func (u Uniform) Location() int32 {
	if !u.Valid() {
		return -1
	}
	return u.loc
}

func (u Uniform) SetFloat(v float32) {
	if u.Valid() {
		u.program.gfx.Uniform1f(u.loc, v)
	}
}

func (u Uniform) SetVec2(x, y float32) {
	if u.Valid() {
		u.program.gfx.Uniform2f(u.loc, x, y)
	}
}

// SetInt sets an integer uniform, typically a sampler's texture unit.
func (u Uniform) SetInt(v int32) {
	if u.Valid() {
		u.program.gfx.Uniform1i(u.loc, v)
	}
}

// Attribute is a resolved vertex attribute slot.
type Attribute struct {
	program    *Program
	loc        int32
	generation int
}

func (a Attribute) Valid() bool {
	return a.program != nil && a.program.id != 0 && a.generation == a.program.generation && a.loc >= 0
}

func (a Attribute) Location() int32 {
	if !a.Valid() {
		return -1
	}
	return a.loc
}
