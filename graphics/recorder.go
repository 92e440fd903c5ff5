package graphics

import (
	"fmt"
	"image"
	"regexp"
	"strings"
)

// Call is a single recorded Context invocation.
type Call struct {
	Name string
	Args []any
}

// TextureInfo describes a texture object held by a Recorder.
type TextureInfo struct {
	Width     int
	Height    int
	Uploads   int
	Mipmapped bool
	Deleted   bool
}

type recShader struct {
	stage    Stage
	source   string
	compiled bool
	log      string
	deleted  bool
}

type recProgram struct {
	shaders  []uint32
	linked   bool
	log      string
	uniforms map[string]int32
	attribs  map[string]int32
	values   map[int32][]float32
	deleted  bool
}

var (
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)`)
	attributeDecl = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:attribute|in)\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)`)
	mainDecl      = regexp.MustCompile(`\bvoid\s+main\s*\(`)
)

// Recorder is an in-memory Context. It records every call, tracks object
// state closely enough to answer status queries, and resolves uniform and
// attribute locations from the declarations found in the shader sources.
type Recorder struct {
	// Validate returns compile diagnostics for a stage; an empty string
	// means the stage compiled. Defaults to ValidateSource.
	Validate func(stage Stage, source string) string
	// LinkCheck returns link diagnostics; empty means linked.
	LinkCheck func(vertex, fragment string) string
	// CompileLog, if set, supplies the info log of a stage that compiled,
	// the way some drivers report "No errors." on success.
	CompileLog func(stage Stage, source string) string

	calls      []Call
	nextID     uint32
	shaders    map[uint32]*recShader
	programs   map[uint32]*recProgram
	textures   map[uint32]*TextureInfo
	buffers    map[uint32][]float32
	current    uint32
	texture    uint32
	buffer     uint32
	clearColor [4]float32
	enabled    map[Capability]bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		Validate: ValidateSource,
		shaders:  make(map[uint32]*recShader),
		programs: make(map[uint32]*recProgram),
		textures: make(map[uint32]*TextureInfo),
		buffers:  make(map[uint32][]float32),
		enabled:  make(map[Capability]bool),
	}
}

// ValidateSource is the default Recorder validator: a stage must be
// non-empty and define main.
func ValidateSource(stage Stage, source string) string {
	if strings.TrimSpace(source) == "" {
		return fmt.Sprintf("ERROR: 0:0: empty %s shader", stage)
	}
	if !mainDecl.MatchString(source) {
		return fmt.Sprintf("ERROR: 0:0: %s shader has no main function", stage)
	}
	return ""
}

func (r *Recorder) record(name string, args ...any) {
	r.calls = append(r.calls, Call{Name: name, Args: args})
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Count returns how many times the named call was recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent call with the given name.
func (r *Recorder) Last(name string) (Call, bool) {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Name == name {
			return r.calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets recorded calls but keeps object state.
func (r *Recorder) Reset() {
	r.calls = nil
}

func (r *Recorder) CurrentProgram() uint32 {
	return r.current
}

// UniformValue returns the last value set for a uniform of a program.
func (r *Recorder) UniformValue(program uint32, name string) ([]float32, bool) {
	p, ok := r.programs[program]
	if !ok {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

func (r *Recorder) Texture(texture uint32) (TextureInfo, bool) {
	t, ok := r.textures[texture]
	if !ok {
		return TextureInfo{}, false
	}
	return *t, true
}

func (r *Recorder) BufferContents(buffer uint32) []float32 {
	return r.buffers[buffer]
}

func (r *Recorder) Enabled(capability Capability) bool {
	return r.enabled[capability]
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.clearColor = [4]float32{red, green, blue, alpha}
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) ClearDepth(depth float64) {
	r.record("ClearDepth", depth)
}

func (r *Recorder) Enable(capability Capability) {
	r.enabled[capability] = true
	r.record("Enable", capability)
}

func (r *Recorder) Clear(mask ClearMask) {
	r.record("Clear", mask)
}

func (r *Recorder) CreateShader(stage Stage) uint32 {
	id := r.id()
	r.shaders[id] = &recShader{stage: stage}
	r.record("CreateShader", stage, id)
	return id
}

func (r *Recorder) ShaderSource(shader uint32, source string) {
	if s, ok := r.shaders[shader]; ok {
		s.source = source
	}
	r.record("ShaderSource", shader)
}

func (r *Recorder) CompileShader(shader uint32) {
	r.record("CompileShader", shader)
	s, ok := r.shaders[shader]
	if !ok {
		return
	}
	validate := r.Validate
	if validate == nil {
		validate = ValidateSource
	}
	s.log = validate(s.stage, s.source)
	s.compiled = s.log == ""
	if s.compiled && r.CompileLog != nil {
		s.log = r.CompileLog(s.stage, s.source)
	}
}

func (r *Recorder) ShaderCompiled(shader uint32) bool {
	s, ok := r.shaders[shader]
	return ok && s.compiled
}

func (r *Recorder) ShaderInfoLog(shader uint32) string {
	if s, ok := r.shaders[shader]; ok {
		return s.log
	}
	return ""
}

func (r *Recorder) DeleteShader(shader uint32) {
	if s, ok := r.shaders[shader]; ok {
		s.deleted = true
	}
	r.record("DeleteShader", shader)
}

func (r *Recorder) CreateProgram() uint32 {
	id := r.id()
	r.programs[id] = &recProgram{
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
		values:   make(map[int32][]float32),
	}
	r.record("CreateProgram", id)
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	if p, ok := r.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
	r.record("AttachShader", program, shader)
}

func (r *Recorder) LinkProgram(program uint32) {
	r.record("LinkProgram", program)
	p, ok := r.programs[program]
	if !ok {
		return
	}

	var vertex, fragment *recShader
	for _, id := range p.shaders {
		s := r.shaders[id]
		if s == nil || !s.compiled {
			continue
		}
		switch s.stage {
		case VertexStage:
			vertex = s
		case FragmentStage:
			fragment = s
		}
	}
	if vertex == nil || fragment == nil {
		p.linked = false
		p.log = "ERROR: program requires a compiled vertex and fragment shader"
		return
	}
	if r.LinkCheck != nil {
		if msg := r.LinkCheck(vertex.source, fragment.source); msg != "" {
			p.linked = false
			p.log = msg
			return
		}
	}

	p.uniforms = make(map[string]int32)
	p.attribs = make(map[string]int32)
	p.values = make(map[int32][]float32)
	var next int32
	for _, src := range []string{vertex.source, fragment.source} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, seen := p.uniforms[m[1]]; !seen {
				p.uniforms[m[1]] = next
				next++
			}
		}
	}
	var attr int32
	for _, m := range attributeDecl.FindAllStringSubmatch(vertex.source, -1) {
		if _, seen := p.attribs[m[1]]; !seen {
			p.attribs[m[1]] = attr
			attr++
		}
	}
	p.linked = true
	p.log = ""
}

func (r *Recorder) ProgramLinked(program uint32) bool {
	p, ok := r.programs[program]
	return ok && p.linked
}

func (r *Recorder) ProgramInfoLog(program uint32) string {
	if p, ok := r.programs[program]; ok {
		return p.log
	}
	return ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.current = program
	r.record("UseProgram", program)
}

func (r *Recorder) DeleteProgram(program uint32) {
	if p, ok := r.programs[program]; ok {
		p.deleted = true
	}
	if r.current == program {
		r.current = 0
	}
	r.record("DeleteProgram", program)
}

func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	p, ok := r.programs[program]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) GetAttribLocation(program uint32, name string) int32 {
	p, ok := r.programs[program]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) setUniform(location int32, values ...float32) {
	p, ok := r.programs[r.current]
	if !ok || location < 0 {
		return
	}
	p.values[location] = values
}

func (r *Recorder) Uniform1f(location int32, v float32) {
	r.setUniform(location, v)
	r.record("Uniform1f", location, v)
}

func (r *Recorder) Uniform2f(location int32, v0, v1 float32) {
	r.setUniform(location, v0, v1)
	r.record("Uniform2f", location, v0, v1)
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.setUniform(location, float32(v))
	r.record("Uniform1i", location, v)
}

func (r *Recorder) CreateBuffer() uint32 {
	id := r.id()
	r.buffers[id] = nil
	r.record("CreateBuffer", id)
	return id
}

func (r *Recorder) BindArrayBuffer(buffer uint32) {
	r.buffer = buffer
	r.record("BindArrayBuffer", buffer)
}

func (r *Recorder) BufferData(data []float32) {
	if _, ok := r.buffers[r.buffer]; ok {
		r.buffers[r.buffer] = append([]float32(nil), data...)
	}
	r.record("BufferData", len(data))
}

func (r *Recorder) VertexAttribPointer(location uint32, size int32) {
	r.record("VertexAttribPointer", location, size)
}

func (r *Recorder) EnableVertexAttribArray(location uint32) {
	r.record("EnableVertexAttribArray", location)
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	delete(r.buffers, buffer)
	r.record("DeleteBuffer", buffer)
}

func (r *Recorder) CreateTexture() uint32 {
	id := r.id()
	r.textures[id] = &TextureInfo{}
	r.record("CreateTexture", id)
	return id
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record("ActiveTexture", unit)
}

func (r *Recorder) BindTexture2D(texture uint32) {
	r.texture = texture
	r.record("BindTexture2D", texture)
}

func (r *Recorder) TexImage2D(img *image.RGBA) {
	if t, ok := r.textures[r.texture]; ok && img != nil {
		t.Width = img.Rect.Dx()
		t.Height = img.Rect.Dy()
		t.Uploads++
		t.Mipmapped = false
	}
	r.record("TexImage2D", r.texture)
}

func (r *Recorder) GenerateMipmap() {
	if t, ok := r.textures[r.texture]; ok {
		t.Mipmapped = true
	}
	r.record("GenerateMipmap", r.texture)
}

func (r *Recorder) DeleteTexture(texture uint32) {
	if t, ok := r.textures[texture]; ok {
		t.Deleted = true
	}
	if r.texture == texture {
		r.texture = 0
	}
	r.record("DeleteTexture", texture)
}

func (r *Recorder) DrawTriangles(first, count int32) {
	r.record("DrawTriangles", first, count)
}

// ReadPixels returns a frame filled with the current clear color.
func (r *Recorder) ReadPixels(width, height int) []byte {
	px := make([]byte, width*height*4)
	var c [4]byte
	for i, v := range r.clearColor {
		c[i] = byte(v*255 + 0.5)
	}
	for i := 0; i < len(px); i += 4 {
		copy(px[i:i+4], c[:])
	}
	r.record("ReadPixels", width, height)
	return px
}

// RecordingSurface is a fixed-size Surface backed by a Recorder.
type RecordingSurface struct {
	Recorder *Recorder
	// Err, when set, is returned by Context to simulate an unavailable GPU.
	Err    error
	width  int
	height int
}

func NewRecordingSurface(width, height int) *RecordingSurface {
	return &RecordingSurface{
		Recorder: NewRecorder(),
		width:    width,
		height:   height,
	}
}

func (s *RecordingSurface) Context() (Context, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Recorder, nil
}

func (s *RecordingSurface) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *RecordingSurface) Width() int  { return s.width }
func (s *RecordingSurface) Height() int { return s.height }
