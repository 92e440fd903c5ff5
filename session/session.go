// Package session drives one shader program over a fixed vertex buffer, one
// draw per display refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"

	"github.com/richinsley/goshaderquad/clock"
	"github.com/richinsley/goshaderquad/geometry"
	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/shader"
	"github.com/richinsley/goshaderquad/texture"
	"github.com/richinsley/goshaderquad/translator"
)

// Names the session looks up in every program. Only the position attribute
// is expected; a shader that omits any of the others simply does not get it.
const (
	PositionAttribute = "a_position"
	CanvasSizeUniform = "canvasSize"
	TimeUniform       = "u_time"
	SamplerUniform    = "u_texture"
)

// DefaultClearColor is used when Config.ClearColor is left zero.
var DefaultClearColor = [4]float32{0, 0.7, 0, 1}

var (
	ErrNotActivated = errors.New("session: not activated")
	ErrNoProgram    = errors.New("session: no shader program")
	ErrTornDown     = errors.New("session: torn down")
)

// ActivationError reports the activation step that failed. The session is
// left Uninitialized with nothing allocated.
type ActivationError struct {
	Op  string
	Err error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activation failed during %s: %v", e.Op, e.Err)
}

func (e *ActivationError) Unwrap() error {
	return e.Err
}

// State is the session lifecycle position.
type State int

const (
	Uninitialized State = iota
	Activated
	Running
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Activated:
		return "activated"
	case Running:
		return "running"
	case TornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// Config selects what a session draws.
type Config struct {
	Name   string
	Source shader.Source
	// Dialect of Source. WebGL sources are translated to Target first.
	Dialect translator.Dialect
	Target  translator.Target
	// Geometry defaults to geometry.Quad.
	Geometry []geometry.Vertex
	// TextureRef, when set, is streamed into texture unit 0.
	TextureRef string
	// Fetcher resolves TextureRef. Defaults to texture.NewLoader().
	Fetcher texture.Fetcher
	// Fallback is uploaded if the texture fails; zero means
	// texture.DefaultFallback.
	Fallback color.RGBA
	// ClearColor as RGBA; zero means DefaultClearColor.
	ClearColor [4]float32
	// Width and Height, when positive, size the surface on activation.
	Width  int
	Height int
}

// Session owns every GPU resource it creates and touches them only from the
// loop that calls Activate and OnFrame.
type Session struct {
	cfg        Config
	scheduler  graphics.Scheduler
	dispatcher graphics.Dispatcher

	state   State
	surface graphics.Surface
	gfx     graphics.Context
	program *shader.Program
	buffer  *geometry.Buffer
	texture *texture.Resource
	clock   *clock.Clock

	position   shader.Attribute
	canvasSize shader.Uniform
	time       shader.Uniform
	sampler    shader.Uniform

	width, height int
	frames        int
	regressions   int
	// armed is set while a frame request is outstanding.
	armed bool
}

func New(cfg Config, scheduler graphics.Scheduler, dispatcher graphics.Dispatcher) *Session {
	if len(cfg.Geometry) == 0 {
		cfg.Geometry = geometry.Quad
	}
	if cfg.ClearColor == ([4]float32{}) {
		cfg.ClearColor = DefaultClearColor
	}
	if cfg.Fallback == (color.RGBA{}) {
		cfg.Fallback = texture.DefaultFallback
	}
	if cfg.Name == "" {
		cfg.Name = "session"
	}
	return &Session{
		cfg:        cfg,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		clock:      clock.New(),
	}
}

// Activate binds the session to surface, builds geometry and program, starts
// the texture load and requests the first frame. Activating again releases
// everything from the previous activation first, including any texture load
// still in flight.
func (s *Session) Activate(surface graphics.Surface) error {
	if s.state == TornDown {
		return &ActivationError{Op: "context", Err: ErrTornDown}
	}
	if surface == nil {
		return &ActivationError{Op: "context", Err: errors.New("no surface")}
	}
	gfx, err := surface.Context()
	if err != nil {
		return &ActivationError{Op: "context", Err: err}
	}
	if gfx == nil {
		return &ActivationError{Op: "context", Err: errors.New("surface returned no graphics context")}
	}

	s.release()
	s.state = Uninitialized
	s.surface = surface
	s.gfx = gfx

	if s.cfg.Width > 0 && s.cfg.Height > 0 {
		surface.SetSize(s.cfg.Width, s.cfg.Height)
	}
	s.width, s.height = surface.Width(), surface.Height()
	gfx.Viewport(0, 0, int32(s.width), int32(s.height))

	s.buffer = geometry.NewBuffer(gfx)
	s.buffer.Upload(s.cfg.Geometry)

	translated, err := translator.Translate(s.cfg.Source, s.cfg.Dialect, s.cfg.Target)
	if err != nil {
		s.release()
		return &ActivationError{Op: "translate", Err: err}
	}
	program, err := shader.Compile(gfx, translated.Vertex, translated.Fragment)
	if err != nil {
		s.release()
		return &ActivationError{Op: "compile", Err: err}
	}
	program.SetNames(translated.Names)
	program.Activate()
	s.program = program

	s.resolve()

	if s.cfg.TextureRef != "" {
		fetcher := s.cfg.Fetcher
		if fetcher == nil {
			fetcher = texture.NewLoader()
		}
		s.texture = texture.Load(context.Background(), gfx, fetcher, s.dispatcher, s.cfg.TextureRef, texture.WithFallback(s.cfg.Fallback))
	}

	s.clock = clock.New()
	s.frames = 0
	s.regressions = 0
	s.state = Activated

	// A request left over from the previous activation runs this session's
	// frame callback too, so it is reused rather than doubled.
	if !s.armed {
		if err := s.scheduler.RequestNextFrame(s.frame); err != nil {
			s.release()
			s.state = Uninitialized
			return &ActivationError{Op: "schedule", Err: err}
		}
		s.armed = true
	}
	log.Printf("Session %s activated at %dx%d (%d vertices).", s.cfg.Name, s.width, s.height, s.buffer.VertexCount())
	return nil
}

// resolve looks up the known inputs of the freshly linked program and sets
// their initial values. The program must be active.
func (s *Session) resolve() {
	var ok bool
	if s.position, ok = s.program.Attribute(PositionAttribute); ok {
		s.buffer.BindAttribute(s.position, 3)
	} else {
		log.Printf("Warning: %s: attribute %s not found; geometry is not bound.", s.cfg.Name, PositionAttribute)
	}

	if s.canvasSize, ok = s.program.Uniform(CanvasSizeUniform); ok {
		s.canvasSize.SetVec2(float32(s.width), float32(s.height))
	} else {
		log.Printf("%s: uniform %s not used, skipping.", s.cfg.Name, CanvasSizeUniform)
	}
	if s.time, ok = s.program.Uniform(TimeUniform); ok {
		s.time.SetFloat(0)
	} else {
		log.Printf("%s: uniform %s not used, skipping.", s.cfg.Name, TimeUniform)
	}
	if s.sampler, ok = s.program.Uniform(SamplerUniform); ok {
		s.sampler.SetInt(0)
	}
}

func (s *Session) frame(now float64) {
	s.armed = false
	if s.state == TornDown {
		return
	}
	if err := s.OnFrame(now); err != nil {
		log.Printf("Error rendering frame %d of %s: %v", s.frames, s.cfg.Name, err)
	}
}

// OnFrame advances the clock to now, updates uniforms, draws once and
// re-arms itself with the scheduler. It fails without drawing or re-arming
// only when the session has no context or no program.
func (s *Session) OnFrame(now float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.armed = false

	if _, err := s.clock.Advance(now); err != nil {
		s.regressions++
		if s.regressions == 1 {
			log.Printf("Warning: %s: frame timestamp %.3f did not advance the clock; ignoring.", s.cfg.Name, now)
		}
	}

	s.program.Activate()
	s.followSurface()
	s.time.SetFloat(float32(s.clock.Elapsed()))
	s.draw()

	s.frames++
	s.state = Running

	if err := s.scheduler.RequestNextFrame(s.frame); err != nil {
		return fmt.Errorf("failed to request next frame: %w", err)
	}
	s.armed = true
	return nil
}

// Render draws one frame with the current uniform values. It does not touch
// the clock or the scheduler.
func (s *Session) Render() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.program.Activate()
	s.draw()
	return nil
}

func (s *Session) ready() error {
	switch {
	case s.state == TornDown:
		return ErrTornDown
	case s.gfx == nil || s.state == Uninitialized:
		return ErrNotActivated
	case s.program == nil || s.program.ID() == 0:
		return ErrNoProgram
	}
	return nil
}

func (s *Session) draw() {
	if s.texture != nil {
		s.texture.Bind(0)
	}
	c := s.cfg.ClearColor
	s.gfx.ClearColor(c[0], c[1], c[2], c[3])
	s.gfx.ClearDepth(1.0)
	s.gfx.Enable(graphics.DepthTest)
	s.gfx.Clear(graphics.ColorBuffer | graphics.DepthBuffer)
	s.gfx.DrawTriangles(0, int32(s.buffer.VertexCount()))
}

// followSurface keeps the viewport and canvasSize in step with the surface.
func (s *Session) followSurface() {
	w, h := s.surface.Width(), s.surface.Height()
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h
	s.gfx.Viewport(0, 0, int32(w), int32(h))
	s.canvasSize.SetVec2(float32(w), float32(h))
}

// release cancels the texture load and frees GPU objects from the current
// activation.
func (s *Session) release() {
	if s.texture != nil {
		s.texture.Delete()
		s.texture = nil
	}
	if s.program != nil {
		s.program.Delete()
		s.program = nil
	}
	if s.buffer != nil {
		s.buffer.Delete()
		s.buffer = nil
	}
	s.position = shader.Attribute{}
	s.canvasSize = shader.Uniform{}
	s.time = shader.Uniform{}
	s.sampler = shader.Uniform{}
}

// Teardown releases every resource. A pending frame or texture completion
// that fires afterwards does nothing.
func (s *Session) Teardown() {
	if s.state == TornDown {
		return
	}
	s.release()
	s.gfx = nil
	s.surface = nil
	s.state = TornDown
	log.Printf("Session %s torn down after %d frames.", s.cfg.Name, s.frames)
}

func (s *Session) State() State               { return s.state }
func (s *Session) Frames() int                { return s.frames }
func (s *Session) Elapsed() float64           { return s.clock.Elapsed() }
func (s *Session) Texture() *texture.Resource { return s.texture }
func (s *Session) Program() *shader.Program   { return s.program }
func (s *Session) Buffer() *geometry.Buffer   { return s.buffer }
func (s *Session) Size() (width, height int)  { return s.width, s.height }
func (s *Session) Context() graphics.Context  { return s.gfx }
func (s *Session) Name() string               { return s.cfg.Name }
