package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderquad/glcontext"
	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/options"
)

var (
	_ graphics.Surface = (*Window)(nil)
	_ graphics.Host    = (*Window)(nil)
)

// Window is a GLFW window usable as a session surface and as the host that
// drives its frame loop.
type Window struct {
	window *glfw.Window
	gl     *glcontext.Context
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates a window with an OpenGL 4.1 core context sized from the
// options. InitGraphics must have been called on this thread.
func New(options *options.ShaderOptions, visible bool, title string) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	if title == "" {
		title = "goshaderquad"
	}
	win, err := glfw.CreateWindow(*options.Width, *options.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	w := &Window{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(w.glfwKeyCallback)
	return w, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (w *Window) RegisterKeyCallback(key glfw.Key, f func()) {
	w.keyCallbacks[key] = f
}

func (w *Window) glfwKeyCallback(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		win.SetShouldClose(true)
	}

	if action == glfw.Press {
		if callback, ok := w.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// Context makes the window's context current and returns the GL command
// interface for it. Vsync is enabled the first time.
func (w *Window) Context() (graphics.Context, error) {
	w.window.MakeContextCurrent()
	if w.gl != nil {
		return w.gl, nil
	}
	glfw.SwapInterval(1)
	ctx, err := glcontext.New()
	if err != nil {
		return nil, err
	}
	log.Printf("OpenGL version: %s", ctx.Version())
	w.gl = ctx
	return w.gl, nil
}

// SetSize resizes the window. The framebuffer may end up larger on high-DPI
// displays; Width and Height report the framebuffer.
func (w *Window) SetSize(width, height int) {
	w.window.SetSize(width, height)
}

func (w *Window) Width() int {
	fbWidth, _ := w.window.GetFramebufferSize()
	return fbWidth
}

func (w *Window) Height() int {
	_, fbHeight := w.window.GetFramebufferSize()
	return fbHeight
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) EndFrame() {
	w.window.SwapBuffers()
	glfw.PollEvents()
}

// Time returns milliseconds since GLFW was initialized.
func (w *Window) Time() float64 {
	return glfw.GetTime() * 1000
}

// Shutdown releases the GL objects owned by the window and destroys it.
func (w *Window) Shutdown() {
	if w.gl != nil {
		w.window.MakeContextCurrent()
		w.gl.Destroy()
		w.gl = nil
	}
	w.window.Destroy()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
