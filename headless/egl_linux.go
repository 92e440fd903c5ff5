//go:build linux

package headless

import (
	"fmt"
	"log"
	"time"
	"unsafe"

	"github.com/richinsley/goshaderquad/glcontext"
	"github.com/richinsley/goshaderquad/graphics"
)

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>
#include <EGL/eglext.h>

static PFNEGLQUERYDEVICESEXTPROC eglQueryDevicesEXT_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC eglGetPlatformDisplayEXT_ptr = NULL;

static void initialize_egl_extension_pointers() {
    eglQueryDevicesEXT_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    eglGetPlatformDisplayEXT_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display, const EGLint *attrib_list) {
    if (eglGetPlatformDisplayEXT_ptr) {
        return eglGetPlatformDisplayEXT_ptr(platform, native_display, attrib_list);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (eglQueryDevicesEXT_ptr) {
        return eglQueryDevicesEXT_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}
*/
import "C"

var (
	_ graphics.Surface = (*Headless)(nil)
	_ graphics.Host    = (*Headless)(nil)
)

// Headless is an offscreen pbuffer surface with a desktop OpenGL 4.1 core
// context.
type Headless struct {
	display C.EGLDisplay
	config  C.EGLConfig
	context C.EGLContext
	surface C.EGLSurface

	width, height int
	gl            *glcontext.Context
	start         time.Time
	closed        bool
}

// getEGLDisplay tries the robust device enumeration method first,
// falling back to the default display.
func getEGLDisplay() (C.EGLDisplay, error) {
	C.initialize_egl_extension_pointers()

	var numDevices C.EGLint
	if C.query_devices(0, nil, &numDevices) == C.EGL_FALSE || numDevices == 0 {
		log.Println("Warning: EGL_EXT_device_query not supported or no devices found. Falling back to EGL_DEFAULT_DISPLAY.")
		display := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("fallback to eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
		}
		return display, nil
	}

	log.Printf("Found %d EGL device(s).", numDevices)
	devices := make([]C.EGLDeviceEXT, numDevices)
	if C.query_devices(numDevices, &devices[0], &numDevices) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("failed to query EGL devices")
	}

	// In an NVIDIA container the first usable device is the GPU.
	for i := 0; i < int(numDevices); i++ {
		display := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]), nil)
		if display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			log.Printf("Successfully got EGL display from device %d.", i)
			return display, nil
		}
	}

	return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("could not get a valid EGL display from any available device")
}

// New creates a width x height pbuffer and a current OpenGL 4.1 core context
// on the calling thread.
func New(width, height int) (*Headless, error) {
	h := &Headless{start: time.Now()}

	var err error
	h.display, err = getEGLDisplay()
	if err != nil {
		return nil, fmt.Errorf("failed to get EGL display: %w", err)
	}

	var major, minor C.EGLint
	if C.eglInitialize(h.display, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("failed to initialize EGL")
	}
	log.Printf("EGL Initialized. Version: %d.%d", major, minor)

	if C.eglBindAPI(C.EGL_OPENGL_API) == C.EGL_FALSE {
		h.Shutdown()
		return nil, fmt.Errorf("EGL display does not support desktop OpenGL")
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_BIT,
		C.EGL_NONE,
	}
	var numConfig C.EGLint
	if C.eglChooseConfig(h.display, &configAttribs[0], &h.config, 1, &numConfig) == C.EGL_FALSE || numConfig == 0 {
		h.Shutdown()
		return nil, fmt.Errorf("failed to choose EGL config")
	}

	if err := h.createSurface(width, height); err != nil {
		h.Shutdown()
		return nil, err
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, 4,
		C.EGL_CONTEXT_MINOR_VERSION, 1,
		C.EGL_CONTEXT_OPENGL_PROFILE_MASK, C.EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT,
		C.EGL_NONE,
	}
	h.context = C.eglCreateContext(h.display, h.config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create EGL context")
	}

	if err := h.makeCurrent(); err != nil {
		h.Shutdown()
		return nil, err
	}
	return h, nil
}

func (h *Headless) createSurface(width, height int) error {
	pbufferAttribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	surface := C.eglCreatePbufferSurface(h.display, h.config, &pbufferAttribs[0])
	if surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		return fmt.Errorf("failed to create %dx%d pbuffer surface", width, height)
	}
	h.surface = surface
	h.width, h.height = width, height
	return nil
}

func (h *Headless) makeCurrent() error {
	if C.eglMakeCurrent(h.display, h.surface, h.surface, h.context) == C.EGL_FALSE {
		return fmt.Errorf("failed to make EGL context current")
	}
	return nil
}

// Context makes the pbuffer context current and returns the GL command
// interface for it.
func (h *Headless) Context() (graphics.Context, error) {
	if err := h.makeCurrent(); err != nil {
		return nil, err
	}
	if h.gl == nil {
		ctx, err := glcontext.New()
		if err != nil {
			return nil, err
		}
		log.Printf("OpenGL version: %s", ctx.Version())
		h.gl = ctx
	}
	return h.gl, nil
}

// SetSize replaces the pbuffer with one of the new size. Pbuffers cannot be
// resized in place.
func (h *Headless) SetSize(width, height int) {
	if width == h.width && height == h.height {
		return
	}
	old := h.surface
	if err := h.createSurface(width, height); err != nil {
		log.Printf("Error resizing headless surface: %v", err)
		return
	}
	if err := h.makeCurrent(); err != nil {
		log.Printf("Error resizing headless surface: %v", err)
	}
	C.eglDestroySurface(h.display, old)
}

func (h *Headless) Width() int  { return h.width }
func (h *Headless) Height() int { return h.height }

// Close makes ShouldClose report true.
func (h *Headless) Close() { h.closed = true }

func (h *Headless) ShouldClose() bool { return h.closed }

func (h *Headless) EndFrame() {
	C.eglSwapBuffers(h.display, h.surface)
}

// Time returns milliseconds since the surface was created.
func (h *Headless) Time() float64 {
	return float64(time.Since(h.start).Microseconds()) / 1000
}

func (h *Headless) Shutdown() {
	if h.gl != nil {
		h.gl.Destroy()
		h.gl = nil
	}
	if h.display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
		C.eglMakeCurrent(h.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
		if h.context != C.EGLContext(C.EGL_NO_CONTEXT) {
			C.eglDestroyContext(h.display, h.context)
		}
		if h.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
			C.eglDestroySurface(h.display, h.surface)
		}
		C.eglTerminate(h.display)
		h.display = C.EGLDisplay(C.EGL_NO_DISPLAY)
	}
}
