package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderquad/encoder"
	"github.com/richinsley/goshaderquad/glfwcontext"
	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/headless"
	"github.com/richinsley/goshaderquad/options"
	"github.com/richinsley/goshaderquad/session"
	"github.com/richinsley/goshaderquad/translator"
)

// countingLoop is a Loop that counts frame requests for the dry-run report.
type countingLoop struct {
	*graphics.Loop
	requests int
}

func (c *countingLoop) RequestNextFrame(fn graphics.FrameFunc) error {
	c.requests++
	return c.Loop.RequestNextFrame(fn)
}

func runWindow(opts *options.ShaderOptions, variant options.Variant) {
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, true, "goshaderquad - "+variant.Name)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer win.Shutdown()

	cfg, err := variant.SessionConfig(translator.GLSL410)
	if err != nil {
		log.Fatalf("Invalid variant: %v", err)
	}

	loop := graphics.NewLoop()
	s := session.New(cfg, loop, loop)
	if err := s.Activate(win); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer s.Teardown()

	// R restarts the session: time goes back to zero and the texture reloads.
	win.RegisterKeyCallback(glfw.KeyR, func() {
		loop.Post(func() {
			log.Println("Restarting session...")
			if err := s.Activate(win); err != nil {
				log.Printf("Failed to restart session: %v", err)
			}
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Println("Starting interactive render loop...")
	if err := loop.Run(ctx, win); err != nil && ctx.Err() == nil {
		log.Printf("Render loop stopped: %v", err)
	}
}

// prewarm waits for the session's texture so that recorded frames never
// sample the empty texture.
func prewarm(s *session.Session, loop *graphics.Loop) {
	res := s.Texture()
	if res == nil {
		return
	}
	log.Println("Pre-warming renderer...")
	select {
	case <-res.Fetched():
	case <-time.After(30 * time.Second):
		log.Printf("Warning: texture %s still loading; recording without it.", res.Ref())
	}
	loop.RunTasks()
	log.Println("Pre-warming complete.")
}

func runHeadless(opts *options.ShaderOptions, variant options.Variant) {
	h, err := headless.New(*opts.Width, *opts.Height)
	if err != nil {
		log.Fatalf("Failed to create headless surface: %v", err)
	}
	defer h.Shutdown()

	cfg, err := variant.SessionConfig(translator.GLSL410)
	if err != nil {
		log.Fatalf("Invalid variant: %v", err)
	}

	loop := graphics.NewLoop()
	s := session.New(cfg, loop, loop)
	if err := s.Activate(h); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer s.Teardown()
	prewarm(s, loop)

	var enc *encoder.FFmpegEncoder
	if *opts.OutputFile != "" {
		enc, err = encoder.NewFFmpegEncoder(opts)
		if err != nil {
			log.Fatalf("Failed to create encoder: %v", err)
		}
		go enc.Run()
	}

	reader, _ := s.Context().(graphics.PixelReader)
	frames := opts.FrameCount()
	log.Printf("Starting offscreen render loop for %d frames...", frames)
	for i := 0; i < frames; i++ {
		now := float64(i) * 1000 / float64(*opts.FPS)
		if !loop.Step(now) {
			log.Printf("Session stopped requesting frames at frame %d.", i)
			break
		}
		if enc != nil && reader != nil {
			enc.SendVideo(&encoder.Frame{Pixels: reader.ReadPixels(h.Width(), h.Height()), PTS: int64(i)})
		}
		h.EndFrame()
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			log.Fatalf("Offscreen rendering failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	}
}

// runRecord drives a session against the in-memory recorder and reports
// what it submitted.
func runRecord(opts *options.ShaderOptions, variant options.Variant) {
	surface := graphics.NewRecordingSurface(*opts.Width, *opts.Height)

	cfg, err := variant.SessionConfig(translator.GLSL410)
	if err != nil {
		log.Fatalf("Invalid variant: %v", err)
	}

	loop := &countingLoop{Loop: graphics.NewLoop()}
	s := session.New(cfg, loop, loop)
	if err := s.Activate(surface); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	prewarm(s, loop.Loop)

	frames := opts.FrameCount()
	for i := 0; i < frames; i++ {
		if !loop.Step(float64(i) * 1000 / float64(*opts.FPS)) {
			break
		}
	}

	rec := surface.Recorder
	fmt.Printf("variant:        %s\n", variant.Name)
	fmt.Printf("frames:         %d\n", s.Frames())
	fmt.Printf("draw calls:     %d\n", rec.Count("DrawTriangles"))
	fmt.Printf("frame requests: %d\n", loop.requests)
	fmt.Printf("elapsed:        %.3fs\n", s.Elapsed())
	if res := s.Texture(); res != nil {
		fmt.Printf("texture:        %s (%s)\n", res.Ref(), res.State())
	}
	s.Teardown()
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Shader Quad Viewer/Recorder")
		fmt.Printf("Built-in variants: %s\n", strings.Join(options.Builtins(), ", "))
		flag.PrintDefaults()
		return
	}

	variant, err := opts.Resolve()
	if err != nil {
		log.Fatalf("Error selecting variant: %v", err)
	}
	log.Printf("Running variant: %s", variant.Name)

	switch *opts.Backend {
	case options.BackendWindow:
		runWindow(opts, variant)
	case options.BackendHeadless:
		runHeadless(opts, variant)
	case options.BackendRecord:
		runRecord(opts, variant)
	default:
		log.Fatalf("Unknown backend %q (want window, headless or record)", *opts.Backend)
	}
}
