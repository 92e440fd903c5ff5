// Package texture streams images into GPU textures without blocking the
// frame loop.
package texture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"sync/atomic"

	"github.com/richinsley/goshaderquad/graphics"
)

// State is the lifecycle position of a Resource.
type State int32

const (
	Requested State = iota
	Loaded
	Bound
	Failed
)

func (s State) String() string {
	switch s {
	case Requested:
		return "requested"
	case Loaded:
		return "loaded"
	case Bound:
		return "bound"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrCanceled is reported by Err for a resource canceled before its
// completion ran.
var ErrCanceled = errors.New("texture: load canceled")

// Fetcher produces decoded pixels for a reference. *Loader implements it.
type Fetcher interface {
	Load(ctx context.Context, ref string) (*image.RGBA, error)
}

// DefaultFallback is uploaded when an image cannot be fetched or decoded.
var DefaultFallback = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Option configures Load.
type Option func(*Resource)

// WithFallback sets the color uploaded on a failed load.
func WithFallback(c color.RGBA) Option {
	return func(r *Resource) {
		r.fallback = c
	}
}

// Resource is a GPU texture whose pixels arrive asynchronously. The texture
// object exists, bound and empty, from the moment Load returns. All GPU work
// happens in the completion task, which runs on the Dispatcher's loop.
type Resource struct {
	gfx      graphics.Context
	id       uint32
	ref      string
	fallback color.RGBA

	state    atomic.Int32
	canceled atomic.Bool
	cancel   context.CancelFunc
	fetched  chan struct{}
	done     bool
	err      error
}

// Load creates the texture and starts fetching ref on a new goroutine.
func Load(ctx context.Context, gfx graphics.Context, fetcher Fetcher, dispatcher graphics.Dispatcher, ref string, opts ...Option) *Resource {
	r := &Resource{
		gfx:      gfx,
		ref:      ref,
		fallback: DefaultFallback,
		fetched:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.id = gfx.CreateTexture()
	gfx.BindTexture2D(r.id)

	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go func() {
		defer close(r.fetched)
		img, err := fetcher.Load(fetchCtx, ref)
		dispatcher.Post(func() {
			r.complete(img, err)
		})
	}()
	return r
}

// complete runs once on the owning loop. A canceled resource ignores it.
func (r *Resource) complete(img *image.RGBA, err error) {
	if r.done {
		return
	}
	r.done = true
	r.cancel()
	if r.canceled.Load() || r.id == 0 {
		return
	}

	if err != nil || img == nil {
		r.err = err
		r.state.Store(int32(Failed))
		log.Printf("Warning: texture %s failed to load, using fallback color: %v", r.ref, err)
		r.upload(Solid(r.fallback))
		return
	}

	r.state.Store(int32(Loaded))
	r.upload(img)
	r.state.Store(int32(Bound))
	log.Printf("Texture %s bound (%dx%d).", r.ref, img.Rect.Dx(), img.Rect.Dy())
}

func (r *Resource) upload(img *image.RGBA) {
	r.gfx.BindTexture2D(r.id)
	r.gfx.TexImage2D(img)
	r.gfx.GenerateMipmap()
}

// Bind binds the texture to a texture unit.
func (r *Resource) Bind(unit uint32) {
	if r.id == 0 {
		return
	}
	r.gfx.ActiveTexture(unit)
	r.gfx.BindTexture2D(r.id)
}

// Cancel invalidates the pending completion and aborts the fetch. It is
// safe to call more than once.
func (r *Resource) Cancel() {
	r.canceled.Store(true)
	if r.cancel != nil {
		r.cancel()
	}
}

// Delete cancels the load and frees the GPU texture.
func (r *Resource) Delete() {
	r.Cancel()
	if r.id != 0 {
		r.gfx.DeleteTexture(r.id)
		r.id = 0
	}
}

func (r *Resource) ID() uint32     { return r.id }
func (r *Resource) Ref() string    { return r.ref }
func (r *Resource) State() State   { return State(r.state.Load()) }
func (r *Resource) Canceled() bool { return r.canceled.Load() }

// Err returns the fetch error of a failed load, or ErrCanceled.
func (r *Resource) Err() error {
	if r.err == nil && r.canceled.Load() && r.State() == Requested {
		return ErrCanceled
	}
	return r.err
}

// Fetched is closed once the fetch finished and its completion was posted.
func (r *Resource) Fetched() <-chan struct{} {
	return r.fetched
}
