//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/goshaderquad/graphics"
)

// Headless is only available on Linux.
type Headless struct{}

func New(width, height int) (*Headless, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}

func (h *Headless) Context() (graphics.Context, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}

func (h *Headless) SetSize(width, height int) {}
func (h *Headless) Width() int                { return 0 }
func (h *Headless) Height() int               { return 0 }
func (h *Headless) Close()                    {}
func (h *Headless) ShouldClose() bool         { return true }
func (h *Headless) EndFrame()                 {}
func (h *Headless) Time() float64             { return 0 }
func (h *Headless) Shutdown()                 {}
