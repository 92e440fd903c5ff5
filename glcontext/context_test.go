package glcontext

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackedPixelsTight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	px := packedPixels(img)
	assert.Len(t, px, 16)
	assert.Same(t, &img.Pix[0], &px[0])
}

func TestPackedPixelsSubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			full.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 9, A: 255})
		}
	}
	sub := full.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	assert.NotEqual(t, 4*sub.Rect.Dx(), sub.Stride)

	assert.Equal(t, []uint8{
		1, 1, 9, 255, 2, 1, 9, 255,
		1, 2, 9, 255, 2, 2, 9, 255,
	}, packedPixels(sub))
}
