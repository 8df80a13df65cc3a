// Package texture holds decoded 8-bit RGB images that surfaces sample from.
package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"whitted/vmath/rgb"

	_ "golang.org/x/image/bmp"
)

// Image is a decoded RGB image.  Pix holds Width*Height*3 bytes, rows from top
// to bottom.
type Image struct {
	Width, Height int
	Pix           []uint8
}

func (im *Image) empty() bool {
	return im == nil || im.Width <= 0 || im.Height <= 0 || len(im.Pix) < im.Width*im.Height*3
}

// Sample looks up the pixel nearest to (u, v) without filtering.  u runs left
// to right and v bottom to top; both are clamped to [0, 1].  A missing image
// samples as neutral gray.
func (im *Image) Sample(u, v float64) rgb.T {
	if im.empty() {
		return rgb.Gray
	}

	u = clampUnit(u)
	v = clampUnit(v)

	x := int(u * float64(im.Width-1))
	y := int((1.0 - v) * float64(im.Height-1))
	idx := (y*im.Width + x) * 3

	return rgb.FromBytes(im.Pix[idx], im.Pix[idx+1], im.Pix[idx+2])
}

func clampUnit(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Decode reads a PNG, JPEG, or BMP image and flattens it to RGB bytes.
func Decode(in io.Reader) (*Image, error) {
	img, _, err := image.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("while decoding image: %w", err)
	}

	bounds := img.Bounds()
	im := &Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	im.Pix = make([]uint8, 0, im.Width*im.Height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			im.Pix = append(im.Pix, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}

	return im, nil
}
