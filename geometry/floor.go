package geometry

import (
	"math"

	"whitted/material"
	"whitted/ray"
	"whitted/texture"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// Floor is a square tiled patch of the z=0 plane, centered on the origin.
type Floor struct {
	Width     float64
	TileWidth float64
	Material  material.Surface

	// Texture, when set, is stretched over each tile instead of the
	// checkerboard.
	Texture *texture.Image

	ref   vec3.T
	color material.ColorMap
}

func NewFloor(width, tileWidth float64, mtl material.Surface, tex *texture.Image) *Floor {
	f := &Floor{
		Width:     width,
		TileWidth: tileWidth,
		Material:  mtl,
		Texture:   tex,
		ref:       vec3.T{-width / 2, -width / 2, 0},
	}

	if tex != nil {
		f.color = material.TiledTexture(f.ref, tileWidth, tex)
	} else {
		f.color = material.CheckerboardSurface(f.ref, tileWidth, material.Constant(rgb.Black), material.Constant(mtl.Color))
	}

	return f
}

func (f *Floor) Intersect(r ray.Ray) float64 {
	if math.Abs(r.Slope[2]) < Epsilon {
		return NoHit
	}

	t := -r.Point[2] / r.Slope[2]
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return NoHit
	}

	p := r.Eval(t)
	if p[0] < f.ref[0] || p[0] > f.ref[0]+f.Width || p[1] < f.ref[1] || p[1] > f.ref[1]+f.Width {
		return NoHit
	}

	return t
}

func (f *Floor) NormalAt(p vec3.T) vec3.T {
	return vec3.T{0, 0, 1}
}

func (f *Floor) ColorAt(p vec3.T) rgb.T {
	return f.color(p)
}

func (f *Floor) Surface() *material.Surface {
	return &f.Material
}
