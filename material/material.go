package material

import (
	"math"

	"whitted/texture"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// Surface holds the Phong response of a primitive.  The four coefficients
// are each expected in [0, 1] but need not sum to 1.
type Surface struct {
	Color rgb.T

	Ambient    float64
	Diffuse    float64
	Specular   float64
	Reflection float64

	Shininess int
}

// ColorMap gives the unlit color of a surface at a world-space point.
type ColorMap func(p vec3.T) rgb.T

func Constant(c rgb.T) ColorMap {
	return func(p vec3.T) rgb.T {
		return c
	}
}

// TileIndex returns the integer tile coordinates of p on the z=0 plane, for
// square tiles of side period whose grid starts at origin.
func TileIndex(origin vec3.T, period float64, p vec3.T) (int, int) {
	i := int(math.Floor((p[0] - origin[0]) / period))
	j := int(math.Floor((p[1] - origin[1]) / period))
	return i, j
}

// CheckerboardSurface alternates between even and odd by the parity of the
// tile index sum.
func CheckerboardSurface(origin vec3.T, period float64, even, odd ColorMap) ColorMap {
	return func(p vec3.T) rgb.T {
		i, j := TileIndex(origin, period, p)
		if (i+j)&1 == 0 {
			return even(p)
		}
		return odd(p)
	}
}

// TiledTexture stretches one copy of im over every tile.
func TiledTexture(origin vec3.T, period float64, im *texture.Image) ColorMap {
	return func(p vec3.T) rgb.T {
		i, j := TileIndex(origin, period, p)

		u := (p[0] - (origin[0] + float64(i)*period)) / period
		v := (p[1] - (origin[1] + float64(j)*period)) / period

		return im.Sample(u, v)
	}
}
