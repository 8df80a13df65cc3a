package material

import (
	"testing"

	"whitted/texture"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

func TestTileIndex(t *testing.T) {
	origin := vec3.T{-10, -10, 0}
	testCases := []struct {
		p      vec3.T
		wi, wj int
	}{
		{vec3.T{-10, -10, 0}, 0, 0},
		{vec3.T{-5.5, -0.1, 0}, 0, 1},
		{vec3.T{9.99, 9.99, 0}, 3, 3},
		{vec3.T{-10.5, 0, 0}, -1, 2},
	}

	for _, tc := range testCases {
		i, j := TileIndex(origin, 5, tc.p)
		if i != tc.wi || j != tc.wj {
			t.Errorf("TileIndex(%v): got (%d, %d), want (%d, %d)", tc.p, i, j, tc.wi, tc.wj)
		}
	}
}

func TestCheckerboardSurface(t *testing.T) {
	red := rgb.T{1, 0, 0}
	m := CheckerboardSurface(vec3.T{0, 0, 0}, 1, Constant(rgb.Black), Constant(red))

	testCases := []struct {
		p    vec3.T
		want rgb.T
	}{
		{vec3.T{0.5, 0.5, 0}, rgb.Black},
		{vec3.T{1.5, 0.5, 0}, red},
		{vec3.T{1.5, 1.5, 0}, rgb.Black},
		{vec3.T{-0.5, 0.5, 0}, red},
	}

	for _, tc := range testCases {
		if got := m(tc.p); got != tc.want {
			t.Errorf("Checkerboard at %v: got %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestTiledTexture(t *testing.T) {
	// 2x2 image; rows are stored top to bottom.
	im := &texture.Image{
		Width:  2,
		Height: 2,
		Pix: []uint8{
			255, 0, 0 /**/, 0, 255, 0,
			0, 0, 255 /**/, 255, 255, 255,
		},
	}
	m := TiledTexture(vec3.T{0, 0, 0}, 10, im)

	testCases := []struct {
		name string
		p    vec3.T
		want rgb.T
	}{
		{"bottom edge of first tile", vec3.T{1, 0, 0}, rgb.T{0, 0, 1}},
		{"middle of first tile", vec3.T{1, 5, 0}, rgb.T{1, 0, 0}},
		{"bottom edge of next tile", vec3.T{11, 0, 0}, rgb.T{0, 0, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m(tc.p); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
