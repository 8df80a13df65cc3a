package aabox

import (
	"whitted/ray"
	"whitted/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// FromCorner builds the box spanning [ref, ref+size] on each axis.  An axis
// whose size is not positive is left unbounded.
func FromCorner(ref vec3.T, length, width, height float64) AABox {
	return AABox{
		X: cornerSpan(ref[0], length),
		Y: cornerSpan(ref[1], width),
		Z: cornerSpan(ref[2], height),
	}
}

func cornerSpan(lo, size float64) ray.Span {
	if size <= 0 {
		return ray.Unbounded()
	}
	return ray.Span{Lo: lo, Hi: lo + size}
}

func (a AABox) Contains(p vec3.T) bool {
	return a.X.Contains(p[0]) && a.Y.Contains(p[1]) && a.Z.Contains(p[2])
}
