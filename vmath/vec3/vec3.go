package vec3

import (
	"math"
)

type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize returns v scaled to unit length.  A zero vector is returned
// unchanged.
func Normalize(v T) T {
	l := v.Norm()
	if l == 0 {
		return v
	}
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func Neg(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Rotate turns v by angle radians about axis.  The rotation is clockwise when
// looking down axis toward the origin, matching the camera controls that feed
// it.
func Rotate(v, axis T, angle float64) T {
	k := Normalize(axis)
	cos := math.Cos(angle)
	sin := math.Sin(angle)

	result := MulVS(v, cos)
	result = AddVV(result, MulVS(CProd(v, k), sin))
	result = AddVV(result, MulVS(k, IProd(v, k)*(1-cos)))
	return result
}

// Angle returns the angle between a and b in radians.
func Angle(a, b T) float64 {
	cos := IProd(a, b) / (a.Norm() * b.Norm())
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}
