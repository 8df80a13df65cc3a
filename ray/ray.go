package ray

import (
	"math"

	"whitted/vmath/vec3"
)

type Span struct {
	Lo, Hi float64
}

// Unbounded is the span covering the whole real line.
func Unbounded() Span {
	return Span{math.Inf(-1), math.Inf(1)}
}

func (s Span) Contains(x float64) bool {
	return s.Lo <= x && x <= s.Hi
}

// Open reports whether x lies strictly inside s.
func (s Span) Open(x float64) bool {
	return s.Lo < x && x < s.Hi
}

// Ray is a half-line.  Slope is unit length from construction onward.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

// New builds a ray from point heading along dir.  dir is normalized here and
// nowhere else.
func New(point, dir vec3.T) Ray {
	return Ray{
		Point: point,
		Slope: vec3.Normalize(dir),
	}
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}
