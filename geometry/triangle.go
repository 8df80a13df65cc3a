package geometry

import (
	"math"

	"whitted/material"
	"whitted/ray"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// Triangle is flat shaded: its normal is fixed when it is built.
type Triangle struct {
	A, B, C  vec3.T
	Material material.Surface

	normal vec3.T
}

func NewTriangle(a, b, c vec3.T, mtl material.Surface) *Triangle {
	return &Triangle{
		A:        a,
		B:        b,
		C:        c,
		Material: mtl,
		normal:   vec3.Normalize(vec3.CProd(vec3.SubVV(b, a), vec3.SubVV(c, a))),
	}
}

// hit runs the Moller-Trumbore test.  u and v are the barycentric weights of
// B and C; the weight of A is 1-u-v.
func (tr *Triangle) hit(r ray.Ray) (t, u, v float64) {
	edge1 := vec3.SubVV(tr.B, tr.A)
	edge2 := vec3.SubVV(tr.C, tr.A)

	h := vec3.CProd(r.Slope, edge2)
	det := vec3.IProd(edge1, h)
	if math.Abs(det) < Epsilon {
		return NoHit, 0, 0
	}
	invDet := 1.0 / det

	s := vec3.SubVV(r.Point, tr.A)
	u = invDet * vec3.IProd(s, h)
	if u < 0.0 || u > 1.0 {
		return NoHit, 0, 0
	}

	q := vec3.CProd(s, edge1)
	v = invDet * vec3.IProd(r.Slope, q)
	if v < 0.0 || u+v > 1.0 {
		return NoHit, 0, 0
	}

	t = invDet * vec3.IProd(edge2, q)
	if t <= Epsilon {
		return NoHit, 0, 0
	}
	return t, u, v
}

func (tr *Triangle) Intersect(r ray.Ray) float64 {
	t, _, _ := tr.hit(r)
	return t
}

func (tr *Triangle) NormalAt(p vec3.T) vec3.T {
	return tr.normal
}

func (tr *Triangle) ColorAt(p vec3.T) rgb.T {
	return tr.Material.Color
}

func (tr *Triangle) Surface() *material.Surface {
	return &tr.Material
}
