package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// GeneralQuadric is the surface
//
//	Ax² + By² + Cz² + Dxy + Exz + Fyz + Gx + Hy + Iz + J = 0
//
// restricted to the points inside Clip.
type GeneralQuadric struct {
	A, B, C, D, E, F, G, H, I, J float64

	Clip     aabox.AABox
	Material material.Surface
}

// NewGeneralQuadric takes coefficients A through J in order and a clip box
// given by its minimum corner and extents.  Extents that are not positive
// leave that axis unclipped.
func NewGeneralQuadric(coeffs [10]float64, ref vec3.T, length, width, height float64, mtl material.Surface) *GeneralQuadric {
	return &GeneralQuadric{
		A: coeffs[0], B: coeffs[1], C: coeffs[2], D: coeffs[3], E: coeffs[4],
		F: coeffs[5], G: coeffs[6], H: coeffs[7], I: coeffs[8], J: coeffs[9],
		Clip:     aabox.FromCorner(ref, length, width, height),
		Material: mtl,
	}
}

func (q *GeneralQuadric) Intersect(r ray.Ray) float64 {
	x0, y0, z0 := r.Point[0], r.Point[1], r.Point[2]
	dx, dy, dz := r.Slope[0], r.Slope[1], r.Slope[2]

	a := q.A*dx*dx + q.B*dy*dy + q.C*dz*dz + q.D*dx*dy + q.E*dx*dz + q.F*dy*dz
	b := 2*q.A*x0*dx + 2*q.B*y0*dy + 2*q.C*z0*dz +
		q.D*(x0*dy+y0*dx) + q.E*(x0*dz+z0*dx) + q.F*(y0*dz+z0*dy) +
		q.G*dx + q.H*dy + q.I*dz
	c := q.A*x0*x0 + q.B*y0*y0 + q.C*z0*z0 + q.D*x0*y0 + q.E*x0*z0 + q.F*y0*z0 +
		q.G*x0 + q.H*y0 + q.I*z0 + q.J

	disc := b*b - 4*a*c
	if disc < 0 {
		return NoHit
	}

	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)

	// With a == 0 the roots are infinite or NaN; neither passes.
	for _, t := range [2]float64{t1, t2} {
		if t > 0 && !math.IsInf(t, 0) && q.Clip.Contains(r.Eval(t)) {
			return t
		}
	}
	return NoHit
}

func (q *GeneralQuadric) NormalAt(p vec3.T) vec3.T {
	x, y, z := p[0], p[1], p[2]
	return vec3.Normalize(vec3.T{
		2*q.A*x + q.D*y + q.E*z + q.G,
		2*q.B*y + q.D*x + q.F*z + q.H,
		2*q.C*z + q.E*x + q.F*y + q.I,
	})
}

func (q *GeneralQuadric) ColorAt(p vec3.T) rgb.T {
	return q.Material.Color
}

func (q *GeneralQuadric) Surface() *material.Surface {
	return &q.Material
}
