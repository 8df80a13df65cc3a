package geometry

import (
	"math"

	"whitted/material"
	"whitted/ray"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

type Sphere struct {
	Center   vec3.T
	Radius   float64
	Material material.Surface
}

func (s *Sphere) Intersect(r ray.Ray) float64 {
	oc := vec3.SubVV(r.Point, s.Center)

	a := vec3.IProd(r.Slope, r.Slope)
	b := 2.0 * vec3.IProd(oc, r.Slope)
	c := vec3.IProd(oc, oc) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return NoHit
	}

	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)

	t := t2
	if t1 > 0 {
		t = t1
	}
	if !(t > 0) {
		return NoHit
	}
	return t
}

func (s *Sphere) NormalAt(p vec3.T) vec3.T {
	return vec3.Normalize(vec3.SubVV(p, s.Center))
}

func (s *Sphere) ColorAt(p vec3.T) rgb.T {
	return s.Material.Color
}

func (s *Sphere) Surface() *material.Surface {
	return &s.Material
}
