// Package scene ties primitives and lights together and evaluates the
// recursive Phong illumination model over them.
package scene

import (
	"math"

	"whitted/geometry"
	"whitted/light"
	"whitted/ray"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// Scene is built once and then only read.  Any number of goroutines may
// render from the same Scene.
type Scene struct {
	Primitives  []geometry.Primitive
	PointLights []light.PointLight
	SpotLights  []light.SpotLight

	// RecursionLimit bounds the depth of reflection rays.  Zero disables
	// reflection.
	RecursionLimit int
}

// AddPrimitive is a convenience function to register a primitive and get
// its index.
func (s *Scene) AddPrimitive(p geometry.Primitive) int {
	s.Primitives = append(s.Primitives, p)
	return len(s.Primitives) - 1
}

// Nearest finds the primitive with the smallest positive hit along r.  On
// equal distances the earlier primitive wins.  It returns -1 and NoHit if
// nothing is hit.
func (s *Scene) Nearest(r ray.Ray) (int, float64) {
	minIndex := -1
	minT := geometry.NoHit
	for i, p := range s.Primitives {
		t := s.Intersect(p, r, nil, 0)
		if t <= 0 {
			continue
		}
		if minIndex == -1 || t < minT {
			minIndex = i
			minT = t
		}
	}
	return minIndex, minT
}

// Intersect intersects r with p.  At level 0 it is a pure visibility query
// and out is never touched, so it may be nil.  At higher levels a hit also
// stores the shaded, clamped color of the hit point in out.
func (s *Scene) Intersect(p geometry.Primitive, r ray.Ray, out *rgb.T, level int) float64 {
	t := p.Intersect(r)
	if level == 0 || t <= 0 {
		return t
	}

	*out = s.Shade(p, r.Eval(t), r, level)
	return t
}

// Shade computes the color leaving point hit on p back along r.
func (s *Scene) Shade(p geometry.Primitive, hit vec3.T, r ray.Ray, level int) rgb.T {
	mtl := p.Surface()
	intrinsic := p.ColorAt(hit)

	n := p.NormalAt(hit)
	if vec3.IProd(r.Slope, n) > 0 {
		n = vec3.Neg(n)
	}

	color := rgb.MulCS(intrinsic, mtl.Ambient)

	for i := range s.PointLights {
		pl := &s.PointLights[i]
		toLight, dist := pl.Toward(hit)
		color = rgb.AddCC(color, s.direct(p, intrinsic, hit, n, r, pl, toLight, dist))
	}

	for i := range s.SpotLights {
		sl := &s.SpotLights[i]
		toLight, dist := sl.Toward(hit)
		if !sl.Illuminates(toLight) {
			continue
		}
		color = rgb.AddCC(color, s.direct(p, intrinsic, hit, n, r, &sl.PointLight, toLight, dist))
	}

	if level < s.RecursionLimit && mtl.Reflection > 0 {
		color = rgb.AddCC(color, rgb.MulCS(s.reflect(hit, n, r, level), mtl.Reflection))
	}

	return rgb.Clamp(color)
}

// direct is the diffuse and specular contribution of one light, or black if
// the light is blocked.
func (s *Scene) direct(p geometry.Primitive, intrinsic rgb.T, hit, n vec3.T, r ray.Ray, l *light.PointLight, toLight vec3.T, dist float64) rgb.T {
	if s.occluded(p, l.Position, hit, dist) {
		return rgb.Black
	}

	mtl := p.Surface()

	nl := vec3.IProd(n, toLight)
	lambert := math.Max(0, nl)

	refl := vec3.Normalize(vec3.SubVV(toLight, vec3.MulVS(n, 2*nl)))
	view := vec3.Normalize(vec3.SubVV(r.Point, hit))
	phong := math.Max(0, vec3.IProd(view, refl))

	lightColor := rgb.MulCS(l.Color, l.Intensity)

	diffuse := rgb.MulCS(rgb.MulCC(lightColor, intrinsic), mtl.Diffuse*lambert)
	specular := rgb.MulCS(lightColor, mtl.Specular*math.Pow(phong, float64(mtl.Shininess)))

	return rgb.AddCC(diffuse, specular)
}

// occluded casts a ray from the light toward hit and reports whether any
// primitive other than self lies strictly between them.
func (s *Scene) occluded(self geometry.Primitive, lightPos, hit vec3.T, dist float64) bool {
	shadow := ray.New(lightPos, vec3.SubVV(hit, lightPos))
	between := ray.Span{Lo: geometry.Epsilon, Hi: dist - geometry.Epsilon}
	for _, other := range s.Primitives {
		if other == self {
			continue
		}
		if between.Open(s.Intersect(other, shadow, nil, 0)) {
			return true
		}
	}
	return false
}

// reflect follows the mirror bounce off hit and returns the color it
// brings back, or black if it escapes.
func (s *Scene) reflect(hit, n vec3.T, r ray.Ray, level int) rgb.T {
	dir := vec3.Reflect(r.Slope, n)
	bounce := ray.New(vec3.AddVV(hit, vec3.MulVS(n, geometry.Epsilon)), dir)

	idx, _ := s.Nearest(bounce)
	if idx == -1 {
		return rgb.Black
	}

	var rc rgb.T
	s.Intersect(s.Primitives[idx], bounce, &rc, level+1)
	return rc
}
