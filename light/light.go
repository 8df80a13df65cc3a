// Package light holds the light sources a scene can be lit by.  Lights have
// no falloff: a visible light contributes the same energy at any distance.
package light

import (
	"math"

	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// DefaultIntensity is the scale applied to light colors unless overridden.
const DefaultIntensity = 1.5

type PointLight struct {
	Position  vec3.T
	Color     rgb.T
	Intensity float64
}

func NewPointLight(pos vec3.T, color rgb.T) PointLight {
	return PointLight{
		Position:  pos,
		Color:     color,
		Intensity: DefaultIntensity,
	}
}

// Toward returns the unit vector from p to the light and the distance
// between them.
func (l *PointLight) Toward(p vec3.T) (vec3.T, float64) {
	return toward(l.Position, p)
}

// SpotLight is a point light restricted to a cone around Direction.
type SpotLight struct {
	PointLight

	// Direction is a unit vector along the cone axis.
	Direction vec3.T

	// Cutoff is the cone half-angle in degrees.
	Cutoff float64
}

func NewSpotLight(pos vec3.T, color rgb.T, dir vec3.T, cutoff float64) SpotLight {
	return SpotLight{
		PointLight: NewPointLight(pos, color),
		Direction:  vec3.Normalize(dir),
		Cutoff:     cutoff,
	}
}

// Illuminates reports whether p lies inside the cone.  toLight is the unit
// vector from p to the light.
func (s *SpotLight) Illuminates(toLight vec3.T) bool {
	return vec3.Angle(toLight, vec3.Neg(s.Direction))*180/math.Pi <= s.Cutoff
}

func toward(pos, p vec3.T) (vec3.T, float64) {
	l := vec3.SubVV(pos, p)
	dist := l.Norm()
	return vec3.DivVS(l, dist), dist
}
