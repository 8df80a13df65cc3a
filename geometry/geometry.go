// Package geometry implements the primitives a scene is built from.
//
// Every primitive answers three questions: where along a ray it is first hit,
// which way its surface faces at a point, and what color it is there before
// lighting.  Shading is layered on top by package scene.
package geometry

import (
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// Epsilon is the tolerance used for parallel-ray rejection, self-intersection
// offsets, and shadow-ray bracketing.
const Epsilon = 1e-6

// NoHit is returned by Intersect when the ray misses.  Any negative value
// means a miss; callers compare against zero.
const NoHit = -1.0

type Primitive interface {
	// Intersect returns the smallest positive ray parameter at which r hits
	// the primitive, or NoHit.
	Intersect(r ray.Ray) float64

	// NormalAt returns a unit normal at p.  It may face either way; shading
	// flips it toward the incoming ray.
	NormalAt(p vec3.T) vec3.T

	// ColorAt returns the unlit color at p.
	ColorAt(p vec3.T) rgb.T

	Surface() *material.Surface
}
