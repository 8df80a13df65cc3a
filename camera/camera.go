package camera

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

type Camera interface {
	ImageToRay(curRow, imgRows, curCol, imgCols int) ray.Ray
}

// PinholeCamera projects through a window of WindowWidth by WindowHeight
// world units, placed in front of Eye so that it subtends ViewAngle degrees
// vertically.
type PinholeCamera struct {
	Eye    vec3.T
	Center vec3.T
	Up     vec3.T

	WindowWidth  float64
	WindowHeight float64
	ViewAngle    float64
}

// Default returns the camera a scene is rendered from when no other is
// given.
func Default() *PinholeCamera {
	return &PinholeCamera{
		Eye:          vec3.T{100, 60, 40},
		Center:       vec3.T{0, 0, 0},
		Up:           vec3.T{0, 1, 0},
		WindowWidth:  500,
		WindowHeight: 500,
		ViewAngle:    80,
	}
}

// Basis returns the look, right and up unit vectors of the camera.
func (c *PinholeCamera) Basis() (look, right, up vec3.T) {
	look = vec3.Normalize(vec3.SubVV(c.Center, c.Eye))
	right = vec3.Normalize(vec3.CProd(look, c.Up))
	up = vec3.Normalize(vec3.CProd(right, look))
	return look, right, up
}

func (c *PinholeCamera) planeDistance() float64 {
	return (c.WindowHeight / 2.0) / math.Tan(c.ViewAngle*math.Pi/360.0)
}

func (c *PinholeCamera) ImageToRay(curRow, imgRows, curCol, imgCols int) ray.Ray {
	look, right, up := c.Basis()

	du := c.WindowWidth / float64(imgCols)
	dv := c.WindowHeight / float64(imgRows)

	topLeft := vec3.AddVV(c.Eye, vec3.MulVS(look, c.planeDistance()))
	topLeft = vec3.SubVV(topLeft, vec3.MulVS(right, c.WindowWidth/2))
	topLeft = vec3.AddVV(topLeft, vec3.MulVS(up, c.WindowHeight/2))
	topLeft = vec3.AddVV(topLeft, vec3.MulVS(right, du/2))
	topLeft = vec3.SubVV(topLeft, vec3.MulVS(up, dv/2))

	pixel := vec3.AddVV(topLeft, vec3.MulVS(right, float64(curCol)*du))
	pixel = vec3.SubVV(pixel, vec3.MulVS(up, float64(curRow)*dv))

	return ray.New(c.Eye, vec3.SubVV(pixel, c.Eye))
}

// Yaw turns the view direction by angle radians about Up, keeping the
// distance from Eye to Center.
func (c *PinholeCamera) Yaw(angle float64) {
	c.turn(c.Up, angle)
}

// Pitch tilts the view direction by angle radians about the camera's right
// axis.  Up is carried along so the basis stays orthogonal.
func (c *PinholeCamera) Pitch(angle float64) {
	_, right, up := c.Basis()
	c.turn(right, angle)
	c.Up = vec3.Rotate(up, right, angle)
}

func (c *PinholeCamera) turn(axis vec3.T, angle float64) {
	look := vec3.SubVV(c.Center, c.Eye)
	c.Center = vec3.AddVV(c.Eye, vec3.Rotate(look, axis, angle))
}
