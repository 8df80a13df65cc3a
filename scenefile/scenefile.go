// Package scenefile reads the plain-text scene description format.
//
// A file is a whitespace-separated token stream:
//
//	<recursion limit>
//	<image size>
//	<object count>
//	<object>...
//	<point light count>
//	<x y z  r g b>...
//	<spot light count>
//	<x y z  r g b  dx dy dz  cutoff degrees>...
//
// where each object is one of
//
//	sphere   cx cy cz radius
//	triangle x1 y1 z1  x2 y2 z2  x3 y3 z3
//	general  A B C D E F G H I J  refx refy refz  length width height
//
// followed by its color (r g b), its coefficients (ambient diffuse specular
// reflection), and its shininess.  A '#' starts a comment that runs to the
// end of the line.
package scenefile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/xerrors"

	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/scene"
	"whitted/texture"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

// DefaultFloor is the surface of the floor added under every scene.
var DefaultFloor = material.Surface{
	Color:      rgb.White,
	Ambient:    0.3,
	Diffuse:    0.3,
	Specular:   0.2,
	Reflection: 0.2,
	Shininess:  40,
}

const (
	DefaultFloorWidth = 1000
	DefaultFloorTile  = 20
)

type Options struct {
	// NoFloor suppresses the default floor.
	NoFloor bool

	// FloorTexture, if set, replaces the floor's checkerboard.
	FloorTexture *texture.Image
}

// Description is everything a scene file specifies.
type Description struct {
	Scene *scene.Scene

	// ImageSize is the side of the square output image in pixels.
	ImageSize int
}

// ParseError reports a problem at a specific line of the input.
type ParseError struct {
	Line    int
	Message string

	inner error
	frame xerrors.Frame
}

func newParseError(line int, message string, inner error) *ParseError {
	return &ParseError{
		Line:    line,
		Message: message,
		inner:   inner,
		frame:   xerrors.Caller(1),
	}
}

func (e *ParseError) Error() string {
	if e.inner == nil {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Message, e.inner)
}

func (e *ParseError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *ParseError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(fmt.Sprintf("line %d: %s", e.Line, e.Message))
	if p.Detail() {
		e.frame.Format(p)
	}
	return e.inner
}

func (e *ParseError) Unwrap() error {
	return e.inner
}

type token struct {
	text string
	line int
}

type parser struct {
	toks     []token
	pos      int
	lastLine int
}

func tokenize(in io.Reader) ([]token, int, error) {
	toks := []token{}
	line := 0

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, f := range strings.Fields(text) {
			toks = append(toks, token{text: f, line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, line, xerrors.Errorf("while scanning input: %w", err)
	}

	return toks, line, nil
}

func (p *parser) next(what string) (token, error) {
	if p.pos >= len(p.toks) {
		return token{}, newParseError(p.lastLine, fmt.Sprintf("unexpected end of input, want %s", what), io.ErrUnexpectedEOF)
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) float(what string) (float64, error) {
	tok, err := p.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return 0, newParseError(tok.line, fmt.Sprintf("bad %s %q", what, tok.text), err)
	}
	return v, nil
}

func (p *parser) floats(what string, out []float64) error {
	for i := range out {
		v, err := p.float(what)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

func (p *parser) vec(what string) (vec3.T, error) {
	v := vec3.T{}
	if err := p.floats(what, v[:]); err != nil {
		return vec3.T{}, err
	}
	return v, nil
}

func (p *parser) color(what string) (rgb.T, error) {
	c := rgb.T{}
	if err := p.floats(what, c[:]); err != nil {
		return rgb.T{}, err
	}
	return c, nil
}

// count reads a non-negative integer.
func (p *parser) count(what string) (int, error) {
	tok, err := p.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, newParseError(tok.line, fmt.Sprintf("bad %s %q", what, tok.text), err)
	}
	if v < 0 {
		return 0, newParseError(tok.line, fmt.Sprintf("%s must not be negative, got %d", what, v), nil)
	}
	return v, nil
}

func (p *parser) surface() (material.Surface, error) {
	mtl := material.Surface{}

	c, err := p.color("color")
	if err != nil {
		return mtl, err
	}
	mtl.Color = c

	coeffs := [4]float64{}
	if err := p.floats("coefficient", coeffs[:]); err != nil {
		return mtl, err
	}
	mtl.Ambient, mtl.Diffuse, mtl.Specular, mtl.Reflection = coeffs[0], coeffs[1], coeffs[2], coeffs[3]

	shine, err := p.count("shininess")
	if err != nil {
		return mtl, err
	}
	mtl.Shininess = shine

	return mtl, nil
}

func (p *parser) object() (geometry.Primitive, error) {
	kind, err := p.next("object type")
	if err != nil {
		return nil, err
	}

	var build func(mtl material.Surface) geometry.Primitive

	switch kind.text {
	case "sphere":
		center, err := p.vec("sphere center")
		if err != nil {
			return nil, err
		}
		radius, err := p.float("sphere radius")
		if err != nil {
			return nil, err
		}
		if !(radius > 0) {
			return nil, newParseError(kind.line, fmt.Sprintf("sphere radius must be positive, got %v", radius), nil)
		}
		build = func(mtl material.Surface) geometry.Primitive {
			return &geometry.Sphere{Center: center, Radius: radius, Material: mtl}
		}

	case "triangle":
		var verts [3]vec3.T
		for i := range verts {
			v, err := p.vec("triangle vertex")
			if err != nil {
				return nil, err
			}
			verts[i] = v
		}
		build = func(mtl material.Surface) geometry.Primitive {
			return geometry.NewTriangle(verts[0], verts[1], verts[2], mtl)
		}

	case "general":
		coeffs := [10]float64{}
		if err := p.floats("quadric coefficient", coeffs[:]); err != nil {
			return nil, err
		}
		ref, err := p.vec("clip reference point")
		if err != nil {
			return nil, err
		}
		dims := [3]float64{}
		if err := p.floats("clip dimension", dims[:]); err != nil {
			return nil, err
		}
		build = func(mtl material.Surface) geometry.Primitive {
			return geometry.NewGeneralQuadric(coeffs, ref, dims[0], dims[1], dims[2], mtl)
		}

	default:
		return nil, newParseError(kind.line, fmt.Sprintf("unknown object type %q", kind.text), nil)
	}

	mtl, err := p.surface()
	if err != nil {
		return nil, err
	}

	return build(mtl), nil
}

func Parse(in io.Reader, opts *Options) (*Description, error) {
	if opts == nil {
		opts = &Options{}
	}

	toks, lastLine, err := tokenize(in)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, lastLine: lastLine}

	s := &scene.Scene{}

	if s.RecursionLimit, err = p.count("recursion limit"); err != nil {
		return nil, err
	}

	sizeTok := p.pos
	size, err := p.count("image size")
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, newParseError(p.toks[sizeTok].line, "image size must be positive", nil)
	}

	numObjects, err := p.count("object count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < numObjects; i++ {
		prim, err := p.object()
		if err != nil {
			return nil, xerrors.Errorf("while reading object %d: %w", i, err)
		}
		s.AddPrimitive(prim)
	}

	numPoint, err := p.count("point light count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < numPoint; i++ {
		pos, err := p.vec("light position")
		if err != nil {
			return nil, xerrors.Errorf("while reading point light %d: %w", i, err)
		}
		c, err := p.color("light color")
		if err != nil {
			return nil, xerrors.Errorf("while reading point light %d: %w", i, err)
		}
		s.PointLights = append(s.PointLights, light.NewPointLight(pos, c))
	}

	numSpot, err := p.count("spot light count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < numSpot; i++ {
		sl, err := p.spotLight()
		if err != nil {
			return nil, xerrors.Errorf("while reading spot light %d: %w", i, err)
		}
		s.SpotLights = append(s.SpotLights, sl)
	}

	if p.pos < len(p.toks) {
		extra := p.toks[p.pos]
		return nil, newParseError(extra.line, fmt.Sprintf("unexpected trailing token %q", extra.text), nil)
	}

	if !opts.NoFloor {
		s.AddPrimitive(geometry.NewFloor(DefaultFloorWidth, DefaultFloorTile, DefaultFloor, opts.FloorTexture))
	}

	glog.V(1).Infof("Parsed scene: %d primitives, %d point lights, %d spot lights, recursion limit %d, image %dx%d",
		len(s.Primitives), len(s.PointLights), len(s.SpotLights), s.RecursionLimit, size, size)

	return &Description{Scene: s, ImageSize: size}, nil
}

func (p *parser) spotLight() (light.SpotLight, error) {
	pos, err := p.vec("light position")
	if err != nil {
		return light.SpotLight{}, err
	}
	c, err := p.color("light color")
	if err != nil {
		return light.SpotLight{}, err
	}
	dirTok := p.pos
	dir, err := p.vec("spot direction")
	if err != nil {
		return light.SpotLight{}, err
	}
	if dir.Norm() == 0 {
		return light.SpotLight{}, newParseError(p.toks[dirTok].line, "spot direction must be non-zero", nil)
	}
	cutoff, err := p.float("cutoff angle")
	if err != nil {
		return light.SpotLight{}, err
	}
	return light.NewSpotLight(pos, c, dir, cutoff), nil
}
