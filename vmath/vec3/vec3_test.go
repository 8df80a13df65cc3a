package vec3

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNormalize(t *testing.T) {
	got := Normalize(T{3, 0, 4})
	want := T{0.6, 0, 0.8}
	if diff := cmp.Diff(got, want, approx); diff != "" {
		t.Errorf("Bad normalization; diff (-got +want)\n%s", diff)
	}

	if got := Normalize(T{}); got != (T{}) {
		t.Errorf("Normalize of zero vector: got %v, want %v", got, T{})
	}
}

func TestProducts(t *testing.T) {
	x := T{1, 0, 0}
	y := T{0, 1, 0}

	if got := IProd(x, y); got != 0 {
		t.Errorf("IProd(x, y): got %v, want 0", got)
	}
	if got, want := CProd(x, y), (T{0, 0, 1}); got != want {
		t.Errorf("CProd(x, y): got %v, want %v", got, want)
	}
	if got, want := CProd(y, x), (T{0, 0, -1}); got != want {
		t.Errorf("CProd(y, x): got %v, want %v", got, want)
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(T{1, -1, 0}, T{0, 1, 0})
	want := T{1, 1, 0}
	if got != want {
		t.Errorf("Reflect: got %v, want %v", got, want)
	}
}

func TestRotate(t *testing.T) {
	testCases := []struct {
		name  string
		v     T
		axis  T
		angle float64
		want  T
	}{
		{"quarter turn about z", T{1, 0, 0}, T{0, 0, 1}, math.Pi / 2, T{0, -1, 0}},
		{"unnormalized axis", T{1, 0, 0}, T{0, 0, 5}, math.Pi / 2, T{0, -1, 0}},
		{"vector along axis", T{0, 0, 2}, T{0, 0, 1}, 1.234, T{0, 0, 2}},
		{"full turn", T{1, 2, 3}, T{1, 1, 0}, 2 * math.Pi, T{1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Rotate(tc.v, tc.axis, tc.angle)
			if diff := cmp.Diff(got, tc.want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Bad rotation; diff (-got +want)\n%s", diff)
			}
			if math.Abs(got.Norm()-tc.v.Norm()) > 1e-9 {
				t.Errorf("Rotation changed length: got %v, want %v", got.Norm(), tc.v.Norm())
			}
		})
	}
}

func TestAngle(t *testing.T) {
	if got := Angle(T{1, 0, 0}, T{0, 2, 0}); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Angle: got %v, want %v", got, math.Pi/2)
	}
}
