package light

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

func TestNewPointLightDefaults(t *testing.T) {
	got := NewPointLight(vec3.T{1, 2, 3}, rgb.White)
	want := PointLight{Position: vec3.T{1, 2, 3}, Color: rgb.White, Intensity: 1.5}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("NewPointLight: diff (-got +want)\n%s", diff)
	}
}

func TestNewSpotLightNormalizesDirection(t *testing.T) {
	s := NewSpotLight(vec3.T{}, rgb.White, vec3.T{0, 0, -10}, 30)
	if diff := cmp.Diff(s.Direction, vec3.T{0, 0, -1}); diff != "" {
		t.Errorf("Direction: diff (-got +want)\n%s", diff)
	}
	if s.Intensity != DefaultIntensity {
		t.Errorf("Intensity: got %v, want %v", s.Intensity, DefaultIntensity)
	}
}

func TestToward(t *testing.T) {
	l := NewPointLight(vec3.T{0, 0, 10}, rgb.White)
	dir, dist := l.Toward(vec3.T{0, 0, 4})

	if diff := cmp.Diff(dir, vec3.T{0, 0, 1}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("direction: diff (-got +want)\n%s", diff)
	}
	if dist != 6 {
		t.Errorf("distance: got %v, want 6", dist)
	}
}

func TestSpotIlluminates(t *testing.T) {
	// Pointing straight down from z=10 with a 30 degree half-angle.
	s := NewSpotLight(vec3.T{0, 0, 10}, rgb.White, vec3.T{0, 0, -1}, 30)

	testCases := []struct {
		desc string
		p    vec3.T
		want bool
	}{
		{desc: "on axis", p: vec3.T{0, 0, 0}, want: true},
		{desc: "inside cone", p: vec3.T{5, 0, 0}, want: true},
		{desc: "outside cone", p: vec3.T{10, 0, 0}, want: false},
		{desc: "behind light", p: vec3.T{0, 0, 20}, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			toLight, _ := s.Toward(tc.p)
			if got := s.Illuminates(toLight); got != tc.want {
				t.Errorf("Illuminates(%v): got %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}
