package render

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opencensus.io/stats/view"

	"whitted/camera"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/rasterimage"
	"whitted/scene"
	"whitted/vmath/rgb"
	"whitted/vmath/vec3"
)

func topDown() *camera.PinholeCamera {
	return &camera.PinholeCamera{
		Eye:          vec3.T{0, 0, 10},
		Center:       vec3.T{0, 0, 0},
		Up:           vec3.T{0, 1, 0},
		WindowWidth:  2,
		WindowHeight: 2,
		ViewAngle:    90,
	}
}

func redSphereScene() *scene.Scene {
	s := &scene.Scene{
		PointLights:    []light.PointLight{light.NewPointLight(vec3.T{0, 0, 20}, rgb.White)},
		RecursionLimit: 3,
	}
	s.AddPrimitive(&geometry.Sphere{
		Radius:   3,
		Material: material.Surface{Color: rgb.T{1, 0, 0}, Ambient: 0.2, Diffuse: 0.8},
	})
	return s
}

func TestRenderRedSphere(t *testing.T) {
	img := rasterimage.New(9, 9)
	if err := Render(context.Background(), redSphereScene(), topDown(), img, &Options{Workers: 2}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	testCases := []struct {
		desc     string
		row, col int
		want     [3]uint8
	}{
		{desc: "center", row: 4, col: 4, want: [3]uint8{255, 0, 0}},
		{desc: "top left", row: 0, col: 0, want: [3]uint8{0, 0, 0}},
		{desc: "top right", row: 0, col: 8, want: [3]uint8{0, 0, 0}},
		{desc: "bottom left", row: 8, col: 0, want: [3]uint8{0, 0, 0}},
		{desc: "bottom right", row: 8, col: 8, want: [3]uint8{0, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := img.At(tc.row, tc.col); got != tc.want {
				t.Errorf("pixel (%d, %d): got %v, want %v", tc.row, tc.col, got, tc.want)
			}
		})
	}
}

func TestRenderLitSphereHeadOn(t *testing.T) {
	s := &scene.Scene{RecursionLimit: 3}
	s.PointLights = append(s.PointLights, light.PointLight{
		Position:  vec3.T{0, 0, 20},
		Color:     rgb.White,
		Intensity: 1,
	})
	s.AddPrimitive(&geometry.Sphere{
		Radius:   5,
		Material: material.Surface{Color: rgb.T{1, 0, 0}, Ambient: 0.4, Diffuse: 0.6, Shininess: 1},
	})
	cam := &camera.PinholeCamera{
		Eye:          vec3.T{0, 0, 50},
		Center:       vec3.T{0, 0, 0},
		Up:           vec3.T{0, 1, 0},
		WindowWidth:  500,
		WindowHeight: 500,
		ViewAngle:    80,
	}

	for _, workers := range []int{1, 7, 200} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			img := rasterimage.New(11, 11)
			if err := Render(context.Background(), s, cam, img, &Options{Workers: workers}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			// Ambient plus head-on diffuse is 1.0, less rounding.
			if got := img.At(5, 5); got[0] < 250 || got[1] != 0 || got[2] != 0 {
				t.Errorf("center pixel: got %v, want saturated red", got)
			}
			for _, corner := range [][2]int{{0, 0}, {0, 10}, {10, 0}, {10, 10}} {
				if got, want := img.At(corner[0], corner[1]), [3]uint8{0, 0, 0}; got != want {
					t.Errorf("corner pixel %v: got %v, want %v", corner, got, want)
				}
			}
		})
	}
}

func busyScene() *scene.Scene {
	s := &scene.Scene{
		PointLights: []light.PointLight{
			light.NewPointLight(vec3.T{30, 30, 60}, rgb.White),
			light.NewPointLight(vec3.T{-40, 10, 30}, rgb.T{0.3, 0.3, 0.8}),
		},
		SpotLights: []light.SpotLight{
			light.NewSpotLight(vec3.T{0, 0, 50}, rgb.White, vec3.T{0, 0, -1}, 20),
		},
		RecursionLimit: 4,
	}
	s.AddPrimitive(&geometry.Sphere{
		Center:   vec3.T{0, 0, 10},
		Radius:   10,
		Material: material.Surface{Color: rgb.T{0.9, 0.2, 0.2}, Ambient: 0.1, Diffuse: 0.4, Specular: 0.3, Reflection: 0.3, Shininess: 20},
	})
	s.AddPrimitive(geometry.NewTriangle(
		vec3.T{-20, 20, 0}, vec3.T{20, 20, 0}, vec3.T{0, 20, 30},
		material.Surface{Color: rgb.T{0.2, 0.9, 0.2}, Ambient: 0.2, Diffuse: 0.5, Specular: 0.2, Reflection: 0.4, Shininess: 5},
	))
	s.AddPrimitive(geometry.NewGeneralQuadric(
		[10]float64{1, 1, 0, 0, 0, 0, 0, 0, 0, -25},
		vec3.T{20, -30, 0}, 0, 0, 15,
		material.Surface{Color: rgb.T{0.2, 0.2, 0.9}, Ambient: 0.2, Diffuse: 0.5, Specular: 0.2, Shininess: 10},
	))
	s.AddPrimitive(geometry.NewFloor(200, 10, material.Surface{Color: rgb.White, Ambient: 0.3, Diffuse: 0.3, Specular: 0.2, Reflection: 0.2, Shininess: 40}, nil))
	return s
}

func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	cam := &camera.PinholeCamera{
		Eye:          vec3.T{60, -80, 50},
		Center:       vec3.T{0, 0, 5},
		Up:           vec3.T{0, 0, 1},
		WindowWidth:  500,
		WindowHeight: 500,
		ViewAngle:    60,
	}

	var reference *rasterimage.Image
	for _, workers := range []int{1, 3, 7, 64} {
		img := rasterimage.New(31, 23)
		if err := Render(context.Background(), busyScene(), cam, img, &Options{Workers: workers}); err != nil {
			t.Fatalf("Render with %d workers: %v", workers, err)
		}
		if reference == nil {
			reference = img
			continue
		}
		if diff := cmp.Diff(img.Pix, reference.Pix); diff != "" {
			t.Errorf("Render with %d workers differs from 1 worker: diff (-got +want)\n%s", workers, diff)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	var calls [][2]int
	opts := &Options{
		Workers: 4,
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	}

	img := rasterimage.New(10, 3)
	if err := Render(context.Background(), redSphereScene(), topDown(), img, opts); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(calls) != 10 {
		t.Fatalf("progress calls: got %d, want 10", len(calls))
	}
	for i, c := range calls {
		if want := [2]int{i + 1, 10}; c != want {
			t.Errorf("progress call %d: got %v, want %v", i, c, want)
		}
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := rasterimage.New(8, 8)
	err := Render(ctx, redSphereScene(), topDown(), img, &Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render on canceled context: got %v, want context.Canceled", err)
	}
}

func TestRenderMetrics(t *testing.T) {
	if err := RegisterViews(); err != nil {
		t.Fatalf("RegisterViews: %v", err)
	}
	defer view.Unregister(Views...)

	img := rasterimage.New(9, 9)
	opts := &Options{Workers: 3, SceneName: "metrics-test"}
	if err := Render(context.Background(), redSphereScene(), topDown(), img, opts); err != nil {
		t.Fatalf("Render: %v", err)
	}

	sumFor := func(name string) float64 {
		rows, err := view.RetrieveData(name)
		if err != nil {
			t.Fatalf("RetrieveData(%q): %v", name, err)
		}
		for _, row := range rows {
			for _, tg := range row.Tags {
				if tg.Key == sceneKey && tg.Value == "metrics-test" {
					return row.Data.(*view.SumData).Value
				}
			}
		}
		return 0
	}

	rays := sumFor("whitted/primary_rays")
	shaded := sumFor("whitted/pixels_shaded")
	misses := sumFor("whitted/primary_misses")

	if rays != 81 {
		t.Errorf("primary rays: got %v, want 81", rays)
	}
	if shaded+misses != rays {
		t.Errorf("shaded+misses: got %v, want %v", shaded+misses, rays)
	}
	if shaded == 0 || misses == 0 {
		t.Errorf("got shaded=%v misses=%v, want both non-zero", shaded, misses)
	}
}
