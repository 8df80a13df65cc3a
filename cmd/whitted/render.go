package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.opencensus.io/stats/view"

	"whitted/camera"
	"whitted/rasterimage"
	"whitted/render"
	"whitted/rendercache"
	"whitted/scenefile"
	"whitted/sink"
	"whitted/statusz"
	"whitted/texture"
	"whitted/vmath/vec3"
)

var (
	sceneFile   string
	outputFile  string
	textureFile string
	noFloor     bool
	imageSize   int
	workers     int

	eye          []float64
	center       []float64
	up           []float64
	windowWidth  float64
	windowHeight float64
	viewAngle    float64
	yawDegrees   float64
	pitchDegrees float64

	cacheDir string

	cpuProfile  string
	memProfile  string
	debugListen string

	monitoring           bool
	monitoringProject    string
	monitoringTraceRatio float64
)

func init() {
	def := camera.Default()

	flags := cmdRender.Flags()
	flags.StringVar(&sceneFile, "scene", "", "Scene description file to render.")
	flags.StringVar(&outputFile, "output", "", "Where to write the image: a .png, .bmp, or .raster path, or gs://bucket/object.")
	flags.StringVar(&textureFile, "texture", "", "Image to tile over the floor instead of the checkerboard.")
	flags.BoolVar(&noFloor, "no-floor", false, "Do not add the default floor.")
	flags.IntVar(&imageSize, "image-size", 0, "Override the image size given in the scene file.")
	flags.IntVar(&workers, "workers", 0, "Row chunks to render concurrently.  Zero means one per CPU.")

	flags.Float64SliceVar(&eye, "eye", def.Eye[:], "Camera position.")
	flags.Float64SliceVar(&center, "center", def.Center[:], "Point the camera looks at.")
	flags.Float64SliceVar(&up, "up", def.Up[:], "Camera up direction.")
	flags.Float64Var(&windowWidth, "window-width", def.WindowWidth, "Width of the view window in world units.")
	flags.Float64Var(&windowHeight, "window-height", def.WindowHeight, "Height of the view window in world units.")
	flags.Float64Var(&viewAngle, "view-angle", def.ViewAngle, "Vertical field of view in degrees.")
	flags.Float64Var(&yawDegrees, "yaw", 0, "Turn the view about the up direction by this many degrees before rendering.")
	flags.Float64Var(&pitchDegrees, "pitch", 0, "Tilt the view about the right direction by this many degrees before rendering.")

	flags.StringVar(&cacheDir, "cache-dir", "", "Directory for the render cache.  Empty disables caching.")

	flags.StringVar(&cpuProfile, "cpu-profile", "", "write cpu profile to `file`")
	flags.StringVar(&memProfile, "mem-profile", "", "write memory profile to `file`")
	flags.StringVar(&debugListen, "debug-listen", "", "Server address:port for pprof and /statusz.  Empty disables it.")

	flags.BoolVar(&monitoring, "monitoring", false, "Export traces and metrics to Google Cloud?")
	flags.StringVar(&monitoringProject, "monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	flags.Float64Var(&monitoringTraceRatio, "monitoring-trace-ratio", 1, "What ratio of traces should be exported?")

	cmdRender.MarkFlagRequired("scene")
	cmdRender.MarkFlagRequired("output")
}

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a scene file to an image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cpuProfile != "" {
			f, err := os.Create(cpuProfile)
			if err != nil {
				return fmt.Errorf("while creating CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("while starting CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		if err := do(); err != nil {
			return err
		}

		if memProfile != "" {
			f, err := os.Create(memProfile)
			if err != nil {
				return fmt.Errorf("while creating memory profile: %w", err)
			}
			defer f.Close()
			if err := pprof.WriteHeapProfile(f); err != nil {
				return fmt.Errorf("while writing memory profile: %w", err)
			}
		}

		return nil
	},
}

func vecFlag(name string, v []float64) (vec3.T, error) {
	if len(v) != 3 {
		return vec3.T{}, fmt.Errorf("--%s wants 3 comma-separated values, got %d", name, len(v))
	}
	return vec3.T{v[0], v[1], v[2]}, nil
}

func cameraFromFlags() (*camera.PinholeCamera, error) {
	cam := &camera.PinholeCamera{
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		ViewAngle:    viewAngle,
	}

	var err error
	if cam.Eye, err = vecFlag("eye", eye); err != nil {
		return nil, err
	}
	if cam.Center, err = vecFlag("center", center); err != nil {
		return nil, err
	}
	if cam.Up, err = vecFlag("up", up); err != nil {
		return nil, err
	}

	if vec3.SubVV(cam.Center, cam.Eye).Norm() == 0 {
		return nil, fmt.Errorf("--eye and --center must differ")
	}
	if !(viewAngle > 0 && viewAngle < 180) {
		return nil, fmt.Errorf("--view-angle must be in (0, 180), got %v", viewAngle)
	}

	if yawDegrees != 0 {
		cam.Yaw(yawDegrees * math.Pi / 180)
	}
	if pitchDegrees != 0 {
		cam.Pitch(pitchDegrees * math.Pi / 180)
	}

	return cam, nil
}

// cacheKey covers every input that can change the rendered pixels.
func cacheKey(sceneBytes, textureBytes []byte, cam *camera.PinholeCamera, size int, noFloor bool) rendercache.Key {
	params := fmt.Sprintf("eye=%v center=%v up=%v window=%vx%v fov=%v size=%d nofloor=%v",
		cam.Eye, cam.Center, cam.Up, cam.WindowWidth, cam.WindowHeight, cam.ViewAngle, size, noFloor)
	return rendercache.KeyOf(sceneBytes, textureBytes, []byte(params))
}

// warnOnClose runs a deferred close whose failure cannot change the outcome
// of the command any more.
func warnOnClose(what string, closeFn func() error) error {
	err := closeFn()
	if err != nil {
		glog.Warningf("While closing %s: %v", what, err)
	}
	return err
}

func startDebugServer(status *statusz.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/statusz", status)
	mux.HandleFunc("/debug/pprof/", httppprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", httppprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", httppprof.Trace)

	server := &http.Server{
		Addr:    debugListen,
		Handler: mux,

		ReadTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			glog.Errorf("Debug server died: %v", err)
		}
	}()
}

func logRenderStats(sceneName string) {
	for _, v := range render.Views {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			glog.Warningf("While retrieving view %s: %v", v.Name, err)
			continue
		}
		for _, row := range rows {
			if sum, ok := row.Data.(*view.SumData); ok {
				glog.Infof("%s{scene=%q}: %v", v.Name, sceneName, sum.Value)
			}
		}
	}
}

func do() error {
	glog.Infof("scene: %q", sceneFile)
	glog.Infof("output: %q", outputFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if monitoring {
		shutdown, err := installMonitoring(ctx, monitoringProject, monitoringTraceRatio)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if err := render.RegisterViews(); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}

	sceneBytes, err := os.ReadFile(sceneFile)
	if err != nil {
		return fmt.Errorf("while reading scene file: %w", err)
	}

	var textureBytes []byte
	opts := &scenefile.Options{NoFloor: noFloor}
	if textureFile != "" {
		textureBytes, err = os.ReadFile(textureFile)
		if err != nil {
			return fmt.Errorf("while reading texture: %w", err)
		}
		opts.FloorTexture, err = texture.Decode(bytes.NewReader(textureBytes))
		if err != nil {
			return fmt.Errorf("while decoding texture %s: %w", textureFile, err)
		}
		glog.Infof("Loaded %dx%d floor texture from %s", opts.FloorTexture.Width, opts.FloorTexture.Height, textureFile)
	}

	desc, err := scenefile.Parse(bytes.NewReader(sceneBytes), opts)
	if err != nil {
		return fmt.Errorf("while parsing %s: %w", sceneFile, err)
	}

	size := desc.ImageSize
	if imageSize > 0 {
		size = imageSize
	}

	cam, err := cameraFromFlags()
	if err != nil {
		return err
	}

	out, closeSink, err := sink.New(ctx, outputFile)
	if err != nil {
		return fmt.Errorf("while setting up output: %w", err)
	}
	defer warnOnClose("output", closeSink)

	var cache *rendercache.Cache
	key := cacheKey(sceneBytes, textureBytes, cam, size, noFloor)
	if cacheDir != "" {
		cache, err = rendercache.Open(cacheDir)
		if err != nil {
			return fmt.Errorf("while opening render cache: %w", err)
		}
		defer warnOnClose("render cache", cache.Close)

		img, found, err := cache.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("while checking render cache: %w", err)
		}
		if found {
			glog.Infof("Render cache hit for key %v; skipping render", key)
			if err := out.Write(ctx, img); err != nil {
				return fmt.Errorf("while writing output: %w", err)
			}
			return nil
		}
	}

	status := statusz.New()
	if debugListen != "" {
		startDebugServer(status)
	}

	progress := newProgressPrinter(os.Stderr)

	img := rasterimage.New(size, size)
	img.Metadata = map[string]string{
		"scene":  sceneFile,
		"camera": fmt.Sprintf("eye=%v center=%v up=%v fov=%v", cam.Eye, cam.Center, cam.Up, cam.ViewAngle),
	}

	renderOpts := &render.Options{
		Workers:   workers,
		SceneName: sceneFile,
		Progress: func(rowsDone, rowsTotal int) {
			status.Progress(rowsDone, rowsTotal)
			progress.Progress(rowsDone, rowsTotal)
		},
	}

	glog.Infof("Rendering %dx%d image of %d primitives", size, size, len(desc.Scene.Primitives))
	status.Begin(sceneFile, size)
	start := time.Now()
	if err := render.Render(ctx, desc.Scene, cam, img, renderOpts); err != nil {
		return fmt.Errorf("while rendering %s: %w", sceneFile, err)
	}
	elapsed := time.Since(start)
	status.Finish()

	renderSeconds.Record(ctx, elapsed.Seconds())
	glog.Infof("Rendered in %v", elapsed)
	logRenderStats(sceneFile)

	if cache != nil {
		if err := cache.Put(ctx, key, img); err != nil {
			glog.Warningf("While storing render in cache: %v", err)
		}
	}

	if err := out.Write(ctx, img); err != nil {
		return fmt.Errorf("while writing output: %w", err)
	}
	glog.Infof("Wrote %s", outputFile)

	return nil
}
