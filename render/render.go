// Package render turns a scene and a camera into pixels.
package render

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"whitted/camera"
	"whitted/rasterimage"
	"whitted/scene"
	"whitted/vmath/rgb"
)

var (
	primaryRays   = stats.Int64("whitted/primary_rays", "Camera rays cast", stats.UnitDimensionless)
	pixelsShaded  = stats.Int64("whitted/pixels_shaded", "Camera rays that hit a primitive and were shaded", stats.UnitDimensionless)
	primaryMisses = stats.Int64("whitted/primary_misses", "Camera rays that escaped the scene", stats.UnitDimensionless)

	sceneKey = tag.MustNewKey("scene")

	// Views aggregates the render measures, keyed by scene name.
	Views = []*view.View{
		{
			Name:        "whitted/primary_rays",
			Description: "Total camera rays cast",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     primaryRays,
			Aggregation: view.Sum(),
		},
		{
			Name:        "whitted/pixels_shaded",
			Description: "Total pixels that received shading",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     pixelsShaded,
			Aggregation: view.Sum(),
		},
		{
			Name:        "whitted/primary_misses",
			Description: "Total pixels left as background",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     primaryMisses,
			Aggregation: view.Sum(),
		},
	}
)

func RegisterViews() error {
	return view.Register(Views...)
}

// ProgressFunction is called with the number of rows finished so far and the
// total row count.  Calls are serialized.
const chunksPerWorker = 4

type ProgressFunction func(rowsDone, rowsTotal int)

type Options struct {
	// Workers is the number of row chunks rendered concurrently.  Zero
	// means one per CPU.
	Workers int

	// SceneName tags the render metrics.
	SceneName string

	Progress ProgressFunction
}

// chunkWorker renders rows [rowSrc, rowLim) of the full image into its own
// private cut of it.
type chunkWorker struct {
	scene *scene.Scene
	cam   camera.Camera
	chunk *rasterimage.Image

	imgRows, imgCols int
	rowSrc, rowLim   int

	rowDone func()
}

func (w *chunkWorker) render(ctx context.Context) (hits, misses int64, err error) {
	for cr := w.rowSrc; cr < w.rowLim; cr++ {
		if err := ctx.Err(); err != nil {
			return hits, misses, err
		}

		for cc := 0; cc < w.imgCols; cc++ {
			r := w.cam.ImageToRay(cr, w.imgRows, cc, w.imgCols)

			idx, _ := w.scene.Nearest(r)
			if idx == -1 {
				misses++
				continue
			}

			var c rgb.T
			w.scene.Intersect(w.scene.Primitives[idx], r, &c, 1)
			w.chunk.Set(cr-w.rowSrc, cc, rgb.Quantize(c))
			hits++
		}

		w.rowDone()
	}
	return hits, misses, nil
}

// Render fills img with the view of s through cam.  Pixels that see nothing
// are left untouched, so a freshly allocated image gets a black background.
// The result does not depend on the number of workers.
func Render(ctx context.Context, s *scene.Scene, cam camera.Camera, img *rasterimage.Image, opts *Options) error {
	tracer := otel.Tracer("whitted/render")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Render")
	defer span.End()

	if opts == nil {
		opts = &Options{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > img.RowSize {
		workers = img.RowSize
	}

	span.SetAttributes(
		attribute.Int("rows", img.RowSize),
		attribute.Int("cols", img.ColSize),
		attribute.Int("workers", workers),
		attribute.Int("primitives", len(s.Primitives)),
	)

	if workers == 0 {
		return nil
	}

	ctx, err := tag.New(ctx, tag.Upsert(sceneKey, opts.SceneName))
	if err != nil {
		return fmt.Errorf("while tagging context: %w", err)
	}

	// imgMutex locks both rowsDone and img.
	imgMutex := sync.Mutex{}
	rowsDone := 0
	rowDone := func() {
		imgMutex.Lock()
		defer imgMutex.Unlock()
		rowsDone++
		if opts.Progress != nil {
			opts.Progress(rowsDone, img.RowSize)
		}
	}

	// We chunk work by rows, with several chunks per worker so that a slow
	// band of rows does not leave the other workers idle.
	chunks := workers * chunksPerWorker
	workUnit := (img.RowSize + chunks - 1) / chunks

	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	for rowSrc := 0; rowSrc < img.RowSize; rowSrc += workUnit {
		rowLim := rowSrc + workUnit
		if rowLim > img.RowSize {
			rowLim = img.RowSize
		}

		worker := &chunkWorker{
			scene:   s,
			cam:     cam,
			imgRows: img.RowSize,
			imgCols: img.ColSize,
			rowSrc:  rowSrc,
			rowLim:  rowLim,
			rowDone: rowDone,
		}

		imgMutex.Lock()
		worker.chunk = img.Cut(rowSrc, rowLim, 0, img.ColSize)
		imgMutex.Unlock()

		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}

		eg.Go(func() error {
			defer sem.Release(1)
			return renderChunk(egCtx, worker, img, &imgMutex)
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while rendering: %w", err)
	}

	// A cancellation that lands before any chunk starts leaves the errgroup
	// with nothing to report.
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while rendering: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func renderChunk(ctx context.Context, w *chunkWorker, img *rasterimage.Image, imgMutex *sync.Mutex) error {
	tracer := otel.Tracer("whitted/render")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "renderChunk")
	defer span.End()

	span.SetAttributes(attribute.Int("rowSrc", w.rowSrc), attribute.Int("rowLim", w.rowLim))

	hits, misses, err := w.render(ctx)

	stats.Record(ctx,
		primaryRays.M(hits+misses),
		pixelsShaded.M(hits),
		primaryMisses.M(misses),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while rendering rows [%d, %d): %w", w.rowSrc, w.rowLim, err)
	}

	imgMutex.Lock()
	defer imgMutex.Unlock()
	img.Paste(w.chunk, w.rowSrc, 0)

	return nil
}
