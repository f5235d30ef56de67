// Package render drives the path tracer over a whole image, in parallel.
package render

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"row-major/boxtracer/camera"
	"row-major/boxtracer/integrator"
	"row-major/boxtracer/renderstats"
	"row-major/boxtracer/sampleimage"
	"row-major/boxtracer/scene"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type RenderOptions struct {
	MaxDepth         int
	TargetSubsamples int

	// Parallelism limits the number of chunks rendered at once.  Defaults to
	// the number of CPUs.
	Parallelism int

	// Seed is mixed into every chunk's random source.
	Seed int64
}

// ProgressFunction is called with the number of samples collected so far and
// the number the render will collect in total.  Calls are serialized.
type ProgressFunction func(int, int)

type chunkWorker struct {
	sampleDB         *sampleimage.SampleImage
	rng              *rand.Rand
	progressFunction func(int)

	tracer        *integrator.PathTracer
	targetSamples int
	sceneName     string

	// These are the dimensions of the overall image, not just this chunk.
	imgRows int
	imgCols int

	rowSrc int
	rowLim int

	camera camera.Camera
}

func (w *chunkWorker) render(ctx context.Context) error {
	var span trace.Span
	ctx, span = otel.Tracer("row-major/boxtracer/render").Start(ctx, "chunkWorker.render")
	defer span.End()
	span.SetAttributes(attribute.Int64("row_src", int64(w.rowSrc)), attribute.Int64("row_lim", int64(w.rowLim)))

	for cr := w.rowSrc; cr < w.rowLim; cr++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("while rendering row %d: %w", cr, err)
		}

		rowStart := time.Now()
		counters := &integrator.Counters{}
		samplesCollected := 0

		for cc := 0; cc < w.imgCols; cc++ {
			r := cr - w.rowSrc

			samp := w.sampleDB.ReadSample(r, cc)
			if int(samp.SampleCount) >= w.targetSamples {
				continue
			}
			samplesToAdd := w.targetSamples - int(samp.SampleCount)

			for cs := 0; cs < samplesToAdd; cs++ {
				curQuery := w.camera.ImageToRay(cr, w.imgRows, cc, w.imgCols, w.rng)
				radiance := w.tracer.SampleRay(curQuery, w.rng, counters)
				w.sampleDB.RecordSample(r, cc, radiance)
				samplesCollected++
			}
		}

		renderstats.RecordRow(ctx, w.sceneName, counters.Rays, counters.Hits, float64(time.Since(rowStart))/float64(time.Millisecond))
		w.progressFunction(samplesCollected)
	}

	return nil
}

// RenderScene adds samples to sampleDB until every pixel has at least
// options.TargetSubsamples of them.  Pixels that already have enough, as when
// resuming a render, are left alone.
//
// Rendering stops early if ctx is cancelled; rows finished by then are kept in
// sampleDB.
func RenderScene(ctx context.Context, s *scene.Scene, cam camera.Camera, options *RenderOptions, sampleDB *sampleimage.SampleImage, progressFunction ProgressFunction) error {
	var span trace.Span
	ctx, span = otel.Tracer("row-major/boxtracer/render").Start(ctx, "RenderScene")
	defer span.End()

	if progressFunction == nil {
		progressFunction = func(int, int) {}
	}

	// progressMutex locks both curProgress and sampleDB.
	progressMutex := sync.Mutex{}
	curProgress := 0

	// When we resume a render, we don't want to just repeat our same RNG
	// choices again.
	existingSamples := sampleDB.TotalSamples()

	totalSamples := 0
	for _, n := range sampleDB.SampleCounts {
		if int(n) < options.TargetSubsamples {
			totalSamples += options.TargetSubsamples - int(n)
		}
	}

	parallelism := options.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	// Chunk by rows, several chunks per worker so that slow regions of the
	// image don't leave workers idle.
	workUnit := sampleDB.RowSize / (4 * parallelism)
	if workUnit < 1 {
		workUnit = 1
	}

	tracer := &integrator.PathTracer{
		World:    s,
		MaxDepth: options.MaxDepth,
	}

	glog.Infof("Rendering %dx%d image of scene %q: %d samples to collect (%d already present), %d rows per chunk, parallelism %d",
		sampleDB.ColSize, sampleDB.RowSize, s.Name, totalSamples, existingSamples, workUnit, parallelism)
	startTime := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(parallelism))

	for rowSrc := 0; rowSrc < sampleDB.RowSize; rowSrc += workUnit {
		rowLim := rowSrc + workUnit
		if rowLim > sampleDB.RowSize {
			rowLim = sampleDB.RowSize
		}

		worker := &chunkWorker{
			rng: rand.New(rand.NewSource(options.Seed ^ int64(existingSamples) ^ int64(rowSrc)<<32)),
			progressFunction: func(subProgress int) {
				progressMutex.Lock()
				defer progressMutex.Unlock()
				curProgress += subProgress
				progressFunction(curProgress, totalSamples)
			},
			tracer:        tracer,
			targetSamples: options.TargetSubsamples,
			sceneName:     s.Name,
			imgRows:       sampleDB.RowSize,
			imgCols:       sampleDB.ColSize,
			rowSrc:        rowSrc,
			rowLim:        rowLim,
			camera:        cam,
		}

		progressMutex.Lock()
		worker.sampleDB = sampleDB.Cut(rowSrc, rowLim, 0, sampleDB.ColSize)
		progressMutex.Unlock()

		if err := sem.Acquire(ctx, 1); err != nil {
			// Running workers still paste into sampleDB.
			eg.Wait()
			return fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)

			err := worker.render(ctx)

			// Keep whatever rows were finished, even on error.
			progressMutex.Lock()
			defer progressMutex.Unlock()
			sampleDB.Paste(worker.sampleDB, worker.rowSrc, 0)

			if err != nil {
				return fmt.Errorf("while rendering rows [%d, %d): %w", worker.rowSrc, worker.rowLim, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	glog.Infof("Rendered scene %q in %v", s.Name, time.Since(startTime))
	return nil
}
